// Package asana is a minimal HTTP client for the Asana REST API: task
// creation and completion, section placement, and the introspection calls
// the identifier cache needs. No retries; failures surface to the caller.
package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://app.asana.com/api/1.0"

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(httpClient *http.Client, baseURL, accessToken string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
	}
}

type RequestError struct {
	StatusCode int
	Messages   []string
	Body       string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "asana request failed"
	}
	if len(e.Messages) > 0 {
		return fmt.Sprintf("asana http %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	body := strings.TrimSpace(e.Body)
	if body != "" {
		return fmt.Sprintf("asana http %d: %s", e.StatusCode, body)
	}
	return fmt.Sprintf("asana http %d", e.StatusCode)
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type listEnvelope struct {
	Data     json.RawMessage `json:"data"`
	NextPage *struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(map[string]any{"data": body})
		if err != nil {
			return fmt.Errorf("asana encode %s: %w", path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			for _, item := range eb.Errors {
				if msg := strings.TrimSpace(item.Message); msg != "" {
					reqErr.Messages = append(reqErr.Messages, msg)
				}
			}
		}
		return reqErr
	}
	if out == nil {
		return nil
	}
	var envelope dataEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("asana decode %s: %w", path, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("asana decode %s: %w", path, err)
	}
	return nil
}

// doList fetches all pages of a collection endpoint, following the offset
// cursor Asana returns in next_page.
func (c *Client) doList(ctx context.Context, path string, query url.Values, appendPage func(json.RawMessage) error) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", "100")
	offset := ""
	for {
		if offset != "" {
			query.Set("offset", offset)
		}
		u := c.baseURL + path + "?" + query.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			reqErr := &RequestError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
			var eb errorBody
			if json.Unmarshal(raw, &eb) == nil {
				for _, item := range eb.Errors {
					if msg := strings.TrimSpace(item.Message); msg != "" {
						reqErr.Messages = append(reqErr.Messages, msg)
					}
				}
			}
			return reqErr
		}

		var envelope listEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("asana decode %s: %w", path, err)
		}
		if err := appendPage(envelope.Data); err != nil {
			return err
		}
		if envelope.NextPage == nil || strings.TrimSpace(envelope.NextPage.Offset) == "" {
			return nil
		}
		offset = envelope.NextPage.Offset
	}
}

func (c *Client) CreateTask(ctx context.Context, task NewTask) (Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, task, &out); err != nil {
		return Task{}, err
	}
	return out, nil
}

// SetTaskCompleted flips the completion state of a task.
func (c *Client) SetTaskCompleted(ctx context.Context, taskGID string, completed bool) (Task, error) {
	var out Task
	body := map[string]bool{"completed": completed}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskGID), nil, body, &out); err != nil {
		return Task{}, err
	}
	return out, nil
}

func (c *Client) AddTaskToSection(ctx context.Context, sectionGID, taskGID string) error {
	body := map[string]string{"task": taskGID}
	return c.do(ctx, http.MethodPost, "/sections/"+url.PathEscape(sectionGID)+"/addTask", nil, body, nil)
}

// GetTasksForSection lists a section's tasks with the requested field
// projection, following pagination.
func (c *Client) GetTasksForSection(ctx context.Context, sectionGID string, optFields []string) ([]Task, error) {
	query := url.Values{}
	if len(optFields) > 0 {
		query.Set("opt_fields", strings.Join(optFields, ","))
	}
	var tasks []Task
	err := c.doList(ctx, "/sections/"+url.PathEscape(sectionGID)+"/tasks", query, func(page json.RawMessage) error {
		var batch []Task
		if err := json.Unmarshal(page, &batch); err != nil {
			return err
		}
		tasks = append(tasks, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetSectionsForProject(ctx context.Context, projectGID string) ([]Section, error) {
	query := url.Values{}
	query.Set("opt_fields", "name,gid")
	var sections []Section
	err := c.doList(ctx, "/projects/"+url.PathEscape(projectGID)+"/sections", query, func(page json.RawMessage) error {
		var batch []Section
		if err := json.Unmarshal(page, &batch); err != nil {
			return err
		}
		sections = append(sections, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (c *Client) GetProject(ctx context.Context, projectGID string) (Project, error) {
	query := url.Values{}
	query.Set("opt_fields", strings.Join([]string{
		"custom_field_settings.custom_field.name",
		"custom_field_settings.custom_field.gid",
		"custom_field_settings.custom_field.enum_options",
	}, ","))
	var out Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectGID), query, nil, &out); err != nil {
		return Project{}, err
	}
	return out, nil
}

// GetCurrentUser returns the authenticated user with workspace membership.
func (c *Client) GetCurrentUser(ctx context.Context) (User, error) {
	query := url.Values{}
	query.Set("opt_fields", "gid,name,email,workspaces")
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/me", query, nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}
