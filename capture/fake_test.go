package capture

import (
	"context"
	"fmt"

	"github.com/ivansanturion-collab/jarvis/asana"
)

// fakeBackend records every write call and serves canned read responses.
type fakeBackend struct {
	sections     []asana.Section
	project      asana.Project
	user         asana.User
	userErr      error
	sectionTasks map[string][]asana.Task

	createErr   error
	moveErr     error
	completeErr error

	created     []asana.NewTask
	moves       [][2]string
	completions []string
}

func (f *fakeBackend) CreateTask(_ context.Context, task asana.NewTask) (asana.Task, error) {
	if f.createErr != nil {
		return asana.Task{}, f.createErr
	}
	f.created = append(f.created, task)
	return asana.Task{
		GID:   fmt.Sprintf("task-%d", len(f.created)),
		Name:  task.Name,
		Notes: task.Notes,
	}, nil
}

func (f *fakeBackend) SetTaskCompleted(_ context.Context, taskGID string, completed bool) (asana.Task, error) {
	if f.completeErr != nil {
		return asana.Task{}, f.completeErr
	}
	f.completions = append(f.completions, taskGID)
	return asana.Task{GID: taskGID, Completed: completed}, nil
}

func (f *fakeBackend) AddTaskToSection(_ context.Context, sectionGID, taskGID string) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, [2]string{sectionGID, taskGID})
	return nil
}

func (f *fakeBackend) GetTasksForSection(_ context.Context, sectionGID string, _ []string) ([]asana.Task, error) {
	return f.sectionTasks[sectionGID], nil
}

func (f *fakeBackend) GetSectionsForProject(_ context.Context, _ string) ([]asana.Section, error) {
	return f.sections, nil
}

func (f *fakeBackend) GetProject(_ context.Context, _ string) (asana.Project, error) {
	return f.project, nil
}

func (f *fakeBackend) GetCurrentUser(_ context.Context) (asana.User, error) {
	if f.userErr != nil {
		return asana.User{}, f.userErr
	}
	return f.user, nil
}

// testCache builds an IDCache whose state is set directly, skipping
// discovery.
func testCache(sections, options map[string]string, fieldGID, ownerGID string) *IDCache {
	cache := NewIDCache(nil, "", "proj-1", "ws-1", nil)
	cache.ids = cachedIDs{
		Sections:       sections,
		ProjectOptions: options,
	}
	if fieldGID != "" {
		cache.ids.ProjectFieldGID = &fieldGID
	}
	if ownerGID != "" {
		cache.ids.OwnerUserGID = &ownerGID
	}
	return cache
}
