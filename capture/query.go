package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ivansanturion-collab/jarvis/asana"
)

// OpenTask is one row of a section listing.
type OpenTask struct {
	GID      string
	Glyph    string
	Proyecto string
	Name     string
	Section  string
}

var openTaskFields = []string{
	"name", "completed", "notes",
	"custom_fields", "custom_fields.name",
	"custom_fields.enum_value", "custom_fields.enum_value.name",
}

// Query answers read-side questions: section listings, completion, and the
// weekly digest.
type Query struct {
	backend Backend
	cache   *IDCache
	logger  *slog.Logger
}

func NewQuery(backend Backend, cache *IDCache, logger *slog.Logger) *Query {
	if logger == nil {
		logger = slog.Default()
	}
	return &Query{backend: backend, cache: cache, logger: logger}
}

// ListOpen returns the non-completed tasks of a section in backend order.
// An unresolvable section yields an empty listing, not an error.
func (q *Query) ListOpen(ctx context.Context, sectionShortName string) ([]OpenTask, error) {
	sectionGID, ok := q.cache.ResolveSection(sectionShortName)
	if !ok {
		return nil, nil
	}
	tasks, err := q.backend.GetTasksForSection(ctx, sectionGID, openTaskFields)
	if err != nil {
		return nil, fmt.Errorf("list section %q: %w", sectionShortName, err)
	}
	var open []OpenTask
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		open = append(open, OpenTask{
			GID:      task.GID,
			Glyph:    glyphFromNotes(task.Notes),
			Proyecto: projectFromTask(task),
			Name:     taskTitle(task),
			Section:  sectionShortName,
		})
	}
	return open, nil
}

// Complete marks a task done, then moves it to "Hecho" when that section
// resolves. The move is best effort.
func (q *Query) Complete(ctx context.Context, taskGID string) error {
	if _, err := q.backend.SetTaskCompleted(ctx, taskGID, true); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	q.logger.Info("task_completed", "gid", taskGID)
	if doneGID, ok := q.cache.ResolveSection(doneSection); ok {
		if err := q.backend.AddTaskToSection(ctx, doneGID, taskGID); err != nil {
			q.logger.Error("task_done_move_error", "gid", taskGID, "error", err)
		} else {
			q.logger.Info("task_done_moved", "gid", taskGID)
		}
	}
	return nil
}

func taskTitle(task asana.Task) string {
	if task.Name == "" {
		return "(sin título)"
	}
	return task.Name
}

// projectFromTask reads the project custom field, stripping a decorative
// prefix such as an emoji. Tasks created before the field existed fall back
// to the "Proyecto:" line of the notes template; the fallback is a
// backward-compatibility shim, not the primary path.
func projectFromTask(task asana.Task) string {
	for _, field := range task.CustomFields {
		if field.Name != projectFieldName {
			continue
		}
		if field.EnumValue != nil && field.EnumValue.Name != "" {
			return stripDecorativePrefix(field.EnumValue.Name)
		}
		break
	}
	for _, line := range strings.Split(task.Notes, "\n") {
		if !strings.HasPrefix(line, "Proyecto:") {
			continue
		}
		if name := strings.TrimSpace(strings.TrimPrefix(line, "Proyecto:")); name != "" {
			return name
		}
		break
	}
	return noProject
}

func stripDecorativePrefix(name string) string {
	runes := []rune(name)
	if len(runes) == 0 || unicode.IsLetter(runes[0]) || unicode.IsDigit(runes[0]) {
		return name
	}
	if _, rest, found := strings.Cut(name, " "); found {
		return rest
	}
	return name
}

// glyphFromNotes recovers the priority glyph from the "Prioridad:" notes
// line, defaulting to a neutral bullet.
func glyphFromNotes(notes string) string {
	for _, line := range strings.Split(notes, "\n") {
		if !strings.HasPrefix(line, "Prioridad:") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "Prioridad:"))
		if fields := strings.Fields(rest); len(fields) > 0 {
			return fields[0]
		}
		break
	}
	return "•"
}
