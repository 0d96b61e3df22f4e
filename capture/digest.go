package capture

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// CompletedTask is one digest entry from the "Hecho" section.
type CompletedTask struct {
	Name     string
	Proyecto string
}

// OverdueTask is an open task whose due date has passed.
type OverdueTask struct {
	Name     string
	Proyecto string
	DueOn    time.Time
}

// Digest is the weekly rollup: completions inside the window, overdue open
// tasks, and completion counts per project.
type Digest struct {
	From      time.Time
	To        time.Time
	Completed []CompletedTask
	Overdue   []OverdueTask
	ByProject map[string]int
}

var digestDoneFields = []string{
	"name", "completed", "completed_at", "notes",
	"custom_fields", "custom_fields.name",
	"custom_fields.enum_value", "custom_fields.enum_value.name",
}

var digestPendingFields = []string{
	"name", "completed", "due_on", "notes",
	"custom_fields", "custom_fields.name",
	"custom_fields.enum_value", "custom_fields.enum_value.name",
}

// WeeklyDigest aggregates the seven-day window [today-6d, today] inclusive.
// Completed tasks come from "Hecho" with a completion timestamp inside the
// window; overdue tasks are the open ones in the pending sections whose due
// date is strictly before today. Unparseable dates are skipped with a
// warning, never counted.
func (q *Query) WeeklyDigest(ctx context.Context, today time.Time) (Digest, error) {
	day := truncateToDate(today)
	from := day.AddDate(0, 0, -6)

	digest := Digest{
		From:      from,
		To:        day,
		ByProject: map[string]int{},
	}

	if doneGID, ok := q.cache.ResolveSection(doneSection); ok {
		tasks, err := q.backend.GetTasksForSection(ctx, doneGID, digestDoneFields)
		if err != nil {
			return Digest{}, fmt.Errorf("digest completed tasks: %w", err)
		}
		for _, task := range tasks {
			if !task.Completed || task.CompletedAt == "" {
				continue
			}
			completedAt, err := time.Parse(time.RFC3339, task.CompletedAt)
			if err != nil {
				q.logger.Warn("digest_completed_at_unparseable",
					"gid", task.GID, "completed_at", task.CompletedAt)
				continue
			}
			completedDay := truncateToDate(completedAt.UTC())
			if completedDay.Before(from) || completedDay.After(day) {
				continue
			}
			proyecto := projectFromTask(task)
			digest.Completed = append(digest.Completed, CompletedTask{
				Name:     taskTitle(task),
				Proyecto: proyecto,
			})
			digest.ByProject[proyecto]++
		}
	}

	for _, sectionName := range pendingSections {
		sectionGID, ok := q.cache.ResolveSection(sectionName)
		if !ok {
			continue
		}
		tasks, err := q.backend.GetTasksForSection(ctx, sectionGID, digestPendingFields)
		if err != nil {
			return Digest{}, fmt.Errorf("digest section %q: %w", sectionName, err)
		}
		for _, task := range tasks {
			if task.Completed || task.DueOn == "" {
				continue
			}
			due, err := time.Parse("2006-01-02", task.DueOn)
			if err != nil {
				q.logger.Warn("digest_due_on_unparseable", "gid", task.GID, "due_on", task.DueOn)
				continue
			}
			if !due.Before(day) {
				continue
			}
			digest.Overdue = append(digest.Overdue, OverdueTask{
				Name:     taskTitle(task),
				Proyecto: projectFromTask(task),
				DueOn:    due,
			})
		}
	}

	sort.Slice(digest.Completed, func(i, j int) bool {
		a, b := digest.Completed[i], digest.Completed[j]
		if a.Proyecto != b.Proyecto {
			return a.Proyecto < b.Proyecto
		}
		return a.Name < b.Name
	})
	sort.Slice(digest.Overdue, func(i, j int) bool {
		a, b := digest.Overdue[i], digest.Overdue[j]
		if a.Proyecto != b.Proyecto {
			return a.Proyecto < b.Proyecto
		}
		if !a.DueOn.Equal(b.DueOn) {
			return a.DueOn.Before(b.DueOn)
		}
		return a.Name < b.Name
	})

	return digest, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
