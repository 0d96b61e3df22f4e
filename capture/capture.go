// Package capture is the task-capture core. It maps classified inbound
// messages onto backend tasks, keeps the identifier cache and dedup ledger
// on disk, and answers section listings and the weekly digest.
package capture

import (
	"context"

	"github.com/ivansanturion-collab/jarvis/asana"
)

// Backend is the slice of the Asana API the capture core talks to. The
// concrete *asana.Client satisfies it; tests substitute a fake.
type Backend interface {
	CreateTask(ctx context.Context, task asana.NewTask) (asana.Task, error)
	SetTaskCompleted(ctx context.Context, taskGID string, completed bool) (asana.Task, error)
	AddTaskToSection(ctx context.Context, sectionGID, taskGID string) error
	GetTasksForSection(ctx context.Context, sectionGID string, optFields []string) ([]asana.Task, error)
	GetSectionsForProject(ctx context.Context, projectGID string) ([]asana.Section, error)
	GetProject(ctx context.Context, projectGID string) (asana.Project, error)
	GetCurrentUser(ctx context.Context) (asana.User, error)
}

const (
	projectFieldName = "Proyecto"
	doneSection      = "Hecho"
	noProject        = "Sin proyecto"
)

var pendingSections = []string{"Hoy", "Semana", "Backlog"}
