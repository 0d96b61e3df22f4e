package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ivansanturion-collab/jarvis/asana"
)

// prioritySections maps a classification priority to the section a new task
// lands in. Unknown priorities go to "Semana".
var prioritySections = map[string]string{
	"alta":  "Hoy",
	"media": "Semana",
	"baja":  "Backlog",
}

var priorityGlyphs = map[string]string{
	"alta":  "🔴",
	"media": "🟡",
	"baja":  "🟢",
}

func sectionForPriority(prioridad string) string {
	if name, ok := prioritySections[prioridad]; ok {
		return name
	}
	return "Semana"
}

func glyphForPriority(prioridad string) string {
	if glyph, ok := priorityGlyphs[prioridad]; ok {
		return glyph
	}
	return "⚪"
}

// Mapper turns one classified message into one backend task, with dedup and
// priority based section placement.
type Mapper struct {
	backend    Backend
	cache      *IDCache
	ledger     *Ledger
	projectGID string
	logger     *slog.Logger
	audit      *AuditLog
}

// NewMapper wires the mapper. audit may be nil to disable the capture log.
func NewMapper(backend Backend, cache *IDCache, ledger *Ledger, projectGID string, logger *slog.Logger, audit *AuditLog) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		backend:    backend,
		cache:      cache,
		ledger:     ledger,
		projectGID: projectGID,
		logger:     logger,
		audit:      audit,
	}
}

// Create maps one inbound message to a backend task. It returns (nil, nil)
// when the message was already processed; no backend call is made in that
// case. A failed section move degrades to an unsectioned task. The dedup key
// is marked only after the creation succeeds, so a crash in between can
// produce a duplicate on redelivery.
func (m *Mapper) Create(ctx context.Context, text string, cls Classification, messageID, source string) (*asana.Task, error) {
	key := Key(source, messageID)
	seen, err := m.ledger.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if seen {
		m.logger.Info("capture_duplicate_skipped", "key", key)
		if m.audit != nil {
			m.audit.RecordDuplicate(key)
		}
		return nil, nil
	}

	sectionName := sectionForPriority(cls.Prioridad)
	sectionGID, sectionOK := m.cache.ResolveSection(sectionName)

	notes := buildNotes(text, cls, source)

	customFields := map[string]string{}
	if fieldGID := m.cache.ProjectFieldGID(); fieldGID != "" {
		if optionGID, ok := m.cache.ResolveProjectOption(cls.Proyecto); ok {
			customFields[fieldGID] = optionGID
		} else {
			m.logger.Warn("capture_project_option_missing", "proyecto", cls.Proyecto)
		}
	}

	name := cls.Resumen
	if name == "" {
		name = truncateRunes(text, 80)
	}
	task, err := m.backend.CreateTask(ctx, asana.NewTask{
		Name:         name,
		Notes:        notes,
		Projects:     []string{m.projectGID},
		CustomFields: customFields,
		Assignee:     m.cache.OwnerUserGID(),
		DueOn:        cls.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	m.logger.Info("task_created", "gid", task.GID, "name", task.Name)

	if sectionOK {
		if err := m.backend.AddTaskToSection(ctx, sectionGID, task.GID); err != nil {
			m.logger.Error("task_section_move_error",
				"gid", task.GID, "section", sectionName, "error", err)
		} else {
			m.logger.Info("task_sectioned", "gid", task.GID, "section", sectionName)
		}
	}

	if err := m.ledger.Mark(ctx, key); err != nil {
		return nil, fmt.Errorf("mark processed: %w", err)
	}

	if m.audit != nil {
		m.audit.RecordCreated(key, task.GID, cls, sectionName)
	}
	return &task, nil
}

// buildNotes renders the fixed notes template. Listing code parses the
// "Prioridad:" and "Proyecto:" lines back out, so the layout is load-bearing.
func buildNotes(text string, cls Classification, source string) string {
	return fmt.Sprintf(
		"Fuente: %s\nTipo: %s\nPrioridad: %s %s\nProyecto: %s\n\n---\n\nTexto original:\n%s",
		source, cls.Tipo, glyphForPriority(cls.Prioridad), cls.Prioridad, cls.Proyecto, text,
	)
}
