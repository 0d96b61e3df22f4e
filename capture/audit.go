package capture

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ivansanturion-collab/jarvis/internal/fsstore"
)

// AuditLog appends one JSON line per capture outcome. The log is an
// operational trail only; nothing reads it back at runtime.
type AuditLog struct {
	writer *fsstore.JSONLWriter
	logger *slog.Logger
	now    func() time.Time
}

type auditEvent struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"`
	Event     string `json:"event"`
	Key       string `json:"key"`
	TaskGID   string `json:"task_gid,omitempty"`
	Proyecto  string `json:"proyecto,omitempty"`
	Prioridad string `json:"prioridad,omitempty"`
	Tipo      string `json:"tipo,omitempty"`
	Section   string `json:"section,omitempty"`
}

func NewAuditLog(path string, logger *slog.Logger) (*AuditLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	writer, err := fsstore.NewJSONLWriter(path, fsstore.JSONLOptions{})
	if err != nil {
		return nil, err
	}
	return &AuditLog{writer: writer, logger: logger, now: time.Now}, nil
}

func (a *AuditLog) RecordCreated(key, taskGID string, cls Classification, section string) {
	a.append(auditEvent{
		Event:     "task_created",
		Key:       key,
		TaskGID:   taskGID,
		Proyecto:  cls.Proyecto,
		Prioridad: cls.Prioridad,
		Tipo:      cls.Tipo,
		Section:   section,
	})
}

func (a *AuditLog) RecordDuplicate(key string) {
	a.append(auditEvent{Event: "duplicate_skipped", Key: key})
}

// append never fails the capture path; a write error is only logged.
func (a *AuditLog) append(event auditEvent) {
	event.ID = uuid.NewString()
	event.Timestamp = a.now().UTC().Format(time.RFC3339)
	if err := a.writer.AppendJSON(event); err != nil {
		a.logger.Error("capture_audit_write_error", "error", err)
	}
}

func (a *AuditLog) Close() error {
	return a.writer.Close()
}
