package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func defaultTestCache() *IDCache {
	return testCache(
		map[string]string{
			"🔥 Hoy":   "sec-hoy",
			"Semana":  "sec-semana",
			"Backlog": "sec-backlog",
			"Hecho":   "sec-hecho",
		},
		map[string]string{
			"🎤 Speaker": "opt-speaker",
			"Nomadic":   "opt-nomadic",
			"Personal":  "opt-personal",
		},
		"cf-1",
		"user-1",
	)
}

func newTestMapper(t *testing.T, backend Backend) *Mapper {
	t.Helper()
	return NewMapper(backend, defaultTestCache(), newTestLedger(t), "proj-1", nil, nil)
}

func TestSectionForPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prioridad string
		want      string
	}{
		{"alta", "Hoy"},
		{"media", "Semana"},
		{"baja", "Backlog"},
		{"", "Semana"},
		{"otra", "Semana"},
	}
	for _, tc := range cases {
		if got := sectionForPriority(tc.prioridad); got != tc.want {
			t.Errorf("sectionForPriority(%q) = %q, want %q", tc.prioridad, got, tc.want)
		}
	}
}

func TestMapperCreateEndToEnd(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	mapper := newTestMapper(t, backend)
	ctx := context.Background()

	cls := Classification{
		Proyecto:  "Nomadic",
		Prioridad: "alta",
		Resumen:   "Draft proposal",
		Tipo:      "tarea",
		DueDate:   "2026-03-05",
	}
	task, err := mapper.Create(ctx, "armar propuesta para el cliente", cls, "42", "telegram")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task == nil {
		t.Fatal("Create() task = nil, want created task")
	}

	if len(backend.created) != 1 {
		t.Fatalf("created calls = %d, want 1", len(backend.created))
	}
	created := backend.created[0]
	if created.Name != "Draft proposal" {
		t.Errorf("task name = %q, want %q", created.Name, "Draft proposal")
	}
	if !strings.Contains(created.Notes, "Proyecto: Nomadic") {
		t.Errorf("notes missing project line: %q", created.Notes)
	}
	if !strings.Contains(created.Notes, "Texto original:\narmar propuesta para el cliente") {
		t.Errorf("notes missing original text: %q", created.Notes)
	}
	if created.CustomFields["cf-1"] != "opt-nomadic" {
		t.Errorf("custom field = %v, want cf-1 -> opt-nomadic", created.CustomFields)
	}
	if created.Assignee != "user-1" {
		t.Errorf("assignee = %q, want user-1", created.Assignee)
	}
	if created.DueOn != "2026-03-05" {
		t.Errorf("due_on = %q, want 2026-03-05", created.DueOn)
	}

	if len(backend.moves) != 1 || backend.moves[0] != [2]string{"sec-hoy", task.GID} {
		t.Errorf("moves = %v, want move to sec-hoy", backend.moves)
	}

	seen, err := mapper.ledger.Has(ctx, "telegram_42")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if !seen {
		t.Error("ledger missing telegram_42 after Create")
	}

	// Redelivery of the same message produces no further backend calls.
	dup, err := mapper.Create(ctx, "armar propuesta para el cliente", cls, "42", "telegram")
	if err != nil {
		t.Fatalf("duplicate Create() error = %v", err)
	}
	if dup != nil {
		t.Errorf("duplicate Create() = %+v, want nil", dup)
	}
	if len(backend.created) != 1 || len(backend.moves) != 1 {
		t.Errorf("duplicate issued backend calls: created=%d moves=%d",
			len(backend.created), len(backend.moves))
	}
}

func TestMapperCreateNameFallsBackToText(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	mapper := newTestMapper(t, backend)

	cls := Classification{Proyecto: "Personal", Prioridad: "media", Tipo: "nota"}
	longText := strings.Repeat("x", 95)
	if _, err := mapper.Create(context.Background(), longText, cls, "1", "telegram"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := backend.created[0].Name; got != strings.Repeat("x", 80) {
		t.Errorf("task name = %q, want first 80 chars of text", got)
	}
}

func TestMapperCreateUnknownOptionOmitsCustomField(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	cache := testCache(
		map[string]string{"Semana": "sec-semana"},
		map[string]string{"Personal": "opt-personal"},
		"cf-1", "",
	)
	mapper := NewMapper(backend, cache, newTestLedger(t), "proj-1", nil, nil)

	cls := Classification{Proyecto: "Nomadic", Prioridad: "media", Resumen: "x", Tipo: "tarea"}
	if _, err := mapper.Create(context.Background(), "texto", cls, "5", "telegram"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(backend.created[0].CustomFields) != 0 {
		t.Errorf("custom fields = %v, want none for unknown option", backend.created[0].CustomFields)
	}
}

func TestMapperCreateSectionMoveFailureNonFatal(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{moveErr: errors.New("section gone")}
	mapper := newTestMapper(t, backend)
	ctx := context.Background()

	cls := Classification{Proyecto: "Personal", Prioridad: "alta", Resumen: "x", Tipo: "tarea"}
	task, err := mapper.Create(ctx, "texto", cls, "9", "telegram")
	if err != nil {
		t.Fatalf("Create() error = %v, want move failure swallowed", err)
	}
	if task == nil {
		t.Fatal("Create() task = nil")
	}
	seen, err := mapper.ledger.Has(ctx, "telegram_9")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if !seen {
		t.Error("ledger missing key after move failure")
	}
}

func TestMapperCreateBackendErrorLeavesLedgerUnmarked(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{createErr: errors.New("asana down")}
	mapper := newTestMapper(t, backend)
	ctx := context.Background()

	cls := Classification{Proyecto: "Personal", Prioridad: "media", Resumen: "x", Tipo: "nota"}
	if _, err := mapper.Create(ctx, "texto", cls, "3", "telegram"); err == nil {
		t.Fatal("Create() error = nil, want backend error")
	}
	seen, err := mapper.ledger.Has(ctx, "telegram_3")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if seen {
		t.Error("ledger marked despite failed creation")
	}
}

func TestBuildNotesTemplate(t *testing.T) {
	t.Parallel()

	cls := Classification{Proyecto: "Nomadic", Prioridad: "alta", Tipo: "tarea"}
	got := buildNotes("texto original del mensaje", cls, "telegram")
	want := "Fuente: telegram\n" +
		"Tipo: tarea\n" +
		"Prioridad: 🔴 alta\n" +
		"Proyecto: Nomadic\n" +
		"\n---\n\n" +
		"Texto original:\ntexto original del mensaje"
	if got != want {
		t.Errorf("buildNotes() = %q, want %q", got, want)
	}
}
