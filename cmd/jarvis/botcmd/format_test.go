package botcmd

import (
	"strings"
	"testing"
	"time"

	"github.com/ivansanturion-collab/jarvis/capture"
)

func TestFormatConfirmation(t *testing.T) {
	t.Parallel()

	cls := capture.Classification{
		Proyecto:  "Nomadic",
		Prioridad: "alta",
		Resumen:   "Armar propuesta",
		Tipo:      "tarea",
	}
	got := formatConfirmation(cls)
	want := "✅ Capturado en Asana\n" +
		"📁 Proyecto: Nomadic\n" +
		"🔥 Prioridad: alta → Hoy\n" +
		"✅ \"Armar propuesta\""
	if got != want {
		t.Errorf("formatConfirmation() = %q, want %q", got, want)
	}
}

func TestFormatConfirmationDefaults(t *testing.T) {
	t.Parallel()

	got := formatConfirmation(capture.Classification{Proyecto: "Personal"})
	if !strings.Contains(got, "→ Semana") {
		t.Errorf("formatConfirmation() = %q, want Semana default", got)
	}
	if !strings.Contains(got, "📝") {
		t.Errorf("formatConfirmation() = %q, want note emoji default", got)
	}
}

func TestFormatOpenTasks(t *testing.T) {
	t.Parallel()

	tasks := []capture.OpenTask{
		{Glyph: "🔴", Proyecto: "Nomadic", Name: "Armar propuesta"},
		{Glyph: "🟡", Proyecto: "Personal", Name: "Turno médico"},
	}
	got := formatOpenTasks("📋 Tareas para hoy", tasks)
	want := "📋 Tareas para hoy (2)\n" +
		"🔴 Nomadic — Armar propuesta\n" +
		"🟡 Personal — Turno médico"
	if got != want {
		t.Errorf("formatOpenTasks() = %q, want %q", got, want)
	}
}

func TestFormatDigest(t *testing.T) {
	t.Parallel()

	digest := capture.Digest{
		From: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Completed: []capture.CompletedTask{
			{Name: "Enviar contrato", Proyecto: "Nomadic"},
		},
		Overdue: []capture.OverdueTask{
			{Name: "Pagar monotributo", Proyecto: "Personal",
				DueOn: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		},
		ByProject: map[string]int{"Nomadic": 1},
	}
	got := FormatDigest(digest)

	for _, want := range []string{
		"📊 Resumen semanal (2024-03-09 → 2024-03-15)",
		"✅ Completadas (1):",
		"• Nomadic — Enviar contrato",
		"⏰ Vencidas (1):",
		"• Personal — Pagar monotributo (venció 2024-03-10)",
		"Nomadic: 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatDigest() missing %q in %q", want, got)
		}
	}
}

func TestFormatDigestEmpty(t *testing.T) {
	t.Parallel()

	got := FormatDigest(capture.Digest{
		From: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if !strings.Contains(got, "✅ Completadas: ninguna") {
		t.Errorf("FormatDigest() = %q, want empty completed marker", got)
	}
	if !strings.Contains(got, "⏰ Vencidas: ninguna") {
		t.Errorf("FormatDigest() = %q, want empty overdue marker", got)
	}
}

func TestSplitCommand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		command string
		arg     string
	}{
		{"/start", "start", ""},
		{"/done armar propuesta", "done", "armar propuesta"},
		{"/done@jarvisbot armar", "done", "armar"},
		{"  /HOY  ", "hoy", ""},
	}
	for _, tc := range cases {
		command, arg := splitCommand(tc.in)
		if command != tc.command || arg != tc.arg {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)",
				tc.in, command, arg, tc.command, tc.arg)
		}
	}
}
