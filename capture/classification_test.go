package capture

import (
	"strings"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	cls := Classification{
		Proyecto:  "Inventado",
		Prioridad: "urgentísima",
		Tipo:      "cosa",
		DueDate:   "mañana",
	}.Normalize(nil)

	if cls.Proyecto != "Personal" {
		t.Errorf("Proyecto = %q, want Personal", cls.Proyecto)
	}
	if cls.Prioridad != "media" {
		t.Errorf("Prioridad = %q, want media", cls.Prioridad)
	}
	if cls.Tipo != "nota" {
		t.Errorf("Tipo = %q, want nota", cls.Tipo)
	}
	if cls.DueDate != "" {
		t.Errorf("DueDate = %q, want dropped", cls.DueDate)
	}
}

func TestNormalizeKeepsValidFields(t *testing.T) {
	t.Parallel()

	cls := Classification{
		Proyecto:  "Nomadic",
		Prioridad: "alta",
		Resumen:   "Draft proposal",
		Tipo:      "tarea",
		DueDate:   "2026-03-05",
	}.Normalize(nil)

	want := Classification{
		Proyecto:  "Nomadic",
		Prioridad: "alta",
		Resumen:   "Draft proposal",
		Tipo:      "tarea",
		DueDate:   "2026-03-05",
	}
	if cls != want {
		t.Errorf("Normalize() = %+v, want %+v", cls, want)
	}
}

func TestNormalizeTruncatesSummary(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 85)
	cls := Classification{
		Proyecto:  "Personal",
		Prioridad: "media",
		Resumen:   long,
		Tipo:      "nota",
	}.Normalize(nil)

	if len([]rune(cls.Resumen)) != 80 {
		t.Errorf("len(Resumen) = %d, want 80", len([]rune(cls.Resumen)))
	}
	if !strings.HasSuffix(cls.Resumen, "...") {
		t.Errorf("Resumen = %q, want ellipsis suffix", cls.Resumen)
	}
	if cls.Resumen[:77] != long[:77] {
		t.Errorf("Resumen prefix mismatch")
	}
}

func TestFallbackClassification(t *testing.T) {
	t.Parallel()

	cls := FallbackClassification("llamar al contador")
	want := Classification{
		Proyecto:  "Personal",
		Prioridad: "media",
		Resumen:   "llamar al contador",
		Tipo:      "nota",
	}
	if cls != want {
		t.Errorf("FallbackClassification() = %+v, want %+v", cls, want)
	}

	if got := FallbackClassification("").Resumen; got != "Mensaje sin clasificar" {
		t.Errorf("empty text Resumen = %q", got)
	}
}
