package capture

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

// ValidProjects are the only values the project field accepts. Anything else
// collapses to "Personal".
var ValidProjects = []string{
	"Speaker",
	"Automatización",
	"Marca personal",
	"Nomadic",
	"Adquisición",
	"Docencia",
	"Personal",
}

var validPriorities = []string{"alta", "media", "baja"}

var validTypes = []string{"tarea", "idea", "seguimiento", "referencia", "nota"}

// Classification is the validated shape of a classifier response. Downstream
// mapping code assumes every field already holds a known value; Normalize
// enforces that at the boundary.
type Classification struct {
	Proyecto  string `json:"proyecto"`
	Prioridad string `json:"prioridad"`
	Resumen   string `json:"resumen"`
	Tipo      string `json:"tipo"`
	DueDate   string `json:"due_date,omitempty"`
}

// Normalize defaults every out-of-range field: unknown projects become
// "Personal", unknown priorities "media", unknown types "nota". Summaries
// longer than 80 characters are shortened to 77 plus an ellipsis, and a due
// date that does not parse as YYYY-MM-DD is dropped.
func (c Classification) Normalize(logger *slog.Logger) Classification {
	if logger == nil {
		logger = slog.Default()
	}
	if !slices.Contains(ValidProjects, c.Proyecto) {
		logger.Warn("classification_project_invalid", "proyecto", c.Proyecto)
		c.Proyecto = "Personal"
	}
	if !slices.Contains(validPriorities, c.Prioridad) {
		c.Prioridad = "media"
	}
	if !slices.Contains(validTypes, c.Tipo) {
		c.Tipo = "nota"
	}
	c.Resumen = strings.TrimSpace(c.Resumen)
	if len([]rune(c.Resumen)) > 80 {
		c.Resumen = truncateRunes(c.Resumen, 77) + "..."
	}
	if c.DueDate != "" {
		if _, err := time.Parse("2006-01-02", c.DueDate); err != nil {
			logger.Warn("classification_due_date_invalid", "due_date", c.DueDate)
			c.DueDate = ""
		}
	}
	return c
}

// FallbackClassification is the safe default used when the classifier call
// fails: the message still becomes a task instead of being lost.
func FallbackClassification(text string) Classification {
	resumen := truncateRunes(strings.TrimSpace(text), 80)
	if resumen == "" {
		resumen = "Mensaje sin clasificar"
	}
	return Classification{
		Proyecto:  "Personal",
		Prioridad: "media",
		Resumen:   resumen,
		Tipo:      "nota",
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
