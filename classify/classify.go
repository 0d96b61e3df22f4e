// Package classify turns free text into a capture.Classification using a
// chat model, with a safe fallback when the model call or decoding fails.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ivansanturion-collab/jarvis/capture"
	"github.com/ivansanturion-collab/jarvis/llm"
)

const defaultModel = "gpt-4o-mini"

// Classifier calls a chat model and validates the response at the boundary,
// so callers always receive a well-formed classification.
type Classifier struct {
	client llm.Client
	model  string
	logger *slog.Logger
	now    func() time.Time
}

func New(client llm.Client, model string, logger *slog.Logger) *Classifier {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{client: client, model: model, logger: logger, now: time.Now}
}

// Classify never fails: when the model call or response decoding errors, it
// returns the fallback classification so the message still becomes a task.
func (c *Classifier) Classify(ctx context.Context, text string) capture.Classification {
	cls, err := c.classify(ctx, text)
	if err != nil {
		c.logger.Error("classify_error", "error", err)
		return capture.FallbackClassification(text)
	}
	c.logger.Info("classified",
		"proyecto", cls.Proyecto, "prioridad", cls.Prioridad, "resumen", cls.Resumen)
	return cls
}

func (c *Classifier) classify(ctx context.Context, text string) (capture.Classification, error) {
	result, err := c.client.Chat(ctx, llm.Request{
		Model: c.model,
		Messages: []llm.Message{
			{Role: "system", Content: c.systemPrompt()},
			{Role: "user", Content: text},
		},
		ForceJSON: true,
	})
	if err != nil {
		return capture.Classification{}, fmt.Errorf("chat completion: %w", err)
	}

	var cls capture.Classification
	raw := strings.TrimSpace(result.Text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &cls); err != nil {
		return capture.Classification{}, fmt.Errorf("decode classification: %w", err)
	}
	return cls.Normalize(c.logger), nil
}

func (c *Classifier) systemPrompt() string {
	today := c.now().Format("2006-01-02")
	projects := strings.Join(capture.ValidProjects, ", ")
	return fmt.Sprintf(`Sos un asistente que clasifica mensajes para un sistema de gestión de tareas.
El usuario es Ivan, co-founder de una agencia de marketing digital (Nomadic) que también trabaja en:
- Charlas y eventos como speaker
- Marca personal (Substack, LinkedIn)
- Automatización con AI
- Adquisición de nuevos clientes
- Docencia (voluntariado, capacitaciones)
- Vida personal (salud, trámites, gym)

La fecha de hoy es %s (formato YYYY-MM-DD). Usá ESTA fecha como referencia para interpretar fechas relativas como "hoy", "mañana", "el viernes", "esta semana", "la semana que viene", etc.

Clasificá el mensaje y devolvé SOLO un JSON válido (sin markdown, sin backticks) con estos campos:

- "proyecto": uno de [%s]
- "prioridad": "alta" (urgente, para hoy) | "media" (esta semana) | "baja" (puede esperar)
- "resumen": título claro y accionable de máximo 80 caracteres
- "tipo": "tarea" (algo que hacer) | "idea" (para explorar) | "seguimiento" (follow-up) | "referencia" (info útil) | "nota" (recordatorio)
- "due_date": string con la fecha de vencimiento en formato YYYY-MM-DD, o null si no se menciona ninguna fecha o deadline

Reglas:
- Si mencionan un cliente o trabajo de agencia → proyecto = "Nomadic"
- Si mencionan propuestas, prospectos, ventas → proyecto = "Adquisición"
- Si mencionan charla, presentación, evento → proyecto = "Speaker"
- Si mencionan Substack, LinkedIn, contenido propio → proyecto = "Marca personal"
- Si mencionan bots, agentes, automatizar, Claude, Cursor → proyecto = "Automatización"
- Si mencionan enseñar, Semillero, curso → proyecto = "Docencia"
- Si mencionan gym, médico, trámite, casa → proyecto = "Personal"
- Si hay duda, usá "Personal"
- El resumen debe ser accionable: empezar con verbo cuando sea posible

Detección de fechas y deadlines:
- Si el mensaje menciona una fecha relativa como "hoy", "mañana", "pasado mañana", "esta semana", "el viernes", "este viernes", "la semana que viene", "el mes que viene", etc., convertí esa referencia a una fecha concreta en formato YYYY-MM-DD usando la fecha actual del sistema como referencia.
- Si el mensaje menciona una fecha absoluta como "5 de marzo", "05/03", "2026-03-05", etc., interpretala y devolvé la fecha correspondiente en formato YYYY-MM-DD.
- Si se mencionan varias fechas, elegí la más cercana en el futuro que tenga sentido como deadline.
- Si explícitamente dicen que no hay deadline o es algo muy vago ("algún día", "cuando pueda", "sin apuro"), usá due_date = null.
- Si no podés determinar una fecha clara, usá due_date = null.

Ejemplos de salida válidos:
- { "proyecto": "Nomadic", "prioridad": "alta", "resumen": "Preparar propuesta para cliente X", "tipo": "tarea", "due_date": "2026-03-05" }
- { "proyecto": "Personal", "prioridad": "baja", "resumen": "Explorar ideas para vacaciones", "tipo": "idea", "due_date": null }`, today, projects)
}
