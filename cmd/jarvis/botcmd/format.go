package botcmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ivansanturion-collab/jarvis/capture"
)

var confirmPriorityEmoji = map[string]string{
	"alta":  "🔥",
	"media": "📌",
	"baja":  "💤",
}

var confirmSection = map[string]string{
	"alta":  "Hoy",
	"media": "Semana",
	"baja":  "Backlog",
}

var typeEmoji = map[string]string{
	"tarea":       "✅",
	"idea":        "💡",
	"seguimiento": "🔄",
	"referencia":  "📎",
	"nota":        "📝",
}

func formatConfirmation(cls capture.Classification) string {
	priorityEmoji, ok := confirmPriorityEmoji[cls.Prioridad]
	if !ok {
		priorityEmoji = "📌"
	}
	section, ok := confirmSection[cls.Prioridad]
	if !ok {
		section = "Semana"
	}
	emoji, ok := typeEmoji[cls.Tipo]
	if !ok {
		emoji = "📝"
	}
	return fmt.Sprintf(
		"✅ Capturado en Asana\n📁 Proyecto: %s\n%s Prioridad: %s → %s\n%s %q",
		cls.Proyecto, priorityEmoji, cls.Prioridad, section, emoji, cls.Resumen,
	)
}

func formatOpenTasks(title string, tasks []capture.OpenTask) string {
	lines := []string{fmt.Sprintf("%s (%d)", title, len(tasks))}
	for _, task := range tasks {
		lines = append(lines, fmt.Sprintf("%s %s — %s", task.Glyph, task.Proyecto, task.Name))
	}
	return strings.Join(lines, "\n")
}

func formatDoneList(tasks []capture.OpenTask) string {
	lines := []string{"📋 ¿Cuál completaste?", ""}
	for i, task := range tasks {
		lines = append(lines, fmt.Sprintf("%d. %s %s — %s", i+1, task.Glyph, task.Section, task.Name))
	}
	return strings.Join(lines, "\n")
}

// FormatDigest renders the weekly digest as a plain-text chat message.
func FormatDigest(digest capture.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Resumen semanal (%s → %s)\n",
		digest.From.Format("2006-01-02"), digest.To.Format("2006-01-02"))

	b.WriteString("\n✅ Completadas")
	if len(digest.Completed) == 0 {
		b.WriteString(": ninguna\n")
	} else {
		fmt.Fprintf(&b, " (%d):\n", len(digest.Completed))
		for _, task := range digest.Completed {
			fmt.Fprintf(&b, "  • %s — %s\n", task.Proyecto, task.Name)
		}
	}

	b.WriteString("\n⏰ Vencidas")
	if len(digest.Overdue) == 0 {
		b.WriteString(": ninguna\n")
	} else {
		fmt.Fprintf(&b, " (%d):\n", len(digest.Overdue))
		for _, task := range digest.Overdue {
			fmt.Fprintf(&b, "  • %s — %s (venció %s)\n",
				task.Proyecto, task.Name, task.DueOn.Format("2006-01-02"))
		}
	}

	if len(digest.ByProject) > 0 {
		b.WriteString("\n📁 Completadas por proyecto:\n")
		for _, project := range sortedProjects(digest.ByProject) {
			fmt.Fprintf(&b, "  %s: %d\n", project, digest.ByProject[project])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedProjects(counts map[string]int) []string {
	projects := make([]string, 0, len(counts))
	for project := range counts {
		projects = append(projects, project)
	}
	sort.Strings(projects)
	return projects
}
