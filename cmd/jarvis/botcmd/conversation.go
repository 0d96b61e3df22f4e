package botcmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivansanturion-collab/jarvis/capture"
)

// /done runs as a tiny per-chat conversation: pick a task (by number or by
// fuzzy text), then confirm with Sí/No.

type doneState int

const (
	doneIdle doneState = iota
	doneAwaitSelection
	doneAwaitConfirmation
)

type doneAction int

const (
	actionReply doneAction = iota
	actionComplete
)

type doneFlow struct {
	state    doneState
	tasks    []capture.OpenTask
	selected capture.OpenTask
}

func (f *doneFlow) active() bool {
	return f.state != doneIdle
}

func (f *doneFlow) reset() {
	*f = doneFlow{}
}

// begin starts the flow. With a query it jumps straight to confirmation on
// the best fuzzy match; without one it asks for a number.
func (f *doneFlow) begin(tasks []capture.OpenTask, query string) string {
	f.reset()
	if len(tasks) == 0 {
		return "🎉 No tenés tareas pendientes"
	}
	f.tasks = tasks

	query = strings.TrimSpace(query)
	if query != "" {
		best, ok := bestMatch(tasks, query)
		if !ok {
			f.reset()
			return "❌ No encontré ninguna tarea que matchee ese texto."
		}
		f.selected = best
		f.state = doneAwaitConfirmation
		return "¿Confirmás completar: " + best.Name + "? (Sí/No)"
	}

	f.state = doneAwaitSelection
	return formatDoneList(tasks)
}

// handle consumes one non-command message while the flow is active. When it
// returns actionComplete the caller completes the selected task.
func (f *doneFlow) handle(text string) (doneAction, capture.OpenTask, string) {
	text = strings.TrimSpace(text)
	switch f.state {
	case doneAwaitSelection:
		idx, err := strconv.Atoi(text)
		if err != nil {
			return actionReply, capture.OpenTask{}, "Decime un número válido (por ejemplo, 1) o /cancel para salir."
		}
		if idx < 1 || idx > len(f.tasks) {
			return actionReply, capture.OpenTask{},
				fmt.Sprintf("El número debe estar entre 1 y %d. Probá de nuevo.", len(f.tasks))
		}
		f.selected = f.tasks[idx-1]
		f.state = doneAwaitConfirmation
		return actionReply, capture.OpenTask{}, "¿Confirmás completar: " + f.selected.Name + "? (Sí/No)"

	case doneAwaitConfirmation:
		switch strings.ToLower(text) {
		case "sí", "si", "s", "yes", "y":
			task := f.selected
			f.reset()
			return actionComplete, task, ""
		case "no", "n":
			f.reset()
			return actionReply, capture.OpenTask{}, "❌ Cancelado"
		default:
			return actionReply, capture.OpenTask{}, `Respondé "Sí" o "No", por favor.`
		}
	}
	f.reset()
	return actionReply, capture.OpenTask{}, "No hay ninguna tarea seleccionada."
}

// bestMatch scores substring matches by how much of the task name the query
// covers, so a longer query against a short name wins.
func bestMatch(tasks []capture.OpenTask, query string) (capture.OpenTask, bool) {
	query = strings.ToLower(query)
	var best capture.OpenTask
	bestScore := 0.0
	for _, task := range tasks {
		name := strings.ToLower(task.Name)
		if name == "" || !strings.Contains(name, query) {
			continue
		}
		score := float64(len(query)) / float64(len(name))
		if score > bestScore {
			bestScore = score
			best = task
		}
	}
	return best, bestScore > 0
}
