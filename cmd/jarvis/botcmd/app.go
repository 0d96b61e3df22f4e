// Package botcmd implements the Telegram capture bot: the long-poll loop,
// the command handlers, and the weekly digest scheduler.
package botcmd

import (
	"context"
	"log/slog"

	"github.com/ivansanturion-collab/jarvis/capture"
	"github.com/ivansanturion-collab/jarvis/classify"
)

// Transcriber converts audio bytes into text. The filename carries the
// format hint; language forces the recognition language.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error)
}

// App bundles the capture core the bot drives. The caller owns construction
// so tests can substitute fakes.
type App struct {
	Mapper      *capture.Mapper
	Query       *capture.Query
	Cache       *capture.IDCache
	Classifier  *classify.Classifier
	Transcriber Transcriber
	ChatPath    string
	Close       func()
}

// Dependencies carries the constructors the serve command needs from the
// host binary.
type Dependencies struct {
	BuildApp func(ctx context.Context, logger *slog.Logger) (*App, error)
}
