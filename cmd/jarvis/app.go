package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/ivansanturion-collab/jarvis/asana"
	"github.com/ivansanturion-collab/jarvis/capture"
	"github.com/ivansanturion-collab/jarvis/classify"
	"github.com/ivansanturion-collab/jarvis/cmd/jarvis/botcmd"
	"github.com/ivansanturion-collab/jarvis/internal/fsstore"
	"github.com/ivansanturion-collab/jarvis/internal/statepaths"
	"github.com/ivansanturion-collab/jarvis/providers/openai"
)

// buildApp wires the capture core from viper config. Credentials are
// validated here so every subcommand fails fast with the same message.
func buildApp(ctx context.Context, logger *slog.Logger) (*botcmd.App, error) {
	accessToken := strings.TrimSpace(viper.GetString("asana.access_token"))
	if accessToken == "" {
		return nil, fmt.Errorf("missing asana.access_token (set via config or JARVIS_ASANA_ACCESS_TOKEN)")
	}
	projectGID := strings.TrimSpace(viper.GetString("asana.project_gid"))
	if projectGID == "" {
		return nil, fmt.Errorf("missing asana.project_gid (set via config or JARVIS_ASANA_PROJECT_GID)")
	}
	workspaceGID := strings.TrimSpace(viper.GetString("asana.workspace_gid"))

	apiKey := strings.TrimSpace(viper.GetString("llm.api_key"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing llm.api_key (set via config or JARVIS_LLM_API_KEY)")
	}

	if err := fsstore.EnsureDir(statepaths.FileStateDir(), 0o700); err != nil {
		return nil, fmt.Errorf("ensure state dir: %w", err)
	}

	backend := asana.NewClient(nil, "", accessToken)

	cache := capture.NewIDCache(backend, statepaths.AsanaIDsPath(), projectGID, workspaceGID, logger)
	if err := cache.LoadOrDiscover(ctx); err != nil {
		return nil, err
	}

	ledger, err := capture.NewLedger(statepaths.LedgerPath(), statepaths.LockRoot())
	if err != nil {
		return nil, err
	}

	audit, err := capture.NewAuditLog(statepaths.CapturesLogPath(), logger)
	if err != nil {
		return nil, err
	}

	llmClient := openai.New(viper.GetString("llm.endpoint"), apiKey)
	if d := viper.GetDuration("llm.request_timeout"); d > 0 {
		llmClient.HTTP.Timeout = d
	}

	return &botcmd.App{
		Mapper:      capture.NewMapper(backend, cache, ledger, projectGID, logger, audit),
		Query:       capture.NewQuery(backend, cache, logger),
		Cache:       cache,
		Classifier:  classify.New(llmClient, viper.GetString("llm.model"), logger),
		Transcriber: llmClient,
		ChatPath:    statepaths.ChatPath(),
		Close: func() {
			if err := audit.Close(); err != nil {
				logger.Warn("capture_audit_close_error", "error", err.Error())
			}
		},
	}, nil
}
