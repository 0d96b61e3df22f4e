package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ivansanturion-collab/jarvis/internal/logutil"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-discover Asana section and custom field GIDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			app, err := buildApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Cache.Refresh(cmd.Context()); err != nil {
				return err
			}
			logger.Info("asana_ids_refreshed")
			return nil
		},
	}
}
