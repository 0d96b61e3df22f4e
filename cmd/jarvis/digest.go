package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ivansanturion-collab/jarvis/cmd/jarvis/botcmd"
	"github.com/ivansanturion-collab/jarvis/internal/logutil"
)

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the weekly summary of completed and overdue tasks",
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

			digest, err := app.Query.WeeklyDigest(cmd.Context(), time.Now().UTC())
			if err != nil {
				return fmt.Errorf("build digest: %w", err)
			}
			text := botcmd.FormatDigest(digest)

			send, _ := cmd.Flags().GetBool("send")
			if !send {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing Telegram bot token (set JARVIS_TELEGRAM_BOT_TOKEN)")
			}
			chatID, ok, err := botcmd.LoadChatID(app.ChatPath)
			if err != nil {
				return fmt.Errorf("load chat destination: %w", err)
			}
			if !ok {
				return fmt.Errorf("no known chat to send to; message the bot once first")
			}
			if err := botcmd.SendMessage(cmd.Context(), token, chatID, text); err != nil {
				return fmt.Errorf("send digest: %w", err)
			}
			logger.Info("digest_sent", "chat_id", chatID)
			return nil
		},
	}

	cmd.Flags().Bool("send", false, "Send the digest to the last known Telegram chat instead of printing it.")
	return cmd
}
