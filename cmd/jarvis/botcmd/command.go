package botcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivansanturion-collab/jarvis/capture"
	"github.com/ivansanturion-collab/jarvis/internal/configutil"
	"github.com/ivansanturion-collab/jarvis/internal/logutil"
)

const welcomeMessage = "🤖 Jarvis activo.\n\n" +
	"Mandame texto o notas de voz y los cargo automáticamente como tareas en Asana.\n\n" +
	"Comandos:\n" +
	"/start — Este mensaje\n" +
	"/hoy — Tareas de la sección Hoy\n" +
	"/semana — Tareas de la sección Semana\n" +
	"/done — Completar una tarea\n" +
	"/resumen — Resumen semanal\n" +
	"/refresh — Recargar configuración de Asana"

// New builds the serve command: the long-poll loop that captures messages.
func New(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram capture bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(configutil.FlagOrViperString(cmd, "telegram-bot-token", "telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or JARVIS_TELEGRAM_BOT_TOKEN)")
			}
			pollTimeout := configutil.FlagOrViperDuration(cmd, "telegram-poll-timeout", "telegram.poll_timeout")

			allowed := make(map[int64]bool)
			for _, s := range configutil.FlagOrViperStringArray(cmd, "telegram-allowed-chat-id", "telegram.allowed_chat_ids") {
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				id, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid telegram.allowed_chat_ids entry %q: %w", s, err)
				}
				allowed[id] = true
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			app, err := deps.BuildApp(ctx, logger)
			if err != nil {
				return err
			}
			if app.Close != nil {
				defer app.Close()
			}

			api := newTelegramAPI(&http.Client{Timeout: telegramClientTimeout(pollTimeout)}, "", token)
			me, err := api.getMe(ctx)
			if err != nil {
				return fmt.Errorf("telegram getMe: %w", err)
			}
			logger.Info("telegram_connected", "username", me.Username, "bot_id", me.ID)

			b := &bot{
				api:     api,
				app:     app,
				logger:  logger,
				allowed: allowed,
				flows:   make(map[int64]*doneFlow),
			}

			if configutil.FlagOrViperBool(cmd, "digest-enabled", "digest.enabled") {
				schedule := &digestSchedule{
					weekday: time.Weekday(configutil.FlagOrViperInt(cmd, "digest-weekday", "digest.weekday")),
					hour:    configutil.FlagOrViperInt(cmd, "digest-hour", "digest.hour"),
				}
				go runDigestScheduler(ctx, schedule, b.sendScheduledDigest, logger)
				logger.Info("digest_scheduler_started",
					"weekday", schedule.weekday.String(), "hour", schedule.hour)
			}

			logger.Info("jarvis_listening")
			var offset int64
			for {
				updates, nextOffset, err := api.getUpdates(ctx, offset, pollTimeout)
				if err != nil {
					if errors.Is(err, context.Canceled) || ctx.Err() != nil {
						logger.Info("telegram_stop", "reason", "context_canceled")
						return nil
					}
					if isTelegramPollTimeoutError(err) {
						logger.Debug("telegram_get_updates_timeout")
					} else {
						logger.Warn("telegram_get_updates_error", "error", err.Error())
					}
					time.Sleep(1 * time.Second)
					continue
				}
				offset = nextOffset

				for _, update := range updates {
					b.handleUpdate(ctx, update)
				}
			}
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().Duration("telegram-poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().StringArray("telegram-allowed-chat-id", nil, "Chat ID allowed to use the bot (repeatable; empty allows all).")
	cmd.Flags().Bool("digest-enabled", false, "Send the weekly digest on a schedule.")
	cmd.Flags().Int("digest-weekday", int(time.Friday), "Weekday for the scheduled digest (0=Sunday).")
	cmd.Flags().Int("digest-hour", 17, "Hour of day (0-23) for the scheduled digest.")
	return cmd
}

type bot struct {
	api     *telegramAPI
	app     *App
	logger  *slog.Logger
	allowed map[int64]bool
	flows   map[int64]*doneFlow
}

func (b *bot) handleUpdate(ctx context.Context, update telegramUpdate) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	if len(b.allowed) > 0 && !b.allowed[chatID] {
		b.logger.Warn("telegram_chat_rejected", "chat_id", chatID)
		return
	}
	if err := rememberChatID(b.app.ChatPath, chatID); err != nil {
		b.logger.Warn("chat_destination_write_error", "chat_id", chatID, "error", err.Error())
	}

	switch {
	case msg.Voice != nil:
		b.handleAudioMessage(ctx, msg, msg.Voice.FileID, "audio.ogg", "telegram_voz", "🎤")
	case msg.Audio != nil:
		filename := strings.TrimSpace(msg.Audio.FileName)
		if filename == "" {
			filename = "audio.ogg"
		}
		b.handleAudioMessage(ctx, msg, msg.Audio.FileID, filename, "telegram_audio", "🎵")
	case strings.HasPrefix(strings.TrimSpace(msg.Text), "/"):
		b.handleCommand(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		b.handleText(ctx, msg)
	}
}

func (b *bot) handleCommand(ctx context.Context, msg *telegramMessage) {
	chatID := msg.Chat.ID
	command, arg := splitCommand(msg.Text)
	b.logger.Info("telegram_command", "chat_id", chatID, "command", command)

	switch command {
	case "start":
		b.reply(ctx, msg, welcomeMessage)
	case "refresh":
		if err := b.app.Cache.Refresh(ctx); err != nil {
			b.reply(ctx, msg, "❌ Error recargando: "+shortError(err))
			return
		}
		b.reply(ctx, msg, "🔄 IDs de Asana recargados correctamente.")
	case "hoy":
		b.listSection(ctx, msg, "Hoy", "📋 Tareas para hoy",
			"🎉 No tenés tareas pendientes para hoy")
	case "semana":
		b.listSection(ctx, msg, "Semana", "📋 Tareas para esta semana",
			"🎉 No tenés tareas pendientes para esta semana")
	case "done":
		b.startDone(ctx, msg, arg)
	case "cancel":
		if flow := b.flows[chatID]; flow != nil && flow.active() {
			flow.reset()
			b.reply(ctx, msg, "❌ Cancelado")
		}
	case "resumen":
		digest, err := b.app.Query.WeeklyDigest(ctx, time.Now().UTC())
		if err != nil {
			b.reply(ctx, msg, "❌ Error armando el resumen: "+shortError(err))
			return
		}
		b.reply(ctx, msg, FormatDigest(digest))
	}
}

func (b *bot) listSection(ctx context.Context, msg *telegramMessage, section, title, emptyReply string) {
	tasks, err := b.app.Query.ListOpen(ctx, section)
	if err != nil {
		b.logger.Error("list_section_error", "section", section, "error", err.Error())
		b.reply(ctx, msg, "❌ Error consultando tareas: "+shortError(err))
		return
	}
	if len(tasks) == 0 {
		b.reply(ctx, msg, emptyReply)
		return
	}
	b.reply(ctx, msg, formatOpenTasks(title, tasks))
}

func (b *bot) startDone(ctx context.Context, msg *telegramMessage, query string) {
	flow := b.flow(msg.Chat.ID)
	tasks, err := b.pendingTasks(ctx)
	if err != nil {
		b.reply(ctx, msg, "❌ Error consultando tareas: "+shortError(err))
		return
	}
	b.reply(ctx, msg, flow.begin(tasks, query))
}

func (b *bot) handleText(ctx context.Context, msg *telegramMessage) {
	chatID := msg.Chat.ID
	if flow := b.flows[chatID]; flow != nil && flow.active() {
		action, task, reply := flow.handle(msg.Text)
		switch action {
		case actionComplete:
			if err := b.app.Query.Complete(ctx, task.GID); err != nil {
				b.logger.Error("complete_task_error", "gid", task.GID, "error", err.Error())
				b.reply(ctx, msg, "❌ Error completando la tarea: "+shortError(err))
				return
			}
			b.reply(ctx, msg, "✅ Completada: "+task.Name)
		default:
			b.reply(ctx, msg, reply)
		}
		return
	}

	text := msg.Text
	b.logger.Info("telegram_text_received", "chat_id", chatID, "chars", len(text))

	cls := b.app.Classifier.Classify(ctx, text)
	task, err := b.app.Mapper.Create(ctx, text, cls, strconv.FormatInt(msg.MessageID, 10), "telegram")
	if err != nil {
		b.logger.Error("capture_error", "chat_id", chatID, "error", err.Error())
		b.reply(ctx, msg, "❌ Error procesando mensaje: "+shortError(err))
		return
	}
	if task == nil {
		b.reply(ctx, msg, "⏭️ Este mensaje ya fue procesado anteriormente.")
		return
	}
	b.reply(ctx, msg, formatConfirmation(cls))
}

func (b *bot) handleAudioMessage(ctx context.Context, msg *telegramMessage, fileID, filename, source, emoji string) {
	chatID := msg.Chat.ID
	b.logger.Info("telegram_audio_received", "chat_id", chatID, "source", source)

	file, err := b.api.getFile(ctx, fileID)
	if err != nil {
		b.reply(ctx, msg, "❌ Error procesando audio: "+shortError(err))
		return
	}
	audio, err := b.api.downloadFile(ctx, file.FilePath, 0)
	if err != nil {
		b.reply(ctx, msg, "❌ Error procesando audio: "+shortError(err))
		return
	}

	placeholderID, err := b.api.sendMessage(ctx, chatID, emoji+" Transcribiendo audio...", msg.MessageID)
	if err != nil {
		b.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
	respond := func(text string) {
		if placeholderID != 0 {
			if err := b.api.editMessageText(ctx, chatID, placeholderID, text); err == nil {
				return
			}
		}
		b.reply(ctx, msg, text)
	}

	text, err := b.app.Transcriber.Transcribe(ctx, audio, filename, "es")
	if err != nil {
		b.logger.Error("transcribe_error", "chat_id", chatID, "error", err.Error())
		respond("❌ Error procesando audio: " + shortError(err))
		return
	}
	b.logger.Info("audio_transcribed", "chat_id", chatID, "chars", len(text))

	cls := b.app.Classifier.Classify(ctx, text)
	task, err := b.app.Mapper.Create(ctx, text, cls, strconv.FormatInt(msg.MessageID, 10), source)
	if err != nil {
		b.logger.Error("capture_error", "chat_id", chatID, "error", err.Error())
		respond("❌ Error procesando audio: " + shortError(err))
		return
	}
	if task == nil {
		respond("⏭️ Este audio ya fue procesado anteriormente.")
		return
	}
	respond(emoji + " Transcripción:\n\"" + text + "\"\n\n" + formatConfirmation(cls))
}

func (b *bot) sendScheduledDigest(ctx context.Context) error {
	chatID, ok, err := LoadChatID(b.app.ChatPath)
	if err != nil {
		return err
	}
	if !ok {
		b.logger.Warn("digest_no_destination")
		return nil
	}
	digest, err := b.app.Query.WeeklyDigest(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = b.api.sendMessage(ctx, chatID, FormatDigest(digest), 0)
	return err
}

func (b *bot) pendingTasks(ctx context.Context) ([]capture.OpenTask, error) {
	var tasks []capture.OpenTask
	for _, section := range []string{"Hoy", "Semana", "Backlog"} {
		open, err := b.app.Query.ListOpen(ctx, section)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, open...)
	}
	return tasks, nil
}

func (b *bot) flow(chatID int64) *doneFlow {
	flow := b.flows[chatID]
	if flow == nil {
		flow = &doneFlow{}
		b.flows[chatID] = flow
	}
	return flow
}

func (b *bot) reply(ctx context.Context, msg *telegramMessage, text string) {
	if _, err := b.api.sendMessage(ctx, msg.Chat.ID, text, msg.MessageID); err != nil {
		b.logger.Warn("telegram_send_error", "chat_id", msg.Chat.ID, "error", err.Error())
	}
}

// splitCommand parses "/done@jarvisbot armar propuesta" into ("done",
// "armar propuesta").
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	command, arg, _ := strings.Cut(text, " ")
	command = strings.TrimPrefix(command, "/")
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return strings.ToLower(command), strings.TrimSpace(arg)
}

func shortError(err error) string {
	msg := err.Error()
	if runes := []rune(msg); len(runes) > 100 {
		msg = string(runes[:100])
	}
	return msg
}
