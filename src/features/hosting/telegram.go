package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anven/resona/src/features/bridge"
	"github.com/anven/resona/src/features/config"
	"github.com/anven/resona/src/features/library"
	"github.com/anven/resona/src/features/session"
)

// TelegramBot is a small remote control over Telegram: transport commands,
// now-playing info and like toggles for allowed users.
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	config   *config.Manager
	session  *session.Service
	bridge   *bridge.Service
	library  *library.Service
	updates  tgbotapi.UpdatesChannel
	stopChan chan struct{}
}

// NewTelegramBot creates a new Telegram bot instance.
func NewTelegramBot(cfg *config.Manager, sessionService *session.Service, bridgeService *bridge.Service, libraryService *library.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}
	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	return &TelegramBot{
		bot:      bot,
		config:   cfg,
		session:  sessionService,
		bridge:   bridgeService,
		library:  libraryService,
		updates:  bot.GetUpdatesChan(updateConfig),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins listening for Telegram updates.
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")

	for {
		select {
		case update := <-t.updates:
			if update.Message != nil {
				go t.handleMessage(update)
			}
		case <-t.stopChan:
			slog.Info("Stopping Telegram bot listener")
			return
		}
	}
}

// Stop gracefully stops the bot.
func (t *TelegramBot) Stop() {
	close(t.stopChan)
}

// handleMessage processes incoming messages.
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID

	allowedUsers := t.config.Get().Telegram.AllowedUsers
	if len(allowedUsers) == 0 {
		slog.Warn("No allowed users configured", "chat_id", chatID)
		t.sendMessage(chatID, "❌ Access denied: No users configured. Please add users to the config.")
		return
	}

	username := message.From.UserName
	if username == "" {
		username = message.From.FirstName
		if message.From.LastName != "" {
			username += " " + message.From.LastName
		}
	}
	if !slices.Contains(allowedUsers, username) {
		slog.Warn("Unauthorized user", "username", username, "chat_id", chatID)
		t.sendMessage(chatID, "Unknown user, please add your user to the config")
		return
	}

	if !message.IsCommand() {
		t.sendMessage(chatID, "🤖 Send /help to see available commands")
		return
	}
	t.handleCommand(message.Command(), chatID)
}

// handleCommand processes bot commands.
func (t *TelegramBot) handleCommand(command string, chatID int64) {
	slog.Debug("Processing command", "command", command, "chat_id", chatID)

	switch command {
	case "help", "start":
		t.sendMessage(chatID, "🎵 *Resona remote*\n"+
			"/play resume playback\n"+
			"/pause pause playback\n"+
			"/next next queue track\n"+
			"/prev previous queue track\n"+
			"/now show the current track\n"+
			"/like toggle like on the current track")
	case "play":
		t.session.SetIsPlaying(true)
		t.sendMessage(chatID, "▶️ Playing")
	case "pause":
		t.session.SetIsPlaying(false)
		t.sendMessage(chatID, "⏸️ Paused")
	case "next":
		if t.session.PlayNext() {
			t.sendMessage(chatID, "⏭ Skipped")
		} else {
			t.sendMessage(chatID, "🔇 End of queue")
		}
	case "prev":
		if t.session.PlayPrevious() {
			t.sendMessage(chatID, "⏮ Went back")
		} else {
			t.sendMessage(chatID, "🤷 Nothing before this track")
		}
	case "now":
		t.sendMessage(chatID, t.nowPlaying())
	case "like":
		t.handleLike(chatID)
	default:
		t.sendMessage(chatID, "❌ Unknown command. Send /help to see available commands.")
	}
}

func (t *TelegramBot) nowPlaying() string {
	snap := t.session.Snapshot()
	if snap.CurrentTrack == nil {
		return "🔇 Nothing playing"
	}
	state := "⏸"
	if snap.IsPlaying {
		state = "▶️"
	}
	progress := t.bridge.Progress()
	return fmt.Sprintf("%s %s\n%s / %s",
		state, snap.CurrentTrack.Pretty(),
		formatSeconds(int(progress.Position.Seconds())),
		formatSeconds(int(progress.Duration.Seconds())))
}

func (t *TelegramBot) handleLike(chatID int64) {
	snap := t.session.Snapshot()
	if snap.CurrentTrack == nil {
		t.sendMessage(chatID, "🔇 Nothing playing")
		return
	}
	userID := t.config.Get().DataService.UserID
	result := t.library.ToggleLike(context.Background(), userID, snap.CurrentTrack.ID)
	if result == library.Rejected {
		t.sendMessage(chatID, "❌ Could not reach the data service")
		return
	}
	if t.library.IsLiked(snap.CurrentTrack.ID) {
		t.sendMessage(chatID, "❤️ Liked")
	} else {
		t.sendMessage(chatID, "💔 Unliked")
	}
}

func formatSeconds(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// sendMessage sends a message to the specified chat.
func (t *TelegramBot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
	}
}
