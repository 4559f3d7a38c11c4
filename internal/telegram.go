package internal

import (
	"context"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeMessage = `👋 Welcome to TubeChat!

I can help you:
• Get summaries of YouTube videos
• Discuss video content with you

📌 How to use:
1. Send me a YouTube link
2. I'll fetch the video, transcript, and create a summary
3. You can then ask me questions about the video

Commands:
/start - Show this message
/help - Show help information`

const helpMessage = `🔍 How to use this bot:

1️⃣ Send a YouTube URL:
   - I'll download the video metadata and transcript
   - Generate a summary
   - Save everything for later discussion

2️⃣ Ask questions:
   - After sending a video, just type your question
   - I'll answer based on the video content
   - I remember our conversation context

💡 Tips:
   - If a video was already processed, I'll show the saved summary
   - I prefer transcripts in your language, falling back to English
   - You can discuss any previously sent video

Examples:
   "What is the main idea?"
   "Can you explain the part about X?"
   "What did they say about Y?"`

// TelegramBot is the Telegram transport: it long-polls for updates and
// feeds text messages into the session orchestrator.
type TelegramBot struct {
	api             *tgbotapi.BotAPI
	session         *Session
	defaultLanguage string
	logger          *slog.Logger
}

// NewTelegramBot connects to the Telegram Bot API with the given token.
func NewTelegramBot(token string, session *Session, defaultLanguage string, logger *slog.Logger) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramBot{
		api:             api,
		session:         session,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}, nil
}

// Run polls for updates until the context is cancelled. Messages from
// different users are handled concurrently; each message is processed
// to completion.
func (b *TelegramBot) Run(ctx context.Context) error {
	b.logger.Info("bot started", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			wg.Wait()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				wg.Wait()
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			wg.Add(1)
			go func(update tgbotapi.Update) {
				defer wg.Done()
				b.handleMessage(ctx, update.Message)
			}(update)
		}
	}
}

func (b *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	language := b.defaultLanguage
	if message.From.LanguageCode != "" {
		language = message.From.LanguageCode
	}

	msg := InboundMessage{
		UserID:   message.From.ID,
		Language: language,
		Text:     message.Text,
	}
	out := &telegramReplier{api: b.api, chatID: message.Chat.ID}
	if err := b.session.HandleMessage(ctx, msg, out); err != nil {
		b.logger.Error("delivering reply", "chat_id", message.Chat.ID, "error", err)
	}
}

func (b *TelegramBot) handleCommand(message *tgbotapi.Message) {
	var text string
	switch message.Command() {
	case "start":
		text = welcomeMessage
	case "help":
		text = helpMessage
	default:
		text = "Unknown command. Use /help to see what I can do."
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(message.Chat.ID, text)); err != nil {
		b.logger.Error("sending command reply", "command", message.Command(), "error", err)
	}
}

// telegramReplier sends replies into one chat. The first status update
// creates a message; later updates and the final reply edit it in
// place, so the user sees the pipeline progress on a single line.
type telegramReplier struct {
	api       *tgbotapi.BotAPI
	chatID    int64
	messageID int
}

func (r *telegramReplier) Status(_ context.Context, text string) error {
	if r.messageID == 0 {
		sent, err := r.api.Send(tgbotapi.NewMessage(r.chatID, text))
		if err != nil {
			return err
		}
		r.messageID = sent.MessageID
		return nil
	}
	_, err := r.api.Send(tgbotapi.NewEditMessageText(r.chatID, r.messageID, text))
	return err
}

func (r *telegramReplier) Reply(_ context.Context, text string) error {
	if r.messageID != 0 {
		messageID := r.messageID
		r.messageID = 0
		_, err := r.api.Send(tgbotapi.NewEditMessageText(r.chatID, messageID, text))
		return err
	}
	_, err := r.api.Send(tgbotapi.NewMessage(r.chatID, text))
	return err
}
