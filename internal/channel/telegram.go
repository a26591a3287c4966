// Package channel provides alternative front-ends for the exam assistant.
// The Telegram bot answers the same questions the web chat does, one
// conversation context per chat.
package channel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/polytechbd/examroutine/internal/assistant"
	"github.com/polytechbd/examroutine/internal/model"
)

// TelegramBot is the slice of the bot API the channel needs. Tests swap in
// a fake implementation.
type TelegramBot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *tgBotWrapper) StopReceivingUpdates() {
	w.bot.StopReceivingUpdates()
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

// BotFactory creates TelegramBot instances, so tests can inject a fake bot.
type BotFactory func(token string, client *http.Client) (TelegramBot, error)

var defaultBotFactory BotFactory = func(token string, client *http.Client) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: bot}, nil
}

// ExamSource supplies the current exam snapshot for each utterance.
type ExamSource interface {
	ListExams() ([]model.ExamRecord, error)
}

type chatState struct {
	mu   sync.Mutex
	conv *assistant.Context
}

// TelegramChannel runs the assistant over Telegram long polling.
type TelegramChannel struct {
	token      string
	bot        TelegramBot
	botFactory BotFactory
	assistant  *assistant.Assistant
	source     ExamSource
	cancel     context.CancelFunc

	mu    sync.Mutex
	chats map[int64]*chatState
}

// NewTelegramChannel creates a Telegram channel with the real bot API.
func NewTelegramChannel(token string, a *assistant.Assistant, source ExamSource) (*TelegramChannel, error) {
	return NewTelegramChannelWithFactory(token, a, source, defaultBotFactory)
}

// NewTelegramChannelWithFactory creates a TelegramChannel with a custom bot
// factory, for testing.
func NewTelegramChannelWithFactory(token string, a *assistant.Assistant, source ExamSource, factory BotFactory) (*TelegramChannel, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	return &TelegramChannel{
		token:      token,
		botFactory: factory,
		assistant:  a,
		source:     source,
		chats:      make(map[int64]*chatState),
	}, nil
}

// Start authorizes the bot and begins consuming updates until ctx is done
// or Stop is called.
func (t *TelegramChannel) Start(ctx context.Context) error {
	bot, err := t.botFactory(t.token, http.DefaultClient)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	t.bot = bot
	slog.Info("telegram bot authorized", "username", bot.GetSelf().UserName)

	ctx, t.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update := <-updates:
				if update.Message == nil || update.Message.Text == "" {
					continue
				}
				t.handleMessage(update.Message)
			case <-ctx.Done():
				return
			}
		}
	}()

	slog.Info("telegram polling started")
	return nil
}

// Stop stops polling for updates.
func (t *TelegramChannel) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	slog.Info("telegram channel stopped")
}

func (t *TelegramChannel) chat(id int64) *chatState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.chats[id]
	if !ok {
		st = &chatState{conv: assistant.NewContext()}
		t.chats[id] = st
	}
	return st
}

func (t *TelegramChannel) handleMessage(msg *tgbotapi.Message) {
	st := t.chat(msg.Chat.ID)

	st.mu.Lock()
	defer st.mu.Unlock()

	var reply string
	records, err := t.source.ListExams()
	if err != nil {
		slog.Error("fetch exam snapshot", "chat_id", msg.Chat.ID, "error", err)
		reply = assistant.UnavailableReply()
	} else {
		reply = t.assistant.ProcessUtterance(msg.Text, st.conv, records, time.Now())
	}

	if err := t.send(msg.Chat.ID, reply); err != nil {
		slog.Error("send telegram reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

// send delivers a reply, splitting it when it exceeds Telegram's message
// size limit.
func (t *TelegramChannel) send(chatID int64, content string) error {
	const maxLen = 4000
	for len(content) > 0 {
		chunk := content
		if len(chunk) > maxLen {
			if idx := strings.LastIndex(chunk[:maxLen], "\n"); idx > 0 {
				chunk = chunk[:idx]
			} else {
				chunk = chunk[:maxLen]
			}
		}
		content = strings.TrimPrefix(content[len(chunk):], "\n")

		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}
