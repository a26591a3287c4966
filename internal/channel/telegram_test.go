package channel

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/polytechbd/examroutine/internal/assistant"
	"github.com/polytechbd/examroutine/internal/model"
)

type fakeBot struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	done    chan struct{}
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		updates: make(chan tgbotapi.Update, 8),
		done:    make(chan struct{}, 8),
	}
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if ok {
		b.mu.Lock()
		b.sent = append(b.sent, msg)
		b.mu.Unlock()
		b.done <- struct{}{}
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "examroutine_test_bot"}
}

func (b *fakeBot) sentMessages() []tgbotapi.MessageConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]tgbotapi.MessageConfig, len(b.sent))
	copy(out, b.sent)
	return out
}

func (b *fakeBot) waitForReply(t *testing.T) {
	t.Helper()
	select {
	case <-b.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a reply")
	}
}

type fakeSource struct {
	records []model.ExamRecord
}

func (s *fakeSource) ListExams() ([]model.ExamRecord, error) {
	return s.records, nil
}

func update(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID},
			From: &tgbotapi.User{ID: chatID},
		},
	}
}

func newTestChannel(t *testing.T, source ExamSource) (*TelegramChannel, *fakeBot) {
	t.Helper()
	bot := newFakeBot()
	factory := func(string, *http.Client) (TelegramBot, error) { return bot, nil }

	ch, err := NewTelegramChannelWithFactory("test-token", assistant.New(), source, factory)
	if err != nil {
		t.Fatalf("NewTelegramChannelWithFactory: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := ch.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(ch.Stop)
	return ch, bot
}

func TestTelegramRequiresToken(t *testing.T) {
	_, err := NewTelegramChannelWithFactory("", assistant.New(), &fakeSource{}, nil)
	if err == nil {
		t.Fatal("expected an error for an empty token")
	}
}

func TestTelegramAnswersQueries(t *testing.T) {
	source := &fakeSource{records: []model.ExamRecord{
		{ID: "e1", Subject: "Physics", Department: "Computer", Semester: "1st",
			ExamDate: "2099-01-01", Time: "10:00 AM", Room: "101"},
	}}
	_, bot := newTestChannel(t, source)

	bot.updates <- update(42, "when is the physics exam?")
	bot.waitForReply(t)

	sent := bot.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(sent))
	}
	if sent[0].ChatID != 42 {
		t.Errorf("reply sent to chat %d, want 42", sent[0].ChatID)
	}
	if !strings.Contains(sent[0].Text, "Physics") {
		t.Errorf("unexpected reply:\n%s", sent[0].Text)
	}
}

func TestTelegramKeepsContextPerChat(t *testing.T) {
	source := &fakeSource{records: []model.ExamRecord{
		{ID: "e1", Subject: "Physics", Department: "Computer", Semester: "1st",
			ExamDate: "2099-01-01", Time: "10:00 AM", Room: "101"},
	}}
	_, bot := newTestChannel(t, source)

	bot.updates <- update(1, "computer department exams")
	bot.waitForReply(t)
	bot.updates <- update(1, "download these")
	bot.waitForReply(t)

	// A different chat has no history to follow up on.
	bot.updates <- update(2, "more details")
	bot.waitForReply(t)

	sent := bot.sentMessages()
	if len(sent) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(sent))
	}
	if !strings.Contains(sent[1].Text, "1 exam") {
		t.Errorf("follow-up lost context:\n%s", sent[1].Text)
	}
	if !strings.Contains(sent[2].Text, "haven't looked at any exams yet") {
		t.Errorf("chat contexts bled together:\n%s", sent[2].Text)
	}
}

func TestTelegramIgnoresNonTextUpdates(t *testing.T) {
	_, bot := newTestChannel(t, &fakeSource{})

	bot.updates <- tgbotapi.Update{}
	bot.updates <- update(7, "hello")
	bot.waitForReply(t)

	sent := bot.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected only the greeting reply, got %d", len(sent))
	}
}

func TestTelegramSplitsLongReplies(t *testing.T) {
	ch, bot := newTestChannel(t, &fakeSource{})

	long := strings.Repeat("line of routine text\n", 400)
	if err := ch.send(9, long); err != nil {
		t.Fatalf("send: %v", err)
	}
	sent := bot.sentMessages()
	if len(sent) < 2 {
		t.Fatalf("expected the reply to be split, got %d messages", len(sent))
	}
	for i, m := range sent {
		if len(m.Text) > 4000 {
			t.Errorf("chunk %d exceeds the size limit: %d bytes", i, len(m.Text))
		}
	}
}
