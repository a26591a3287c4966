// Package reminder computes when exam reminders should fire and runs the
// delivery loop. Computation is pure; delivery goes through a pluggable
// Notifier so the package never owns a notification channel itself.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/polytechbd/examroutine/internal/model"
)

// Compute returns the reminders for one exam relative to now: one a day
// before the exam instant and one an hour before. Fire times already in the
// past are omitted.
func Compute(r model.ExamRecord, now time.Time) ([]model.Reminder, error) {
	instant, err := model.ExamInstant(r)
	if err != nil {
		return nil, fmt.Errorf("compute reminders for %s: %w", r.ID, err)
	}
	if !instant.After(now) {
		return nil, nil
	}

	var out []model.Reminder
	if dayBefore := instant.Add(-24 * time.Hour); dayBefore.After(now) {
		out = append(out, model.Reminder{
			ExamID: r.ID,
			FireAt: dayBefore,
			Title:  "Exam Reminder",
			Body:   fmt.Sprintf("%s exam is tomorrow! (%s - %s)", r.Subject, r.Department, r.Semester),
		})
	}
	if hourBefore := instant.Add(-time.Hour); hourBefore.After(now) {
		out = append(out, model.Reminder{
			ExamID: r.ID,
			FireAt: hourBefore,
			Title:  "Exam Starting Soon",
			Body:   fmt.Sprintf("%s exam starts in 1 hour! Room: %s", r.Subject, r.Room),
		})
	}
	return out, nil
}

// Notifier delivers a due reminder to wherever the embedder wants it.
type Notifier interface {
	Notify(r model.Reminder) error
}

// LogNotifier writes reminders to the structured log. Used when no real
// delivery channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(r model.Reminder) error {
	slog.Info("reminder due", "exam_id", r.ExamID, "title", r.Title, "body", r.Body)
	return nil
}

// ReminderStore is the subset of the store the delivery loop needs.
type ReminderStore interface {
	DueReminders(now time.Time) ([]model.Reminder, error)
	MarkReminderSent(id int64) error
}

// Service polls for due reminders on a cron schedule and hands them to the
// Notifier. Failed deliveries stay unsent and are retried on the next tick.
type Service struct {
	store    ReminderStore
	notifier Notifier
	cron     *cron.Cron
}

// NewService creates a delivery service. A nil notifier falls back to
// LogNotifier.
func NewService(st ReminderStore, n Notifier) *Service {
	if n == nil {
		n = LogNotifier{}
	}
	return &Service{store: st, notifier: n}
}

// Start begins the polling loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("@every 1m", s.tick); err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}
	s.cron.Start()
	slog.Info("reminder service started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the polling loop and waits for a running tick to finish.
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		slog.Info("reminder service stopped")
	}
}

// tick delivers every reminder that has come due.
func (s *Service) tick() {
	due, err := s.store.DueReminders(time.Now())
	if err != nil {
		slog.Error("query due reminders", "error", err)
		return
	}
	for _, r := range due {
		if err := s.notifier.Notify(r); err != nil {
			slog.Error("deliver reminder", "id", r.ID, "exam_id", r.ExamID, "error", err)
			continue
		}
		if err := s.store.MarkReminderSent(r.ID); err != nil {
			slog.Error("mark reminder sent", "id", r.ID, "error", err)
		}
	}
}
