package store

import (
	"database/sql"
	"time"

	"github.com/polytechbd/examroutine/internal/model"
)

// InsertReminder persists a scheduled reminder.
func (s *Store) InsertReminder(r model.Reminder) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO reminders (exam_id, fire_at, title, body, sent) VALUES (?, ?, ?, ?, 0)`,
		r.ExamID, r.FireAt, r.Title, r.Body,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DueReminders returns unsent reminders whose fire time has passed.
func (s *Store) DueReminders(now time.Time) ([]model.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_id, fire_at, title, body, sent FROM reminders
		 WHERE sent = 0 AND fire_at <= ? ORDER BY fire_at`, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reminder
	for rows.Next() {
		var r model.Reminder
		if err := rows.Scan(&r.ID, &r.ExamID, &r.FireAt, &r.Title, &r.Body, &r.Sent); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkReminderSent flags a reminder as delivered.
func (s *Store) MarkReminderSent(id int64) error {
	res, err := s.db.Exec(`UPDATE reminders SET sent = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRemindersForExam returns every reminder scheduled for one exam.
func (s *Store) ListRemindersForExam(examID string) ([]model.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_id, fire_at, title, body, sent FROM reminders
		 WHERE exam_id = ? ORDER BY fire_at`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reminder
	for rows.Next() {
		var r model.Reminder
		if err := rows.Scan(&r.ID, &r.ExamID, &r.FireAt, &r.Title, &r.Body, &r.Sent); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
