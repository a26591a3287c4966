// Package store persists exam records, users, auth sessions, and scheduled
// reminders in SQLite. The assistant never touches it directly; handlers take
// a snapshot per utterance with ListExams.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/polytechbd/examroutine/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exams (
		id TEXT PRIMARY KEY,
		department TEXT NOT NULL,
		semester TEXT NOT NULL,
		subject TEXT NOT NULL,
		exam_date TEXT NOT NULL,
		time TEXT NOT NULL,
		room TEXT NOT NULL DEFAULT '',
		exam_type TEXT NOT NULL DEFAULT 'written',
		added_by TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'viewer',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_id TEXT NOT NULL,
		fire_at DATETIME NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		sent BOOLEAN NOT NULL DEFAULT 0,
		FOREIGN KEY (exam_id) REFERENCES exams(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertExam stores an exam record. The record must already be normalized;
// a generated ID is filled in when the caller left it empty.
func (s *Store) InsertExam(r model.ExamRecord) (string, error) {
	if r.ID == "" {
		id, err := generateToken()
		if err != nil {
			return "", err
		}
		r.ID = id[:20]
	}
	_, err := s.db.Exec(
		`INSERT INTO exams (id, department, semester, subject, exam_date, time, room, exam_type, added_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Department, r.Semester, r.Subject, r.ExamDate, r.Time, r.Room, r.ExamType, r.AddedBy, time.Now(),
	)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// ListExams returns every exam record ordered by date then id. This is the
// snapshot the assistant evaluates one utterance against.
func (s *Store) ListExams() ([]model.ExamRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, department, semester, subject, exam_date, time, room, exam_type, added_by, created_at
		 FROM exams ORDER BY exam_date, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExams(rows)
}

// ListExamsFiltered returns exams matching the given filters. Empty strings
// mean no filtering on that field.
func (s *Store) ListExamsFiltered(department, semester string) ([]model.ExamRecord, error) {
	query := `SELECT id, department, semester, subject, exam_date, time, room, exam_type, added_by, created_at
	          FROM exams WHERE 1=1`
	var args []any
	if department != "" {
		query += ` AND department = ?`
		args = append(args, department)
	}
	if semester != "" {
		query += ` AND semester = ?`
		args = append(args, semester)
	}
	query += ` ORDER BY exam_date, id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExams(rows)
}

func scanExams(rows *sql.Rows) ([]model.ExamRecord, error) {
	var exams []model.ExamRecord
	for rows.Next() {
		var r model.ExamRecord
		if err := rows.Scan(&r.ID, &r.Department, &r.Semester, &r.Subject, &r.ExamDate,
			&r.Time, &r.Room, &r.ExamType, &r.AddedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, r)
	}
	return exams, rows.Err()
}

// GetExam returns an exam by ID.
func (s *Store) GetExam(id string) (model.ExamRecord, error) {
	var r model.ExamRecord
	err := s.db.QueryRow(
		`SELECT id, department, semester, subject, exam_date, time, room, exam_type, added_by, created_at
		 FROM exams WHERE id = ?`, id,
	).Scan(&r.ID, &r.Department, &r.Semester, &r.Subject, &r.ExamDate,
		&r.Time, &r.Room, &r.ExamType, &r.AddedBy, &r.CreatedAt)
	return r, err
}

// UpdateExam overwrites the mutable fields of an exam record.
func (s *Store) UpdateExam(r model.ExamRecord) error {
	res, err := s.db.Exec(
		`UPDATE exams SET department = ?, semester = ?, subject = ?, exam_date = ?,
		 time = ?, room = ?, exam_type = ? WHERE id = ?`,
		r.Department, r.Semester, r.Subject, r.ExamDate, r.Time, r.Room, r.ExamType, r.ID,
	)
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

// DeleteExam removes an exam and any reminders scheduled for it.
func (s *Store) DeleteExam(id string) error {
	if _, err := s.db.Exec(`DELETE FROM reminders WHERE exam_id = ?`, id); err != nil {
		return err
	}
	res, err := s.db.Exec(`DELETE FROM exams WHERE id = ?`, id)
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

// ExamCount returns the number of exam records.
func (s *Store) ExamCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams`).Scan(&count)
	return count, err
}

// ListDistinctDepartments returns the departments present in the data,
// ordered alphabetically.
func (s *Store) ListDistinctDepartments() ([]string, error) {
	return s.listDistinct(`SELECT DISTINCT department FROM exams ORDER BY department`)
}

// ListDistinctSemesters returns the semesters present in the data.
func (s *Store) ListDistinctSemesters() ([]string, error) {
	return s.listDistinct(`SELECT DISTINCT semester FROM exams ORDER BY semester`)
}

// ListDistinctSubjects returns the subjects present in the data.
func (s *Store) ListDistinctSubjects() ([]string, error) {
	return s.listDistinct(`SELECT DISTINCT subject FROM exams ORDER BY subject`)
}

func (s *Store) listDistinct(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
