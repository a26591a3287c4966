package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/polytechbd/examroutine/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestExam(t *testing.T, s *Store, subject, department, semester, date string) string {
	t.Helper()
	id, err := s.InsertExam(model.ExamRecord{
		Subject:    subject,
		Department: department,
		Semester:   semester,
		ExamDate:   date,
		Time:       "10:00 AM",
		Room:       "101",
		ExamType:   model.ExamWritten,
	})
	if err != nil {
		t.Fatalf("insertTestExam: %v", err)
	}
	return id
}

func TestExamCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB should return zero count and empty list.
	count, err := s.ExamCount()
	if err != nil {
		t.Fatalf("ExamCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 exams, got %d", count)
	}

	list, err := s.ListExams()
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	// Insert and retrieve.
	id := insertTestExam(t, s, "Physics", "Computer", "1st", "2025-03-12")
	if id == "" {
		t.Fatal("expected a generated id")
	}
	exam, err := s.GetExam(id)
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if exam.Subject != "Physics" {
		t.Errorf("expected subject Physics, got %q", exam.Subject)
	}
	if exam.ExamType != model.ExamWritten {
		t.Errorf("expected written type, got %q", exam.ExamType)
	}

	// Not found.
	_, err = s.GetExam("missing")
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	// Update.
	exam.Room = "204"
	exam.Time = "02:00 PM"
	if err := s.UpdateExam(exam); err != nil {
		t.Fatalf("UpdateExam: %v", err)
	}
	exam, err = s.GetExam(id)
	if err != nil {
		t.Fatalf("GetExam after update: %v", err)
	}
	if exam.Room != "204" || exam.Time != "02:00 PM" {
		t.Errorf("update not applied: %+v", exam)
	}

	// Update of a missing record reports ErrNoRows.
	missing := exam
	missing.ID = "missing"
	if err := s.UpdateExam(missing); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	// Delete.
	if err := s.DeleteExam(id); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}
	if err := s.DeleteExam(id); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows on second delete, got %v", err)
	}
}

func TestListExamsOrdered(t *testing.T) {
	s := newTestStore(t)
	insertTestExam(t, s, "Later", "Computer", "1st", "2025-03-20")
	insertTestExam(t, s, "Sooner", "Computer", "1st", "2025-03-10")

	list, err := s.ListExams()
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(list) != 2 || list[0].Subject != "Sooner" {
		t.Errorf("expected date ordering, got %+v", list)
	}
}

func TestListExamsFiltered(t *testing.T) {
	s := newTestStore(t)
	insertTestExam(t, s, "Physics", "Computer", "1st", "2025-03-12")
	insertTestExam(t, s, "Mathematics", "Computer", "3rd", "2025-03-13")
	insertTestExam(t, s, "Surveying", "Civil", "3rd", "2025-03-14")

	tests := []struct {
		name       string
		department string
		semester   string
		wantCount  int
	}{
		{"no filter", "", "", 3},
		{"by department", "Computer", "", 2},
		{"by semester", "", "3rd", 2},
		{"by both", "Civil", "3rd", 1},
		{"no match", "Civil", "1st", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exams, err := s.ListExamsFiltered(tt.department, tt.semester)
			if err != nil {
				t.Fatalf("ListExamsFiltered: %v", err)
			}
			if len(exams) != tt.wantCount {
				t.Errorf("expected %d exams, got %d", tt.wantCount, len(exams))
			}
		})
	}
}

func TestListDistinct(t *testing.T) {
	s := newTestStore(t)
	insertTestExam(t, s, "Physics", "Computer", "1st", "2025-03-12")
	insertTestExam(t, s, "Physics", "Civil", "1st", "2025-03-13")
	insertTestExam(t, s, "Mathematics", "Computer", "2nd", "2025-03-14")

	depts, err := s.ListDistinctDepartments()
	if err != nil {
		t.Fatalf("ListDistinctDepartments: %v", err)
	}
	if len(depts) != 2 || depts[0] != "Civil" || depts[1] != "Computer" {
		t.Errorf("unexpected departments: %v", depts)
	}

	subjects, err := s.ListDistinctSubjects()
	if err != nil {
		t.Fatalf("ListDistinctSubjects: %v", err)
	}
	if len(subjects) != 2 {
		t.Errorf("unexpected subjects: %v", subjects)
	}

	sems, err := s.ListDistinctSemesters()
	if err != nil {
		t.Fatalf("ListDistinctSemesters: %v", err)
	}
	if len(sems) != 2 {
		t.Errorf("unexpected semesters: %v", sems)
	}
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	count, err := s.UserCount()
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id, err := s.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: "hash",
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id || u.Role != model.UserRoleAdmin {
		t.Errorf("unexpected user: %+v", u)
	}

	u, err = s.GetUserByID(id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u == nil || u.Username != "admin" {
		t.Errorf("unexpected user: %+v", u)
	}

	// Missing user is nil, not an error.
	u, err = s.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername missing: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil for missing user, got %+v", u)
	}

	// Duplicate username is rejected.
	if _, err := s.CreateUser(model.User{Username: "admin", PasswordHash: "x"}); err == nil {
		t.Error("expected duplicate username to fail")
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	uid, err := s.CreateUser(model.User{Username: "admin", PasswordHash: "hash", Role: model.UserRoleAdmin, Active: true})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	token, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != uid {
		t.Errorf("unexpected session: %+v", sess)
	}

	// Unknown token is nil, not an error.
	sess, err = s.GetAuthSession("bogus")
	if err != nil {
		t.Fatalf("GetAuthSession bogus: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session, got %+v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Error("session should be gone after delete")
	}
}

func TestReminders(t *testing.T) {
	s := newTestStore(t)
	examID := insertTestExam(t, s, "Physics", "Computer", "1st", "2025-03-12")

	now := time.Now()
	id1, err := s.InsertReminder(model.Reminder{
		ExamID: examID,
		FireAt: now.Add(-time.Hour),
		Title:  "Exam Reminder",
		Body:   "Physics exam is tomorrow! (Computer - 1st)",
	})
	if err != nil {
		t.Fatalf("InsertReminder: %v", err)
	}
	_, err = s.InsertReminder(model.Reminder{
		ExamID: examID,
		FireAt: now.Add(time.Hour),
		Title:  "Exam Starting Soon",
		Body:   "Physics exam starts in 1 hour! Room: 101",
	})
	if err != nil {
		t.Fatalf("InsertReminder: %v", err)
	}

	// Only the past reminder is due.
	due, err := s.DueReminders(now)
	if err != nil {
		t.Fatalf("DueReminders: %v", err)
	}
	if len(due) != 1 || due[0].ID != id1 {
		t.Fatalf("expected one due reminder, got %+v", due)
	}

	if err := s.MarkReminderSent(id1); err != nil {
		t.Fatalf("MarkReminderSent: %v", err)
	}
	due, err = s.DueReminders(now)
	if err != nil {
		t.Fatalf("DueReminders after send: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("sent reminder still due: %+v", due)
	}

	all, err := s.ListRemindersForExam(examID)
	if err != nil {
		t.Fatalf("ListRemindersForExam: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 reminders, got %d", len(all))
	}

	// Deleting the exam cascades to its reminders.
	if err := s.DeleteExam(examID); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}
	all, err = s.ListRemindersForExam(examID)
	if err != nil {
		t.Fatalf("ListRemindersForExam after delete: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("reminders should cascade on delete, got %d", len(all))
	}
}
