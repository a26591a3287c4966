package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExamType distinguishes written and practical exams.
type ExamType string

const (
	ExamWritten   ExamType = "written"
	ExamPractical ExamType = "practical"
)

// DateFilter narrows a record set along a single mutually exclusive axis:
// either by time relative to the reference date, or by exam type.
type DateFilter string

const (
	FilterNone      DateFilter = ""
	FilterToday     DateFilter = "today"
	FilterTomorrow  DateFilter = "tomorrow"
	FilterUpcoming  DateFilter = "upcoming"
	FilterPast      DateFilter = "past"
	FilterPractical DateFilter = "practical"
	FilterWritten   DateFilter = "written"
)

// ExamRecord is a single entry in the exam routine. Records are immutable
// once fetched for a given query evaluation.
type ExamRecord struct {
	ID         string    `json:"id"`
	Department string    `json:"department"`
	Semester   string    `json:"semester"`
	Subject    string    `json:"subject"`
	ExamDate   string    `json:"examDate"` // YYYY-MM-DD, lexicographic == chronological
	Time       string    `json:"time"`     // display string, e.g. "10:00 AM"
	Room       string    `json:"room,omitempty"`
	ExamType   ExamType  `json:"examType"`
	AddedBy    string    `json:"addedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Normalize validates a record at the ingestion boundary and fills defaults.
// It returns false for records missing a required field; callers skip those
// instead of aborting the whole query.
func Normalize(r ExamRecord) (ExamRecord, bool) {
	r.Department = strings.TrimSpace(r.Department)
	r.Semester = strings.TrimSpace(r.Semester)
	r.Subject = strings.TrimSpace(r.Subject)
	r.ExamDate = strings.TrimSpace(r.ExamDate)
	if r.Subject == "" || r.Department == "" || r.Semester == "" {
		return r, false
	}
	if _, err := time.Parse("2006-01-02", r.ExamDate); err != nil {
		return r, false
	}
	if r.ExamType != ExamPractical {
		r.ExamType = ExamWritten
	}
	return r, true
}

// Conditions holds the filter dimensions extracted from one utterance.
// A zero value on any field means "do not filter on this dimension".
type Conditions struct {
	Department string
	Semester   string
	Subject    string
	Room       string
	DateFilter DateFilter
}

// HasAny reports whether at least one dimension is set.
func (c Conditions) HasAny() bool {
	return c.Department != "" || c.Semester != "" || c.Subject != "" ||
		c.Room != "" || c.DateFilter != FilterNone
}

// DateOnly reports whether a date filter is the only dimension present.
// Conversation context carries forward exactly in this case.
func (c Conditions) DateOnly() bool {
	return c.DateFilter != FilterNone &&
		c.Department == "" && c.Semester == "" && c.Subject == "" && c.Room == ""
}

// To24Hour converts a 12-hour display time like "10:00 AM" to "HH:MM".
// Times already in 24-hour form pass through unchanged. Unparseable input
// returns "00:00" so sorting stays total.
func To24Hour(display string) string {
	s := strings.ToUpper(strings.TrimSpace(display))
	meridiem := ""
	switch {
	case strings.HasSuffix(s, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(s, "PM"):
		meridiem = "PM"
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "00:00"
	}
	hour, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	minute, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "00:00"
	}
	switch meridiem {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ExamInstant combines ExamDate and Time into the single absolute instant
// used for reminder arithmetic.
func ExamInstant(r ExamRecord) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", r.ExamDate+" "+To24Hour(r.Time), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse exam instant: %w", err)
	}
	return t, nil
}

// DayDifference returns the whole-day distance between two YYYY-MM-DD dates.
// The result is always non-negative; direction is decided by the caller with
// an explicit date comparison.
func DayDifference(date1, date2 string) int {
	d1, err1 := time.Parse("2006-01-02", date1)
	d2, err2 := time.Parse("2006-01-02", date2)
	if err1 != nil || err2 != nil {
		return 0
	}
	diff := d2.Sub(d1)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}

// FormatDate renders a YYYY-MM-DD date in the long display form used in
// responses, e.g. "Monday, March 10, 2025". Invalid input comes back as-is.
func FormatDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}

// DateOf truncates an instant to its YYYY-MM-DD form in local time.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// UserRole represents a user's access level.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleViewer UserRole = "viewer"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// Reminder is a computed notification that the delivery loop fires at FireAt.
// The assistant only computes these tuples; delivery belongs to a Notifier.
type Reminder struct {
	ID     int64     `json:"id"`
	ExamID string    `json:"examId"`
	FireAt time.Time `json:"fireAt"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Sent   bool      `json:"sent"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	SecureCookies bool
	Lang          string
}
