package assistant

import "github.com/polytechbd/examroutine/internal/model"

// State tags what the previous answer was about, so an elliptical follow-up
// ("download these", "more details") can act on the prior result set.
type State string

const (
	StateIdle           State = "idle"
	StateShowingNext    State = "showing_next_exam"
	StateShowingSubject State = "showing_subject_exams"
	StateShowingDate    State = "showing_date_exams"
	StateShowingDeptSem State = "showing_dept_sem_exams"
)

// Context is the short-lived memory of one chat session. It is created empty
// at session start, mutated after every processed utterance, and discarded
// when the session ends. One utterance at a time per Context: the embedder
// serializes input, the assistant never locks.
type Context struct {
	LastDepartment string
	LastSemester   string
	LastSubject    string
	LastResults    []model.ExamRecord
	State          State
	FirstDone      bool // true once the first greeting has been answered
}

// NewContext returns a fresh idle session context.
func NewContext() *Context {
	return &Context{State: StateIdle}
}

// remember records which dimensions the current utterance supplied explicitly.
// Dimensions absent from the utterance are never cleared by omission.
func (c *Context) remember(cond model.Conditions) {
	if cond.Department != "" {
		c.LastDepartment = cond.Department
	}
	if cond.Semester != "" {
		c.LastSemester = cond.Semester
	}
	if cond.Subject != "" {
		c.LastSubject = cond.Subject
	}
}

// showing stores a non-trivial result set and the state tag of the handler
// that produced it. A fresh primary intent overwrites, never resets.
func (c *Context) showing(state State, results []model.ExamRecord) {
	c.State = state
	c.LastResults = results
}
