package assistant

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/polytechbd/examroutine/internal/model"
)

// Assistant answers natural-language questions over an exam record snapshot.
// It holds no per-session state; sessions live in Context values owned by the
// embedder.
type Assistant struct {
	vocab *Vocabulary
	rng   *rand.Rand
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithVocabulary replaces the stock keyword tables.
func WithVocabulary(v *Vocabulary) Option {
	return func(a *Assistant) { a.vocab = v }
}

// WithRand injects a seeded random source so tests can pin the cosmetic
// greeting/thanks phrasing. Record selection never depends on it.
func WithRand(r *rand.Rand) Option {
	return func(a *Assistant) { a.rng = r }
}

// New creates an Assistant with the default vocabulary and a real random
// source.
func New(opts ...Option) *Assistant {
	a := &Assistant{
		vocab: DefaultVocabulary(),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessUtterance maps one utterance to a textual answer and mutates the
// session context. The record snapshot and the reference now are fixed for
// the whole evaluation. It never panics across this boundary.
func (a *Assistant) ProcessUtterance(text string, conv *Context, records []model.ExamRecord, now time.Time) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("assistant panic recovered", "panic", r)
			reply = "Sorry, I ran into a problem answering that. Please try again."
		}
	}()

	// Malformed records are skipped at the boundary, never mid-query.
	snapshot := make([]model.ExamRecord, 0, len(records))
	for _, r := range records {
		if n, ok := model.Normalize(r); ok {
			snapshot = append(snapshot, n)
		}
	}

	nowDate := model.DateOf(now)
	norm := normalize(text)
	cond := a.vocab.Extract(norm, snapshot)
	intent := classify(a.vocab, norm, cond, conv)

	slog.Debug("utterance classified",
		"intent", intent,
		"department", cond.Department,
		"semester", cond.Semester,
		"subject", cond.Subject,
		"room", cond.Room,
		"date_filter", cond.DateFilter,
		"state", conv.State,
	)

	switch intent {
	case IntentCombined:
		return a.handleCombined(cond, conv, snapshot, nowDate)
	case IntentGreeting:
		return a.handleGreeting(conv)
	case IntentThanks:
		return thanksReplies[a.rng.IntN(len(thanksReplies))]
	case IntentHelp:
		return helpReply
	case IntentNextExam:
		return a.handleNextExam(conv, snapshot, nowDate)
	case IntentDownload:
		return a.handleDownload(conv)
	case IntentWhen:
		return a.handleWhen(norm, snapshot)
	case IntentDeptSem:
		return "Please specify which department (e.g. Computer, Civil, Electrical) " +
			"or semester (1st through 8th) you're interested in."
	case IntentRoom:
		return "Please specify which room you're looking for. " +
			"Example: 'Exams in Room 101' or 'What exams are in Lab 301?'"
	case IntentOverview:
		return a.handleOverview(snapshot, nowDate)
	case IntentFollowUp:
		return a.handleFollowUp(norm, conv, nowDate)
	default:
		return a.handleUnknown(norm, snapshot)
	}
}

// handleCombined answers any utterance with at least one extractable
// dimension. A date-only utterance inherits the previous department and
// semester; anything richer stands on its own.
func (a *Assistant) handleCombined(cond model.Conditions, conv *Context, records []model.ExamRecord, nowDate string) string {
	effective := cond
	if cond.DateOnly() {
		effective.Department = conv.LastDepartment
		effective.Semester = conv.LastSemester
	}

	// "next exam" style phrasings extract an upcoming filter and nothing
	// else with no prior context; they get the dedicated next-exam answer.
	if cond.DateOnly() && cond.DateFilter == model.FilterUpcoming &&
		effective.Department == "" && effective.Semester == "" {
		return a.handleNextExam(conv, records, nowDate)
	}

	results := Filter(records, effective, nowDate)
	SortChronological(results)

	conv.remember(cond)
	if len(results) == 0 {
		return renderNoResults(effective)
	}
	conv.showing(stateFor(cond), results)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s%s:\n\n", len(results), plural(len(results), "exam"), describeConditions(effective))
	renderList(&b, results, nowDate, 8)
	return strings.TrimRight(b.String(), "\n")
}

// stateFor tags the result set by the most specific dimension the utterance
// supplied.
func stateFor(cond model.Conditions) State {
	switch {
	case cond.Subject != "":
		return StateShowingSubject
	case cond.Department != "" || cond.Semester != "":
		return StateShowingDeptSem
	default:
		return StateShowingDate
	}
}

func describeConditions(cond model.Conditions) string {
	var parts []string
	if cond.Subject != "" {
		parts = append(parts, "for "+cond.Subject)
	}
	if cond.Department != "" {
		parts = append(parts, "in "+cond.Department+" department")
	}
	if cond.Semester != "" {
		parts = append(parts, cond.Semester+" semester")
	}
	if cond.Room != "" {
		parts = append(parts, "in room "+cond.Room)
	}
	switch cond.DateFilter {
	case model.FilterToday:
		parts = append(parts, "today")
	case model.FilterTomorrow:
		parts = append(parts, "tomorrow")
	case model.FilterUpcoming:
		parts = append(parts, "upcoming")
	case model.FilterPast:
		parts = append(parts, "already completed")
	case model.FilterPractical:
		parts = append(parts, "practical")
	case model.FilterWritten:
		parts = append(parts, "written")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, ", ")
}

func (a *Assistant) handleGreeting(conv *Context) string {
	if !conv.FirstDone {
		conv.FirstDone = true
		return firstGreetingReply
	}
	return greetingReplies[a.rng.IntN(len(greetingReplies))]
}

// handleNextExam reports the chronologically first upcoming exam plus the
// three that follow it.
func (a *Assistant) handleNextExam(conv *Context, records []model.ExamRecord, nowDate string) string {
	upcoming, _ := splitUpcoming(records, nowDate)
	if len(upcoming) == 0 {
		return "No upcoming exams scheduled. All exams have been completed or none have been added yet."
	}
	SortChronological(upcoming)

	next := upcoming[0]
	days := model.DayDifference(nowDate, next.ExamDate)

	var b strings.Builder
	b.WriteString("Next Scheduled Exam:\n\n")
	fmt.Fprintf(&b, "Subject: %s\n", next.Subject)
	fmt.Fprintf(&b, "Department: %s - %s Semester\n", next.Department, next.Semester)
	fmt.Fprintf(&b, "Date: %s\n", model.FormatDate(next.ExamDate))
	fmt.Fprintf(&b, "Time: %s\n", next.Time)
	fmt.Fprintf(&b, "Room: %s\n", next.Room)
	fmt.Fprintf(&b, "Days until exam: %d %s\n", days, plural(days, "day"))

	shown := upcoming
	if len(shown) > 4 {
		shown = shown[:4]
	}
	if len(shown) > 1 {
		b.WriteString("\nFollowing Exams:\n")
		for i, r := range shown[1:] {
			d := model.DayDifference(nowDate, r.ExamDate)
			fmt.Fprintf(&b, "%d. %s (%s) - %s (in %d %s)\n",
				i+1, r.Subject, r.Department, model.FormatDate(r.ExamDate), d, plural(d, "day"))
		}
	}

	conv.showing(StateShowingNext, shown)
	return strings.TrimRight(b.String(), "\n")
}

func (a *Assistant) handleDownload(conv *Context) string {
	if len(conv.LastResults) > 0 {
		return fmt.Sprintf("Ready to download the %d %s from your last question. "+
			"Use the Download button on the routine page to save them as an image.",
			len(conv.LastResults), plural(len(conv.LastResults), "exam"))
	}
	return "You can download the visible routine as an image with the Download button " +
		"on the routine page. Ask me about specific exams first if you want a filtered view."
}

// handleWhen is reached only when no subject could be extracted; it falls back
// to scored suggestions before giving up.
func (a *Assistant) handleWhen(norm string, records []model.ExamRecord) string {
	if suggestions := a.vocab.SubjectSuggestions(norm, records); len(suggestions) > 0 {
		if len(suggestions) > 5 {
			suggestions = suggestions[:5]
		}
		return "I couldn't match that subject exactly. Did you mean one of these?\n\n- " +
			strings.Join(suggestions, "\n- ")
	}
	return "I couldn't identify the subject from your query. Please specify which subject " +
		"you're looking for. Examples:\n\n" +
		"- 'When is the Physics exam?'\n" +
		"- 'What is the date for Mathematics exam?'\n" +
		"- 'Programming exam date'"
}

// handleOverview reports totals and a per-department breakdown.
func (a *Assistant) handleOverview(records []model.ExamRecord, nowDate string) string {
	if len(records) == 0 {
		return "No exams have been added to the schedule yet. Please check back later or contact the admin."
	}
	upcoming, completed := splitUpcoming(records, nowDate)

	var b strings.Builder
	b.WriteString("Complete Exam Schedule Overview:\n")
	fmt.Fprintf(&b, "Total Exams: %d\n", len(records))
	fmt.Fprintf(&b, "Upcoming: %d\n", len(upcoming))
	fmt.Fprintf(&b, "Completed: %d\n\n", len(completed))

	for _, dept := range distinctSorted(records, func(r model.ExamRecord) string { return r.Department }) {
		var total, up int
		for _, r := range records {
			if r.Department != dept {
				continue
			}
			total++
			if r.ExamDate >= nowDate {
				up++
			}
		}
		fmt.Fprintf(&b, "%s Department: %d %s (%d upcoming)\n", dept, total, plural(total, "exam"), up)
	}

	b.WriteString("\nUse more specific queries to get detailed information about particular departments, semesters, or subjects.")
	return b.String()
}

// handleFollowUp interprets an elliptical utterance against the previous
// result set.
func (a *Assistant) handleFollowUp(norm string, conv *Context, nowDate string) string {
	if len(conv.LastResults) == 0 {
		return "We haven't looked at any exams yet. Ask me about a subject, department, or semester first."
	}
	n := len(conv.LastResults)

	switch {
	case containsAny(norm, a.vocab.DownloadWords):
		return fmt.Sprintf("Ready to download these %d %s. Use the Download button on the "+
			"routine page to save them as an image.", n, plural(n, "exam"))

	case containsAny(norm, a.vocab.ReminderWords):
		return fmt.Sprintf("I can remind you about these %d %s. Reminders fire one day and "+
			"one hour before each exam. Tap the bell icon on an exam, or say 'remind me about "+
			"%s'.", n, plural(n, "exam"), conv.LastResults[0].Subject)

	case containsAny(norm, a.vocab.DetailWords):
		var b strings.Builder
		fmt.Fprintf(&b, "Here are the details for %d %s:\n\n", n, plural(n, "exam"))
		renderList(&b, conv.LastResults, nowDate, 5)
		return strings.TrimRight(b.String(), "\n")

	default:
		return fmt.Sprintf("We were just looking at %d %s. You can say 'download these', "+
			"'set a reminder', or 'more details'.", n, plural(n, "exam"))
	}
}

// handleUnknown runs a last-chance suggestion search over subjects and
// departments before returning the generic clarification.
func (a *Assistant) handleUnknown(norm string, records []model.ExamRecord) string {
	suggestions := a.vocab.SubjectSuggestions(norm, records)
	for _, dept := range a.vocab.Departments {
		for _, w := range strings.Fields(norm) {
			if len(w) > 2 && strings.Contains(strings.ToLower(dept), w) {
				suggestions = append(suggestions, dept+" department")
				break
			}
		}
	}
	if len(suggestions) > 0 {
		if len(suggestions) > 5 {
			suggestions = suggestions[:5]
		}
		return "I'm not sure what you meant. Were you asking about one of these?\n\n- " +
			strings.Join(suggestions, "\n- ")
	}
	return unknownReply
}

// UnavailableReply is the answer used by embedders when the record store
// cannot be reached; the assistant itself never talks to the store.
func UnavailableReply() string {
	return unavailableReply
}
