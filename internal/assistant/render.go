package assistant

import (
	"fmt"
	"strings"

	"github.com/polytechbd/examroutine/internal/model"
)

// The renderer produces plain, markup-free text. Which records are reported
// is fully deterministic; only greeting and thanks phrasing is randomized,
// via the Assistant's injectable random source.

// status labels one record relative to the reference date.
func status(examDate, nowDate string) string {
	switch {
	case examDate < nowDate:
		return "Completed"
	case examDate == nowDate:
		return "Today"
	default:
		n := model.DayDifference(nowDate, examDate)
		return fmt.Sprintf("In %d %s", n, plural(n, "day"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// renderRecord writes the standard numbered block for one exam.
func renderRecord(b *strings.Builder, idx int, r model.ExamRecord, nowDate string) {
	fmt.Fprintf(b, "%d. %s\n", idx, r.Subject)
	fmt.Fprintf(b, "   Department: %s - %s Semester\n", r.Department, r.Semester)
	fmt.Fprintf(b, "   Date: %s\n", model.FormatDate(r.ExamDate))
	fmt.Fprintf(b, "   Time: %s | Room: %s\n", r.Time, r.Room)
	fmt.Fprintf(b, "   Type: %s\n", strings.ToUpper(string(r.ExamType)))
	fmt.Fprintf(b, "   Status: %s\n\n", status(r.ExamDate, nowDate))
}

// renderList renders up to limit records with an explicit trailer for the
// rest; long result sets are never silently dropped.
func renderList(b *strings.Builder, records []model.ExamRecord, nowDate string, limit int) {
	n := len(records)
	if n > limit {
		records = records[:limit]
	}
	for i, r := range records {
		renderRecord(b, i+1, r, nowDate)
	}
	if rest := n - limit; rest > 0 {
		fmt.Fprintf(b, "...and %d more. Ask something more specific to see the full list.\n", rest)
	}
}

// renderNoResults names every condition that was searched, so an empty result
// is explained rather than returned as a blank answer.
func renderNoResults(cond model.Conditions) string {
	var parts []string
	if cond.Subject != "" {
		parts = append(parts, fmt.Sprintf("for %q", cond.Subject))
	}
	if cond.Department != "" {
		parts = append(parts, "in the "+cond.Department+" department")
	}
	if cond.Semester != "" {
		parts = append(parts, "in the "+cond.Semester+" semester")
	}
	if cond.Room != "" {
		parts = append(parts, "in room "+cond.Room)
	}
	switch cond.DateFilter {
	case model.FilterToday:
		parts = append(parts, "scheduled today")
	case model.FilterTomorrow:
		parts = append(parts, "scheduled tomorrow")
	case model.FilterUpcoming:
		parts = append(parts, "upcoming")
	case model.FilterPast:
		parts = append(parts, "already completed")
	case model.FilterPractical:
		parts = append(parts, "of practical type")
	case model.FilterWritten:
		parts = append(parts, "of written type")
	}
	if len(parts) == 0 {
		return "No exams have been added to the schedule yet. Please check back later."
	}
	return fmt.Sprintf("No exams found %s. Nothing matching has been scheduled yet.",
		strings.Join(parts, ", "))
}

var greetingReplies = []string{
	"Hello! How can I help you with exam information today?",
	"Hi there! Ask me about exam dates, departments, semesters, or rooms.",
	"Hey! What would you like to know about the exam routine?",
}

var firstGreetingReply = "Hello! I'm your exam assistant. You can ask me about exam dates, " +
	"subjects, departments, or semesters. I can help you find specific exams or give you " +
	"an overview of the schedule."

var thanksReplies = []string{
	"You're welcome! Let me know if you need more assistance.",
	"Happy to help! Ask me anytime about the exam routine.",
	"Anytime! Good luck with your exams.",
}

var helpReply = "I can help you with:\n\n" +
	"1. Find specific exam dates (e.g. 'When is the Physics exam?')\n" +
	"2. Check department schedules (e.g. 'Computer department exams')\n" +
	"3. See semester-wise exams (e.g. '1st semester exams')\n" +
	"4. View today's or tomorrow's exams (e.g. 'Exams today?')\n" +
	"5. Get next exam info (e.g. 'Next exam?')\n" +
	"6. List all exams (e.g. 'Show all exams')\n" +
	"7. Search exams by room (e.g. 'Exams in Room 101')\n" +
	"8. Filter practical or written exams (e.g. 'practical exams')\n\n" +
	"After an answer you can say 'download these', 'set a reminder', or 'more details'."

var unknownReply = "I couldn't find any information matching your query. Here are some ways " +
	"you can ask:\n\n" +
	"- 'When is [subject] exam?'\n" +
	"- '[Department] department exams'\n" +
	"- '[Semester] semester schedule'\n" +
	"- 'Exams today'\n" +
	"- 'Next exam'\n" +
	"- 'Exams in Room [number]'"

var unavailableReply = "I'm having trouble accessing the exam database right now. " +
	"Please try again in a moment."
