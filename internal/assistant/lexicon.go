// Package assistant implements the rule-based exam routine assistant: keyword
// extraction, intent classification, query composition over an exam record
// snapshot, per-session conversation context, and deterministic response
// rendering. The single entry point is Assistant.ProcessUtterance.
package assistant

import "strings"

// Abbreviation maps a short form students actually type to the phrase looked
// up inside subject titles.
type Abbreviation struct {
	Short     string
	Expansion string
}

// Vocabulary holds the keyword tables the extractors and the classifier
// consult. It is injected into the Assistant so the word lists can be extended
// without touching the matching algorithms. Order is significant everywhere:
// the first listed entry wins ties.
type Vocabulary struct {
	Departments []string
	Semesters   []string

	// Date-filter keyword groups, checked in the order today > tomorrow >
	// upcoming > past > practical > written.
	TodayWords     []string
	TomorrowWords  []string
	UpcomingWords  []string
	PastWords      []string
	PracticalWords []string
	WrittenWords   []string

	Abbreviations []Abbreviation

	Greetings     []string
	Thanks        []string
	HelpWords     []string
	NextWords     []string
	DownloadWords []string
	WhenWords     []string
	DeptSemWords  []string
	RoomWords     []string
	OverviewWords []string
	FollowUpWords []string
	ReminderWords []string
	DetailWords   []string
}

// DefaultVocabulary returns the stock English (plus transliterated Bengali)
// word lists matching the routine data the assistant serves.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Departments: []string{"Computer", "Civil", "Electrical", "Power", "Mechanical", "Electronics"},
		Semesters:   []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th"},

		TodayWords:     []string{"today", "now", "this day", "ajke", "aj"},
		TomorrowWords:  []string{"tomorrow", "kalke", "kal"},
		UpcomingWords:  []string{"upcoming", "next", "coming", "future"},
		PastWords:      []string{"past", "completed", "done", "finished", "previous"},
		PracticalWords: []string{"practical"},
		WrittenWords:   []string{"written", "theory"},

		Abbreviations: []Abbreviation{
			{"phy", "physics"},
			{"chem", "chemistry"},
			{"math", "mathematics"},
			{"eng", "english"},
			{"dbms", "database management system"},
			{"db", "database"},
			{"oop", "object oriented"},
			{"dsa", "data structure"},
			{"prog", "programming"},
			{"elec", "electrical"},
			{"mech", "mechanical"},
		},

		Greetings: []string{
			"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
			"salam", "assalamu", "asalamu", "hola", "yo", "kemon acho", "kemon achen",
			"ki obostha", "ki khobor", "oi", "hlw",
		},
		Thanks:    []string{"thank", "thanks", "thx", "dhonnobad", "appreciate"},
		HelpWords: []string{"help", "what can you do", "how to use", "guide", "commands", "options"},
		NextWords: []string{"next exam", "upcoming exam", "coming exam", "porer porikkha"},
		DownloadWords: []string{
			"download", "pdf", "save", "export", "image", "jpg", "picture", "screenshot",
		},
		WhenWords:    []string{"when", "date", "kobe", "exam"},
		DeptSemWords: []string{"department", "dept", "semester", "sem"},
		RoomWords:    []string{"room", "hall", "lab", "venue", "kothay"},
		OverviewWords: []string{
			"all exam", "total", "overview", "statistics", "stats", "summary",
			"how many", "list all", "full routine", "whole routine",
		},
		FollowUpWords: []string{"these", "those", "them", "that one", "same"},
		ReminderWords: []string{"reminder", "notification", "alert", "notify", "remind"},
		DetailWords:   []string{"more", "details", "detail", "information", "info", "expand"},
	}
}

// normalize lower-cases an utterance, strips punctuation, and collapses
// whitespace. Every predicate and extractor works on this form.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 0x0980 && r <= 0x09FF: // Bengali block passes through
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsAny reports whether the normalized text contains any of the listed
// keywords as a substring.
func containsAny(norm string, words []string) bool {
	for _, w := range words {
		if strings.Contains(norm, w) {
			return true
		}
	}
	return false
}

// containsAnyWord matches multi-word entries by substring but single words
// only as whole tokens. Short greetings like "yo" and "oi" would otherwise
// fire inside "you" and "going".
func containsAnyWord(norm string, words []string) bool {
	fields := strings.Fields(norm)
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(norm, w) {
				return true
			}
			continue
		}
		for _, f := range fields {
			if f == w {
				return true
			}
		}
	}
	return false
}
