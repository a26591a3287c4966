package assistant

import (
	"regexp"
	"sort"
	"strings"

	"github.com/polytechbd/examroutine/internal/model"
)

// The extractors are pure functions over the normalized utterance. Each pulls
// at most one typed value; an empty result means "do not filter on this
// dimension", never "match nothing".

// Department scans the known department list in order and returns the first
// whose lower-cased name appears in the text, with canonical capitalization.
func (v *Vocabulary) Department(norm string) string {
	for _, dept := range v.Departments {
		if strings.Contains(norm, strings.ToLower(dept)) {
			return dept
		}
	}
	return ""
}

// Semester returns the first ordinal label ("1st".."8th") found in the text.
func (v *Vocabulary) Semester(norm string) string {
	for _, sem := range v.Semesters {
		if strings.Contains(norm, strings.ToLower(sem)) {
			return sem
		}
	}
	return ""
}

// DateFilter maps keyword groups to a single filter value. Groups are checked
// in a fixed priority order; the first satisfied group wins. The practical and
// written groups select the exam-type axis instead of chronology.
func (v *Vocabulary) DateFilter(norm string) model.DateFilter {
	groups := []struct {
		words  []string
		filter model.DateFilter
	}{
		{v.TodayWords, model.FilterToday},
		{v.TomorrowWords, model.FilterTomorrow},
		{v.UpcomingWords, model.FilterUpcoming},
		{v.PastWords, model.FilterPast},
		{v.PracticalWords, model.FilterPractical},
		{v.WrittenWords, model.FilterWritten},
	}
	for _, g := range groups {
		if containsAny(norm, g.words) {
			return g.filter
		}
	}
	return model.FilterNone
}

var (
	roomPattern   = regexp.MustCompile(`(?:room|hall|lab)\s*(\d+)`)
	numberPattern = regexp.MustCompile(`\d+`)
)

// Room prefers an explicit "room/hall/lab N" phrase and falls back to the
// first bare number anywhere in the text.
func (v *Vocabulary) Room(norm string) string {
	if m := roomPattern.FindStringSubmatch(norm); m != nil {
		return m[1]
	}
	return numberPattern.FindString(norm)
}

// distinctSubjects returns the distinct subject titles in first-appearance
// order over the record set, so tie-breaking stays deterministic.
func distinctSubjects(records []model.ExamRecord) []string {
	seen := make(map[string]bool, len(records))
	var subjects []string
	for _, r := range records {
		if r.Subject == "" || seen[r.Subject] {
			continue
		}
		seen[r.Subject] = true
		subjects = append(subjects, r.Subject)
	}
	return subjects
}

// Subject resolves the subject mentioned in an utterance against the subjects
// present in the record set. Precedence, strictly in this order:
//
//  1. exact containment of the full subject title in the text,
//  2. any subject word longer than three characters appearing in the text,
//  3. abbreviation-table lookup against expanded forms.
//
// No match returns the empty string.
func (v *Vocabulary) Subject(norm string, records []model.ExamRecord) string {
	subjects := distinctSubjects(records)

	for _, subject := range subjects {
		if strings.Contains(norm, strings.ToLower(subject)) {
			return subject
		}
	}

	for _, subject := range subjects {
		for _, word := range strings.Fields(strings.ToLower(subject)) {
			if len(word) > 3 && strings.Contains(norm, word) {
				return subject
			}
		}
	}

	for _, ab := range v.Abbreviations {
		if !strings.Contains(norm, ab.Short) {
			continue
		}
		for _, subject := range subjects {
			if strings.Contains(strings.ToLower(subject), ab.Expansion) {
				return subject
			}
		}
	}

	return ""
}

const maxSuggestions = 10

// stopwords are query words too common to signal a subject; "the" alone is a
// substring of "mathematics".
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "you": true,
	"what": true, "when": true, "which": true, "exam": true, "exams": true,
	"date": true, "kobe": true, "please": true, "about": true, "tell": true,
	"show": true, "have": true, "there": true,
}

// SubjectSuggestions scores every subject against the query words and returns
// the best candidates in descending score order, ties kept in enumeration
// order, truncated to the top ten. Subjects that score zero are omitted.
func (v *Vocabulary) SubjectSuggestions(norm string, records []model.ExamRecord) []string {
	words := strings.Fields(norm)

	type scored struct {
		subject string
		score   int
		pos     int
	}
	var candidates []scored

	for pos, subject := range distinctSubjects(records) {
		lower := strings.ToLower(subject)
		subjectWords := strings.Fields(lower)
		score := 0
		for _, qw := range words {
			if len(qw) <= 2 || stopwords[qw] {
				continue
			}
			switch {
			case strings.HasPrefix(lower, qw):
				score += 4
			case strings.Contains(lower, qw):
				score += 3
			default:
				for _, sw := range subjectWords {
					if strings.Contains(sw, qw) || strings.Contains(qw, sw) {
						score += 2
						break
					}
				}
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{subject, score, pos})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.subject
	}
	return out
}

// Extract runs every extractor against one utterance and assembles the
// condition set for the composer.
func (v *Vocabulary) Extract(norm string, records []model.ExamRecord) model.Conditions {
	cond := model.Conditions{
		Department: v.Department(norm),
		Semester:   v.Semester(norm),
		Subject:    v.Subject(norm, records),
		DateFilter: v.DateFilter(norm),
	}
	// A bare number only counts as a room when the utterance talks about
	// rooms; otherwise ordinals like "1st" would leak digits in here.
	if containsAny(norm, v.RoomWords) {
		cond.Room = v.Room(norm)
	}
	return cond
}
