package assistant

import (
	"sort"
	"strings"
	"time"

	"github.com/polytechbd/examroutine/internal/model"
)

// The composer turns a condition set plus a record snapshot into a filtered,
// deterministically sorted result set. All comparisons use the reference date
// taken once at the start of the utterance; the clock is never re-read.

// Filter keeps exactly the records satisfying every present condition.
// Department, semester and room match by case-insensitive containment in the
// record field; subject matches by containment of the extracted subject inside
// the record's subject; the date filter compares against the reference date or,
// for practical/written, against the exam type.
func Filter(records []model.ExamRecord, cond model.Conditions, nowDate string) []model.ExamRecord {
	var out []model.ExamRecord
	for _, r := range records {
		if cond.Department != "" && !containsFold(r.Department, cond.Department) {
			continue
		}
		if cond.Semester != "" && !containsFold(r.Semester, cond.Semester) {
			continue
		}
		if cond.Room != "" && !containsFold(r.Room, cond.Room) {
			continue
		}
		if cond.Subject != "" && !containsFold(r.Subject, cond.Subject) {
			continue
		}
		if !matchDateFilter(r, cond.DateFilter, nowDate) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func containsFold(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

func matchDateFilter(r model.ExamRecord, f model.DateFilter, nowDate string) bool {
	switch f {
	case model.FilterToday:
		return r.ExamDate == nowDate
	case model.FilterTomorrow:
		return r.ExamDate == nextDate(nowDate)
	case model.FilterUpcoming:
		return r.ExamDate >= nowDate
	case model.FilterPast:
		return r.ExamDate < nowDate
	case model.FilterPractical:
		return r.ExamType == model.ExamPractical
	case model.FilterWritten:
		return r.ExamType == model.ExamWritten
	default:
		return true
	}
}

// nextDate returns the calendar day after a YYYY-MM-DD date.
func nextDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, 1).Format("2006-01-02")
}

// SortChronological orders records ascending by exam date, ties broken by the
// 24-hour converted time. The sort is stable so equal instants keep insertion
// order.
func SortChronological(records []model.ExamRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ExamDate != records[j].ExamDate {
			return records[i].ExamDate < records[j].ExamDate
		}
		return model.To24Hour(records[i].Time) < model.To24Hour(records[j].Time)
	})
}

// splitUpcoming partitions a record set around the reference date. A record
// dated today counts as upcoming.
func splitUpcoming(records []model.ExamRecord, nowDate string) (upcoming, completed []model.ExamRecord) {
	for _, r := range records {
		if r.ExamDate >= nowDate {
			upcoming = append(upcoming, r)
		} else {
			completed = append(completed, r)
		}
	}
	return upcoming, completed
}

// distinctSorted returns the sorted distinct values produced by pick.
func distinctSorted(records []model.ExamRecord, pick func(model.ExamRecord) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		v := pick(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
