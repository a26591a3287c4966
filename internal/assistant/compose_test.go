package assistant

import (
	"testing"

	"github.com/polytechbd/examroutine/internal/model"
)

const testNowDate = "2025-03-10"

func subjectsOf(records []model.ExamRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Subject
	}
	return out
}

func TestFilterConjunction(t *testing.T) {
	records := testRecords()

	tests := []struct {
		name string
		cond model.Conditions
		want int
	}{
		{"no conditions", model.Conditions{}, len(records)},
		{"department", model.Conditions{Department: "Computer"}, 4},
		{"department and semester", model.Conditions{Department: "Computer", Semester: "1st"}, 3},
		{"all dimensions", model.Conditions{Department: "Computer", Semester: "1st", Subject: "Physics", DateFilter: model.FilterUpcoming}, 2},
		{"conflicting", model.Conditions{Department: "Civil", Subject: "Physics"}, 0},
		{"room", model.Conditions{Room: "101"}, 1},
		{"case insensitive", model.Conditions{Department: "computer", Subject: "physics"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.cond, testNowDate)
			if len(got) != tt.want {
				t.Errorf("Filter() returned %d records (%v), want %d", len(got), subjectsOf(got), tt.want)
			}
		})
	}
}

func TestFilterDateAxis(t *testing.T) {
	records := testRecords()

	tests := []struct {
		filter model.DateFilter
		want   []string
	}{
		{model.FilterToday, []string{"Surveying"}},
		{model.FilterTomorrow, []string{"Electrical Circuits"}},
		{model.FilterPast, []string{"Engineering Drawing"}},
		{model.FilterPractical, []string{"Physics Lab"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := Filter(records, model.Conditions{DateFilter: tt.filter}, testNowDate)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", subjectsOf(got), tt.want)
			}
			for i, r := range got {
				if r.Subject != tt.want[i] {
					t.Errorf("record %d: got %q, want %q", i, r.Subject, tt.want[i])
				}
			}
		})
	}
}

func TestFilterUpcomingIncludesToday(t *testing.T) {
	got := Filter(testRecords(), model.Conditions{DateFilter: model.FilterUpcoming}, testNowDate)
	for _, r := range got {
		if r.Subject == "Surveying" {
			return
		}
	}
	t.Errorf("today's exam missing from upcoming: %v", subjectsOf(got))
}

func TestFilterWrittenIgnoresChronology(t *testing.T) {
	got := Filter(testRecords(), model.Conditions{DateFilter: model.FilterWritten}, testNowDate)
	// All six written exams qualify, including the completed one.
	if len(got) != 6 {
		t.Errorf("expected 6 written exams, got %v", subjectsOf(got))
	}
}

func TestSortChronological(t *testing.T) {
	records := []model.ExamRecord{
		{Subject: "C", ExamDate: "2025-03-12", Time: "02:00 PM"},
		{Subject: "A", ExamDate: "2025-03-10", Time: "10:00 AM"},
		{Subject: "B", ExamDate: "2025-03-12", Time: "09:00 AM"},
	}
	SortChronological(records)
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if records[i].Subject != w {
			t.Fatalf("wrong order: %v", subjectsOf(records))
		}
	}
}

func TestSortChronologicalStable(t *testing.T) {
	records := []model.ExamRecord{
		{Subject: "First", ExamDate: "2025-03-12", Time: "10:00 AM"},
		{Subject: "Second", ExamDate: "2025-03-12", Time: "10:00 AM"},
	}
	SortChronological(records)
	if records[0].Subject != "First" || records[1].Subject != "Second" {
		t.Errorf("equal instants reordered: %v", subjectsOf(records))
	}
}

func TestSplitUpcoming(t *testing.T) {
	upcoming, completed := splitUpcoming(testRecords(), testNowDate)
	if len(upcoming) != 6 {
		t.Errorf("expected 6 upcoming, got %v", subjectsOf(upcoming))
	}
	if len(completed) != 1 || completed[0].Subject != "Engineering Drawing" {
		t.Errorf("expected Engineering Drawing completed, got %v", subjectsOf(completed))
	}
}

func TestDistinctSorted(t *testing.T) {
	got := distinctSorted(testRecords(), func(r model.ExamRecord) string { return r.Department })
	want := []string{"Civil", "Computer", "Electrical"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
