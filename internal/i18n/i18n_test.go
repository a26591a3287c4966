package i18n

import (
	"context"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "ExamNotFound")
	if got != "Exam not found." {
		t.Errorf("T(ExamNotFound) = %q, want 'Exam not found.'", got)
	}

	got = T(ctx, "DataUnavailable")
	if got != "The exam database is temporarily unavailable. Please try again." {
		t.Errorf("T(DataUnavailable) = %q", got)
	}
}

func TestTranslateBengali(t *testing.T) {
	ctx := initLang(t, "bn")

	got := T(ctx, "ExamNotFound")
	if got != "পরীক্ষাটি পাওয়া যায়নি।" {
		t.Errorf("T(ExamNotFound) = %q", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "ReminderScheduled", 1)
	if got1 != "Scheduled 1 reminder." {
		t.Errorf("Tp(ReminderScheduled, 1) = %q, want 'Scheduled 1 reminder.'", got1)
	}

	got2 := Tp(ctx, "ReminderScheduled", 2)
	if got2 != "Scheduled 2 reminders." {
		t.Errorf("Tp(ReminderScheduled, 2) = %q, want 'Scheduled 2 reminders.'", got2)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}
