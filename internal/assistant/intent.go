package assistant

import "github.com/polytechbd/examroutine/internal/model"

// Intent is the coarse category of a user utterance.
type Intent string

const (
	IntentCombined Intent = "combined"
	IntentGreeting Intent = "greeting"
	IntentThanks   Intent = "thanks"
	IntentHelp     Intent = "help"
	IntentNextExam Intent = "next_exam"
	IntentDownload Intent = "download"
	IntentWhen     Intent = "when"
	IntentDeptSem  Intent = "dept_sem"
	IntentRoom     Intent = "room"
	IntentOverview Intent = "overview"
	IntentFollowUp Intent = "follow_up"
	IntentUnknown  Intent = "unknown"
)

// intentRule pairs an intent with its predicate. The table is ordered and the
// first matching rule wins; the order is part of the contract, since later
// categories are broader and would swallow earlier ones.
type intentRule struct {
	Intent Intent
	Match  func(v *Vocabulary, norm string, cond model.Conditions, conv *Context) bool
}

var intentRules = []intentRule{
	// A structured query (any extractable dimension) outranks everything:
	// it can answer most of the later categories in a single pass.
	{IntentCombined, func(_ *Vocabulary, _ string, cond model.Conditions, _ *Context) bool {
		return cond.HasAny()
	}},
	{IntentGreeting, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAnyWord(norm, v.Greetings)
	}},
	{IntentThanks, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.Thanks)
	}},
	{IntentHelp, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.HelpWords)
	}},
	{IntentNextExam, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.NextWords)
	}},
	{IntentDownload, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.DownloadWords)
	}},
	{IntentWhen, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.WhenWords)
	}},
	{IntentDeptSem, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.DeptSemWords)
	}},
	{IntentRoom, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.RoomWords)
	}},
	{IntentOverview, func(v *Vocabulary, norm string, _ model.Conditions, _ *Context) bool {
		return containsAny(norm, v.OverviewWords)
	}},
	// Context keeps a follow-up intent alive across turns until a fresh
	// primary intent overrides it.
	{IntentFollowUp, func(v *Vocabulary, norm string, _ model.Conditions, conv *Context) bool {
		if containsAny(norm, v.FollowUpWords) || containsAny(norm, v.ReminderWords) ||
			containsAny(norm, v.DetailWords) {
			return true
		}
		return conv.State != StateIdle
	}},
	{IntentUnknown, func(*Vocabulary, string, model.Conditions, *Context) bool {
		return true
	}},
}

// ClassifierOrder exposes the fixed intent priority so tests can assert it
// directly instead of probing control flow.
func ClassifierOrder() []Intent {
	order := make([]Intent, len(intentRules))
	for i, r := range intentRules {
		order[i] = r.Intent
	}
	return order
}

// classify picks exactly one intent for a normalized utterance.
func classify(v *Vocabulary, norm string, cond model.Conditions, conv *Context) Intent {
	for _, rule := range intentRules {
		if rule.Match(v, norm, cond, conv) {
			return rule.Intent
		}
	}
	return IntentUnknown
}
