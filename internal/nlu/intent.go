package nlu

import "strings"

// Intent is one label from the closed set of action classes the assistant
// understands. Exactly one intent is produced per utterance.
type Intent string

const (
	IntentScheduleMeeting    Intent = "schedule_meeting"
	IntentSendEmail          Intent = "send_email"
	IntentSendMessage        Intent = "send_message"
	IntentOpenApplication    Intent = "open_application"
	IntentSearchWeb          Intent = "search_web"
	IntentSetReminder        Intent = "set_reminder"
	IntentCloseApplication   Intent = "close_application"
	IntentGetCurrentDatetime Intent = "get_current_datetime"
	IntentScheduleEvent      Intent = "schedule_event"
	IntentRunNmap            Intent = "run_nmap"
	IntentRunWhois           Intent = "run_whois"
	IntentUnknown            Intent = "unknown_intent"
	IntentError              Intent = "error"
)

// knownApps are application names accepted as the object of an "open"-style
// verb even when the tagger does not mark them as nouns.
var knownApps = map[string]bool{
	"chrome":     true,
	"firefox":    true,
	"edge":       true,
	"notepad":    true,
	"calculator": true,
}

type rule struct {
	intent Intent
	match  func(a *Annotation, lemmas map[string]bool) bool
}

// intentRules is the ordered rule table. Evaluation is top to bottom, first
// match wins: rules are not mutually exclusive at the lemma-set level, so the
// order is the only disambiguator. Compound triggers sit above their generic
// single-keyword counterparts.
var intentRules = []rule{
	{IntentScheduleMeeting, func(a *Annotation, l map[string]bool) bool {
		return l["meeting"] && (l["schedule"] || l["book"] || l["arrange"] || a.hasPhrase("set", "up"))
	}},
	{IntentSendEmail, func(a *Annotation, l map[string]bool) bool {
		return (l["email"] || l["mail"]) && l["send"]
	}},
	{IntentSendMessage, func(a *Annotation, l map[string]bool) bool {
		return (l["message"] || l["note"]) && l["send"]
	}},
	{IntentOpenApplication, func(a *Annotation, l map[string]bool) bool {
		return openVerbWithObject(a)
	}},
	{IntentSearchWeb, func(a *Annotation, l map[string]bool) bool {
		return l["search"] || l["find"] || l["google"] || a.hasPhrase("look", "up")
	}},
	{IntentSetReminder, func(a *Annotation, l map[string]bool) bool {
		return l["reminder"] || l["remind"]
	}},
	{IntentCloseApplication, func(a *Annotation, l map[string]bool) bool {
		return l["close"] || l["exit"] || l["quit"]
	}},
	{IntentGetCurrentDatetime, func(a *Annotation, l map[string]bool) bool {
		return (l["date"] || l["time"] || l["day"] || l["today"]) &&
			!(l["schedule"] || l["meeting"] || l["reminder"])
	}},
	{IntentScheduleEvent, func(a *Annotation, l map[string]bool) bool {
		return l["schedule"] || l["book"] || a.hasPhrase("set", "up")
	}},
	{IntentSendMessage, func(a *Annotation, l map[string]bool) bool {
		return l["send"]
	}},
	{IntentRunNmap, func(a *Annotation, l map[string]bool) bool {
		return l["nmap"]
	}},
	{IntentRunWhois, func(a *Annotation, l map[string]bool) bool {
		return l["whois"]
	}},
}

// Classify selects exactly one intent for the annotated utterance. It is a
// pure function of the token sequence.
func Classify(a *Annotation) Intent {
	lemmas := a.lemmaSet()
	for _, r := range intentRules {
		if r.match(a, lemmas) {
			return r.intent
		}
	}
	return IntentUnknown
}

// openVerbWithObject requires an "open"-style verb followed by a plausible
// object: a noun-like token, a title-cased token, or a known application
// name. The positional peek avoids false positives on non-imperative "open".
func openVerbWithObject(a *Annotation) bool {
	for i, t := range a.Tokens {
		switch t.Lemma {
		case "open", "launch", "start":
		default:
			continue
		}
		if i+1 >= len(a.Tokens) {
			continue
		}
		next := a.Tokens[i+1]
		if next.IsNounLike() || next.IsTitle() || knownApps[strings.ToLower(next.Text)] {
			return true
		}
	}
	return false
}
