package nlu

import "strings"

// irregularLemmas maps inflected forms that the suffix rules get wrong to
// their base form. Biased towards the verbs and nouns the intent rules key on.
var irregularLemmas = map[string]string{
	"sent":       "send",
	"sending":    "send",
	"ran":        "run",
	"running":    "run",
	"met":        "meet",
	"meetings":   "meeting",
	"booked":     "book",
	"booking":    "book",
	"scheduled":  "schedule",
	"scheduling": "schedule",
	"schedules":  "schedule",
	"arranged":   "arrange",
	"arranging":  "arrange",
	"arranges":   "arrange",
	"found":      "find",
	"finding":    "find",
	"looked":     "look",
	"looking":    "look",
	"googled":    "google",
	"googling":   "google",
	"searched":   "search",
	"searching":  "search",
	"searches":   "search",
	"opened":     "open",
	"opening":    "open",
	"opens":      "open",
	"launched":   "launch",
	"launching":  "launch",
	"launches":   "launch",
	"started":    "start",
	"starting":   "start",
	"closed":     "close",
	"closing":    "close",
	"closes":     "close",
	"exited":     "exit",
	"exiting":    "exit",
	"quitting":   "quit",
	"reminded":   "remind",
	"reminding":  "remind",
	"reminds":    "remind",
	"reminders":  "reminder",
	"emailed":    "email",
	"emailing":   "email",
	"emails":     "email",
	"mailed":     "mail",
	"mailing":    "mail",
	"messaged":   "message",
	"messaging":  "message",
	"messages":   "message",
	"notes":      "note",
	"dates":      "date",
	"times":      "time",
	"days":       "day",
	"whois":      "whois",
	"was":        "be",
	"were":       "be",
	"is":         "be",
	"are":        "be",
	"am":         "be",
	"went":       "go",
	"did":        "do",
	"does":       "do",
	"has":        "have",
	"had":        "have",
}

// lemma normalizes a surface form to its base form. The rules are
// deliberately small: lowercase, an irregular table, and suffix stripping
// guarded by the part-of-speech tag so nouns like "meeting" keep their
// nominal base form.
func lemma(word, tag string) string {
	w := strings.ToLower(word)
	if base, ok := irregularLemmas[w]; ok {
		return base
	}
	if !isAlpha(w) {
		return w
	}

	verb := strings.HasPrefix(tag, "VB")
	noun := strings.HasPrefix(tag, "NN")

	switch {
	case verb && strings.HasSuffix(w, "ing") && len(w) > 5:
		return undouble(w[:len(w)-3])
	case verb && strings.HasSuffix(w, "ed") && len(w) > 4:
		return undouble(w[:len(w)-2])
	case (noun || verb) && strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case (noun || verb) && hasESSuffix(w):
		return w[:len(w)-2]
	case (noun || verb) && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}

func hasESSuffix(w string) bool {
	if len(w) <= 4 || !strings.HasSuffix(w, "es") {
		return false
	}
	stem := w[:len(w)-2]
	return strings.HasSuffix(stem, "ch") || strings.HasSuffix(stem, "sh") ||
		strings.HasSuffix(stem, "x") || strings.HasSuffix(stem, "z") ||
		strings.HasSuffix(stem, "ss")
}

// undouble drops a doubled final consonant left behind by suffix stripping,
// e.g. "stopp" -> "stop".
func undouble(stem string) string {
	n := len(stem)
	if n < 3 {
		return stem
	}
	last := stem[n-1]
	if stem[n-2] == last && !isVowel(last) && last != 'l' && last != 's' {
		return stem[:n-1]
	}
	return stem
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}
