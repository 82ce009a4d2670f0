package nlu

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// EntityKind names one kind of extracted entity.
type EntityKind string

const (
	EntityPerson        EntityKind = "person"
	EntityDatetime      EntityKind = "datetime"
	EntityObjectName    EntityKind = "object_name"
	EntityEmailAddress  EntityKind = "email_address"
	EntitySearchQuery   EntityKind = "search_query"
	EntityTargetAddress EntityKind = "target_address"
)

// multiValued declares which kinds hold an ordered list of values. Every
// other kind is single-valued. The declared shape never varies at runtime.
var multiValued = map[EntityKind]bool{
	EntityPerson:     true,
	EntityDatetime:   true,
	EntityObjectName: true,
}

// EntityBag maps entity kinds to their extracted values. Absence of a kind
// means "not found"; empty strings and empty lists are never stored.
type EntityBag struct {
	single map[EntityKind]string
	multi  map[EntityKind][]string
}

func NewEntityBag() *EntityBag {
	return &EntityBag{
		single: make(map[EntityKind]string),
		multi:  make(map[EntityKind][]string),
	}
}

// Add stores a value under its kind's declared shape. Single-valued kinds
// keep the last value seen.
func (b *EntityBag) Add(kind EntityKind, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if multiValued[kind] {
		b.multi[kind] = append(b.multi[kind], value)
		return
	}
	b.single[kind] = value
}

// Has reports whether any value was extracted for the kind.
func (b *EntityBag) Has(kind EntityKind) bool {
	if multiValued[kind] {
		return len(b.multi[kind]) > 0
	}
	_, ok := b.single[kind]
	return ok
}

// Value returns the value of a single-valued kind.
func (b *EntityBag) Value(kind EntityKind) (string, bool) {
	v, ok := b.single[kind]
	return v, ok
}

// Values returns the ordered values of a multi-valued kind.
func (b *EntityBag) Values(kind EntityKind) ([]string, bool) {
	vs, ok := b.multi[kind]
	if !ok || len(vs) == 0 {
		return nil, false
	}
	out := make([]string, len(vs))
	copy(out, vs)
	return out, true
}

// First returns the first value of a multi-valued kind.
func (b *EntityBag) First(kind EntityKind) (string, bool) {
	vs, ok := b.multi[kind]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Joined returns a multi-valued kind's values joined with single spaces.
// The datetime kind reaches consumers this way: fragments in, one string out.
func (b *EntityBag) Joined(kind EntityKind) (string, bool) {
	vs, ok := b.multi[kind]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.Join(vs, " "), true
}

// Kinds returns every kind present in the bag, sorted for stable output.
func (b *EntityBag) Kinds() []EntityKind {
	kinds := make([]EntityKind, 0, len(b.single)+len(b.multi))
	for k := range b.single {
		kinds = append(kinds, k)
	}
	for k := range b.multi {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

var ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
var numericDotPattern = regexp.MustCompile(`^[\d.]+$`)

// appNameCap bounds how many tokens the positional app-name capture collects.
const appNameCap = 4

var openCloseTriggers = map[string]bool{
	"open": true, "launch": true, "start": true,
	"close": true, "quit": true, "exit": true,
}

var searchTriggers = map[string]bool{
	"search": true, "find": true, "google": true,
}

var searchPrepositions = map[string]bool{
	"for": true, "about": true, "on": true,
}

var searchFillers = map[string]bool{
	"me": true, "us": true, "some": true, "any": true,
	"a": true, "an": true, "the": true,
}

var targetStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "my": true,
	"please": true, "scan": true, "lookup": true,
	"at": true, "on": true, "for": true,
}

// Extract pulls typed entities from the annotated utterance. The intent must
// already be computed: several captures are intent-conditioned.
func Extract(intent Intent, a *Annotation) *EntityBag {
	bag := NewEntityBag()

	for _, e := range a.Entities {
		switch e.Label {
		case LabelDate, LabelTime:
			bag.Add(EntityDatetime, e.Text)
		case LabelPerson:
			bag.Add(EntityPerson, e.Text)
		case LabelOrg, LabelProduct:
			bag.Add(EntityObjectName, e.Text)
		default:
			bag.Add(EntityKind(strings.ToLower(e.Label)), e.Text)
		}
	}

	// Last email-looking token wins when there are several. Known limitation.
	for _, t := range a.Tokens {
		if t.LikeEmail {
			bag.Add(EntityEmailAddress, t.Text)
		}
	}

	switch intent {
	case IntentOpenApplication, IntentCloseApplication:
		if !bag.Has(EntityObjectName) {
			extractAppName(a, bag)
		}
	case IntentSearchWeb:
		extractSearchQuery(a, bag)
	case IntentRunNmap, IntentRunWhois:
		extractTargetAddress(a, bag)
	case IntentScheduleMeeting, IntentSendMessage, IntentSendEmail:
		if !bag.Has(EntityPerson) {
			extractPersonAfterPreposition(a, bag)
		}
	}

	return bag
}

// extractAppName captures the tokens following the first open/close trigger:
// up to appNameCap non-punctuation, non-verb tokens, stopping at the first
// verb or punctuation. Only the first trigger's capture is taken.
func extractAppName(a *Annotation, bag *EntityBag) {
	for i, t := range a.Tokens {
		if !openCloseTriggers[t.Lemma] || i+1 >= len(a.Tokens) {
			continue
		}
		var parts []string
		for j := i + 1; j < len(a.Tokens); j++ {
			next := a.Tokens[j]
			if next.IsPunct || next.IsVerb() {
				break
			}
			parts = append(parts, next.Text)
			if len(parts) >= appNameCap {
				break
			}
		}
		if len(parts) > 0 {
			bag.Add(EntityObjectName, strings.Join(parts, " "))
			return
		}
	}
	fuzzyAppName(a, bag)
}

// fuzzyAppName matches single tokens against the known application names
// with a small edit distance, catching misspellings like "crome".
func fuzzyAppName(a *Annotation, bag *EntityBag) {
	for _, t := range a.Tokens {
		if t.IsPunct || len(t.Text) < 4 {
			continue
		}
		w := strings.ToLower(t.Text)
		for app := range knownApps {
			if levenshtein.ComputeDistance(w, app) <= 2 {
				bag.Add(EntityObjectName, app)
				return
			}
		}
	}
}

// extractSearchQuery takes everything after the first search trigger as the
// query, skipping one immediate preposition and any filler determiners or
// pronouns right behind it.
func extractSearchQuery(a *Annotation, bag *EntityBag) {
	start := -1
	for i, t := range a.Tokens {
		if searchTriggers[t.Lemma] {
			start = i + 1
			break
		}
		if t.Lemma == "look" && i+1 < len(a.Tokens) && a.Tokens[i+1].Lemma == "up" {
			start = i + 2
			break
		}
	}
	if start < 0 {
		return
	}
	cur := start
	if cur < len(a.Tokens) && searchPrepositions[a.Tokens[cur].Lemma] {
		cur++
	}
	for cur < len(a.Tokens) && searchFillers[a.Tokens[cur].Lemma] {
		cur++
	}
	var parts []string
	for _, t := range a.Tokens[cur:] {
		if t.IsPunct && t.Index == a.Tokens[len(a.Tokens)-1].Index {
			break // drop a trailing sentence terminator
		}
		parts = append(parts, t.Text)
	}
	bag.Add(EntitySearchQuery, strings.TrimSpace(strings.Join(parts, " ")))
}

// extractTargetAddress scans past the first nmap/whois trigger for a scan
// target: a dotted-quad IPv4 wins, otherwise the first dotted token that is
// not purely numeric is treated as a domain name.
func extractTargetAddress(a *Annotation, bag *EntityBag) {
	start := -1
	for i, t := range a.Tokens {
		if t.Lemma == "nmap" || t.Lemma == "whois" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return
	}

	var candidates []Token
	for _, t := range a.Tokens[start:] {
		if t.IsPunct || targetStopwords[t.Lemma] {
			continue
		}
		candidates = append(candidates, t)
	}
	for _, t := range candidates {
		if ipv4Pattern.MatchString(t.Text) {
			bag.Add(EntityTargetAddress, t.Text)
			return
		}
	}
	for _, t := range candidates {
		if strings.Contains(t.Text, ".") && !numericDotPattern.MatchString(t.Text) {
			bag.Add(EntityTargetAddress, t.Text)
			return
		}
	}
}

// extractPersonAfterPreposition is a positional fallback for utterances where
// NER missed the name: the title-cased noun right after "with" or "to".
func extractPersonAfterPreposition(a *Annotation, bag *EntityBag) {
	for i, t := range a.Tokens {
		if t.Lemma != "with" && t.Lemma != "to" {
			continue
		}
		if i+1 >= len(a.Tokens) {
			continue
		}
		next := a.Tokens[i+1]
		if next.IsTitle() && next.IsNounLike() && !next.LikeEmail {
			bag.Add(EntityPerson, next.Text)
			return
		}
	}
}
