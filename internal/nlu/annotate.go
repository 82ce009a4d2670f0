package nlu

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"

	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ProseAnnotator produces token and named-entity annotations using the prose
// NLP library for tokenization, tagging, and NER. prose has no DATE/TIME
// labels, so a lexical date/time recognizer supplements its output.
type ProseAnnotator struct{}

func NewProseAnnotator() *ProseAnnotator {
	return &ProseAnnotator{}
}

func (a *ProseAnnotator) Annotate(text string) (*Annotation, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		logx.Error().Err(err).Str("component", "annotator").Msg("failed to annotate utterance")
		return nil, fmt.Errorf("annotate: %w", err)
	}

	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		tok := Token{
			Text:    t.Text,
			Tag:     t.Tag,
			IsPunct: isPunctToken(t.Text, t.Tag),
		}
		tok.Lemma = lemma(t.Text, t.Tag)
		tok.LikeEmail = emailPattern.MatchString(t.Text)
		tokens = append(tokens, tok)
	}
	tokens = mergeEmailTokens(tokens)
	for i := range tokens {
		tokens[i].Index = i
	}

	ents := make([]NamedEntity, 0, 4)
	for _, e := range doc.Entities() {
		ents = append(ents, NamedEntity{Label: e.Label, Text: e.Text})
	}
	ents = append(ents, recognizeDatetimes(tokens)...)

	return &Annotation{Tokens: tokens, Entities: ents}, nil
}

func isPunctToken(text, tag string) bool {
	switch tag {
	case ".", ",", ":", "(", ")", "``", "''", "HYPH", "SYM":
		return true
	}
	for _, r := range text {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return text != ""
}

// mergeEmailTokens joins word "@" word runs the tokenizer split apart back
// into a single email-address token.
func mergeEmailTokens(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i].Text == "@" && len(out) > 0 && i+1 < len(tokens) {
			joined := out[len(out)-1].Text + "@" + tokens[i+1].Text
			if emailPattern.MatchString(joined) {
				out[len(out)-1] = Token{
					Text:      joined,
					Lemma:     strings.ToLower(joined),
					Tag:       "ADD",
					LikeEmail: true,
				}
				i++
				continue
			}
		}
		out = append(out, tokens[i])
	}
	return out
}

// --- lexical date/time recognition ---

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

var months = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}

var relativeDays = map[string]bool{
	"today": true, "tomorrow": true, "tonight": true, "yesterday": true,
}

var timeWords = map[string]bool{
	"noon": true, "midnight": true, "morning": true, "afternoon": true,
	"evening": true, "am": true, "pm": true, "a.m.": true, "p.m.": true,
	"o'clock": true,
}

// connectors may join two date/time words into one span but never start or
// end one on their own.
var datetimeConnectors = map[string]bool{
	"next": true, "this": true, "at": true, "on": true, "the": true,
}

var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
var ordinalPattern = regexp.MustCompile(`^\d{1,2}(st|nd|rd|th)$`)
var yearPattern = regexp.MustCompile(`^(19|20)\d{2}$`)
var bareHourPattern = regexp.MustCompile(`^\d{1,2}$`)

type datetimeClass int

const (
	dtNone datetimeClass = iota
	dtDate
	dtTime
)

func classifyDatetimeToken(tokens []Token, i int) datetimeClass {
	w := strings.ToLower(tokens[i].Text)
	switch {
	case weekdays[w], months[w], relativeDays[w], ordinalPattern.MatchString(w), yearPattern.MatchString(w):
		return dtDate
	case timeWords[w], clockPattern.MatchString(w):
		return dtTime
	case bareHourPattern.MatchString(w):
		// A bare one or two digit number counts as a clock reading only in
		// an hour context: "at 3", "3 PM".
		if i > 0 && strings.ToLower(tokens[i-1].Text) == "at" {
			return dtTime
		}
		if i+1 < len(tokens) && timeWords[strings.ToLower(tokens[i+1].Text)] {
			return dtTime
		}
	}
	return dtNone
}

// recognizeDatetimes scans the token sequence for date/time spans and emits
// one DATE or TIME entity per span. Connector words bridge adjacent matches
// so "next Tuesday at 3 PM" stays a single span.
func recognizeDatetimes(tokens []Token) []NamedEntity {
	var ents []NamedEntity
	i := 0
	for i < len(tokens) {
		if classifyDatetimeToken(tokens, i) == dtNone && !startsSpan(tokens, i) {
			i++
			continue
		}
		start := i
		sawDate := false
		sawTime := false
		j := i
	span:
		for j < len(tokens) {
			switch classifyDatetimeToken(tokens, j) {
			case dtDate:
				sawDate = true
			case dtTime:
				sawTime = true
			default:
				w := strings.ToLower(tokens[j].Text)
				bridges := datetimeConnectors[w] && j+1 < len(tokens) && classifyDatetimeToken(tokens, j+1) != dtNone
				if !bridges {
					break span
				}
			}
			j++
		}
		if j > start && (sawDate || sawTime) {
			parts := make([]string, 0, j-start)
			for _, t := range tokens[start:j] {
				parts = append(parts, t.Text)
			}
			label := LabelDate
			if sawTime && !sawDate {
				label = LabelTime
			}
			ents = append(ents, NamedEntity{Label: label, Text: strings.Join(parts, " ")})
			i = j
			continue
		}
		i++
	}
	return ents
}

// startsSpan lets a leading connector such as "next" open a span when a
// date/time word follows it directly.
func startsSpan(tokens []Token, i int) bool {
	w := strings.ToLower(tokens[i].Text)
	if w != "next" && w != "this" {
		return false
	}
	return i+1 < len(tokens) && classifyDatetimeToken(tokens, i+1) != dtNone
}
