package nlu

import "strings"

// Token is one annotated token of an utterance. Position indices are strictly
// increasing and contiguous starting at 0.
type Token struct {
	Text      string
	Lemma     string
	Tag       string // Penn Treebank part-of-speech tag
	LikeEmail bool
	IsPunct   bool
	Index     int
}

// IsVerb reports whether the token is tagged as any verb form.
func (t Token) IsVerb() bool {
	return strings.HasPrefix(t.Tag, "VB")
}

// IsNounLike reports whether the token is a noun, proper noun, or carries an
// unknown/foreign tag. Used by the open_application rule to decide whether an
// "open"-style verb is followed by a plausible object.
func (t Token) IsNounLike() bool {
	switch {
	case strings.HasPrefix(t.Tag, "NN"):
		return true
	case t.Tag == "FW" || t.Tag == "XX" || t.Tag == "":
		return true
	}
	return false
}

// IsTitle reports whether the surface text is title-cased.
func (t Token) IsTitle() bool {
	if t.Text == "" {
		return false
	}
	first := rune(t.Text[0])
	return first >= 'A' && first <= 'Z'
}

// Named entity labels produced by the annotator.
const (
	LabelPerson  = "PERSON"
	LabelDate    = "DATE"
	LabelTime    = "TIME"
	LabelOrg     = "ORG"
	LabelProduct = "PRODUCT"
)

// NamedEntity is one span recognized by the annotator's NER stage.
type NamedEntity struct {
	Label string
	Text  string
}

// Annotation is the parsed view of one utterance: the token sequence plus the
// named entities recognized over it.
type Annotation struct {
	Tokens   []Token
	Entities []NamedEntity
}

// Annotator turns raw text into an Annotation. The concrete implementation is
// an external concern; the classifier and extractor consume only this shape.
type Annotator interface {
	Annotate(text string) (*Annotation, error)
}

// lemmaSet returns the set of lemmas present in the annotation.
func (a *Annotation) lemmaSet() map[string]bool {
	set := make(map[string]bool, len(a.Tokens))
	for _, t := range a.Tokens {
		if !t.IsPunct {
			set[t.Lemma] = true
		}
	}
	return set
}

// hasPhrase reports whether lemma a is immediately followed by lemma b,
// ignoring punctuation. Covers phrasal triggers like "look up" and "set up".
func (a *Annotation) hasPhrase(first, second string) bool {
	for i, t := range a.Tokens {
		if t.Lemma != first {
			continue
		}
		for j := i + 1; j < len(a.Tokens); j++ {
			if a.Tokens[j].IsPunct {
				continue
			}
			if a.Tokens[j].Lemma == second {
				return true
			}
			break
		}
	}
	return false
}
