package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeEmailTokens(t *testing.T) {
	split := []Token{
		{Text: "email"},
		{Text: "alice"},
		{Text: "@"},
		{Text: "example.com"},
	}
	merged := mergeEmailTokens(split)

	require.Len(t, merged, 2)
	assert.Equal(t, "alice@example.com", merged[1].Text)
	assert.True(t, merged[1].LikeEmail)
	assert.Equal(t, "ADD", merged[1].Tag)
}

func TestMergeEmailTokensLeavesNonEmailsAlone(t *testing.T) {
	split := []Token{
		{Text: "mention"},
		{Text: "@"},
		{Text: "someone"},
	}
	merged := mergeEmailTokens(split)

	// "mention@someone" has no TLD, so the run stays split.
	require.Len(t, merged, 3)
}

func TestRecognizeDatetimesSingleSpan(t *testing.T) {
	toks := []Token{
		{Text: "meet"}, {Text: "tomorrow"}, {Text: "at"}, {Text: "3"}, {Text: "PM"},
	}
	ents := recognizeDatetimes(toks)

	require.Len(t, ents, 1)
	assert.Equal(t, LabelDate, ents[0].Label)
	assert.Equal(t, "tomorrow at 3 PM", ents[0].Text)
}

func TestRecognizeDatetimesTimeOnly(t *testing.T) {
	toks := []Token{{Text: "alarm"}, {Text: "for"}, {Text: "7:30"}}
	ents := recognizeDatetimes(toks)

	require.Len(t, ents, 1)
	assert.Equal(t, LabelTime, ents[0].Label)
	assert.Equal(t, "7:30", ents[0].Text)
}

func TestRecognizeDatetimesLeadingConnector(t *testing.T) {
	toks := []Token{{Text: "free"}, {Text: "next"}, {Text: "Tuesday"}}
	ents := recognizeDatetimes(toks)

	require.Len(t, ents, 1)
	assert.Equal(t, LabelDate, ents[0].Label)
	assert.Equal(t, "next Tuesday", ents[0].Text)
}

func TestRecognizeDatetimesBareDigitNeedsHourContext(t *testing.T) {
	// "buy 3 apples" must not yield a TIME span.
	none := recognizeDatetimes([]Token{{Text: "buy"}, {Text: "3"}, {Text: "apples"}})
	assert.Empty(t, none)

	some := recognizeDatetimes([]Token{{Text: "call"}, {Text: "at"}, {Text: "3"}})
	require.Len(t, some, 1)
	assert.Equal(t, LabelTime, some[0].Label)
}

func TestRecognizeDatetimesSeparateSpans(t *testing.T) {
	toks := []Token{
		{Text: "tomorrow"}, {Text: "or"}, {Text: "maybe"}, {Text: "Friday"},
	}
	ents := recognizeDatetimes(toks)

	require.Len(t, ents, 2)
	assert.Equal(t, "tomorrow", ents[0].Text)
	assert.Equal(t, "Friday", ents[1].Text)
}

func TestIsPunctToken(t *testing.T) {
	assert.True(t, isPunctToken(".", "."))
	assert.True(t, isPunctToken("?", "."))
	assert.True(t, isPunctToken("...", ":"))
	assert.False(t, isPunctToken("word", "NN"))
	assert.False(t, isPunctToken("3:30", "CD"))
	assert.False(t, isPunctToken("", "NN"))
}

func TestProseAnnotatorProducesTokens(t *testing.T) {
	ann, err := NewProseAnnotator().Annotate("open chrome")
	require.NoError(t, err)
	require.NotEmpty(t, ann.Tokens)
	assert.Equal(t, "open", ann.Tokens[0].Lemma)

	for i, tok := range ann.Tokens {
		assert.Equal(t, i, tok.Index)
	}
}
