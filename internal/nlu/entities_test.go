package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNmapTarget(t *testing.T) {
	ann := annOf(tk("Run", "VB"), tk("nmap", "NN"), tk("on", "IN"), tk("192.168.1.1", "CD"))
	bag := Extract(IntentRunNmap, ann)

	target, ok := bag.Value(EntityTargetAddress)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.1", target)
}

func TestExtractWhoisDomain(t *testing.T) {
	ann := annOf(tk("Run", "VB"), tk("a", "DT"), tk("whois", "NN"), tk("lookup", "NN"), tk("on", "IN"), tk("google.com", "NN"))
	bag := Extract(IntentRunWhois, ann)

	target, ok := bag.Value(EntityTargetAddress)
	require.True(t, ok)
	assert.Equal(t, "google.com", target)
}

func TestExtractTargetPrefersIPv4OverDomain(t *testing.T) {
	ann := annOf(tk("nmap", "NN"), tk("example.com", "NN"), tk("10.0.0.7", "CD"))
	bag := Extract(IntentRunNmap, ann)

	target, ok := bag.Value(EntityTargetAddress)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.7", target)
}

func TestExtractTargetRejectsPartialNumeric(t *testing.T) {
	// "192.168.1" is neither a full dotted quad nor a domain name.
	ann := annOf(tk("Run", "VB"), tk("nmap", "NN"), tk("192.168.1", "CD"))
	bag := Extract(IntentRunNmap, ann)

	assert.False(t, bag.Has(EntityTargetAddress))
}

func TestExtractSearchQueryStripsPreposition(t *testing.T) {
	ann := annOf(tk("Search", "VB"), tk("for", "IN"), tk("best", "JJS"), tk("pizza", "NN"), tk("recipe", "NN"))
	bag := Extract(IntentSearchWeb, ann)

	query, ok := bag.Value(EntitySearchQuery)
	require.True(t, ok)
	assert.Equal(t, "best pizza recipe", query)
}

func TestExtractSearchQueryStripsFillers(t *testing.T) {
	ann := annOf(tk("Google", "VB"), tk("me", "PRP"), tk("some", "DT"), tk("pizza", "NN"), tk("places", "NNS"))
	bag := Extract(IntentSearchWeb, ann)

	query, ok := bag.Value(EntitySearchQuery)
	require.True(t, ok)
	assert.Equal(t, "pizza places", query)
}

func TestExtractSearchQueryDropsTrailingPunctuation(t *testing.T) {
	ann := annOf(tk("Search", "VB"), tk("for", "IN"), tk("cats", "NNS"), tk("?", "."))
	bag := Extract(IntentSearchWeb, ann)

	query, ok := bag.Value(EntitySearchQuery)
	require.True(t, ok)
	assert.Equal(t, "cats", query)
}

func TestExtractAppNameMultiword(t *testing.T) {
	ann := annOf(tk("Open", "VB"), tk("Google", "NNP"), tk("Chrome", "NNP"))
	bag := Extract(IntentOpenApplication, ann)

	name, ok := bag.First(EntityObjectName)
	require.True(t, ok)
	assert.Equal(t, "Google Chrome", name)
}

func TestExtractAppNameStopsAtVerb(t *testing.T) {
	ann := annOf(tk("Open", "VB"), tk("notepad", "NN"), tk("please", "UH"), tk("do", "VB"), tk("it", "PRP"))
	bag := Extract(IntentOpenApplication, ann)

	name, ok := bag.First(EntityObjectName)
	require.True(t, ok)
	assert.Equal(t, "notepad please", name)
}

func TestExtractAppNameFuzzyFallback(t *testing.T) {
	// The capture after "launch" is empty, so the misspelling is matched
	// against the known application names by edit distance.
	ann := annOf(tk("crome", "NN"), tk("launch", "VB"))
	bag := Extract(IntentOpenApplication, ann)

	name, ok := bag.First(EntityObjectName)
	require.True(t, ok)
	assert.Equal(t, "chrome", name)
}

func TestExtractEmailLastWins(t *testing.T) {
	first := tk("alice@example.com", "ADD")
	first.LikeEmail = true
	second := tk("bob@example.com", "ADD")
	second.LikeEmail = true

	ann := annOf(tk("email", "NN"), first, tk("not", "RB"), second)
	bag := Extract(IntentSendEmail, ann)

	addr, ok := bag.Value(EntityEmailAddress)
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", addr)
}

func TestExtractPersonAfterPreposition(t *testing.T) {
	ann := annOf(tk("Schedule", "VB"), tk("a", "DT"), tk("meeting", "NN"), tk("with", "IN"), tk("John", "NNP"))
	bag := Extract(IntentScheduleMeeting, ann)

	person, ok := bag.First(EntityPerson)
	require.True(t, ok)
	assert.Equal(t, "John", person)
}

func TestExtractBucketsNamedEntities(t *testing.T) {
	ann := &Annotation{
		Entities: []NamedEntity{
			{Label: LabelPerson, Text: "John"},
			{Label: LabelDate, Text: "tomorrow"},
			{Label: LabelTime, Text: "3 PM"},
			{Label: LabelOrg, Text: "Acme"},
		},
	}
	bag := Extract(IntentScheduleMeeting, ann)

	people, ok := bag.Values(EntityPerson)
	require.True(t, ok)
	assert.Equal(t, []string{"John"}, people)

	joined, ok := bag.Joined(EntityDatetime)
	require.True(t, ok)
	assert.Equal(t, "tomorrow 3 PM", joined)

	org, ok := bag.First(EntityObjectName)
	require.True(t, ok)
	assert.Equal(t, "Acme", org)
}

func TestEntityBagNeverStoresEmptyValues(t *testing.T) {
	bag := NewEntityBag()
	bag.Add(EntitySearchQuery, "   ")
	bag.Add(EntityPerson, "")

	assert.False(t, bag.Has(EntitySearchQuery))
	assert.False(t, bag.Has(EntityPerson))
	assert.Empty(t, bag.Kinds())
}

func TestEntityBagSingleValuedLastWins(t *testing.T) {
	bag := NewEntityBag()
	bag.Add(EntityTargetAddress, "a.com")
	bag.Add(EntityTargetAddress, "b.com")

	v, ok := bag.Value(EntityTargetAddress)
	require.True(t, ok)
	assert.Equal(t, "b.com", v)
}

func TestEntityBagMultiValuedPreservesOrder(t *testing.T) {
	bag := NewEntityBag()
	bag.Add(EntityPerson, "John")
	bag.Add(EntityPerson, "Sarah")

	vs, ok := bag.Values(EntityPerson)
	require.True(t, ok)
	assert.Equal(t, []string{"John", "Sarah"}, vs)
}

func TestEntityBagKindsAreSorted(t *testing.T) {
	bag := NewEntityBag()
	bag.Add(EntityTargetAddress, "192.168.1.1")
	bag.Add(EntityPerson, "John")
	bag.Add(EntityDatetime, "tomorrow")
	bag.Add(EntityEmailAddress, "john@example.com")

	assert.Equal(t,
		[]EntityKind{EntityDatetime, EntityEmailAddress, EntityPerson, EntityTargetAddress},
		bag.Kinds())
}
