// Package memory holds conversation state: a bounded in-process transcript
// for prompt building and a Redis-backed store for durable facts.
package memory

// Turn is one user utterance paired with the assistant's reply.
type Turn struct {
	User      string
	Assistant string
}

// ShortTerm is a bounded FIFO transcript. When full, appending evicts the
// oldest turn. It is owned by the conversation loop and needs no locking.
type ShortTerm struct {
	limit int
	turns []Turn
}

const defaultTurnLimit = 10

func NewShortTerm(limit int) *ShortTerm {
	if limit <= 0 {
		limit = defaultTurnLimit
	}
	return &ShortTerm{limit: limit}
}

// Add appends a completed turn, evicting from the front past the limit.
func (m *ShortTerm) Add(user, assistant string) {
	m.turns = append(m.turns, Turn{User: user, Assistant: assistant})
	if len(m.turns) > m.limit {
		m.turns = m.turns[len(m.turns)-m.limit:]
	}
}

// Turns returns a copy of the transcript, oldest first.
func (m *ShortTerm) Turns() []Turn {
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Pairs renders the transcript as user/assistant string pairs for prompt
// construction.
func (m *ShortTerm) Pairs() [][2]string {
	out := make([][2]string, 0, len(m.turns))
	for _, t := range m.turns {
		out = append(out, [2]string{t.User, t.Assistant})
	}
	return out
}

// Len reports the number of retained turns.
func (m *ShortTerm) Len() int { return len(m.turns) }
