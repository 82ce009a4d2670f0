package llm

import (
	"errors"
	"io"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// Stream yields reply fragments in order. It is finite, not restartable, and
// safe to abandon early via Close. A Stream constructed from a failure holds
// one pending fragment and no reader.
type Stream struct {
	reader  *schema.StreamReader[*schema.Message]
	pending string
	done    bool
	err     error
	closeFn sync.Once
}

// Err reports a mid-stream failure, nil after a clean end.
func (s *Stream) Err() error { return s.err }

// Next returns the next non-empty fragment. ok is false once the stream is
// exhausted or closed; the fragment is then empty.
func (s *Stream) Next() (string, bool) {
	if s.done {
		return "", false
	}
	if s.reader == nil {
		s.done = true
		if s.pending == "" {
			return "", false
		}
		return s.pending, true
	}

	for {
		msg, err := s.reader.Recv()
		if err != nil {
			// EOF and mid-stream failures both terminate; a partial reply is
			// still a reply.
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			s.Close()
			return "", false
		}
		if msg.Content != "" {
			return msg.Content, true
		}
	}
}

// Close releases the underlying reader. Safe to call more than once and
// concurrently with nothing; the stream is single-consumer.
func (s *Stream) Close() {
	s.closeFn.Do(func() {
		s.done = true
		if s.reader != nil {
			s.reader.Close()
		}
	})
}
