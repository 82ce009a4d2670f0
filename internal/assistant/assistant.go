// Package assistant wires the NLU pass, task dispatch, generative fallback,
// memory, and speech into the per-utterance conversation flow.
package assistant

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mobiusvibe/assistant/internal/memory"
	"github.com/mobiusvibe/assistant/internal/nlu"
	"github.com/mobiusvibe/assistant/internal/task"
	"github.com/mobiusvibe/assistant/internal/tts"
	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

// Understander turns raw text into a classified NLU result.
type Understander interface {
	Process(text string) nlu.Result
}

// Executor runs the task for an actionable intent.
type Executor interface {
	Execute(ctx context.Context, res nlu.Result) task.TaskResult
}

// Generator produces the conversational reply for non-actionable turns.
type Generator interface {
	Generate(ctx context.Context, turns [][2]string, utterance string) string
}

// FactStore persists durable facts across sessions. Optional; a nil store
// disables long-term recording.
type FactStore interface {
	Save(ctx context.Context, key, category, value string) error
}

// actionableIntents are routed straight to the dispatcher. Everything else,
// including unknown utterances, falls through to the generative model.
var actionableIntents = map[nlu.Intent]bool{
	nlu.IntentScheduleMeeting:    true,
	nlu.IntentSendEmail:          true,
	nlu.IntentSendMessage:        true,
	nlu.IntentOpenApplication:    true,
	nlu.IntentCloseApplication:   true,
	nlu.IntentSearchWeb:          true,
	nlu.IntentSetReminder:        true,
	nlu.IntentScheduleEvent:      true,
	nlu.IntentGetCurrentDatetime: true,
	nlu.IntentRunNmap:            true,
	nlu.IntentRunWhois:           true,
}

const nluErrorFallback = "An NLU processing error occurred."

// Assistant owns one conversation. It is not safe for concurrent use; each
// session gets its own instance.
type Assistant struct {
	nlu        Understander
	executor   Executor
	generator  Generator
	speaker    tts.Speaker
	transcript *memory.ShortTerm
	facts      FactStore
	log        zerolog.Logger
}

func New(u Understander, e Executor, g Generator, sp tts.Speaker, transcript *memory.ShortTerm) *Assistant {
	return &Assistant{
		nlu:        u,
		executor:   e,
		generator:  g,
		speaker:    sp,
		transcript: transcript,
		log:        logx.Component("assistant"),
	}
}

// WithFactStore enables long-term recording of completed task outcomes.
func (a *Assistant) WithFactStore(fs FactStore) *Assistant {
	a.facts = fs
	return a
}

// Respond processes one utterance and returns the reply shown to the user.
// The layering is strict: an actionable intent yields the task result, an
// NLU failure yields its description, and everything else goes to the model.
// Every path records the turn and attempts speech; speech failures are
// logged and swallowed.
func (a *Assistant) Respond(ctx context.Context, utterance string) string {
	res := a.nlu.Process(utterance)
	a.log.Info().Str("intent", string(res.Intent)).Msg("utterance classified")

	var reply string
	switch {
	case actionableIntents[res.Intent]:
		result := a.executor.Execute(ctx, res)
		reply = result.Message
		if result.OK && a.facts != nil {
			key := "task:last:" + string(result.Intent)
			if err := a.facts.Save(ctx, key, "task_result", result.Message); err != nil {
				a.log.Warn().Err(err).Str("key", key).Msg("failed to record task outcome")
			}
		}
	case res.Intent == nlu.IntentError:
		reply = res.Err
		if reply == "" {
			reply = nluErrorFallback
		}
	default:
		reply = a.generator.Generate(ctx, a.transcript.Pairs(), utterance)
	}

	a.transcript.Add(utterance, reply)

	if err := a.speaker.Speak(ctx, reply); err != nil {
		a.log.Warn().Err(err).Msg("speech playback failed")
	}
	return reply
}
