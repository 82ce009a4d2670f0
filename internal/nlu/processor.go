package nlu

import (
	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

// Result is the outcome of one NLU pass: exactly one intent plus the entity
// bag supporting it. Err carries a description when Intent is IntentError.
type Result struct {
	Intent   Intent
	Entities *EntityBag
	Err      string
}

// Processor composes the annotator, classifier, and extractor into a single
// text-in, result-out call. It owns no state between calls.
type Processor struct {
	annotator Annotator
}

func NewProcessor(annotator Annotator) *Processor {
	return &Processor{annotator: annotator}
}

// Process classifies the utterance and extracts its entities. Annotator
// failures surface as a Result with IntentError, never as a returned error:
// the conversation loop renders them like any other turn.
func (p *Processor) Process(text string) Result {
	ann, err := p.annotator.Annotate(text)
	if err != nil {
		logx.Error().Err(err).Msg("nlu annotation failed")
		return Result{
			Intent:   IntentError,
			Entities: NewEntityBag(),
			Err:      "NLU processing failed",
		}
	}

	intent := Classify(ann)
	entities := Extract(intent, ann)

	logx.Debug().
		Str("intent", string(intent)).
		Int("tokens", len(ann.Tokens)).
		Int("entities", len(ann.Entities)).
		Msg("nlu result")

	return Result{Intent: intent, Entities: entities}
}
