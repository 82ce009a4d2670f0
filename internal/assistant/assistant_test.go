package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobiusvibe/assistant/internal/memory"
	"github.com/mobiusvibe/assistant/internal/nlu"
	"github.com/mobiusvibe/assistant/internal/task"
)

type fixedNLU struct {
	res nlu.Result
}

func (f fixedNLU) Process(string) nlu.Result { return f.res }

type recordingExecutor struct {
	result task.TaskResult
	calls  int
}

func (r *recordingExecutor) Execute(_ context.Context, res nlu.Result) task.TaskResult {
	r.calls++
	r.result.Intent = res.Intent
	return r.result
}

type recordingGenerator struct {
	reply    string
	calls    int
	gotTurns [][2]string
}

func (r *recordingGenerator) Generate(_ context.Context, turns [][2]string, _ string) string {
	r.calls++
	r.gotTurns = turns
	return r.reply
}

type recordingSpeaker struct {
	spoken []string
	err    error
}

func (r *recordingSpeaker) Name() string { return "recording" }

func (r *recordingSpeaker) Speak(_ context.Context, text string) error {
	r.spoken = append(r.spoken, text)
	return r.err
}

type recordingFacts struct {
	keys   []string
	values []string
	err    error
}

func (r *recordingFacts) Save(_ context.Context, key, _, value string) error {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
	return r.err
}

func newResult(intent nlu.Intent) nlu.Result {
	return nlu.Result{Intent: intent, Entities: nlu.NewEntityBag()}
}

func TestActionableIntentGoesToExecutor(t *testing.T) {
	exec := &recordingExecutor{result: task.TaskResult{Message: "Attempting to open chrome...", OK: true}}
	gen := &recordingGenerator{reply: "should not be used"}
	sp := &recordingSpeaker{}
	a := New(fixedNLU{newResult(nlu.IntentOpenApplication)}, exec, gen, sp, memory.NewShortTerm(5))

	reply := a.Respond(context.Background(), "open chrome")

	assert.Equal(t, "Attempting to open chrome...", reply)
	assert.Equal(t, 1, exec.calls)
	assert.Zero(t, gen.calls)
	assert.Equal(t, []string{"Attempting to open chrome..."}, sp.spoken)
}

func TestNLUErrorIsReportedDirectly(t *testing.T) {
	res := newResult(nlu.IntentError)
	res.Err = "NLU processing failed"
	exec := &recordingExecutor{}
	gen := &recordingGenerator{}
	a := New(fixedNLU{res}, exec, gen, &recordingSpeaker{}, memory.NewShortTerm(5))

	reply := a.Respond(context.Background(), "garbled")

	assert.Equal(t, "NLU processing failed", reply)
	assert.Zero(t, exec.calls)
	assert.Zero(t, gen.calls)
}

func TestNLUErrorWithoutDescriptionUsesFallback(t *testing.T) {
	a := New(fixedNLU{newResult(nlu.IntentError)}, &recordingExecutor{}, &recordingGenerator{}, &recordingSpeaker{}, memory.NewShortTerm(5))

	assert.Equal(t, nluErrorFallback, a.Respond(context.Background(), "garbled"))
}

func TestUnknownIntentFallsThroughToGenerator(t *testing.T) {
	gen := &recordingGenerator{reply: "Here is a joke."}
	exec := &recordingExecutor{}
	transcript := memory.NewShortTerm(5)
	transcript.Add("earlier question", "earlier answer")
	a := New(fixedNLU{newResult(nlu.IntentUnknown)}, exec, gen, &recordingSpeaker{}, transcript)

	reply := a.Respond(context.Background(), "tell me a joke")

	assert.Equal(t, "Here is a joke.", reply)
	assert.Zero(t, exec.calls)
	require.Equal(t, 1, gen.calls)
	assert.Equal(t, [][2]string{{"earlier question", "earlier answer"}}, gen.gotTurns)
}

func TestEveryTurnIsRecorded(t *testing.T) {
	gen := &recordingGenerator{reply: "hello there"}
	transcript := memory.NewShortTerm(5)
	a := New(fixedNLU{newResult(nlu.IntentUnknown)}, &recordingExecutor{}, gen, &recordingSpeaker{}, transcript)

	a.Respond(context.Background(), "hi")

	turns := transcript.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, memory.Turn{User: "hi", Assistant: "hello there"}, turns[0])
}

func TestSpeechFailureDoesNotChangeReply(t *testing.T) {
	sp := &recordingSpeaker{err: errors.New("no audio device")}
	gen := &recordingGenerator{reply: "still works"}
	a := New(fixedNLU{newResult(nlu.IntentUnknown)}, &recordingExecutor{}, gen, sp, memory.NewShortTerm(5))

	assert.Equal(t, "still works", a.Respond(context.Background(), "hi"))
}

func TestSuccessfulTaskIsRecordedAsFact(t *testing.T) {
	exec := &recordingExecutor{result: task.TaskResult{Message: "done", OK: true}}
	facts := &recordingFacts{}
	a := New(fixedNLU{newResult(nlu.IntentRunWhois)}, exec, &recordingGenerator{}, &recordingSpeaker{}, memory.NewShortTerm(5)).
		WithFactStore(facts)

	a.Respond(context.Background(), "whois example.com")

	require.Len(t, facts.keys, 1)
	assert.Equal(t, "task:last:run_whois", facts.keys[0])
	assert.Equal(t, []string{"done"}, facts.values)
}

func TestFailedTaskIsNotRecordedAsFact(t *testing.T) {
	exec := &recordingExecutor{result: task.TaskResult{Message: "Error: something", OK: false}}
	facts := &recordingFacts{}
	a := New(fixedNLU{newResult(nlu.IntentRunWhois)}, exec, &recordingGenerator{}, &recordingSpeaker{}, memory.NewShortTerm(5)).
		WithFactStore(facts)

	a.Respond(context.Background(), "whois example.com")

	assert.Empty(t, facts.keys)
}

func TestFactStoreFailureIsSwallowed(t *testing.T) {
	exec := &recordingExecutor{result: task.TaskResult{Message: "done", OK: true}}
	facts := &recordingFacts{err: errors.New("redis down")}
	a := New(fixedNLU{newResult(nlu.IntentRunWhois)}, exec, &recordingGenerator{}, &recordingSpeaker{}, memory.NewShortTerm(5)).
		WithFactStore(facts)

	assert.Equal(t, "done", a.Respond(context.Background(), "whois example.com"))
}
