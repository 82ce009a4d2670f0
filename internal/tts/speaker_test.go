package tts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobiusvibe/assistant/internal/execx"
	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

type stubRunner struct {
	res   execx.Result
	err   error
	calls int
	name  string
	args  []string
}

func (s *stubRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) (*execx.Result, error) {
	s.calls++
	s.name, s.args = name, args
	if s.err != nil {
		return nil, s.err
	}
	return &s.res, nil
}

func newSpeaker(engine, voice string, runner execx.Runner) *ExecSpeaker {
	return &ExecSpeaker{engine: engine, voice: voice, runner: runner, log: logx.Component("tts")}
}

func TestSpeakPassesTextAndVoice(t *testing.T) {
	runner := &stubRunner{}
	sp := newSpeaker("espeak-ng", "en-GB", runner)

	require.NoError(t, sp.Speak(context.Background(), "hello"))
	assert.Equal(t, "espeak-ng", runner.name)
	assert.Equal(t, []string{"-v", "en-GB", "hello"}, runner.args)
}

func TestSpeakWithoutVoice(t *testing.T) {
	runner := &stubRunner{}
	sp := newSpeaker("say", "", runner)

	require.NoError(t, sp.Speak(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, runner.args)
}

func TestSpeakSkipsEmptyText(t *testing.T) {
	runner := &stubRunner{}
	sp := newSpeaker("say", "", runner)

	require.NoError(t, sp.Speak(context.Background(), ""))
	assert.Zero(t, runner.calls)
}

func TestSpeakReportsEngineFailure(t *testing.T) {
	runner := &stubRunner{res: execx.Result{ExitCode: 1, Stderr: "no audio device"}}
	sp := newSpeaker("espeak", "", runner)

	err := sp.Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio device")
}

func TestSpeakReportsRunnerError(t *testing.T) {
	runner := &stubRunner{err: errors.New("boom")}
	sp := newSpeaker("espeak", "", runner)

	assert.Error(t, sp.Speak(context.Background(), "hello"))
}

func TestNewSpeakerDisabledIsNoop(t *testing.T) {
	sp := NewSpeaker(Config{Enabled: false}, &stubRunner{})
	assert.Equal(t, "noop", sp.Name())
	assert.NoError(t, sp.Speak(context.Background(), "silent"))
}

func TestNewSpeakerMissingEngineFallsBackToNoop(t *testing.T) {
	sp := NewSpeaker(Config{Enabled: true, Engine: "definitely-not-a-real-tts-xyz"}, &stubRunner{})
	assert.Equal(t, "noop", sp.Name())
}

func TestEnginesForPlatform(t *testing.T) {
	assert.Equal(t, []string{"say"}, enginesFor("darwin"))
	assert.Equal(t, []string{"espeak-ng", "espeak"}, enginesFor("linux"))
}
