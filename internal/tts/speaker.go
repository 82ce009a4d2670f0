// Package tts turns assistant replies into speech via a local synthesis
// engine.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobiusvibe/assistant/internal/execx"
	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

type Config struct {
	Enabled bool   `envconfig:"TTS_ENABLED" default:"true"`
	Engine  string `envconfig:"TTS_ENGINE"`
	Voice   string `envconfig:"TTS_VOICE"`
}

// Speaker voices one utterance. Speak blocks until playback finishes or ctx
// is done.
type Speaker interface {
	Name() string
	Speak(ctx context.Context, text string) error
}

// ErrNoEngine indicates no synthesis binary was found on PATH.
var ErrNoEngine = errors.New("no speech engine available")

const speakTimeout = 60 * time.Second

// enginesFor lists candidate binaries in preference order per platform.
func enginesFor(goos string) []string {
	if goos == "darwin" {
		return []string{"say"}
	}
	return []string{"espeak-ng", "espeak"}
}

// ExecSpeaker shells out to a local synthesis engine.
type ExecSpeaker struct {
	engine string
	voice  string
	runner execx.Runner
	log    zerolog.Logger
}

// NewExecSpeaker picks the engine: the configured one if present, otherwise
// the first platform candidate found on PATH.
func NewExecSpeaker(cfg Config, runner execx.Runner) (*ExecSpeaker, error) {
	log := logx.Component("tts")

	candidates := enginesFor(runtime.GOOS)
	if cfg.Engine != "" {
		candidates = []string{cfg.Engine}
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			log.Info().Str("engine", name).Msg("speech engine selected")
			return &ExecSpeaker{engine: name, voice: cfg.Voice, runner: runner, log: log}, nil
		}
	}
	return nil, fmt.Errorf("%w: tried %v", ErrNoEngine, candidates)
}

func (s *ExecSpeaker) Name() string { return s.engine }

func (s *ExecSpeaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	var args []string
	if s.voice != "" {
		// say, espeak, and espeak-ng all take -v for voice selection.
		args = append(args, "-v", s.voice)
	}
	args = append(args, text)

	res, err := s.runner.Run(ctx, speakTimeout, s.engine, args...)
	if err != nil {
		return fmt.Errorf("speak via %s: %w", s.engine, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("speak via %s: exit %d: %s", s.engine, res.ExitCode, res.Stderr)
	}
	return nil
}

// NoopSpeaker is used when TTS is disabled or no engine exists; playback
// failures must never interrupt the conversation.
type NoopSpeaker struct{}

func (NoopSpeaker) Name() string                        { return "noop" }
func (NoopSpeaker) Speak(context.Context, string) error { return nil }

// NewSpeaker returns the configured speaker, falling back to NoopSpeaker
// when disabled or when no engine is installed.
func NewSpeaker(cfg Config, runner execx.Runner) Speaker {
	log := logx.Component("tts")
	if !cfg.Enabled {
		log.Info().Msg("tts disabled")
		return NoopSpeaker{}
	}
	sp, err := NewExecSpeaker(cfg, runner)
	if err != nil {
		log.Warn().Err(err).Msg("tts unavailable, replies will be text only")
		return NoopSpeaker{}
	}
	return sp
}
