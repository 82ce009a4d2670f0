// Package execx runs external commands with hard timeouts and a small,
// distinguishable error surface for the callers that need to report "not
// installed" and "timed out" differently.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

var (
	// ErrNotFound indicates the binary is not installed or not on PATH.
	ErrNotFound = errors.New("executable not found")
	// ErrTimeout indicates the command exceeded its deadline and was killed.
	ErrTimeout = errors.New("command timed out")
)

// Result holds the outcome of a completed command. A non-zero ExitCode is
// not an error at this layer; callers decide what it means.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes one command per call.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*Result, error)
}

// LocalRunner runs commands on the local host.
type LocalRunner struct {
	log zerolog.Logger
}

func NewLocalRunner() *LocalRunner {
	return &LocalRunner{log: logx.Component("execx")}
}

func (r *LocalRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (*Result, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		r.log.Warn().Str("cmd", name).Dur("elapsed", elapsed).Msg("command timed out")
		return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, name)
	}

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	default:
		return nil, err
	}

	r.log.Debug().Str("cmd", name).Int("exit", res.ExitCode).Dur("elapsed", elapsed).Msg("command finished")
	return res, nil
}
