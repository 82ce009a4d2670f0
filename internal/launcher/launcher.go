// Package launcher opens and terminates desktop applications by name using
// the platform's default-open handler and process tools.
package launcher

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

var (
	// ErrNotFound indicates no application or file matched the name.
	ErrNotFound = errors.New("application not found")
	// ErrNoProcess indicates no running process matched the name on close.
	ErrNoProcess = errors.New("no matching process")
)

const commandTimeout = 15 * time.Second

// Launcher starts and stops applications. All operations shell out through
// the execx runner so failures stay distinguishable.
type Launcher struct {
	goos   string
	runner execx.Runner
	log    zerolog.Logger
}

func New(runner execx.Runner) *Launcher {
	return &Launcher{
		goos:   runtime.GOOS,
		runner: runner,
		log:    logx.Component("launcher"),
	}
}

// ExecutableSuffix returns the platform's executable filename suffix, empty
// when the platform has none. Callers use it for the single retry on a
// not-found launch.
func (l *Launcher) ExecutableSuffix() string {
	if l.goos == "windows" {
		return ".exe"
	}
	return ""
}

// Open launches the named application. A binary on PATH is started directly;
// anything else goes through the OS default-open handler. Returns ErrNotFound
// when neither resolves the name.
func (l *Launcher) Open(ctx context.Context, name string) error {
	if _, err := exec.LookPath(name); err == nil {
		cmd := exec.Command(name)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start %s: %w", name, err)
		}
		// Detach: the assistant does not supervise launched applications.
		if err := cmd.Process.Release(); err != nil {
			l.log.Warn().Err(err).Str("app", name).Msg("failed to release launched process")
		}
		l.log.Info().Str("app", name).Msg("application started from PATH")
		return nil
	}

	opener, args := l.openCommand(name)
	res, err := l.runner.Run(ctx, commandTimeout, opener, args...)
	if err != nil {
		if errors.Is(err, execx.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}
	if res.ExitCode != 0 {
		// Default-open handlers exit non-zero when nothing matches the name.
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	l.log.Info().Str("app", name).Msg("application opened via default handler")
	return nil
}

// Close terminates every process whose executable name matches. Returns
// ErrNoProcess when nothing matched.
func (l *Launcher) Close(ctx context.Context, name string) error {
	var killer string
	var args []string
	if l.goos == "windows" {
		killer = "taskkill"
		args = []string{"/IM", name, "/F"}
	} else {
		killer = "pkill"
		args = []string{"-x", name}
	}

	res, err := l.runner.Run(ctx, commandTimeout, killer, args...)
	if err != nil {
		if errors.Is(err, execx.ErrNotFound) {
			return fmt.Errorf("process tool %s unavailable: %w", killer, err)
		}
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: %s", ErrNoProcess, name)
	}
	l.log.Info().Str("app", name).Msg("application terminated")
	return nil
}

func (l *Launcher) openCommand(name string) (string, []string) {
	switch l.goos {
	case "darwin":
		return "open", []string{"-a", name}
	case "windows":
		return "cmd", []string{"/c", "start", "", name}
	default:
		return "xdg-open", []string{name}
	}
}
