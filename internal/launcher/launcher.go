// Package launcher opens URLs in a browser.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/logging"
)

// ErrUnsupportedPlatform is returned when no default URL handler is known.
var ErrUnsupportedPlatform = errors.New("launcher: no default URL handler for this platform")

// BrowserResolver returns the configured browser executable, or "" for
// the OS default. It is called on every Launch.
type BrowserResolver func() string

// StartFunc starts a process without waiting for it to exit.
type StartFunc func(ctx context.Context, name string, args ...string) error

// Config configures a Launcher.
type Config struct {
	Browser BrowserResolver
	// Start replaces process creation, for tests.
	Start   StartFunc
	// GOOS overrides runtime.GOOS when picking the default handler.
	GOOS    string
	Logger  *zap.Logger
}

// Launcher opens URLs with a configured browser or the OS default.
type Launcher struct {
	browser BrowserResolver
	start   StartFunc
	goos    string
	logger  *zap.Logger
}

// New creates a launcher.
func New(cfg Config) *Launcher {
	l := &Launcher{
		browser: cfg.Browser,
		start:   cfg.Start,
		goos:    cfg.GOOS,
		logger:  logging.OrNop(cfg.Logger),
	}
	if l.browser == nil {
		l.browser = func() string { return "" }
	}
	if l.start == nil {
		l.start = startDetached
	}
	if l.goos == "" {
		l.goos = runtime.GOOS
	}
	return l
}

// Launch opens url. The browser path is resolved at call time.
func (l *Launcher) Launch(ctx context.Context, url string) error {
	name, args, err := l.command(url)
	if err != nil {
		return err
	}

	l.logger.Debug("Opening URL", zap.String("command", name), zap.String("url", url))
	if err := l.start(ctx, name, args...); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}
	return nil
}

func (l *Launcher) command(url string) (string, []string, error) {
	if path := l.browser(); path != "" {
		return path, []string{url}, nil
	}

	switch l.goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, l.goos)
	}
}

// startDetached starts the process and reaps it in the background. The
// browser must outlive ctx, so ctx only gates the start.
func startDetached(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
