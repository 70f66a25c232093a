package mdexport

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-mdexport/internal/process"
)

// browserSession owns one headless Chrome, launched on first use and shared
// by the rasterizer and the PDF printer of an Exporter.
type browserSession struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newBrowserSession(timeout time.Duration) *browserSession {
	return &browserSession{timeout: timeout}
}

// get returns the connected browser, launching it if needed.
func (s *browserSession) get() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	s.launcher = l
	s.browser = b
	return b, nil
}

// noSandbox reports whether Chrome must run without its sandbox: CI,
// containers with a pre-installed browser, or an explicit request.
func noSandbox() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("ROD_BROWSER_BIN") != "" ||
		os.Getenv("ROD_NO_SANDBOX") == "1"
}

// Close shuts the browser down. Safe to call when it was never launched.
func (s *browserSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return nil
	}

	var errs []error
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.launcher != nil {
		if pid := s.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		s.launcher.Kill()
	}
	s.browser = nil
	s.launcher = nil
	return errors.Join(errs...)
}
