package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/sushgandhi/browser-use-mcp/pkg/logging"
)

// Manager owns the lifecycle of the single shared browser session.
//
// The session is created lazily on first use and reused by every caller
// until Close is called or the process exits. Navigation engines of this
// class are not safe for concurrent interleaving, so the manager holds one
// mutex for the full duration of each operation: a caller that needs the
// session blocks until the current holder finishes.
type Manager struct {
	mu   sync.Mutex
	opts Options
	pw   *playwright.Playwright

	session *Session

	// launch and probe are replaceable for tests.
	launch func() (*Session, error)
	probe  func(*Session) bool

	log *logging.Logger
}

// NewManager creates a session manager. No browser resources are allocated
// until the first WithSession call.
func NewManager(opts Options) *Manager {
	if opts.NavigationTimeoutMS <= 0 {
		opts.NavigationTimeoutMS = DefaultTimeout
	}
	log, _ := logging.NewLogger("browser")

	m := &Manager{
		opts: opts,
		log:  log,
	}
	m.launch = m.launchSession
	m.probe = probeSession
	return m
}

// WithSession runs fn with the shared session under the operation lock.
//
// The lock is held for the whole operation, not just the acquire step, and
// is released on every exit path including fn errors and caller timeouts
// observed before acquisition. If no session exists one is created; if the
// existing session fails its liveness probe it is discarded and recreated
// once. Creation failures are returned as *InitError and never retried here.
func (m *Manager) WithSession(ctx context.Context, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := m.sessionLocked()
	if err != nil {
		return err
	}
	session.lastUsedAt = time.Now()
	return fn(session)
}

// Close tears down the session and stops Playwright. Idempotent: closing
// with no active session is a successful no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeSessionLocked()

	if m.pw != nil {
		pw := m.pw
		m.pw = nil
		if err := pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return nil
}

// sessionLocked returns a live session, creating or recreating one as
// needed. Caller must hold m.mu.
func (m *Manager) sessionLocked() (*Session, error) {
	if m.session != nil {
		if m.probe(m.session) {
			return m.session, nil
		}
		m.log.Warnf("session failed liveness probe, recreating")
		m.closeSessionLocked()
	}

	session, err := m.launch()
	if err != nil {
		return nil, &InitError{Err: err}
	}
	m.session = session
	m.log.Infof("browser session started (headless=%t)", m.opts.Headless)
	return session, nil
}

// closeSessionLocked releases all session resources, tolerating partially
// constructed sessions. Caller must hold m.mu.
func (m *Manager) closeSessionLocked() {
	session := m.session
	m.session = nil
	if session == nil {
		return
	}

	if session.page != nil {
		_ = session.page.Close()
	}
	if session.context != nil {
		_ = session.context.Close()
	}
	if session.browser != nil {
		_ = session.browser.Close()
	}
	m.log.Infof("browser session closed")
}

// launchSession starts Playwright if needed and launches a fresh Chromium
// session. Caller must hold m.mu.
func (m *Manager) launchSession() (*Session, error) {
	if m.pw == nil {
		runOpts := &playwright.RunOptions{
			Verbose: false,
			Stdout:  io.Discard,
			Stderr:  io.Discard,
		}
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
		pw, err := playwright.Run(runOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to start playwright: %w", err)
		}
		m.pw = pw
	}

	browser, err := m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(m.opts.NavigationTimeoutMS)

	now := time.Now()
	return &Session{
		browser:    browser,
		context:    browserCtx,
		page:       page,
		timeout:    m.opts.NavigationTimeoutMS,
		createdAt:  now,
		lastUsedAt: now,
		currentURL: "about:blank",
	}, nil
}

// probeSession is the default liveness check.
func probeSession(s *Session) bool {
	return s.browser != nil && s.browser.IsConnected()
}
