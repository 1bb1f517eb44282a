package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session represents the shared browser session with its associated
// Playwright resources. All access goes through Manager.WithSession; the
// session itself is never safe for concurrent use.
type Session struct {
	// browser is the Playwright browser instance
	browser playwright.Browser

	// context is the browser context (isolated profile)
	context playwright.BrowserContext

	// page is the single active page
	page playwright.Page

	// timeout is the default navigation timeout in milliseconds
	timeout float64

	// createdAt is when the session was launched
	createdAt time.Time

	// lastUsedAt is the timestamp of the last operation on this session
	lastUsedAt time.Time

	// currentURL is the URL of the current page
	currentURL string
}

// CurrentURL returns the URL of the session's current page.
func (s *Session) CurrentURL() string {
	return s.currentURL
}

// Options configures the shared browser session.
type Options struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// NavigationTimeoutMS is the default timeout for navigations, in
	// milliseconds. Zero means DefaultTimeout.
	NavigationTimeoutMS float64
}

// Anchor is one link-bearing element harvested from a rendered page:
// the raw href, the visible anchor text, and the text of the element
// surrounding the link.
type Anchor struct {
	Href        string `json:"href"`
	Text        string `json:"text"`
	Surrounding string `json:"surrounding,omitempty"`
}

// PageSnapshot is the link/content summary of a loaded page.
type PageSnapshot struct {
	URL    string   `json:"url"`
	Domain string   `json:"domain"`
	Title  string   `json:"title"`
	Links  []Anchor `json:"links"`
}

// InitError indicates the shared browser session could not be created or
// recreated. It is the only discovery-path failure surfaced to callers as a
// hard error.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return "browser session initialization failed: " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

const (
	// DefaultTimeout is the default navigation timeout in milliseconds.
	DefaultTimeout = 30000.0

	// DefaultViewportWidth and DefaultViewportHeight size the page viewport.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// maxSurroundingLen bounds the surrounding-text captured per anchor.
	maxSurroundingLen = 200
)
