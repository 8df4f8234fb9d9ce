package browser

import (
	"errors"
	"time"
)

// Options configures the driver's browser session.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// UserAgent overrides the browser's user agent string
	UserAgent string

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout is the default timeout applied to page operations
	Timeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Diagnostics is a capture of the page taken when an automation step fails.
type Diagnostics struct {
	// Screenshot is a PNG capture of the current viewport
	Screenshot []byte

	// PageSource is the full HTML of the current page
	PageSource string

	// Title is the document title parsed from PageSource
	Title string

	// URL is the page URL at capture time
	URL string
}

var (
	// ErrElementNotFound is returned when no selector candidate matched a
	// usable element within its timeout.
	ErrElementNotFound = errors.New("element not found")

	// ErrNotStarted is returned when a page operation is attempted before
	// Start has been called.
	ErrNotStarted = errors.New("driver not started")
)

// Default values for driver options
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36"
)
