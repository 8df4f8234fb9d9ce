// Package browser drives a single headless browser session through
// Playwright, exposing the small capability surface the login flows need.
package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// UI is the capability surface consumed by the login flows. It is
// satisfied by Driver and by test fakes.
type UI interface {
	// Start brings the browser session up. Calling Start on a running
	// session is a no-op.
	Start() error

	// Navigate loads the given URL and waits for the page to load.
	Navigate(url string) error

	// WaitForClickable tries each selector candidate in order and returns
	// a handle to the first visible and enabled match. Exhausting the
	// list returns ErrElementNotFound.
	WaitForClickable(selectors []string, timeout time.Duration) (Element, error)

	// WaitForPresence waits for an element matching the selector to be
	// attached to the DOM.
	WaitForPresence(selector string, timeout time.Duration) (Element, error)

	// ExecuteScript evaluates JavaScript in the page and returns its result.
	ExecuteScript(script string) (any, error)

	// CaptureDiagnostics snapshots the current page for postmortem use.
	CaptureDiagnostics() (*Diagnostics, error)
}

// Element is a handle to a located page element.
type Element interface {
	Click() error
	Type(text string) error
}

// Driver owns one Playwright browser, context and page.
type Driver struct {
	mu      sync.Mutex
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	started bool
}

// New creates a driver with the given options, filling in defaults.
func New(opts Options) *Driver {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Driver{opts: opts}
}

// Start installs Playwright if needed, launches Chromium and opens the
// page. Safe to call more than once.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}

	// Discard driver output so it does not interleave with our own logs
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.opts.Headless),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(d.opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  d.opts.Viewport.Width,
			Height: d.opts.Viewport.Height,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(float64(d.opts.Timeout.Milliseconds()))

	d.pw = pw
	d.browser = browser
	d.context = context
	d.page = page
	d.started = true
	return nil
}

// Navigate loads the URL on the session's page.
func (d *Driver) Navigate(url string) error {
	page, err := d.activePage()
	if err != nil {
		return err
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(d.opts.Timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitForClickable evaluates the selector candidates in order; the first
// visible and enabled match short-circuits the rest.
func (d *Driver) WaitForClickable(selectors []string, timeout time.Duration) (Element, error) {
	page, err := d.activePage()
	if err != nil {
		return nil, err
	}

	for _, selector := range selectors {
		handle, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(float64(timeout.Milliseconds())),
		})
		if err != nil || handle == nil {
			continue
		}
		enabled, err := handle.IsEnabled()
		if err != nil || !enabled {
			continue
		}
		return &element{handle: handle}, nil
	}

	return nil, fmt.Errorf("%w: no candidate matched %v", ErrElementNotFound, selectors)
}

// WaitForPresence waits for the selector to appear in the DOM.
func (d *Driver) WaitForPresence(selector string, timeout time.Duration) (Element, error) {
	page, err := d.activePage()
	if err != nil {
		return nil, err
	}

	handle, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return &element{handle: handle}, nil
}

// ExecuteScript evaluates JavaScript in the page context.
func (d *Driver) ExecuteScript(script string) (any, error) {
	page, err := d.activePage()
	if err != nil {
		return nil, err
	}

	result, err := page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}
	return result, nil
}

// Close tears down the page, context, browser and Playwright itself.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil
	}

	_ = d.page.Close()    // Ignore errors, continue cleanup
	_ = d.context.Close() // Ignore errors, continue cleanup
	_ = d.browser.Close() // Ignore errors, continue cleanup

	d.started = false
	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

func (d *Driver) activePage() (playwright.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return nil, ErrNotStarted
	}
	return d.page, nil
}

// element wraps a Playwright element handle.
type element struct {
	handle playwright.ElementHandle
}

func (e *element) Click() error {
	if err := e.handle.Click(); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *element) Type(text string) error {
	if err := e.handle.Type(text); err != nil {
		return fmt.Errorf("type failed: %w", err)
	}
	return nil
}
