package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// File names used when persisting a failure capture.
const (
	ScreenshotFile = "login_error.png"
	PageSourceFile = "login_error_source.html"
)

// CaptureDiagnostics snapshots the current page: a screenshot, the full
// page source and the document title.
func (d *Driver) CaptureDiagnostics() (*Diagnostics, error) {
	page, err := d.activePage()
	if err != nil {
		return nil, err
	}

	diag := &Diagnostics{URL: page.URL()}

	screenshot, err := page.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	diag.Screenshot = screenshot

	source, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("page source capture failed: %w", err)
	}
	diag.PageSource = source
	diag.Title = pageTitle(source)

	return diag, nil
}

// Save writes the capture into dir for postmortem inspection.
func (diag *Diagnostics) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create diagnostics dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ScreenshotFile), diag.Screenshot, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, PageSourceFile), []byte(diag.PageSource), 0o644); err != nil {
		return fmt.Errorf("failed to write page source: %w", err)
	}
	return nil
}

// pageTitle parses raw HTML and returns the first <title> text.
func pageTitle(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var title string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
			if title != "" {
				return
			}
		}
	}
	traverse(doc)
	return title
}
