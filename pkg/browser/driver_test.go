package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	d := New(Options{Headless: true})

	assert.Equal(t, DefaultTimeout, d.opts.Timeout)
	assert.Equal(t, DefaultUserAgent, d.opts.UserAgent)
	require.NotNil(t, d.opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, d.opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, d.opts.Viewport.Height)
}

func TestOperationsBeforeStart(t *testing.T) {
	d := New(Options{Headless: true})

	err := d.Navigate("https://example.com")
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = d.WaitForClickable([]string{"button"}, DefaultTimeout)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = d.WaitForPresence("#input", DefaultTimeout)
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = d.ExecuteScript("1 + 1")
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = d.CaptureDiagnostics()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestCloseBeforeStart(t *testing.T) {
	d := New(Options{Headless: true})
	assert.NoError(t, d.Close())
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "simple title",
			html: "<html><head><title>Telegram Web</title></head><body></body></html>",
			want: "Telegram Web",
		},
		{
			name: "title with whitespace",
			html: "<html><head><title>  Telegram  </title></head></html>",
			want: "Telegram",
		},
		{
			name: "no title",
			html: "<html><body><p>hello</p></body></html>",
			want: "",
		},
		{
			name: "empty document",
			html: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageTitle(tt.html))
		})
	}
}

func TestDiagnosticsSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diag")
	diag := &Diagnostics{
		Screenshot: []byte{0x89, 0x50, 0x4e, 0x47},
		PageSource: "<html><head><title>err</title></head></html>",
	}

	require.NoError(t, diag.Save(dir))

	shot, err := os.ReadFile(filepath.Join(dir, ScreenshotFile))
	require.NoError(t, err)
	assert.Equal(t, diag.Screenshot, shot)

	source, err := os.ReadFile(filepath.Join(dir, PageSourceFile))
	require.NoError(t, err)
	assert.Equal(t, diag.PageSource, string(source))
}
