// Package capture prints a served calendar page through headless Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Defaults match an A4 page at 150 dpi.
const (
	DefaultWidth   = 1240
	DefaultHeight  = 1754
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrNoURL is returned when Options carries no URL.
	ErrNoURL = errors.New("capture: URL is required")
	// ErrPageStatus is returned when the page answers with a non-2xx status.
	ErrPageStatus = errors.New("capture: page returned an error status")
)

// Options configures one capture.
type Options struct {
	// URL of the page, e.g. "http://127.0.0.1:8080/calendar?output=diary".
	URL string

	// Width and Height set the viewport in pixels.
	Width  int
	Height int

	// Timeout bounds the whole capture, browser start included.
	Timeout time.Duration
}

func (o Options) withDefaults() (Options, error) {
	if o.URL == "" {
		return o, ErrNoURL
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o, nil
}

// ScreenshotPNG returns a full-page PNG of opts.URL.
func ScreenshotPNG(ctx context.Context, opts Options) ([]byte, error) {
	var png []byte
	err := run(ctx, opts, chromedp.FullScreenshot(&png, 100))
	if err != nil {
		return nil, err
	}
	return png, nil
}

// PrintPDF prints opts.URL to PDF with backgrounds and the page size the
// stylesheet asks for.
func PrintPDF(ctx context.Context, opts Options) ([]byte, error) {
	var pdf []byte
	err := run(ctx, opts, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPreferCSSPageSize(true).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = data
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

func run(parent context.Context, opts Options, action chromedp.Action) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	if err := chromedp.Run(ctx, chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height))); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	resp, err := chromedp.RunResponse(ctx, chromedp.Navigate(opts.URL))
	if err != nil {
		return fmt.Errorf("capture: navigate %s: %w", opts.URL, err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := chromedp.Run(ctx, chromedp.WaitReady("body", chromedp.ByQuery), action); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	return nil
}

func checkStatus(resp *network.Response) error {
	if resp == nil {
		return nil
	}
	if resp.Status < 200 || resp.Status > 299 {
		return fmt.Errorf("%w: %d %s", ErrPageStatus, resp.Status, resp.StatusText)
	}
	return nil
}
