// Package fetch - browser.go provides headless-browser probing for sites
// that only render content via JavaScript. Requires Chrome/Chromium.
package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// probeWithBrowser renders the page in a headless browser and applies the
// same liveness/content-match rules as the plain HTTP probe.
func probeWithBrowser(ctx context.Context, urlStr string, opts *Options) (*ProbeResult, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		detail := fmt.Sprintf("browser probe failed: %v", err)
		if browserCtx.Err() == context.DeadlineExceeded {
			detail = fmt.Sprintf("browser probe timed out after %s", opts.Timeout)
		}
		return &ProbeResult{URL: urlStr, Live: false, Detail: detail}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &ProbeResult{
			URL:    urlStr,
			Live:   false,
			Detail: fmt.Sprintf("could not parse rendered page: %v", err),
		}, nil
	}

	// chromedp only resolves once the navigation succeeded, so treat the
	// rendered page as a 200.
	return matchDocument(urlStr, 200, doc, opts), nil
}
