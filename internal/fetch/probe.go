// Package fetch provides URL probing for the verify stage. Probing is a
// plain GET with a bounded timeout; it never mutates anything remote.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default probe timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for probe requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; PublishAgent/1.0)"

// ProbeResult reports whether a URL is live and serving the expected page.
type ProbeResult struct {
	URL        string
	Live       bool
	StatusCode int
	Detail     string
}

// Error represents an error during URL probing.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("probe error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the probe behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// MatchText, when set, requires the rendered page to contain this text
	// for the probe to count as live. Used by the "require URL match"
	// stage setting to catch a stale or wrong page behind a 200.
	MatchText string
	// UseBrowser renders the page in a headless browser before matching,
	// for sites that only produce content via JavaScript.
	UseBrowser bool
}

// DefaultOptions returns sensible defaults for probing.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Probe checks whether a URL is reachable and serving the expected page.
// Network failures and timeouts are reported in the result's Detail, not
// as errors; an error is returned only for an invalid URL.
func Probe(ctx context.Context, urlStr string, opts *Options) (*ProbeResult, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	if opts.UseBrowser {
		return probeWithBrowser(ctx, urlStr, opts)
	}

	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		detail := fmt.Sprintf("unreachable: %v", err)
		if ctx.Err() != nil || isTimeout(err) {
			detail = fmt.Sprintf("timed out after %s", opts.Timeout)
		}
		return &ProbeResult{URL: urlStr, Live: false, Detail: detail}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &ProbeResult{
			URL:        urlStr,
			Live:       false,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return &ProbeResult{
			URL:        urlStr,
			Live:       false,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("could not parse response body: %v", err),
		}, nil
	}

	return matchDocument(urlStr, resp.StatusCode, doc, opts), nil
}

// matchDocument applies the optional content-match rule to a parsed page.
func matchDocument(urlStr string, status int, doc *goquery.Document, opts *Options) *ProbeResult {
	if opts.MatchText == "" {
		return &ProbeResult{URL: urlStr, Live: true, StatusCode: status, Detail: "page is live"}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	body := doc.Find("body").Text()
	if strings.Contains(title, opts.MatchText) || strings.Contains(body, opts.MatchText) {
		return &ProbeResult{
			URL:        urlStr,
			Live:       true,
			StatusCode: status,
			Detail:     fmt.Sprintf("page is live and matches %q", opts.MatchText),
		}
	}
	return &ProbeResult{
		URL:        urlStr,
		Live:       false,
		StatusCode: status,
		Detail:     fmt.Sprintf("page is live but does not contain %q", opts.MatchText),
	}
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return false
}
