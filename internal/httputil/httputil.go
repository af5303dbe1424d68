// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the page and document
// fetchers: browser-like request headers, status checking, bounded body
// reads, and the courtesy throttle.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// browserHeaders are sent with every outbound request so the court site
// serves us the same markup and media it serves a desktop browser.
// Accept-Encoding is left to the transport, which then decompresses
// gzip bodies transparently.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// StatusError is returned by CheckStatus for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// NewRequest builds a GET request carrying the browser header set and the
// given User-Agent.
func NewRequest(ctx context.Context, url, userAgent string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// CheckStatus returns a *StatusError unless resp carries a 2xx status.
// On error the body is drained and closed.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	var url string
	if resp.Request != nil {
		url = resp.Request.URL.String()
	}
	return &StatusError{StatusCode: resp.StatusCode, URL: url}
}

// ReadBody reads at most limit bytes from r. It fails when the body is
// larger than limit rather than returning a silently truncated payload.
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
