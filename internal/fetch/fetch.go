// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves case pages and PDF documents over HTTP(S).
//
// Every request carries a browser-like header set. There is no retry: a
// failed page fetch aborts the run and a failed document fetch is
// reported to the caller, which drops that document and moves on.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/pdiddy/court-harvest/internal/httputil"
	"github.com/pdiddy/court-harvest/internal/logging"
	"github.com/pdiddy/court-harvest/pkg/types"
)

// Client fetches pages and documents with the configured timeouts.
type Client struct {
	http   *http.Client
	cfg    types.HTTPConfig
	logger *slog.Logger
}

// New creates a Client. A nil httpClient uses a fresh http.Client; per-request
// timeouts come from cfg and are applied through the request context.
func New(httpClient *http.Client, cfg types.HTTPConfig, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		http:   httpClient,
		cfg:    cfg.WithDefaults(),
		logger: logger,
	}
}

// FetchPage returns the body of the case page at url as text.
// Any failure is reported as a *types.PageFetchError.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PageTimeout)
	defer cancel()

	c.logger.Debug("fetching page", "url", url)
	body, _, err := c.get(ctx, url)
	if err != nil {
		return "", &types.PageFetchError{URL: url, StatusCode: statusOf(err), Err: err}
	}
	return string(body), nil
}

// FetchDocument downloads the document behind link. Any failure is
// reported as a *types.DocumentFetchError. A Content-Type other than PDF
// is logged but does not fail the fetch: the court site sometimes serves
// PDFs as application/octet-stream.
func (c *Client) FetchDocument(ctx context.Context, link types.LinkDescriptor) (*types.FetchedDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.DocumentTimeout)
	defer cancel()

	c.logger.Debug("fetching document", "id", link.ID, "url", link.URL, "size_kb", link.SizeHint)
	body, contentType, err := c.get(ctx, link.URL)
	if err != nil {
		return nil, &types.DocumentFetchError{
			ID:         link.ID,
			URL:        link.URL,
			StatusCode: statusOf(err),
			Err:        err,
		}
	}

	if !isPDF(contentType) {
		c.logger.Warn("document is not served as PDF", "id", link.ID, "content_type", contentType)
	}

	return &types.FetchedDocument{
		ID:          link.ID,
		SourceURL:   link.URL,
		SizeHint:    link.SizeHint,
		ContentType: contentType,
		Data:        body,
	}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := httputil.NewRequest(ctx, url, c.cfg.UserAgent)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp.Body, c.cfg.MaxBodyBytes)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func statusOf(err error) int {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func isPDF(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "pdf")
	}
	return strings.Contains(mt, "pdf")
}
