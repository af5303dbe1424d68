// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one harvest: fetch the case page, extract PDF
// links, fetch and convert a bounded batch of documents one at a time with
// a courtesy delay between fetches, and assemble the output.
//
// Only an invalid URL or an unreachable case page fails a run. A document
// that cannot be fetched or converted is dropped and recorded in
// Result.Failures. When ctx is cancelled mid-batch, Run returns what it has
// converted so far.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/court-harvest/internal/assemble"
	"github.com/pdiddy/court-harvest/internal/convert"
	"github.com/pdiddy/court-harvest/internal/httputil"
	"github.com/pdiddy/court-harvest/internal/links"
	"github.com/pdiddy/court-harvest/internal/logging"
	"github.com/pdiddy/court-harvest/pkg/types"
)

// Fetcher retrieves the case page and individual documents.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
	FetchDocument(ctx context.Context, link types.LinkDescriptor) (*types.FetchedDocument, error)
}

// Throttle spaces consecutive document fetches.
type Throttle interface {
	Wait(ctx context.Context) error
	Done()
}

// Pipeline holds the collaborators for harvest runs. It keeps no state
// between runs and may be shared by concurrent callers.
type Pipeline struct {
	fetcher     Fetcher
	converter   convert.Converter
	cfg         types.HarvestConfig
	logger      *slog.Logger
	newThrottle func(time.Duration) Throttle
	onFetched   func(types.FetchedDocument)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithThrottle replaces the throttle constructor, called once per run.
func WithThrottle(fn func(time.Duration) Throttle) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newThrottle = fn
		}
	}
}

// WithFetchHook registers fn to receive every successfully fetched payload
// before it is converted, including payloads that later fail conversion.
// fn must be safe for concurrent use if the Pipeline is shared.
func WithFetchHook(fn func(types.FetchedDocument)) Option {
	return func(p *Pipeline) {
		p.onFetched = fn
	}
}

// New creates a Pipeline. Zero fields in cfg take their defaults.
func New(f Fetcher, c convert.Converter, cfg types.HarvestConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:   f,
		converter: c,
		cfg:       cfg.WithDefaults(),
		logger:    logging.Discard(),
		newThrottle: func(d time.Duration) Throttle {
			return httputil.NewThrottle(d)
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ValidateURL checks that raw is an absolute http(s) URL and, when
// allowedHosts is non-empty, that its host is listed. Failures are
// *types.InputError.
func ValidateURL(raw string, allowedHosts []string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &types.InputError{Reason: "URL is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &types.InputError{Input: raw, Reason: "invalid URL format"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &types.InputError{Input: raw, Reason: "invalid URL scheme"}
	}
	if u.Host == "" {
		return &types.InputError{Input: raw, Reason: "invalid URL format"}
	}
	host := u.Hostname()
	if len(allowedHosts) > 0 && !slices.ContainsFunc(allowedHosts, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(h), host)
	}) {
		return &types.InputError{Input: raw, Reason: "URL host not allowed"}
	}
	return nil
}

// Run harvests the case page at rawURL. With merge set the documents are
// combined into one text; otherwise they are returned separately.
func (p *Pipeline) Run(ctx context.Context, rawURL string, merge bool) (*types.Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateURL(rawURL, nil); err != nil {
		return nil, err
	}
	log := p.logger.With("run", uuid.NewString(), "url", rawURL)

	page, err := p.fetcher.FetchPage(ctx, rawURL)
	if err != nil {
		var pfe *types.PageFetchError
		if !errors.As(err, &pfe) {
			err = &types.PageFetchError{URL: rawURL, Err: err}
		}
		log.Error("case page unavailable", "error", err)
		return nil, err
	}

	found, err := links.Extract(page, rawURL, p.cfg.MatchConfig)
	if err != nil {
		return nil, fmt.Errorf("extracting links: %w", err)
	}

	result := &types.Result{TotalLinksFound: len(found)}
	if len(found) == 0 {
		log.Info("no PDF links found")
		assemble.Assemble(result, nil, merge)
		return result, nil
	}

	batch := found
	if len(batch) > p.cfg.MaxDocuments {
		batch = batch[:p.cfg.MaxDocuments]
	}
	log.Info("found PDF links", "total", len(found), "batch", len(batch))

	docs, failures, stopErr := p.processBatch(ctx, log, batch)

	result.ProcessedCount = len(docs)
	result.Failures = failures
	assemble.Assemble(result, docs, merge)
	if result.Truncated() {
		result.Note = note(result, len(batch) < len(found), p.cfg.MaxDocuments, stopErr)
	}

	log.Info("harvest complete",
		"found", result.TotalLinksFound,
		"processed", result.ProcessedCount,
		"failed", len(failures),
	)
	return result, nil
}

// processBatch fetches and converts each link in order. It stops early,
// returning the cause, only when ctx is done.
func (p *Pipeline) processBatch(ctx context.Context, log *slog.Logger, batch []types.LinkDescriptor) ([]types.ConvertedDocument, []types.DocumentFailure, error) {
	throttle := p.newThrottle(p.cfg.FetchDelay)
	var (
		docs     []types.ConvertedDocument
		failures []types.DocumentFailure
	)

	for i, link := range batch {
		if err := throttle.Wait(ctx); err != nil {
			log.Warn("batch interrupted", "remaining", len(batch)-i, "error", err)
			return docs, failures, err
		}

		doc, failure := p.processOne(ctx, link)
		throttle.Done()

		if doc != nil {
			log.Debug("document converted", "id", link.ID, "chars", len(doc.Text))
			docs = append(docs, *doc)
		}
		// A failure caused by cancellation is not the document's fault.
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("batch interrupted", "remaining", len(batch)-i-1, "error", ctxErr)
			return docs, failures, ctxErr
		}
		if failure != nil {
			log.Warn("document dropped", "id", link.ID, "stage", failure.Stage, "error", failure.Message)
			failures = append(failures, *failure)
		}
	}
	return docs, failures, nil
}

func (p *Pipeline) processOne(ctx context.Context, link types.LinkDescriptor) (*types.ConvertedDocument, *types.DocumentFailure) {
	fetched, err := p.fetcher.FetchDocument(ctx, link)
	if err != nil {
		return nil, &types.DocumentFailure{ID: link.ID, URL: link.URL, Stage: types.StageFetch, Message: err.Error()}
	}
	if p.onFetched != nil {
		p.onFetched(*fetched)
	}

	text, err := p.converter.Convert(ctx, fetched.Data)
	if err != nil {
		var ce *types.ConversionError
		if errors.As(err, &ce) && ce.ID == 0 {
			err = &types.ConversionError{ID: link.ID, Err: ce.Err}
		}
		return nil, &types.DocumentFailure{ID: link.ID, URL: link.URL, Stage: types.StageConvert, Message: err.Error()}
	}

	return &types.ConvertedDocument{
		ID:       link.ID,
		Text:     text,
		SizeHint: link.SizeHint,
	}, nil
}

// note explains why fewer documents were processed than were found.
func note(r *types.Result, capped bool, limit int, stopErr error) string {
	var reasons []string
	if capped {
		reasons = append(reasons, fmt.Sprintf("limit: %d per request", limit))
	}
	if n := len(r.Failures); n > 0 {
		reasons = append(reasons, fmt.Sprintf("%d failed", n))
	}
	if stopErr != nil {
		reasons = append(reasons, fmt.Sprintf("stopped early: %v", stopErr))
	}

	msg := fmt.Sprintf("Processed %d of %d PDFs", r.ProcessedCount, r.TotalLinksFound)
	if len(reasons) > 0 {
		msg += " (" + strings.Join(reasons, "; ") + ")"
	}
	return msg + "."
}
