// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the harvest pipeline over HTTP.
//
// POST /api/scrape accepts {"url", "merge_texts"} and answers with the
// separate or merged result shape. Invalid input is a 400, a failed run a
// 500. A page with no PDF links is a 200 with success set to false.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/court-harvest/internal/logging"
	"github.com/pdiddy/court-harvest/internal/pipeline"
	"github.com/pdiddy/court-harvest/pkg/types"
)

// NoLinksMessage is reported when the case page lists no PDFs.
const NoLinksMessage = "No PDF links found on the page"

// Runner runs one harvest.
type Runner interface {
	Run(ctx context.Context, url string, merge bool) (*types.Result, error)
}

// ScrapeRequest is the body of POST /api/scrape.
type ScrapeRequest struct {
	URL        string `json:"url"`
	MergeTexts bool   `json:"merge_texts"`
}

// Document is one converted document in a separate-mode response.
type Document struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Size     string `json:"size"`
}

// SeparateResponse is returned when merge_texts is false.
type SeparateResponse struct {
	Success        bool                    `json:"success"`
	Format         types.OutputMode        `json:"format"`
	PDFCount       int                     `json:"pdf_count"`
	ProcessedCount int                     `json:"processed_count"`
	Documents      []Document              `json:"documents"`
	Note           string                  `json:"note,omitempty"`
	Failures       []types.DocumentFailure `json:"failures,omitempty"`
}

// MergedResponse is returned when merge_texts is true.
type MergedResponse struct {
	Success        bool                    `json:"success"`
	Format         types.OutputMode        `json:"format"`
	PDFCount       int                     `json:"pdf_count"`
	ProcessedCount int                     `json:"processed_count"`
	MergedContent  string                  `json:"merged_content"`
	Filename       string                  `json:"filename"`
	Note           string                  `json:"note,omitempty"`
	Failures       []types.DocumentFailure `json:"failures,omitempty"`
}

// NoLinksResponse is returned when the page has no qualifying links.
type NoLinksResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	PDFCount  int        `json:"pdf_count"`
	Documents []Document `json:"documents"`
}

// ErrorResponse reports a rejected request or a failed run.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Server holds the HTTP handlers.
type Server struct {
	runner Runner
	cfg    types.ServerConfig
	logger *slog.Logger
}

// NewServer creates a Server. A nil logger discards output.
func NewServer(r Runner, cfg types.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{runner: r, cfg: cfg.WithDefaults(), logger: logger}
}

// Echo builds the router with middleware and routes installed.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				s.logger.Error("request failed", append(attrs, "error", v.Error.Error())...)
				return nil
			}
			s.logger.Info("request completed", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.POST("/api/scrape", s.Scrape)
	e.GET("/health", s.Health)
	return e
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Scrape handles POST /api/scrape.
func (s *Server) Scrape(c echo.Context) error {
	var req ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := pipeline.ValidateURL(req.URL, s.cfg.AllowedHosts); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: reason(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.RequestTimeout)
	defer cancel()

	res, err := s.runner.Run(ctx, req.URL, req.MergeTexts)
	if err != nil {
		var ie *types.InputError
		if errors.As(err, &ie) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ie.Reason})
		}
		s.logger.Error("harvest failed", "url", req.URL, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, Response(res))
}

// Response maps a pipeline result to its JSON shape.
func Response(r *types.Result) any {
	if r.TotalLinksFound == 0 {
		return NoLinksResponse{
			Message:   NoLinksMessage,
			Documents: []Document{},
		}
	}
	if r.Mode == types.ModeMerged {
		return MergedResponse{
			Success:        true,
			Format:         types.ModeMerged,
			PDFCount:       r.TotalLinksFound,
			ProcessedCount: r.ProcessedCount,
			MergedContent:  r.MergedContent,
			Filename:       r.Filename,
			Note:           r.Note,
			Failures:       r.Failures,
		}
	}
	docs := make([]Document, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, Document{ID: d.ID, Filename: d.Filename, Content: d.Text, Size: d.SizeHint})
	}
	return SeparateResponse{
		Success:        true,
		Format:         types.ModeSeparate,
		PDFCount:       r.TotalLinksFound,
		ProcessedCount: r.ProcessedCount,
		Documents:      docs,
		Note:           r.Note,
		Failures:       r.Failures,
	}
}

func reason(err error) string {
	var ie *types.InputError
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return err.Error()
}
