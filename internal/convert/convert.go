// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns downloaded PDF payloads into plain text.
//
// Conversion is a pure transformation over bytes: no network and no
// filesystem. Only the embedded text layer is read; scanned pages without
// one produce empty text, which is not an error.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/court-harvest/pkg/types"
)

// Converter transforms raw PDF bytes into plain text. Implementations must
// return a *types.ConversionError when data is not a readable PDF.
type Converter interface {
	Convert(ctx context.Context, data []byte) (string, error)
}

// PDFConverter extracts the text layer from PDF content streams.
type PDFConverter struct{}

// NewPDFConverter creates a PDFConverter.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

// Convert returns the text of every page, in page order, one page per
// line group. Pages that fail to decode are skipped; a payload that cannot
// be opened as a PDF at all is a *types.ConversionError.
func (c *PDFConverter) Convert(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &types.ConversionError{Err: errors.New("empty payload")}
	}

	// The parser panics on some malformed inputs instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &types.ConversionError{Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &types.ConversionError{Err: err}
	}

	var parts []string

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		// Font resource names are page-local, so each page builds its own map.
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(pageText); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	return strings.Join(parts, "\n"), nil
}
