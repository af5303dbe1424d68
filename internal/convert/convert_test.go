// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/court-harvest/internal/pdftest"
	"github.com/pdiddy/court-harvest/pkg/types"
)

func TestPDFConverter_SinglePage(t *testing.T) {
	data := pdftest.Build("IN THE COURT OF APPEALS")

	text, err := NewPDFConverter().Convert(context.Background(), data)
	require.NoError(t, err)
	assert.Contains(t, text, "IN THE COURT OF APPEALS")
}

func TestPDFConverter_PagesInOrder(t *testing.T) {
	data := pdftest.Build("First page opinion", "Second page judgment", "Third page mandate")

	text, err := NewPDFConverter().Convert(context.Background(), data)
	require.NoError(t, err)

	first := strings.Index(text, "First page opinion")
	second := strings.Index(text, "Second page judgment")
	third := strings.Index(text, "Third page mandate")
	require.True(t, first >= 0 && second >= 0 && third >= 0, "text: %q", text)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestPDFConverter_MultipleLines(t *testing.T) {
	data := pdftest.Build("Order of the Court\nSecond line")

	text, err := NewPDFConverter().Convert(context.Background(), data)
	require.NoError(t, err)

	first := strings.Index(text, "Order of the Court")
	second := strings.Index(text, "Second line")
	require.True(t, first >= 0 && second >= 0, "text: %q", text)
	assert.Less(t, first, second)
}

func TestPDFConverter_EscapedCharacters(t *testing.T) {
	data := pdftest.Build(`Smith (Appellant) v. Jones`)

	text, err := NewPDFConverter().Convert(context.Background(), data)
	require.NoError(t, err)
	assert.Contains(t, text, "Smith (Appellant) v. Jones")
}

func TestPDFConverter_ImageOnlyPageYieldsEmptyText(t *testing.T) {
	data := pdftest.Build("")

	text, err := NewPDFConverter().Convert(context.Background(), data)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestPDFConverter_MixedScannedPages(t *testing.T) {
	data := pdftest.Build("", "Typed order", "")

	text, err := NewPDFConverter().Convert(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "Typed order", text)
}

func TestPDFConverter_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"html error page", []byte("<html><body>Access denied</body></html>")},
		{"truncated header", []byte("%PDF-1.4 fake")},
		{"truncated body", pdftest.Build("cut short")[:60]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPDFConverter().Convert(context.Background(), tt.data)
			var ce *types.ConversionError
			assert.True(t, errors.As(err, &ce), "got %v", err)
		})
	}
}

func TestPDFConverter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFConverter().Convert(ctx, pdftest.Build("page"))
	assert.ErrorIs(t, err, context.Canceled)
}

// fakeConverter satisfies Converter; it guards the interface against drift.
type fakeConverter struct {
	text string
	err  error
}

func (f *fakeConverter) Convert(context.Context, []byte) (string, error) {
	return f.text, f.err
}

func TestConverterInterface(t *testing.T) {
	var c Converter = &fakeConverter{text: "ok"}
	got, err := c.Convert(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	c = NewPDFConverter()
	assert.NotNil(t, c)
}
