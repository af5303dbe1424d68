// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small, valid PDF files for tests.
package pdftest

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Build returns a PDF with one page per entry in pages. Each page shows its
// text in Helvetica, one line per "\n"-separated line. An empty entry makes
// a page with a drawing but no text layer, like a scanned page.
// Build panics if the document cannot be rendered.
func Build(pages ...string) []byte {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for _, text := range pages {
		pdf.AddPage()
		if text == "" {
			pdf.Line(20, 20, 100, 100)
			continue
		}
		pdf.SetFont("Helvetica", "", 12)
		for _, line := range strings.Split(text, "\n") {
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		panic("pdftest: rendering PDF: " + err.Error())
	}
	return buf.Bytes()
}
