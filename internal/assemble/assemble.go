// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble shapes converted documents into pipeline output: a list
// of separately named text files or one merged text with delimiter tags.
package assemble

import (
	"fmt"
	"strings"

	"github.com/pdiddy/court-harvest/pkg/types"
)

// MergedFilename is the name reported for merged output.
const MergedFilename = "merged_court_documents.txt"

// Filename returns the text file name for a document.
func Filename(id int, sizeHint string) string {
	return baseName(id, sizeHint) + ".txt"
}

// PDFFilename returns the file name for a document's original PDF.
func PDFFilename(id int, sizeHint string) string {
	return baseName(id, sizeHint) + ".pdf"
}

func baseName(id int, sizeHint string) string {
	if sizeHint == "" {
		sizeHint = types.SizeUnknown
	}
	return fmt.Sprintf("document_%d_%sKB", id, sizeHint)
}

// Separate returns docs in the given order with filenames filled in.
// The input slice is not modified.
func Separate(docs []types.ConvertedDocument) []types.ConvertedDocument {
	out := make([]types.ConvertedDocument, len(docs))
	for i, d := range docs {
		d.Filename = Filename(d.ID, d.SizeHint)
		out[i] = d
	}
	return out
}

// Merged wraps each document as <document id=N>...</document> and joins
// the blocks with a blank line, preserving the order of docs.
func Merged(docs []types.ConvertedDocument) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = fmt.Sprintf("<document id=%d>\n%s\n</document>", d.ID, d.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// Assemble fills the output fields of r from docs according to merge.
// Counts and notes on r are left untouched.
func Assemble(r *types.Result, docs []types.ConvertedDocument, merge bool) {
	if merge {
		r.Mode = types.ModeMerged
		r.MergedContent = Merged(docs)
		r.Filename = MergedFilename
		r.Documents = nil
		return
	}
	r.Mode = types.ModeSeparate
	r.Documents = Separate(docs)
	r.MergedContent = ""
	r.Filename = ""
}
