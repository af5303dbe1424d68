// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the court-harvest pipeline:
// link descriptors, fetched and converted documents, pipeline results, the
// error taxonomy, and configuration.
package types

// SizeUnknown is the size hint used when an anchor carries no "NNN KB" text.
const SizeUnknown = "unknown"

// LinkDescriptor is one PDF reference discovered on a case page.
type LinkDescriptor struct {
	// ID is 1-based and follows discovery order on the page.
	ID int `json:"id" yaml:"id"`

	// URL is the absolute document URL.
	URL string `json:"url" yaml:"url"`

	// Label is the anchor's visible text.
	Label string `json:"label" yaml:"label"`

	// SizeHint is the size in KB parsed from the label, or SizeUnknown.
	SizeHint string `json:"size_hint" yaml:"size_hint"`
}

// FetchedDocument holds the raw payload retrieved for a LinkDescriptor.
type FetchedDocument struct {
	ID          int
	SourceURL   string
	SizeHint    string
	ContentType string
	Data        []byte
}

// ConvertedDocument is the extracted text of one document.
type ConvertedDocument struct {
	ID       int    `json:"id" yaml:"id"`
	Filename string `json:"filename" yaml:"filename"`
	Text     string `json:"-" yaml:"-"`
	SizeHint string `json:"size" yaml:"size"`
}

// OutputMode selects the shape of a pipeline result.
type OutputMode string

const (
	ModeSeparate OutputMode = "separate"
	ModeMerged   OutputMode = "merged"
)

// FailureStage names the pipeline step at which a document was dropped.
type FailureStage string

const (
	StageFetch   FailureStage = "fetch"
	StageConvert FailureStage = "convert"
)

// DocumentFailure records a document that was dropped from the result set.
type DocumentFailure struct {
	ID      int          `json:"id" yaml:"id"`
	URL     string       `json:"url" yaml:"url"`
	Stage   FailureStage `json:"stage" yaml:"stage"`
	Message string       `json:"message" yaml:"message"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	Mode OutputMode `json:"format" yaml:"format"`

	// Documents is set in separate mode, in ascending ID order.
	Documents []ConvertedDocument `json:"documents,omitempty" yaml:"documents,omitempty"`

	// MergedContent and Filename are set in merged mode.
	MergedContent string `json:"merged_content,omitempty" yaml:"-"`
	Filename      string `json:"filename,omitempty" yaml:"filename,omitempty"`

	TotalLinksFound int    `json:"pdf_count" yaml:"pdf_count"`
	ProcessedCount  int    `json:"processed_count" yaml:"processed_count"`
	Note            string `json:"note,omitempty" yaml:"note,omitempty"`

	Failures []DocumentFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Truncated reports whether fewer documents were processed than were found.
func (r *Result) Truncated() bool {
	return r.ProcessedCount < r.TotalLinksFound
}
