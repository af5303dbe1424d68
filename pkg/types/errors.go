// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// InputError reports a missing or malformed request; no processing was attempted.
type InputError struct {
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Input == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Input)
}

// PageFetchError reports that the case page could not be retrieved.
// It aborts the whole pipeline run.
type PageFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *PageFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching page %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching page %s: %v", e.URL, e.Err)
}

func (e *PageFetchError) Unwrap() error { return e.Err }

// DocumentFetchError reports that one PDF could not be retrieved.
type DocumentFetchError struct {
	ID         int
	URL        string
	StatusCode int
	Err        error
}

func (e *DocumentFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching document %d: HTTP %d from %s", e.ID, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetching document %d from %s: %v", e.ID, e.URL, e.Err)
}

func (e *DocumentFetchError) Unwrap() error { return e.Err }

// ConversionError reports that a payload could not be parsed as a PDF.
type ConversionError struct {
	ID  int
	Err error
}

func (e *ConversionError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("converting PDF: %v", e.Err)
	}
	return fmt.Sprintf("converting document %d: %v", e.ID, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
