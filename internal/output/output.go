// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output saves a harvest result to disk for the CLI: one text file
// per document (or a single merged file) plus a manifest.yaml describing
// the run.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/court-harvest/internal/assemble"
	"github.com/pdiddy/court-harvest/pkg/types"
)

// ManifestName is the file written alongside the documents.
const ManifestName = "manifest.yaml"

// DefaultDir is used when the case URL carries no case number.
const DefaultDir = "court_case_documents"

// PDFDir is the subdirectory holding original PDFs.
const PDFDir = "pdfs"

// Manifest records what a harvest produced.
type Manifest struct {
	SourceURL   string        `yaml:"source_url"`
	HarvestedAt time.Time     `yaml:"harvested_at"`
	Result      *types.Result `yaml:"result"`
	Files       []string      `yaml:"files"`
	PDFs        []string      `yaml:"pdfs,omitempty"`
}

// DirFromURL derives the output directory from the case number in the
// "cn" query parameter, e.g. cn=01-23-00456-CV gives court_case_01_23_00456_CV.
func DirFromURL(caseURL string) string {
	u, err := url.Parse(caseURL)
	if err != nil {
		return DefaultDir
	}
	cn := strings.TrimSpace(u.Query().Get("cn"))
	if cn == "" {
		return DefaultDir
	}
	cn = strings.ReplaceAll(cn, "-", "_")
	cn = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, cn)
	return "court_case_" + cn
}

// Write saves r into dir, creating it if needed, and returns the paths
// written in order. Any pdfs are saved under dir/pdfs. The manifest is
// written last.
func Write(dir, sourceURL string, r *types.Result, pdfs ...types.FetchedDocument) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var files, pdfNames []string
	if len(pdfs) > 0 {
		if err := os.MkdirAll(filepath.Join(dir, PDFDir), 0o755); err != nil {
			return nil, fmt.Errorf("creating pdf directory: %w", err)
		}
		for _, d := range pdfs {
			name := filepath.Join(PDFDir, assemble.PDFFilename(d.ID, d.SizeHint))
			path := filepath.Join(dir, name)
			if err := writeFile(path, d.Data); err != nil {
				return files, err
			}
			files = append(files, path)
			pdfNames = append(pdfNames, filepath.ToSlash(name))
		}
	}

	switch r.Mode {
	case types.ModeMerged:
		if r.ProcessedCount > 0 {
			path := filepath.Join(dir, r.Filename)
			if err := writeFile(path, []byte(r.MergedContent)); err != nil {
				return files, err
			}
			files = append(files, path)
		}
	default:
		for _, d := range r.Documents {
			path := filepath.Join(dir, d.Filename)
			if err := writeFile(path, []byte(d.Text)); err != nil {
				return files, err
			}
			files = append(files, path)
		}
	}

	m := Manifest{
		SourceURL:   sourceURL,
		HarvestedAt: time.Now().UTC(),
		Result:      r,
		PDFs:        pdfNames,
	}
	for _, f := range files[len(pdfNames):] {
		m.Files = append(m.Files, filepath.Base(f))
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return files, fmt.Errorf("marshaling manifest: %w", err)
	}
	manifest := filepath.Join(dir, ManifestName)
	if err := writeFile(manifest, data); err != nil {
		return files, err
	}
	return append(files, manifest), nil
}

// ReadManifest loads the manifest from dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// writeFile writes through a temp file in the same directory so a reader
// never sees a partial file.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".harvest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
