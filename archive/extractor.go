// Copyright 2026 Datamere Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package archive unpacks dataset bundles and converts the supporting
// documents inside them to plain text for embedding.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"
)

// ErrEmptyArchive is returned when the bundle cannot be opened as a zip
// archive at all. Per-entry conversion failures are not errors; a bad entry
// simply yields no text.
var ErrEmptyArchive = errors.New("archive is not a readable zip bundle")

// Entry is one file recovered from a dataset bundle.
type Entry struct {
	// Name is the base file name inside the archive.
	Name string

	// Data holds the raw entry bytes, kept for persistence.
	Data []byte

	// Text is the plain-text conversion of the entry, empty when the
	// entry could not be converted.
	Text string
}

// textExtensions are entry types read verbatim as UTF-8 text.
var textExtensions = map[string]bool{
	".txt":  true,
	".csv":  true,
	".json": true,
	".xml":  true,
	".html": true,
	".ttl":  true,
	".md":   true,
}

// RecognizedExtension reports whether a file name carries an extension the
// extractor can turn into text.
func RecognizedExtension(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".pdf" || ext == ".docx" || textExtensions[ext]
}

// Extractor walks zip bundles and dispatches each entry to a converter
// chosen by extension.
type Extractor struct {
	log *slog.Logger
	pdf *PDFConverter
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-entry diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(e *Extractor) {
		e.log = log.With("component", "archive")
	}
}

// WithPDFConverter replaces the default pdftotext-backed converter.
func WithPDFConverter(pdf *PDFConverter) Option {
	return func(e *Extractor) {
		e.pdf = pdf
	}
}

// NewExtractor builds an extractor with the default converters.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		log: slog.Default().With("component", "archive"),
		pdf: NewPDFConverter(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractAll opens the bundle and converts every recognized entry. Entries
// that fail to convert are kept with empty text so the caller can still
// persist them; only an unreadable bundle is an error.
func (e *Extractor) ExtractAll(ctx context.Context, bundle []byte) ([]Entry, error) {
	reader, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyArchive, err)
	}

	var entries []Entry
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || file.UncompressedSize64 == 0 {
			continue
		}
		name := path.Base(file.Name)

		data, err := readZipEntry(file)
		if err != nil {
			// The entry still lists in the dataset; it just has no text
			// or persistable bytes.
			e.log.Warn("unreadable bundle entry", "entry", file.Name, "error", err)
			entries = append(entries, Entry{Name: name})
			continue
		}

		entry := Entry{Name: name, Data: data}
		entry.Text = e.convert(ctx, name, data)
		entries = append(entries, entry)
	}
	return entries, nil
}

// convert never fails; unsupported or broken entries produce empty text.
func (e *Extractor) convert(ctx context.Context, name string, data []byte) string {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case ext == ".pdf":
		text, err := e.pdf.Convert(ctx, data)
		if err != nil {
			e.log.Warn("pdf conversion failed", "entry", name, "error", err)
			return ""
		}
		return text
	case ext == ".docx":
		text, err := convertDocx(data)
		if err != nil {
			e.log.Warn("docx conversion failed", "entry", name, "error", err)
			return ""
		}
		return text
	case textExtensions[ext]:
		if !utf8.Valid(data) {
			e.log.Warn("entry is not valid utf-8", "entry", name)
			return ""
		}
		return strings.TrimSpace(string(data))
	default:
		return ""
	}
}

func readZipEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
