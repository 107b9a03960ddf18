package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrPDFToolNotFound is returned when the pdftotext binary is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found; install poppler-utils (apt) or poppler (brew)")

// CommandRunner abstracts external process execution so tests can stub the
// pdftotext invocation.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFConverter shells out to pdftotext to recover plain text from PDF
// payloads.
type PDFConverter struct {
	runner CommandRunner
}

// NewPDFConverter builds a converter backed by the real pdftotext binary.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{runner: execRunner{}}
}

// NewPDFConverterWithRunner builds a converter with a custom runner.
func NewPDFConverterWithRunner(runner CommandRunner) *PDFConverter {
	return &PDFConverter{runner: runner}
}

// Convert writes the payload to a temp file and runs pdftotext over it,
// reading the text from stdout.
func (c *PDFConverter) Convert(ctx context.Context, data []byte) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", ErrPDFToolNotFound
	}

	tmp, err := os.CreateTemp("", "bundle-*.pdf")
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}

	out, err := c.runner.Run(ctx, "pdftotext", "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
