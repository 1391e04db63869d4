package document

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// CommandRunner runs an external program and returns its output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.Bytes(), stderr.Bytes(), err
}

// PdfToText extracts text from PDFs using the pdftotext CLI tool from poppler.
type PdfToText struct {
	binPath string
	runner  CommandRunner
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
// A nil runner executes the binary directly.
func NewPdfToText(binPath string, runner CommandRunner) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if runner == nil {
		runner = execRunner{}
	}

	return &PdfToText{binPath: binPath, runner: runner}
}

// Extract runs pdftotext -layout on the given PDF and splits stdout into pages.
func (p *PdfToText) Extract(ctx context.Context, path string) (models.RawDocumentText, error) {
	stdout, stderr, err := p.runner.Run(ctx, p.binPath, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return models.RawDocumentText{}, fmt.Errorf("document: pdftotext failed for %s: %s: %w",
			path, strings.TrimSpace(string(stderr)), err)
	}

	return models.NewRawDocumentText(splitPages(string(stdout))...), nil
}
