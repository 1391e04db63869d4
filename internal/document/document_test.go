package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	runFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f.runFunc(ctx, name, args...)
}

func TestNewExtractor(t *testing.T) {
	tests := []struct {
		path    string
		want    any
		wantErr string
	}{
		{path: "auftrag.pdf", want: &PdfToText{}},
		{path: "AUFTRAG.PDF", want: &PdfToText{}},
		{path: "auftrag.txt", want: &PlainText{}},
		{path: "auftrag", want: &PlainText{}},
		{path: "auftrag.docx", wantErr: `unsupported file type ".docx"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ext, err := NewExtractor(tt.path, "")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, ext)
		})
	}
}

func TestPdfToText_BinPath(t *testing.T) {
	p := NewPdfToText("", nil)
	assert.Equal(t, "pdftotext", p.binPath)
	assert.IsType(t, execRunner{}, p.runner)

	p = NewPdfToText("/custom/pdftotext", nil)
	assert.Equal(t, "/custom/pdftotext", p.binPath)
}

func TestPdfToText_Extract(t *testing.T) {
	ctx := t.Context()

	t.Run("pages are split on form feed", func(t *testing.T) {
		runner := &fakeRunner{runFunc: func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
			assert.Equal(t, "pdftotext", name)
			assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "/tmp/auftrag.pdf", "-"}, args)
			return []byte("Lieferadresse: Musterstraße 1, 10115 Berlin\n\fZRD: 263816\n\f"), nil, nil
		}}

		doc, err := NewPdfToText("", runner).Extract(ctx, "/tmp/auftrag.pdf")

		require.NoError(t, err)
		assert.Equal(t, []string{"Lieferadresse: Musterstraße 1, 10115 Berlin\n", "ZRD: 263816\n"}, doc.Pages)
	})

	t.Run("image-only pdf yields empty text", func(t *testing.T) {
		runner := &fakeRunner{runFunc: func(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
			return []byte("\f\f"), nil, nil
		}}

		doc, err := NewPdfToText("", runner).Extract(ctx, "scan.pdf")

		require.NoError(t, err)
		assert.True(t, doc.Empty())
	})

	t.Run("command failure", func(t *testing.T) {
		runner := &fakeRunner{runFunc: func(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
			return nil, []byte("Syntax Error: Couldn't find trailer dictionary\n"), assert.AnError
		}}

		_, err := NewPdfToText("", runner).Extract(ctx, "broken.pdf")

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "pdftotext failed for broken.pdf")
		assert.Contains(t, err.Error(), "Couldn't find trailer dictionary")
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := NewPdfToText(filepath.Join(t.TempDir(), "no-such-pdftotext"), nil).Extract(ctx, "a.pdf")

		require.Error(t, err)
	})
}

func TestPlainText_Extract(t *testing.T) {
	defer filet.CleanUp(t)
	ctx := t.Context()

	t.Run("utf-8 with byte order mark", func(t *testing.T) {
		file := filet.TmpFile(t, "", "\ufeffLieferadresse: Hauptstraße 5, 80331 München\n")

		doc, err := NewPlainText().Extract(ctx, file.Name())

		require.NoError(t, err)
		assert.Equal(t, []string{"Lieferadresse: Hauptstraße 5, 80331 München\n"}, doc.Pages)
	})

	t.Run("windows-1252 is decoded", func(t *testing.T) {
		path := filepath.Join(filet.TmpDir(t, ""), "legacy.txt")
		// "Gerätenummer: 7" with 0xE4 for ä
		require.NoError(t, os.WriteFile(path, []byte("Ger\xe4tenummer: 7"), 0o600))

		doc, err := NewPlainText().Extract(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, "Gerätenummer: 7", doc.Text())
	})

	t.Run("form feed separates pages", func(t *testing.T) {
		file := filet.TmpFile(t, "", "one\ftwo")

		doc, err := NewPlainText().Extract(ctx, file.Name())

		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, doc.Pages)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewPlainText().Extract(ctx, filepath.Join(t.TempDir(), "missing.txt"))

		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
