package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/waypoint/internal/document"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/service"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a work-order document as a new point",
	Long: `Reads a PDF (through pdftotext) or plain text document, extracts the delivery
address, reference code, device number and reason, geocodes the address and stores
the point.

Examples:
  # Import a work order
  waypoint import auftrag-263816.pdf

  # The document has no usable address, supply it by hand
  waypoint import auftrag-263816.pdf --address "Musterstraße 1, 10115 Berlin"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("address", "", "delivery address to use instead of the extracted one")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	address, _ := cmd.Flags().GetString("address")

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	importer, err := a.newImporter(ctx)
	if err != nil {
		return err
	}

	extractor, err := document.NewExtractor(path, cfg.Document.PdfToTextPath)
	if err != nil {
		return err
	}

	doc, err := extractor.Extract(ctx, path)
	if err != nil {
		return err
	}

	var record *models.PointRecord
	if address != "" {
		record, err = importer.ImportWithAddress(ctx, doc, address)
	} else {
		record, err = importer.Import(ctx, doc)
	}
	if err != nil {
		var importErr *service.ImportError
		if errors.As(err, &importErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), importErr.Message())
		}
		return err
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}
