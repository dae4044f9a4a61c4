package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourabhkushwaha427/dms-server/internal/config"
	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
	"github.com/sourabhkushwaha427/dms-server/internal/document/service"
	"github.com/sourabhkushwaha427/dms-server/internal/richtext"
)

var (
	exportOutput string
	tableSplit   bool
)

var exportCmd = &cobra.Command{
	Use:   "export <record.json>",
	Short: "Render a document record as .xlsx or .docx",
	Long: `Render a document record as .xlsx or .docx.

The record is the JSON printed by "docconv import" or returned by the server.
Without -o the file is written to the current directory under a name derived
from the record title.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var doc model.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}

		if cfg := config.Load(); cfg.UniofficeKey != "" {
			if err := richtext.SetLicense(cfg.UniofficeKey, cfg.UniofficeCustomer); err != nil {
				return fmt.Errorf("unioffice license: %w", err)
			}
		}

		layout := service.RichTextLayout
		layout.TableSplit = tableSplit
		dl, err := service.NewExporter(logger, richtext.New(layout)).Prepare(doc)
		if err != nil {
			return err
		}
		out := exportOutput
		if out == "" {
			out = dl.Filename
		}
		if err := writeOutput(out, cmd.OutOrStdout(), func(w io.Writer) error {
			_, err := dl.WriteTo(w)
			return err
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file")
	exportCmd.Flags().BoolVar(&tableSplit, "table-split", false, "Let tables break across pages in .docx output")
	rootCmd.AddCommand(exportCmd)
}
