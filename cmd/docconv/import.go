package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sourabhkushwaha427/dms-server/internal/document/service"
)

var (
	importTitle  string
	importOutput string
)

var importCmd = &cobra.Command{
	Use:   "import <workbook>",
	Short: "Convert a workbook into a document record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, err := service.NewImporter(logger).ImportFile(path, filepath.Base(path), importTitle)
		if err != nil {
			return err
		}
		return writeOutput(importOutput, cmd.OutOrStdout(), func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		})
	},
}

func init() {
	importCmd.Flags().StringVarP(&importTitle, "title", "t", "", "Document title (default: file name)")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Write JSON to this file instead of stdout")
	rootCmd.AddCommand(importCmd)
}

// writeOutput runs write against path, or against stdout when path is empty.
// A partially written file is removed.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
