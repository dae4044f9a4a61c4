// Command docconv converts documents offline with the same codec the server uses.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docconv",
	Short: "Convert workbooks and stored documents",
	Long: `Convert between spreadsheet files and stored document records.

Commands:
  import  Read the first sheet of a workbook (.xlsx, .xlsm, .xls, .xlsb, .csv)
          and print the document record as JSON.
  export  Render a document record as .xlsx (sheet) or .docx (rich text).

Examples:
  docconv import report.xlsx --title "Q3 report" -o report.json
  docconv export report.json -o report.xlsx`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lvl := zerolog.WarnLevel
		if verbose {
			lvl = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log skipped merges and styles")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
