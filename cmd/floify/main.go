package main

import (
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "floify",
	Short: "Convert mortgage documents into Floify 1003 JSON",
	Long: `floify runs the document pipeline locally: OCR, text extraction and LLM
transformation. Every stage writes its artifact to an output directory so a
failed run can be inspected afterwards.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
