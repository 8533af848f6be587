// Command docgen works with DOCX templates offline: it lists anchors,
// fills a template from a JSON payload and dumps visible text.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "docgen",
	Short:         "Inspect and fill DOCX templates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(anchorsCmd, fillCmd, textCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
