package main

import (
	"fmt"
	"io"
	"os"

	"DF-DOCGEN/internal/processor"
	"DF-DOCGEN/internal/services"

	"github.com/spf13/cobra"
)

var anchorsCmd = &cobra.Command{
	Use:   "anchors <template.docx>",
	Short: "List the anchors a template exposes, in document order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, anchors, err := processor.OpenTemplate(args[0])
		if err != nil {
			return err
		}
		defer handle.Close()

		out := cmd.OutOrStdout()
		for _, a := range anchors {
			fmt.Fprintln(out, a)
		}
		return nil
	},
}

var textCmd = &cobra.Command{
	Use:   "text <file.docx>",
	Short: "Print the visible text of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := processor.ExtractText(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var fillFlags struct {
	data     string
	dataFile string
	out      string
	policy   string
}

var fillCmd = &cobra.Command{
	Use:   "fill <template.docx>",
	Short: "Fill a template's anchors from a JSON object and save the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runFill,
}

func init() {
	f := fillCmd.Flags()
	f.StringVar(&fillFlags.data, "data", "", "JSON object mapping anchor names to values")
	f.StringVar(&fillFlags.dataFile, "data-file", "", "read the JSON payload from a file (- for stdin)")
	f.StringVarP(&fillFlags.out, "out", "o", "", "output DOCX path")
	f.StringVar(&fillFlags.policy, "policy", string(services.PolicyStrict), "missing anchor policy: strict or tolerant")
	fillCmd.MarkFlagRequired("out")
	fillCmd.MarkFlagsMutuallyExclusive("data", "data-file")
}

func runFill(cmd *cobra.Command, args []string) error {
	policy, err := services.ParseAnchorPolicy(fillFlags.policy)
	if err != nil {
		return err
	}

	raw, err := readPayload(cmd.InOrStdin())
	if err != nil {
		return err
	}
	payload, err := services.ParsePayload(raw)
	if err != nil {
		return err
	}

	handle, anchors, err := processor.OpenTemplate(args[0])
	if err != nil {
		return err
	}
	defer handle.Close()

	bindings, err := services.Resolver{Policy: policy}.Resolve(anchors, payload)
	if err != nil {
		return err
	}
	if err := services.Substitute(handle, bindings); err != nil {
		return err
	}
	if err := handle.Save(fillFlags.out); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "filled %d of %d anchors into %s\n", len(bindings), len(anchors), fillFlags.out)
	return nil
}

func readPayload(stdin io.Reader) ([]byte, error) {
	switch fillFlags.dataFile {
	case "":
		return []byte(fillFlags.data), nil
	case "-":
		return io.ReadAll(stdin)
	default:
		return os.ReadFile(fillFlags.dataFile)
	}
}
