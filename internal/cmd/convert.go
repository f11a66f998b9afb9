package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	var (
		from   string
		to     string
		strict bool
	)

	cmd := cobra.Command{
		Use:   "convert <file|->",
		Short: "Convert content between markup, document JSON, and HTML.",
		Example: `Convert markup into the stored document form:
  folio convert --to json post.md

Import an HTML page as markup:
  folio convert --from html --to markup page.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			doc, err := decodeInput(data, from, strict)
			if err != nil {
				return err
			}

			result, err := encodeOutput(doc, to)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(result)
			return errors.Wrap(err, "failed to write result")
		},
	}

	cmd.Flags().StringVar(&from, "from", formatMarkup, "Input format (markup, json, html).")
	cmd.Flags().StringVar(&to, "to", "", "Output format (markup, json).")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on malformed document JSON instead of using an empty document.")
	_ = cmd.MarkFlagRequired("to")

	return &cmd
}
