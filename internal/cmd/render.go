package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func renderCmd() *cobra.Command {
	var from string

	cmd := cobra.Command{
		Use:   "render <file|->",
		Short: "Render content as HTML.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			doc, err := decodeInput(data, from, false)
			if err != nil {
				return err
			}

			result, err := encodeOutput(doc, formatHTML)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(result)
			return errors.Wrap(err, "failed to write result")
		},
	}

	cmd.Flags().StringVar(&from, "from", formatMarkup, "Input format (markup, json).")

	return &cmd
}
