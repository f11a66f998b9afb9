package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/rdharma/folio/pkg/richtext/markup"
)

func fmtCmd() *cobra.Command {
	var (
		flagDiff  bool
		flagWrite bool
	)

	cmd := cobra.Command{
		Use:   "fmt <file|->",
		Short: "Format markup into its canonical form.",
		Long: `Format parses the markup and serializes it back. The result is what the
editor would store for the same input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := args[0]
			if flagWrite && (fileName == "-" || strings.HasPrefix(fileName, "https://")) {
				return errors.New("--write requires a local file")
			}

			data, err := readInput(cmd, fileName)
			if err != nil {
				return err
			}

			source := string(data)
			formatted := canonicalMarkup(source)

			switch {
			case flagDiff:
				return writeDiff(cmd.OutOrStdout(), source, formatted)
			case flagWrite:
				if source == formatted {
					return nil
				}
				return writeFile(fileName, []byte(formatted))
			default:
				_, err = io.WriteString(cmd.OutOrStdout(), formatted)
				return errors.Wrap(err, "failed to write result")
			}
		},
	}

	cmd.Flags().BoolVar(&flagDiff, "diff", false, "Print the difference instead of the result.")
	cmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "Write the result to the file.")
	cmd.MarkFlagsMutuallyExclusive("diff", "write")

	return &cmd
}

func canonicalMarkup(source string) string {
	result := markup.Serialize(markup.Parse(source))
	if result == "" {
		return result
	}
	return result + "\n"
}

// writeDiff prints a line diff of before and after. Nothing is printed when
// they are equal.
func writeDiff(w io.Writer, before, after string) error {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), lines)

	removed := color.New(color.FgRed).SprintFunc()
	added := color.New(color.FgGreen).SprintFunc()

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			var err error
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				_, err = fmt.Fprintln(w, removed("-"+line))
			case diffmatchpatch.DiffInsert:
				_, err = fmt.Fprintln(w, added("+"+line))
			default:
				_, err = fmt.Fprintln(w, " "+line)
			}
			if err != nil {
				return errors.WithStack(err)
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func writeFile(fileName string, data []byte) error {
	info, err := os.Stat(fileName)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.Wrapf(os.WriteFile(fileName, data, info.Mode().Perm()), "failed to write file %q", fileName)
}
