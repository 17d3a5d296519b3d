package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/wordprep/pkg/wordprep/wordsfile"
)

func newVerifyCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "verify [words-file]",
		Short: "Check that a words file is consistent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Output.Path
			if len(args) == 1 {
				path = args[0]
			}
			s, err := wordsfile.Verify(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			fmt.Fprintf(out, "%s: %d words, %d dimensions\n", path, s.Words, s.Dimensions)
			if s.Model != "" {
				fmt.Fprintf(out, "model: %s\n", s.Model)
			}
			fmt.Fprintf(out, "sample: %s\n", strings.Join(s.Sample, ", "))
			if s.KingQueen != nil {
				fmt.Fprintf(out, "king/queen similarity: %.4f\n", *s.KingQueen)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
