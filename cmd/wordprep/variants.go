package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/lexicon"
	"github.com/cognicore/wordprep/pkg/wordprep/variants"
	"github.com/cognicore/wordprep/pkg/wordprep/wordsfile"
)

func newVariantsCmd(a *app) *cobra.Command {
	var (
		dictionary string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "variants <words>",
		Short: "Map canonical words to inflected forms found in a dictionary",
		Long: `Guess plural and verb forms of each canonical word and keep the ones the
dictionary contains. <words> is a words file (.json) or a word list.

Examples:
  wordprep variants src/data/words.json -d dict.txt -o variants.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dictionary == "" {
				dictionary = a.cfg.Filter.Dictionary
			}
			if dictionary == "" {
				return fmt.Errorf("%w: a dictionary is required", internalerr.ErrInvalidConfig)
			}

			canonicals, err := readWords(args[0])
			if err != nil {
				return err
			}
			dict, err := lexicon.LoadFile(dictionary)
			if err != nil {
				return fmt.Errorf("load dictionary: %w", err)
			}

			lex := variants.Map(canonicals, dict)
			if err := lex.SaveYAML(output); err != nil {
				return err
			}
			stats := lex.Stats()
			a.logger.Info("mapped variants", "canonicals", len(canonicals), "groups", stats.SynonymGroups, "forms", stats.TotalVariants)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d words have variants, written to %s\n",
				stats.SynonymGroups, len(canonicals), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dictionary, "dictionary", "d", "", "dictionary word list (.txt, .yaml, .html)")
	cmd.Flags().StringVarP(&output, "output", "o", "variants.yaml", "output YAML file")
	return cmd
}

func readWords(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		f, err := wordsfile.Read(path)
		if err != nil {
			return nil, err
		}
		return f.Words, nil
	}
	lex, err := lexicon.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return lex.Words(), nil
}
