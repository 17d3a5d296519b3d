package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/wordprep/internal/vocab"
	"github.com/cognicore/wordprep/pkg/wordprep/config"
	"github.com/cognicore/wordprep/pkg/wordprep/pipeline"
	"github.com/cognicore/wordprep/pkg/wordprep/report"
	"github.com/cognicore/wordprep/pkg/wordprep/stem"
)

func newDedupCmd(a *app) *cobra.Command {
	var (
		output   string
		strategy string
		stemName string
		spelling int
		semantic float64
		workers  int
		synonyms string
		noRecord bool
	)
	cmd := &cobra.Command{
		Use:   "dedup <input>",
		Short: "Merge near-duplicate words in a words file",
		Long: `Merge near-duplicate words in a words file (.json) or a JSONL file with
one {"word": ..., "vector": [...]} object per line.

Examples:
  wordprep dedup words.json -o deduped.json
  wordprep dedup vocab.jsonl -s similarity --spelling-threshold 2 --semantic-threshold 0.75`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("strategy") {
				a.cfg.Dedup.Strategy = strategy
			}
			if flags.Changed("stemmer") {
				a.cfg.Dedup.Stemmer = stemName
			}
			if flags.Changed("spelling-threshold") {
				a.cfg.Dedup.SpellingThreshold = spelling
			}
			if flags.Changed("semantic-threshold") {
				a.cfg.Dedup.SemanticThreshold = semantic
			}
			if flags.Changed("workers") {
				a.cfg.Dedup.Workers = workers
			}
			if flags.Changed("synonyms") {
				a.cfg.Dedup.SynonymsFile = synonyms
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			input := args[0]
			if output == "" {
				output = dedupedPath(input)
			}

			entries, err := vocab.Load(input, a.logger)
			if err != nil {
				return err
			}
			stemmer, err := stem.ByName(a.cfg.Dedup.Stemmer)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, rep, err := pipeline.Dedup(ctx, a.cfg, pipeline.Deps{
				Components:    &config.Components{Stemmer: stemmer},
				DedupProgress: newBar(a.progressOut(), "deduplicating").set,
				Logger:        a.logger,
			}, entries)
			if err != nil {
				return err
			}
			if err := vocab.Save(output, res.Entries); err != nil {
				return err
			}
			rep.Output = output

			if !noRecord {
				st, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := pipeline.Record(ctx, st, rep, report.PathFor(output)); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d -> %d words (%d merges) written to %s\n",
				res.Stats.Input, res.Stats.Output, res.Stats.Merges, output)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "output file (default <input>.dedup<ext>)")
	flags.StringVarP(&strategy, "strategy", "s", "", "stem or similarity")
	flags.StringVar(&stemName, "stemmer", "", "porter or suffix")
	flags.IntVar(&spelling, "spelling-threshold", 0, "maximum edit distance for a merge")
	flags.Float64Var(&semantic, "semantic-threshold", 0, "minimum cosine similarity for a merge")
	flags.IntVarP(&workers, "workers", "w", 0, "parallel workers for the similarity scan")
	flags.StringVar(&synonyms, "synonyms", "", "write merge groups to this YAML file")
	flags.BoolVar(&noRecord, "no-record", false, "do not write a report or record the run")
	return cmd
}

// dedupedPath inserts ".dedup" before the extension of path.
func dedupedPath(path string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		return path[:i] + ".dedup" + path[i:]
	}
	return path + ".dedup"
}
