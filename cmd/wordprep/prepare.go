package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/wordprep/pkg/wordprep/pipeline"
)

func newPrepareCmd(a *app) *cobra.Command {
	var (
		output   string
		target   int
		strategy string
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Download, filter, deduplicate and write the word list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("output") {
				a.cfg.Output.Path = output
			}
			if flags.Changed("target") {
				a.cfg.Output.TargetCount = target
			}
			if flags.Changed("strategy") {
				a.cfg.Dedup.Strategy = strategy
			}
			if flags.Changed("workers") {
				a.cfg.Dedup.Workers = workers
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			comp, err := a.loader().Load()
			if err != nil {
				return err
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rep, err := pipeline.Prepare(ctx, a.cfg, pipeline.Deps{
				Components:       comp,
				Store:            st,
				DownloadProgress: newBar(a.progressOut(), "downloading").bytes,
				DedupProgress:    newBar(a.progressOut(), "deduplicating").set,
				Logger:           a.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: loaded %d, deduplicated %d -> %d, wrote %d words to %s\n",
				rep.ID, rep.Loaded, rep.Dedup.Input, rep.Dedup.Output, rep.Written, rep.Output)
			for _, g := range rep.Examples {
				fmt.Fprintf(out, "  %s <- %v\n", g.Canonical, g.Merged())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output words file")
	cmd.Flags().IntVarP(&target, "target", "n", 0, "number of words to keep")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "deduplication strategy: stem or similarity")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers for the similarity scan")
	return cmd
}
