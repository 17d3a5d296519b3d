package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/wordprep/pkg/wordprep/pipeline"
)

func newEmbedCmd(a *app) *cobra.Command {
	var (
		output string
		model  string
	)
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Replace the word list vectors with embeddings from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output") {
				a.cfg.Output.Path = output
			}
			if cmd.Flags().Changed("model") {
				a.cfg.Embed.Model = model
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			embedder, err := a.loader().Embedder(st)
			if err != nil {
				return err
			}
			rep, err := pipeline.Embed(ctx, a.cfg, pipeline.Deps{
				Store:         st,
				Embedder:      embedder,
				EmbedProgress: newBar(a.progressOut(), "embedding").set,
				Logger:        a.logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: embedded %d words with %s (%d dimensions) into %s\n",
				rep.ID, rep.Written, a.cfg.Embed.Model, rep.Verify.Dimensions, rep.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "words file to re-embed in place")
	cmd.Flags().StringVarP(&model, "model", "m", "", "embedding model")
	return cmd
}
