package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/wordprep/pkg/wordprep/config"
	"github.com/cognicore/wordprep/pkg/wordprep/store"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	envFile    string
	verbose    bool
	noProgress bool

	cfg    config.Config
	logger *slog.Logger
	stderr io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "wordprep",
		Short: "Prepare the game vocabulary",
		Long: `wordprep downloads word vectors, filters and deduplicates the vocabulary,
and writes the normalized word list consumed by the game.

Examples:
  wordprep prepare                       # Full pipeline with default settings
  wordprep prepare --strategy similarity # Merge by spelling and meaning
  wordprep embed                         # Re-embed the word list via the API
  wordprep verify src/data/words.json    # Check an output file`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file (defaults apply when empty)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file consulted for API keys")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&a.noProgress, "no-progress", false, "disable progress bars")

	root.AddCommand(
		newPrepareCmd(a),
		newEmbedCmd(a),
		newDedupCmd(a),
		newVariantsCmd(a),
		newVerifyCmd(a),
		newRunsCmd(a),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	a.stderr = stderr
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if a.configPath == "" {
		a.cfg = config.Default()
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("loaded config", "path", a.configPath)
	return nil
}

func (a *app) loader() *config.Loader {
	return &config.Loader{Config: a.cfg, EnvFile: a.envFile, Logger: a.logger}
}

// openStore opens the configured store; callers must Close it.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := a.loader().OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("opened store", "driver", a.cfg.Store.Driver, "path", a.cfg.Store.Path)
	return st, nil
}

func (a *app) progressOut() io.Writer {
	if a.noProgress {
		return nil
	}
	if a.stderr == nil {
		return os.Stderr
	}
	return a.stderr
}
