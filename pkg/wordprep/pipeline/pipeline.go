// Package pipeline wires acquisition, filtering, deduplication and output
// into the end-to-end runs behind the wordprep commands.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cognicore/wordprep/pkg/wordprep/config"
	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
	"github.com/cognicore/wordprep/pkg/wordprep/embed"
	"github.com/cognicore/wordprep/pkg/wordprep/filter"
	"github.com/cognicore/wordprep/pkg/wordprep/glove"
	"github.com/cognicore/wordprep/pkg/wordprep/lexicon"
	"github.com/cognicore/wordprep/pkg/wordprep/report"
	"github.com/cognicore/wordprep/pkg/wordprep/store"
	"github.com/cognicore/wordprep/pkg/wordprep/wordsfile"
)

// Deps carries the collaborators of a run. Store and the progress hooks are
// optional.
type Deps struct {
	Components *config.Components
	Store      store.Store
	Embedder   embed.Embedder // required by Embed
	HTTPClient *http.Client
	IDs        *report.IDs

	DownloadProgress func(written, total int64)
	DedupProgress    func(done, total int)
	EmbedProgress    func(done, total int)

	Logger *slog.Logger // Optional, uses slog.Default() if nil
	Now    func() time.Time
}

func (d *Deps) defaults() {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.IDs == nil {
		d.IDs = report.NewIDs()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Prepare downloads the embedding table, keeps valid words, deduplicates an
// oversampled head of the list, trims it to the target size, and writes the
// normalized, rounded result.
func Prepare(ctx context.Context, cfg config.Config, deps Deps) (*report.Report, error) {
	deps.defaults()
	if deps.Components == nil {
		return nil, fmt.Errorf("prepare: components required")
	}
	rep := deps.IDs.New("prepare", deps.Now())
	log := deps.Logger.With("run", rep.ID)

	txt, err := glove.Download(ctx, cfg.Source.URL, cfg.Source.DataDir, glove.DownloadOptions{
		Client:   deps.HTTPClient,
		Progress: deps.DownloadProgress,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	loaded, err := glove.LoadFile(txt, glove.LoadOptions{
		MaxLines:   cfg.Source.MaxLines,
		Dimensions: cfg.Source.Dimensions,
		Normalize:  filter.Normalize,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("prepare: load %s: %w", txt, err)
	}
	entries, fstats := deps.Components.Filter.Apply(loaded)
	rep.AddFilter(fstats)
	log.Info("filtered vocabulary", "read", len(loaded), "kept", fstats.Kept, "rejected", rep.Rejected)
	rep.Loaded = len(entries)

	head := wordsfile.TopN(entries, cfg.Output.TargetCount*cfg.Output.OversampleFactor)
	log.Info("selected head of vocabulary", "kept", len(head), "of", len(entries))

	res, err := runDedup(ctx, cfg, deps, log, head)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	rep.AddDedup(res, cfg.Similarity())

	final := wordsfile.TopN(res.Entries, cfg.Output.TargetCount)
	final = wordsfile.Round(wordsfile.Normalize(final), cfg.Output.Decimals)

	if err := finish(ctx, cfg, deps, log, rep, wordsfile.FromEntries(final)); err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return rep, nil
}

// Dedup runs only the deduplication pass over entries and returns the
// result with a report; the caller decides where the output goes.
func Dedup(ctx context.Context, cfg config.Config, deps Deps, entries []dedup.Entry) (*dedup.Result, *report.Report, error) {
	deps.defaults()
	rep := deps.IDs.New("dedup", deps.Now())
	log := deps.Logger.With("run", rep.ID)
	rep.Loaded = len(entries)

	res, err := runDedup(ctx, cfg, deps, log, entries)
	if err != nil {
		return nil, nil, err
	}
	rep.AddDedup(res, cfg.Similarity())
	rep.Written = len(res.Entries)
	rep.Finished = deps.Now()
	return res, rep, nil
}

func runDedup(ctx context.Context, cfg config.Config, deps Deps, log *slog.Logger, entries []dedup.Entry) (*dedup.Result, error) {
	strategy, err := dedup.ParseStrategy(cfg.Dedup.Strategy)
	if err != nil {
		return nil, err
	}
	opts := dedup.Options{
		Strategy:   strategy,
		Similarity: cfg.Similarity(),
		Workers:    cfg.Dedup.Workers,
		Progress:   deps.DedupProgress,
		Logger:     log,
	}
	if deps.Components != nil {
		opts.Stemmer = deps.Components.Stemmer
	}
	res, err := dedup.Run(ctx, entries, opts)
	if err != nil {
		return nil, err
	}

	for _, g := range res.Examples(5) {
		log.Info("merged", "kept", g.Canonical, "removed", g.Merged())
	}
	if cfg.Dedup.SynonymsFile != "" {
		if err := ExportGroups(res, cfg.Dedup.SynonymsFile); err != nil {
			return nil, fmt.Errorf("export groups: %w", err)
		}
		log.Info("exported merge groups", "path", cfg.Dedup.SynonymsFile)
	}
	return res, nil
}

// ExportGroups writes the multi-member groups of res as a synonyms YAML file.
func ExportGroups(res *dedup.Result, path string) error {
	lex := lexicon.New()
	for canonical, merged := range res.MergedAway() {
		lex.AddSynonymGroup(canonical, merged)
	}
	return lex.SaveYAML(path)
}

// Embed re-embeds the words of the configured output file with the
// embedding API and rewrites the file with the new vectors.
func Embed(ctx context.Context, cfg config.Config, deps Deps) (*report.Report, error) {
	deps.defaults()
	if deps.Embedder == nil {
		return nil, fmt.Errorf("embed: embedder required")
	}
	rep := deps.IDs.New("embed", deps.Now())
	log := deps.Logger.With("run", rep.ID)

	current, err := wordsfile.Read(cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	words := current.Words
	rep.Loaded = len(words)
	log.Info("embedding word list", "words", len(words), "model", cfg.Embed.Model)

	b := &embed.Batcher{
		Embedder:  deps.Embedder,
		BatchSize: cfg.Embed.BatchSize,
		Delay:     cfg.Embed.Delay,
		Progress:  deps.EmbedProgress,
		Logger:    log,
	}
	vectors, err := b.EmbedAll(ctx, words)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	entries := make([]dedup.Entry, len(words))
	for i, w := range words {
		entries[i] = dedup.Entry{Word: w, Vector: vectors[w]}
	}
	if err := dedup.Validate(entries); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	entries = wordsfile.Round(wordsfile.Normalize(entries), cfg.Output.Decimals)

	out := wordsfile.FromEntries(entries)
	out.Model = cfg.Embed.Model
	if len(entries) > 0 {
		out.Dimensions = len(entries[0].Vector)
	}
	if err := finish(ctx, cfg, deps, log, rep, out); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return rep, nil
}

// finish writes and verifies the output, then stores the report.
func finish(ctx context.Context, cfg config.Config, deps Deps, log *slog.Logger, rep *report.Report, out wordsfile.File) error {
	path := cfg.Output.Path
	if err := wordsfile.Write(path, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	summary, err := wordsfile.Verify(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	attrs := []any{"path", path, "words", summary.Words, "dimensions", summary.Dimensions}
	if summary.KingQueen != nil {
		attrs = append(attrs, "king_queen", fmt.Sprintf("%.4f", *summary.KingQueen))
	}
	log.Info("wrote word list", attrs...)

	rep.Output = path
	rep.Written = summary.Words
	rep.Verify = &summary
	rep.Finished = deps.Now()
	return Record(ctx, deps.Store, rep, report.PathFor(path))
}

// Record writes the report file when reportPath is set and stores the run
// when st is not nil.
func Record(ctx context.Context, st store.Store, rep *report.Report, reportPath string) error {
	if reportPath != "" {
		if err := rep.Write(reportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if st == nil {
		return nil
	}
	run, err := rep.Run()
	if err != nil {
		return err
	}
	if err := st.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
