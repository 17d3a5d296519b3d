package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/cognicore/wordprep/internal/embedapi"
	"github.com/cognicore/wordprep/pkg/wordprep/embed"
	"github.com/cognicore/wordprep/pkg/wordprep/filter"
	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/lexicon"
	"github.com/cognicore/wordprep/pkg/wordprep/stem"
	"github.com/cognicore/wordprep/pkg/wordprep/store"
	"github.com/cognicore/wordprep/pkg/wordprep/store/badgerstore"
	"github.com/cognicore/wordprep/pkg/wordprep/store/memstore"
	"github.com/cognicore/wordprep/pkg/wordprep/store/sqlite"
)

// fallbackKeyEnv is consulted when the configured key variable is unset.
const fallbackKeyEnv = "OPENAI_API_KEY"

// Loader reads the files a Config points at and constructs components
type Loader struct {
	Config Config

	// EnvFile is an optional dotenv file. Variables already set in the
	// process environment take precedence over it.
	EnvFile string

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

// Components holds the runtime pieces built from a Config
type Components struct {
	Filter     *filter.Filter
	Dictionary *lexicon.Lexicon // nil when no dictionary is configured
	Stemmer    stem.Stemmer
}

// Load reads exclusion and dictionary files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	comp := &Components{}

	exclude := append([]string(nil), cfg.Filter.Exclude...)
	if cfg.Filter.ExcludeFile != "" {
		sl, err := LoadStoplist(cfg.Filter.ExcludeFile)
		if err != nil {
			return nil, fmt.Errorf("load exclusion list: %w", err)
		}
		exclude = append(exclude, sl.Terms...)
	}
	comp.Filter = filter.New(cfg.Filter.MinLength, cfg.Filter.MaxLength, exclude)

	if cfg.Filter.Dictionary != "" {
		dict, err := lexicon.LoadFile(cfg.Filter.Dictionary)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		comp.Dictionary = dict
		comp.Filter.Dictionary = dict
		l.logger().Info("loaded dictionary", "path", cfg.Filter.Dictionary, "words", dict.Len())
	}

	st, err := stem.ByName(cfg.Dedup.Stemmer)
	if err != nil {
		return nil, err
	}
	comp.Stemmer = st

	return comp, nil
}

// OpenStore opens the configured store backend.
func (l *Loader) OpenStore(ctx context.Context) (store.Store, error) {
	cfg := l.Config.Store
	switch cfg.Driver {
	case "memory":
		return memstore.New(), nil
	case "badger":
		return badgerstore.Open(cfg.Path)
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
			}
		}
		return sqlite.OpenSQLite(ctx, cfg.Path)
	}
	return nil, fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, cfg.Driver)
}

// APIKey resolves the embedding API key from the environment or EnvFile.
func (l *Loader) APIKey() (string, error) {
	names := []string{l.Config.Embed.APIKeyEnv, fallbackKeyEnv}

	for _, name := range names {
		if v := os.Getenv(name); name != "" && v != "" {
			return v, nil
		}
	}
	if l.EnvFile != "" {
		env, err := godotenv.Read(l.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", l.EnvFile, err)
		}
		for _, name := range names {
			if v := env[name]; name != "" && v != "" {
				return v, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s not set", internalerr.ErrInvalidConfig, l.Config.Embed.APIKeyEnv)
}

// Embedder builds the API client wrapped in a cache backed by st (which may
// be nil).
func (l *Loader) Embedder(st store.Store) (embed.Embedder, error) {
	key, err := l.APIKey()
	if err != nil {
		return nil, err
	}
	cfg := l.Config.Embed
	client, err := embedapi.New(cfg.BaseURL, key, cfg.Model)
	if err != nil {
		return nil, err
	}
	return embed.NewCached(client, st, cfg.Model, cfg.CacheSize, l.logger())
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
