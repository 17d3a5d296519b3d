package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/similarity"
)

// Config is the full pipeline configuration.
type Config struct {
	Source Source `yaml:"source"`
	Filter Filter `yaml:"filter"`
	Dedup  Dedup  `yaml:"dedup"`
	Output Output `yaml:"output"`
	Embed  Embed  `yaml:"embed"`
	Store  Store  `yaml:"store"`
}

// Source describes where the embedding table comes from.
type Source struct {
	URL        string `yaml:"url"`
	DataDir    string `yaml:"data_dir"`
	MaxLines   int    `yaml:"max_lines"`
	Dimensions int    `yaml:"dimensions"`
}

// Filter holds word validity rules.
type Filter struct {
	MinLength   int      `yaml:"min_length"`
	MaxLength   int      `yaml:"max_length"`
	Exclude     []string `yaml:"exclude"`
	ExcludeFile string   `yaml:"exclude_file"` // YAML `terms:` list, merged with Exclude
	Dictionary  string   `yaml:"dictionary"`   // optional word list (.txt, .yaml, .html)
}

// Dedup selects and tunes the deduplication pass.
type Dedup struct {
	Strategy          string  `yaml:"strategy"` // stem | similarity
	Stemmer           string  `yaml:"stemmer"`  // porter | suffix
	SpellingThreshold int     `yaml:"spelling_threshold"`
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	Workers           int     `yaml:"workers"`
	SynonymsFile      string  `yaml:"synonyms_file"` // optional export of merge groups
}

// Output controls the final word list.
type Output struct {
	Path             string `yaml:"path"`
	TargetCount      int    `yaml:"target_count"`
	OversampleFactor int    `yaml:"oversample_factor"`
	Decimals         int    `yaml:"decimals"`
}

// Embed configures the embedding API.
type Embed struct {
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	BatchSize int           `yaml:"batch_size"`
	Delay     time.Duration `yaml:"delay"`
	CacheSize int           `yaml:"cache_size"`
}

// Store selects the persistence backend.
type Store struct {
	Driver string `yaml:"driver"` // sqlite | badger | memory
	Path   string `yaml:"path"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Source: Source{
			URL:        "https://nlp.stanford.edu/data/wordvecs/glove.2024.wikigiga.50d.zip",
			DataDir:    "data/glove",
			MaxLines:   150000,
			Dimensions: 50,
		},
		Filter: Filter{
			MinLength: 2,
			MaxLength: 15,
			Exclude:   []string{"xxx", "etc"},
		},
		Dedup: Dedup{
			Strategy:          string(dedup.ByStem),
			Stemmer:           "porter",
			SpellingThreshold: similarity.DefaultConfig().SpellingThreshold,
			SemanticThreshold: similarity.DefaultConfig().SemanticThreshold,
			Workers:           1,
		},
		Output: Output{
			Path:             "src/data/words.json",
			TargetCount:      15000,
			OversampleFactor: 3,
			Decimals:         4,
		},
		Embed: Embed{
			Model:     "sentence-transformers/all-MiniLM-L6-v2",
			BaseURL:   "https://openrouter.ai/api/v1",
			APIKeyEnv: "OPENROUTER_API_KEY",
			BatchSize: 100,
			Delay:     100 * time.Millisecond,
			CacheSize: 20000,
		},
		Store: Store{
			Driver: "sqlite",
			Path:   "data/wordprep.db",
		},
	}
}

// Load reads a YAML file on top of Default. Fields missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Similarity returns the oracle thresholds.
func (c Config) Similarity() similarity.Config {
	return similarity.Config{
		SpellingThreshold: c.Dedup.SpellingThreshold,
		SemanticThreshold: c.Dedup.SemanticThreshold,
	}
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if _, err := dedup.ParseStrategy(c.Dedup.Strategy); err != nil {
		return err
	}
	if err := c.Similarity().Validate(); err != nil {
		return err
	}

	switch {
	case c.Filter.MinLength < 0:
		return invalid("filter.min_length must not be negative")
	case c.Filter.MaxLength != 0 && c.Filter.MaxLength < c.Filter.MinLength:
		return invalid("filter.max_length %d is below min_length %d", c.Filter.MaxLength, c.Filter.MinLength)
	case c.Source.Dimensions < 0:
		return invalid("source.dimensions must not be negative")
	case c.Output.TargetCount <= 0:
		return invalid("output.target_count must be positive")
	case c.Output.OversampleFactor < 1:
		return invalid("output.oversample_factor must be at least 1")
	case c.Output.Decimals < 0 || c.Output.Decimals > 15:
		return invalid("output.decimals %d outside [0, 15]", c.Output.Decimals)
	case c.Embed.BatchSize <= 0:
		return invalid("embed.batch_size must be positive")
	case c.Embed.Delay < 0:
		return invalid("embed.delay must not be negative")
	}

	switch c.Store.Driver {
	case "sqlite", "badger", "memory":
	default:
		return invalid("store.driver %q (want sqlite, badger or memory)", c.Store.Driver)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{internalerr.ErrInvalidConfig}, args...)...)
}

// Stoplist is a YAML `terms:` list.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads an exclusion list from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
