package report

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
	"github.com/cognicore/wordprep/pkg/wordprep/filter"
	"github.com/cognicore/wordprep/pkg/wordprep/similarity"
	"github.com/cognicore/wordprep/pkg/wordprep/store"
	"github.com/cognicore/wordprep/pkg/wordprep/wordsfile"
)

// maxExamples bounds the merge examples kept in a report.
const maxExamples = 10

// IDs hands out monotonic ULIDs.
type IDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDs creates an ID source.
func NewIDs() *IDs {
	return &IDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a new ULID string.
func (g *IDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}

// Report records what a pipeline run did.
type Report struct {
	ID         string             `json:"id"`
	Command    string             `json:"command"`
	Started    time.Time          `json:"started"`
	Finished   time.Time          `json:"finished"`
	Output     string             `json:"output,omitempty"`
	Strategy   dedup.Strategy     `json:"strategy,omitempty"`
	Thresholds *similarity.Config `json:"thresholds,omitempty"`
	Loaded     int                `json:"loaded"`
	Rejected   map[string]int     `json:"rejected,omitempty"` // filter rejections by reason
	Dedup      *dedup.Stats       `json:"dedup,omitempty"`
	Examples   []dedup.Group      `json:"examples,omitempty"`
	Written    int                `json:"written"`
	Verify     *wordsfile.Summary `json:"verify,omitempty"`
}

// New starts a report for command.
func (g *IDs) New(command string, started time.Time) *Report {
	return &Report{ID: g.Next(), Command: command, Started: started}
}

// AddFilter records filter rejection counts keyed by reason name.
func (r *Report) AddFilter(st filter.Stats) {
	r.Rejected = make(map[string]int, len(st.Rejected))
	for reason, n := range st.Rejected {
		r.Rejected[reason.String()] = n
	}
}

// AddDedup copies the pass summary and up to maxExamples merged groups.
// Thresholds are recorded for the similarity strategy only.
func (r *Report) AddDedup(res *dedup.Result, cfg similarity.Config) {
	stats := res.Stats
	r.Dedup = &stats
	r.Strategy = res.Strategy
	if res.Strategy == dedup.BySimilarity {
		r.Thresholds = &cfg
	}
	r.Examples = res.Examples(maxExamples)
}

// PathFor returns where the report for an output file is written.
func PathFor(output string) string {
	return output + ".report.json"
}

// Write stores the report as indented JSON, creating parent directories.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Run converts the report into a store record.
func (r *Report) Run() (store.Run, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return store.Run{}, err
	}
	return store.Run{
		ID:       r.ID,
		Command:  r.Command,
		Started:  r.Started,
		Finished: r.Finished,
		Words:    r.Loaded,
		Kept:     r.Written,
		Path:     r.Output,
		Report:   data,
	}, nil
}
