package datagen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-dwh-etl/internal/datagen/profiles"
	"github.com/pgEdge/pgedge-dwh-etl/internal/logging"
	"github.com/pgEdge/pgedge-dwh-etl/internal/objstore"
)

// Object layout under the output root.
const (
	SongDataDir  = "song_data"
	LogDataDir   = "log_data"
	JSONPathFile = "log_json_path.json"
)

// DefaultStart is the first day of generated logs.
var DefaultStart = time.Date(2018, time.November, 1, 0, 0, 0, 0, time.UTC)

// Config controls dataset size and randomness.
type Config struct {
	// Seed makes the dataset reproducible. Zero picks a random seed.
	Seed uint64

	Songs        int
	Users        int
	Days         int
	EventsPerDay int

	// Start is the first logged day. Zero means DefaultStart.
	Start time.Time

	// Profile spreads sessions over the hours of each day. Nil means
	// profiles.Default in UTC.
	Profile profiles.Profile
}

// Summary describes a written dataset.
type Summary struct {
	SongObjects int
	LogObjects  int
	Events      int
	NextSongs   int
	Unmatched   int
	Bytes       int64
}

// Generator writes a sample dataset through an object store.
type Generator struct {
	cfg   Config
	store objstore.Store
}

// NewGenerator creates a dataset generator.
func NewGenerator(cfg Config, store objstore.Store) (*Generator, error) {
	if cfg.Songs < 1 || cfg.Users < 1 || cfg.Days < 1 || cfg.EventsPerDay < 1 {
		return nil, fmt.Errorf("songs, users, days and events per day must be positive")
	}
	if cfg.Start.IsZero() {
		cfg.Start = DefaultStart
	}
	if cfg.Profile == nil {
		p, err := profiles.Get(profiles.Default, "UTC")
		if err != nil {
			return nil, err
		}
		cfg.Profile = p
	}
	return &Generator{cfg: cfg, store: store}, nil
}

// Generate writes song objects, daily log objects and the JSONPaths file
// under root.
func (g *Generator) Generate(ctx context.Context, root string) (*Summary, error) {
	loc, err := objstore.ParseURI(root)
	if err != nil {
		return nil, err
	}

	faker := NewFaker()
	if g.cfg.Seed != 0 {
		faker = NewFakerWithSeed(g.cfg.Seed)
	}

	start := time.Now()
	ds := buildDataset(faker, g.cfg)
	summary := &Summary{}

	progress := NewProgressReporter(SongDataDir, int64(len(ds.songs)), 100)
	for _, s := range ds.songs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		body, err := json.Marshal(s.record)
		if err != nil {
			return summary, err
		}
		if err := g.put(ctx, loc.Join(s.path()...), body, summary); err != nil {
			return summary, err
		}
		summary.SongObjects++
		progress.Update(1)
	}
	progress.Done()

	progress = NewProgressReporter(LogDataDir, int64(len(ds.days)), 10)
	for _, day := range ds.days {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		var body []byte
		for _, e := range day.events {
			line, err := json.Marshal(e)
			if err != nil {
				return summary, err
			}
			body = append(body, line...)
			body = append(body, '\n')

			summary.Events++
			if e.Page == PageNextSong {
				summary.NextSongs++
			}
		}
		if err := g.put(ctx, loc.Join(day.path()...), body, summary); err != nil {
			return summary, err
		}
		summary.LogObjects++
		progress.Update(1)
	}
	progress.Done()
	summary.Unmatched = ds.unmatched

	body, err := json.MarshalIndent(JSONPaths(), "", "    ")
	if err != nil {
		return summary, err
	}
	if err := g.put(ctx, loc.Join(JSONPathFile), body, summary); err != nil {
		return summary, err
	}

	logging.Info().
		Str("output", loc.String()).
		Int("song_objects", summary.SongObjects).
		Int("log_objects", summary.LogObjects).
		Int("events", summary.Events).
		Str("size", FormatSize(summary.Bytes)).
		Dur("duration", time.Since(start)).
		Msg("Dataset generated")

	return summary, nil
}

func (g *Generator) put(ctx context.Context, loc objstore.Location, body []byte, summary *Summary) error {
	if err := g.store.Put(ctx, loc.String(), body); err != nil {
		return fmt.Errorf("failed to write %s: %w", loc, err)
	}
	summary.Bytes += int64(len(body))
	return nil
}

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	name             string
	total            int64
	current          int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(name string, total int64, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		name:             name,
		total:            total,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(n int64) {
	old := p.current
	p.current += n

	// Check if we crossed a progress interval
	if p.current/p.progressInterval > old/p.progressInterval {
		pct := float64(p.current) / float64(p.total) * 100
		logging.Debug().
			Str("dataset", p.name).
			Int64("objects", p.current).
			Int64("total", p.total).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("dataset", p.name).
		Int64("objects", p.current).
		Msg("Dataset part complete")
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
