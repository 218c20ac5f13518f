package staging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-dwh-etl/internal/db"
	"github.com/pgEdge/pgedge-dwh-etl/internal/etl"
	"github.com/pgEdge/pgedge-dwh-etl/internal/logging"
	"github.com/pgEdge/pgedge-dwh-etl/internal/objstore"
)

// DefaultBatchSize is the number of rows sent per COPY.
const DefaultBatchSize = 1000

// RowCopier bulk-inserts rows into a table. db.Copier implements it.
type RowCopier interface {
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// Loader fills staging tables from JSON objects in an object store.
type Loader struct {
	Store     objstore.Store
	BatchSize int
}

// NewLoader creates a loader reading from store.
func NewLoader(store objstore.Store) *Loader {
	return &Loader{Store: store, BatchSize: DefaultBatchSize}
}

// Load copies src into its staging table over conn.
func (l *Loader) Load(ctx context.Context, conn db.Conn, src etl.CopySource) (int64, error) {
	return l.LoadWith(ctx, db.Copier{Conn: conn}, src)
}

// LoadWith copies src into its staging table through copier.
func (l *Loader) LoadWith(ctx context.Context, copier RowCopier, src etl.CopySource) (int64, error) {
	start := time.Now()

	mapping, err := l.mapping(ctx, src)
	if err != nil {
		return 0, err
	}

	objects, err := l.objects(ctx, src.URI)
	if err != nil {
		return 0, err
	}

	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	columns := mapping.Columns()
	batch := make([][]any, 0, batchSize)
	var total int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copier.CopyFrom(ctx, src.Table.Name, columns, batch)
		if err != nil {
			return fmt.Errorf("failed to copy into %s: %w", src.Table.Name, err)
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for _, uri := range objects {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		rc, err := l.Store.Open(ctx, uri)
		if err != nil {
			return total, err
		}

		records := 0
		err = EachRecord(rc, func(n int, record []byte) error {
			row, err := mapping.Row(record)
			if err != nil {
				return fmt.Errorf("record %d: %w", n, err)
			}
			records++
			batch = append(batch, row)
			if len(batch) >= batchSize {
				return flush()
			}
			return nil
		})
		_ = rc.Close()
		if err != nil {
			return total, fmt.Errorf("failed to load %s: %w", uri, err)
		}

		logging.Debug().
			Str("table", src.Table.Name).
			Str("object", uri).
			Int("records", records).
			Msg("Read object")
	}

	if err := flush(); err != nil {
		return total, err
	}

	logging.Info().
		Str("table", src.Table.Name).
		Int("objects", len(objects)).
		Int64("rows", total).
		Dur("duration", time.Since(start)).
		Msg("Loaded staging table")

	return total, nil
}

func (l *Loader) mapping(ctx context.Context, src etl.CopySource) (*Mapping, error) {
	if src.JSONPaths == "" || src.JSONPaths == etl.AutoMapping {
		return AutoMapping(src.Table), nil
	}

	rc, err := l.Store.Open(ctx, src.JSONPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONPaths file: %w", err)
	}
	defer rc.Close()

	paths, err := ParseJSONPaths(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.JSONPaths, err)
	}
	return NewMapping(src.Table, paths)
}

// objects lists the JSON objects under the source prefix.
func (l *Loader) objects(ctx context.Context, uri string) ([]string, error) {
	all, err := l.Store.List(ctx, uri)
	if err != nil {
		return nil, err
	}

	var objects []string
	for _, o := range all {
		if strings.HasSuffix(strings.ToLower(o), ".json") {
			objects = append(objects, o)
		}
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no JSON objects found under %s", uri)
	}
	return objects, nil
}
