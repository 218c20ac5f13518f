//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report runs analytical queries over the loaded star schema.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	sq "github.com/Masterminds/squirrel"
	"github.com/olekukonko/tablewriter"

	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// DefaultLimit caps ranked reports when no limit is configured.
const DefaultLimit = 10

const startTimeExpr = "timestamp 'epoch' + sp.start_time/1000 * interval '1 second'"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Querier is satisfied by *sql.DB and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Table is one rendered report.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Reporter builds and runs reports.
type Reporter struct {
	db    Querier
	limit uint64
}

// New creates a reporter. A limit below 1 means DefaultLimit.
func New(db Querier, limit int) *Reporter {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Reporter{db: db, limit: uint64(limit)}
}

// Query is a named report query.
type Query struct {
	Title   string
	Header  []string
	Builder sq.SelectBuilder
}

// Queries returns every report in display order.
func (r *Reporter) Queries() []Query {
	queries := []Query{}
	for _, t := range warehouse.Tables() {
		queries = append(queries, Query{
			Title:   "Rows in " + t.Name,
			Header:  []string{"table", "rows"},
			Builder: rowCount(t.Name),
		})
	}
	return append(queries,
		Query{Title: "Top songs", Header: []string{"title", "artist", "plays"}, Builder: r.topSongs()},
		Query{Title: "Top artists", Header: []string{"artist", "plays"}, Builder: r.topArtists()},
		Query{Title: "Plays by hour", Header: []string{"hour", "plays"}, Builder: playsByHour()},
		Query{Title: "Plays by level", Header: []string{"level", "plays"}, Builder: playsByLevel()},
		Query{Title: "Catalog matches", Header: []string{"matched", "plays"}, Builder: catalogMatches()},
	)
}

func rowCount(table string) sq.SelectBuilder {
	return psql.Select(fmt.Sprintf("'%s'", table), "COUNT(*)").From(table)
}

// Dimensions keep every spelling of a song or artist. These joins pick one
// name per id so a play is counted once.
const (
	artistNames = "(SELECT artist_id, MIN(name) AS name FROM artists GROUP BY artist_id) a ON a.artist_id = sp.artist_id"
	songTitles  = "(SELECT song_id, MIN(title) AS title FROM songs GROUP BY song_id) s ON s.song_id = sp.song_id"
)

func (r *Reporter) topSongs() sq.SelectBuilder {
	return psql.
		Select("s.title", "a.name", "COUNT(*) AS plays").
		From("songplays sp").
		Join(songTitles).
		Join(artistNames).
		GroupBy("s.song_id", "s.title", "a.name").
		OrderBy("plays DESC", "s.title").
		Limit(r.limit)
}

func (r *Reporter) topArtists() sq.SelectBuilder {
	return psql.
		Select("a.name", "COUNT(*) AS plays").
		From("songplays sp").
		Join(artistNames).
		GroupBy("a.artist_id", "a.name").
		OrderBy("plays DESC", "a.name").
		Limit(r.limit)
}

func playsByHour() sq.SelectBuilder {
	hour := fmt.Sprintf("DATE_PART('hour', %s)::int", startTimeExpr)
	return psql.
		Select(hour+" AS hour", "COUNT(*) AS plays").
		From("songplays sp").
		GroupBy(hour).
		OrderBy("hour")
}

func playsByLevel() sq.SelectBuilder {
	return psql.
		Select("sp.level", "COUNT(*) AS plays").
		From("songplays sp").
		GroupBy("sp.level").
		OrderBy("sp.level")
}

func catalogMatches() sq.SelectBuilder {
	matched := "CASE WHEN sp.song_id IS NULL THEN 'no' ELSE 'yes' END"
	return psql.
		Select(matched+" AS matched", "COUNT(*) AS plays").
		From("songplays sp").
		GroupBy(matched).
		OrderBy("matched DESC")
}

// Run executes every report.
func (r *Reporter) Run(ctx context.Context) ([]Table, error) {
	var tables []Table
	for _, q := range r.Queries() {
		t, err := r.run(ctx, q)
		if err != nil {
			return tables, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (r *Reporter) run(ctx context.Context, q Query) (Table, error) {
	query, args, err := q.Builder.ToSql()
	if err != nil {
		return Table{}, fmt.Errorf("failed to build %s query: %w", q.Title, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", q.Title, err)
	}
	defer rows.Close()

	t := Table{Title: q.Title, Header: q.Header}
	for rows.Next() {
		values := make([]sql.NullString, len(q.Header))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Table{}, fmt.Errorf("%s: %w", q.Title, err)
		}

		row := make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// Render writes the tables. Row counts are merged into one table.
func Render(w io.Writer, tables []Table) {
	counts := Table{Title: "Row counts", Header: []string{"table", "rows"}}
	var rest []Table
	for _, t := range tables {
		if len(t.Header) == 2 && t.Header[0] == "table" {
			counts.Rows = append(counts.Rows, t.Rows...)
			continue
		}
		rest = append(rest, t)
	}
	if len(counts.Rows) > 0 {
		rest = append([]Table{counts}, rest...)
	}

	for i, t := range rest {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, t.Title)

		table := tablewriter.NewWriter(w)
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(false)
		table.SetHeader(t.Header)
		table.AppendBulk(t.Rows)
		table.Render()
	}
}
