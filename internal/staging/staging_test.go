package staging

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/pgEdge/pgedge-dwh-etl/internal/etl"
	"github.com/pgEdge/pgedge-dwh-etl/internal/objstore"
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

const eventsJSONPaths = `{
    "jsonpaths": [
        "$['artist']",
        "$['auth']",
        "$['firstName']",
        "$['gender']",
        "$['itemInSession']",
        "$['lastName']",
        "$['length']",
        "$['level']",
        "$['location']",
        "$['method']",
        "$['page']",
        "$['registration']",
        "$['sessionId']",
        "$['song']",
        "$['status']",
        "$['ts']",
        "$['userAgent']",
        "$['userId']"
    ]
}`

const nextSongEvent = `{"artist":"Muse","auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":0,"lastName":"Lee","length":240.5,"level":"free","location":"Austin, TX","method":"PUT","page":"NextSong","registration":1540919166796.0,"sessionId":7,"song":"Starlight","status":200,"ts":1541105830796,"userAgent":"Mozilla/5.0","userId":"42"}`

const loggedOutEvent = `{"artist":null,"auth":"Logged Out","firstName":null,"gender":null,"itemInSession":1,"lastName":null,"length":null,"level":"free","location":null,"method":"GET","page":"Home","registration":null,"sessionId":8,"song":null,"status":200,"ts":1541105830900,"userAgent":null,"userId":""}`

const songRecord = `{"num_songs": 1, "artist_id": "AR1", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Muse", "song_id": "SO1", "title": "Starlight", "duration": 240.5, "year": 0}`

type fakeCopier struct {
	table   string
	columns []string
	rows    [][]any
	calls   int
	err     error
}

func (c *fakeCopier) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.calls++
	c.table = table
	c.columns = columns
	for _, r := range rows {
		c.rows = append(c.rows, append([]any(nil), r...))
	}
	return int64(len(rows)), nil
}

func TestTranslatePath(t *testing.T) {
	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{expr: "$['artist']", want: "artist"},
		{expr: `$["userId"]`, want: "userId"},
		{expr: "$.artist", want: "artist"},
		{expr: "$.song.title", want: "song.title"},
		{expr: "$['tags'][0]", want: "tags.0"},
		{expr: "$.tags[2].name", want: "tags.2.name"},
		{expr: "$['first.name']", want: `first\.name`},
		{expr: "artist", wantErr: true},
		{expr: "$", wantErr: true},
		{expr: "$[ 'artist' ]", want: "artist"},
		{expr: "$['artist'", wantErr: true},
		{expr: "$['artist]", wantErr: true},
		{expr: "$[x]", wantErr: true},
		{expr: "$..artist", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := TranslatePath(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslatePathQuotedSpecialCharacters(t *testing.T) {
	record := `{"a]b": 1, "c.d": {"e": 2}, "it's": 3}`
	tests := map[string]int64{
		"$['a]b']":      1,
		"$['c.d']['e']": 2,
		"$['c.d'].e":    2,
		`$["it's"]`:     3,
		`$[ "a]b" ]`:    1,
	}
	for expr, want := range tests {
		path, err := TranslatePath(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, gjson.Get(record, path).Int(), expr)
	}
}

func TestParseJSONPaths(t *testing.T) {
	paths, err := ParseJSONPaths(strings.NewReader(eventsJSONPaths))
	require.NoError(t, err)
	assert.Len(t, paths, len(warehouse.StagingEvents.Columns))
	assert.Equal(t, "firstName", paths[2])

	_, err = ParseJSONPaths(strings.NewReader(`{"paths": []}`))
	assert.Error(t, err)

	_, err = ParseJSONPaths(strings.NewReader(`{"jsonpaths": [1]}`))
	assert.Error(t, err)

	_, err = ParseJSONPaths(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestMappingEvents(t *testing.T) {
	paths, err := ParseJSONPaths(strings.NewReader(eventsJSONPaths))
	require.NoError(t, err)
	m, err := NewMapping(warehouse.StagingEvents, paths)
	require.NoError(t, err)

	row, err := m.Row([]byte(nextSongEvent))
	require.NoError(t, err)
	want := []any{
		"Muse", "Logged In", "Ann", "F", int64(0), "Lee", 240.5, "free", "Austin, TX",
		"PUT", "NextSong", 1540919166796.0, int64(7), "Starlight", int64(200),
		int64(1541105830796), "Mozilla/5.0", int64(42),
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Row mismatch (-want +got):\n%s", diff)
	}

	row, err = m.Row([]byte(loggedOutEvent))
	require.NoError(t, err)
	assert.Nil(t, row[17], "empty userId must load NULL")
	assert.Nil(t, row[0])
	assert.Equal(t, "Home", row[10])
}

func TestMappingColumnCountMismatch(t *testing.T) {
	_, err := NewMapping(warehouse.StagingEvents, []string{"artist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 expressions")
}

func TestAutoMappingSongs(t *testing.T) {
	m := AutoMapping(warehouse.StagingSongs)
	row, err := m.Row([]byte(songRecord))
	require.NoError(t, err)

	want := []any{int64(1), "AR1", nil, nil, "", "Muse", "SO1", "Starlight", 240.5, int64(0)}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("Row mismatch (-want +got):\n%s", diff)
	}

	// Key matching is exact: upper-case keys do not match.
	row, err = m.Row([]byte(`{"SONG_ID": "SO2", "song_id": "SO3"}`))
	require.NoError(t, err)
	assert.Equal(t, "SO3", row[6])
	assert.Nil(t, row[9])
}

func TestConvert(t *testing.T) {
	bigint := warehouse.Column{Name: "n", Type: warehouse.BigInt}
	float := warehouse.Column{Name: "f", Type: warehouse.Float}
	text := warehouse.Column{Name: "s", Type: warehouse.Varchar(5)}

	tests := []struct {
		name    string
		record  string
		col     warehouse.Column
		want    any
		wantErr bool
	}{
		{"int", `{"v": 12}`, bigint, int64(12), false},
		{"int string", `{"v": " 12 "}`, bigint, int64(12), false},
		{"int empty string", `{"v": ""}`, bigint, nil, false},
		{"int null", `{"v": null}`, bigint, nil, false},
		{"int missing", `{}`, bigint, nil, false},
		{"int fraction", `{"v": 1.5}`, bigint, nil, true},
		{"int whole float", `{"v": 2006.0}`, bigint, int64(2006), false},
		{"int exponent", `{"v": 1.5e3}`, bigint, int64(1500), false},
		{"int whole float string", `{"v": "2006.0"}`, bigint, int64(2006), false},
		{"int out of range", `{"v": 1e30}`, bigint, nil, true},
		{"int word", `{"v": "abc"}`, bigint, nil, true},
		{"int bool", `{"v": true}`, bigint, nil, true},
		{"float", `{"v": 1.5}`, float, 1.5, false},
		{"float string", `{"v": "2.25"}`, float, 2.25, false},
		{"float object", `{"v": {}}`, float, nil, true},
		{"text", `{"v": "abc"}`, text, "abc", false},
		{"text number", `{"v": 1.50}`, text, "1.50", false},
		{"text bool", `{"v": false}`, text, "false", false},
		{"text too long", `{"v": "abcdef"}`, text, nil, true},
		{"text array", `{"v": [1]}`, text, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mapping{table: warehouse.Table{Name: "t", Columns: []warehouse.Column{tt.col}}, paths: []string{"v"}}
			row, err := m.Row([]byte(tt.record))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "column "+tt.col.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, row[0])
		})
	}
}

func TestEachRecord(t *testing.T) {
	input := `{"a":1}
{"a":2}{"a":3}
[{"a":4},{"a":5}]
`
	var got []string
	err := EachRecord(strings.NewReader(input), func(n int, record []byte) error {
		got = append(got, string(record))
		assert.Equal(t, len(got), n)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"a":2}`, `{"a":3}`, `{"a":4}`, `{"a":5}`}, got)

	err = EachRecord(strings.NewReader(`{"a":1} 42`), func(int, []byte) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")

	err = EachRecord(strings.NewReader(`{"a":1} {"a":`), func(int, []byte) error { return nil })
	assert.Error(t, err)

	stop := errors.New("stop")
	err = EachRecord(strings.NewReader(`[{"a":1},{"a":2}]`), func(int, []byte) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func writeDataset(t *testing.T, dir string) objstore.Store {
	t.Helper()
	ctx := context.Background()
	store := objstore.NewFileStore()
	put := func(name, body string) {
		require.NoError(t, store.Put(ctx, filepath.Join(dir, name), []byte(body)))
	}
	put("log_json_path.json", eventsJSONPaths)
	put("log_data/2018/11/2018-11-01-events.json", nextSongEvent+"\n"+loggedOutEvent+"\n")
	put("log_data/2018/11/2018-11-02-events.json", nextSongEvent+"\n")
	put("log_data/README.txt", "not data")
	put("song_data/A/A/A/TRAAAAA.json", songRecord)
	return store
}

func TestLoaderLoadsEvents(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(writeDataset(t, dir))
	loader.BatchSize = 2
	copier := &fakeCopier{}

	src := etl.CopySource{
		Table:     warehouse.StagingEvents,
		URI:       filepath.Join(dir, "log_data"),
		JSONPaths: filepath.Join(dir, "log_json_path.json"),
	}
	n, err := loader.LoadWith(context.Background(), copier, src)
	require.NoError(t, err)

	assert.Equal(t, int64(3), n)
	assert.Equal(t, 2, copier.calls)
	assert.Equal(t, "staging_events", copier.table)
	assert.Equal(t, warehouse.StagingEvents.ColumnNames(), copier.columns)
	require.Len(t, copier.rows, 3)
	assert.Equal(t, "Home", copier.rows[1][10])
}

func TestLoaderAutoSongs(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(writeDataset(t, dir))
	copier := &fakeCopier{}

	src := etl.CopySource{
		Table:     warehouse.StagingSongs,
		URI:       "file://" + filepath.Join(dir, "song_data"),
		JSONPaths: etl.AutoMapping,
	}
	n, err := loader.LoadWith(context.Background(), copier, src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "SO1", copier.rows[0][6])
}

func TestLoaderErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := writeDataset(t, dir)
	require.NoError(t, store.Put(ctx, filepath.Join(dir, "bad_data/x.json"), []byte(`{"num_songs": "many"}`)))
	loader := NewLoader(store)

	_, err := loader.LoadWith(ctx, &fakeCopier{}, etl.CopySource{
		Table: warehouse.StagingSongs, URI: filepath.Join(dir, "bad_data"), JSONPaths: etl.AutoMapping,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x.json")
	assert.Contains(t, err.Error(), "record 1")
	assert.Contains(t, err.Error(), "num_songs")

	_, err = loader.LoadWith(ctx, &fakeCopier{}, etl.CopySource{
		Table: warehouse.StagingSongs, URI: filepath.Join(dir, "empty"), JSONPaths: etl.AutoMapping,
	})
	assert.ErrorContains(t, err, "no JSON objects")

	_, err = loader.LoadWith(ctx, &fakeCopier{}, etl.CopySource{
		Table: warehouse.StagingEvents, URI: filepath.Join(dir, "log_data"), JSONPaths: filepath.Join(dir, "missing.json"),
	})
	assert.ErrorContains(t, err, "JSONPaths")

	cause := errors.New("connection reset")
	_, err = loader.LoadWith(ctx, &fakeCopier{err: cause}, etl.CopySource{
		Table: warehouse.StagingSongs, URI: filepath.Join(dir, "song_data"), JSONPaths: etl.AutoMapping,
	})
	assert.ErrorIs(t, err, cause)
}
