package objstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    Location
		wantErr string
	}{
		{
			name: "s3 prefix",
			uri:  "s3://udacity-dend/log_data",
			want: Location{Scheme: SchemeS3, Bucket: "udacity-dend", Key: "log_data"},
		},
		{
			name: "s3 nested key",
			uri:  "s3://udacity-dend/song_data/A/B/C/TRABCEI128F424C983.json",
			want: Location{Scheme: SchemeS3, Bucket: "udacity-dend", Key: "song_data/A/B/C/TRABCEI128F424C983.json"},
		},
		{
			name: "s3 bucket only",
			uri:  "s3://my.bucket-01",
			want: Location{Scheme: SchemeS3, Bucket: "my.bucket-01"},
		},
		{
			name: "file uri",
			uri:  "file:///tmp/data/log_data/",
			want: Location{Scheme: SchemeFile, Path: "/tmp/data/log_data"},
		},
		{
			name: "plain path",
			uri:  "./data/song_data",
			want: Location{Scheme: SchemeFile, Path: "data/song_data"},
		},
		{name: "empty", uri: "  ", wantErr: "empty location"},
		{name: "missing bucket", uri: "s3:///key", wantErr: "missing bucket name"},
		{name: "short bucket", uri: "s3://ab/key", wantErr: "3-63 characters"},
		{name: "uppercase bucket", uri: "s3://MyBucket/key", wantErr: "invalid character"},
		{name: "unsupported scheme", uri: "gs://bucket/key", wantErr: "unsupported location scheme"},
		{name: "file without path", uri: "file://", wantErr: "missing path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseURI mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocationJoinAndString(t *testing.T) {
	loc, err := ParseURI("s3://udacity-dend/song_data")
	require.NoError(t, err)

	joined := loc.Join("A", "B", "C", "TRAAAAW128F429D538.json")
	assert.Equal(t, "s3://udacity-dend/song_data/A/B/C/TRAAAAW128F429D538.json", joined.String())
	assert.Equal(t, "TRAAAAW128F429D538.json", joined.Base())

	root := Location{Scheme: SchemeS3, Bucket: "udacity-dend"}
	assert.Equal(t, "s3://udacity-dend/log_json_path.json", root.Join("log_json_path.json").String())

	file, err := ParseURI("/data")
	require.NoError(t, err)
	assert.Equal(t, "file:///data/log_data", file.Join("log_data").String())
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore()

	require.NoError(t, store.Put(ctx, filepath.Join(dir, "song_data/A/B/C/TRB.json"), []byte(`{"song_id":"b"}`)))
	require.NoError(t, store.Put(ctx, filepath.Join(dir, "song_data/A/A/A/TRA.json"), []byte(`{"song_id":"a"}`)))
	require.NoError(t, store.Put(ctx, "file://"+filepath.Join(dir, "log_json_path.json"), []byte(`{}`)))

	files, err := store.List(ctx, filepath.Join(dir, "song_data"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "song_data/A/A/A/TRA.json"),
		filepath.Join(dir, "song_data/A/B/C/TRB.json"),
	}, files)

	// A path that doesn't exist is a name prefix, like an S3 key prefix.
	files, err = store.List(ctx, filepath.Join(dir, "song"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = store.List(ctx, filepath.Join(dir, "missing/prefix"))
	require.NoError(t, err)
	assert.Empty(t, files)

	ok, err := store.Exists(ctx, filepath.Join(dir, "log_json_path.json"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, filepath.Join(dir, "song_data"))
	require.NoError(t, err)
	assert.False(t, ok, "directories are not objects")

	rc, err := store.Open(ctx, filepath.Join(dir, "song_data/A/A/A/TRA.json"))
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"song_id":"a"}`, string(body))

	_, err = store.List(ctx, "s3://bucket/key")
	assert.Error(t, err)
}

func TestMuxDispatchesFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mux := NewMux(S3Config{})

	uri := "file://" + filepath.Join(dir, "log_data/2018/11/2018-11-01-events.json")
	require.NoError(t, mux.Put(ctx, uri, []byte("{}\n")))

	_, err := os.Stat(filepath.Join(dir, "log_data/2018/11/2018-11-01-events.json"))
	require.NoError(t, err)

	files, err := mux.List(ctx, "file://"+filepath.Join(dir, "log_data"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore()
	require.NoError(t, store.Put(ctx, filepath.Join(dir, "log_data/a.json"), []byte("{}")))

	assert.True(t, CheckPrefix(ctx, store, filepath.Join(dir, "log_data")).OK())
	assert.False(t, CheckPrefix(ctx, store, filepath.Join(dir, "song_data")).OK())
	assert.False(t, CheckObject(ctx, store, filepath.Join(dir, "log_json_path.json")).OK())

	res := CheckPrefix(ctx, store, filepath.Join(dir, "log_data"))
	assert.Equal(t, 1, res.Objects)
}
