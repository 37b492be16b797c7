package formats

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"data.csv":      CSV,
		"data.CSV":      CSV,
		"data.csv.gz":   CSV,
		"data.csv.zst":  CSV,
		"data.arrow":    ArrowIPC,
		"data.ipc.lz4":  ArrowIPC,
		"data.json":     JSON,
		"data.json.s2":  JSON,
		"dir/data.json": JSON,
	}
	for path, want := range cases {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := DetectFormat("data.parquet")
	assert.Error(t, err)
	_, err = DetectFormat("data")
	assert.Error(t, err)
}

func TestReadWriteFile(t *testing.T) {
	f := testFrame(t)
	dir := t.TempDir()

	for _, name := range []string{"out.csv", "out.csv.gz", "out.arrow", "out.json.zst"} {
		path := filepath.Join(dir, name)
		opts := CSVOptions{UnitsRow: true, Quantify: true}

		require.NoError(t, WriteFile(path, f, opts), name)
		got, err := ReadFile(path, opts)
		require.NoError(t, err, name)
		assertFramesEquivalent(t, f, got)
	}
}
