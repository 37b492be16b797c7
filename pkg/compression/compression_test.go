package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"data.csv.gz":   Gzip,
		"data.csv.GZ":   Gzip,
		"data.json.zst": Zstd,
		"data.ipc.s2":   S2,
		"frame.lz4":     LZ4,
		"data.csv":      None,
		"data":          None,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectAlgorithm(path), path)
	}
}

func TestStripExtension(t *testing.T) {
	assert.Equal(t, "data.csv", StripExtension("data.csv.gz"))
	assert.Equal(t, "data.json", StripExtension("data.json.zstd"))
	assert.Equal(t, "data.csv", StripExtension("data.csv"))
}

func TestRoundTrip(t *testing.T) {
	payload := strings.Repeat("torque,pressure\n10,100\n", 1000)

	for _, alg := range []Algorithm{None, Gzip, Zstd, S2, LZ4} {
		var buf bytes.Buffer

		w, err := NewWriter(alg, &buf)
		require.NoError(t, err, alg)
		_, err = io.WriteString(w, payload)
		require.NoError(t, err, alg)
		require.NoError(t, w.Close(), alg)

		r, err := NewReader(alg, bytes.NewReader(buf.Bytes()))
		require.NoError(t, err, alg)
		got, err := io.ReadAll(r)
		require.NoError(t, err, alg)
		require.NoError(t, r.Close(), alg)

		assert.Equal(t, payload, string(got), alg)
		if alg != None {
			assert.Less(t, buf.Len(), len(payload), alg)
		}
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewReader(Algorithm("brotli"), strings.NewReader(""))
	assert.Error(t, err)

	_, err = NewWriter(Algorithm("brotli"), io.Discard)
	assert.Error(t, err)
}
