package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	header []string
	values []string
}

func (r testRecord) Header() []string { return r.header }
func (r testRecord) Values() []string { return r.values }

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"grid.json", FormatJSON},
		{"grid.YAML", FormatYAML},
		{"grid.yml", FormatYAML},
		{"out.txt", FormatTable},
		{"summary.csv", FormatCSV},
		{"unknown.bin", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromPath(tt.path))
		})
	}
}

func TestFormatIsUnknown(t *testing.T) {
	for _, f := range SupportedFormats() {
		assert.False(t, Format(f).IsUnknown(), f)
	}
	assert.True(t, Format("xml").IsUnknown())
}

func TestWriterCSV(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatCSV, &buf)
	rec := testRecord{
		header: []string{"id", "lines"},
		values: []string{"42", "HA,HB"},
	}
	require.NoError(t, w.Serialize(context.Background(), rec))
	assert.Equal(t, "id,lines\n42,\"HA,HB\"\n", buf.String())
}

func TestWriterCSVErrors(t *testing.T) {
	w := NewWriter(FormatCSV, &bytes.Buffer{})
	assert.Error(t, w.Serialize(context.Background(), map[string]string{"a": "b"}))
	assert.Error(t, w.Serialize(context.Background(), []Record{}))

	bad := testRecord{header: []string{"a", "b"}, values: []string{"1"}}
	assert.Error(t, w.Serialize(context.Background(), bad))
}

func TestWriterTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	data := struct {
		Name  string
		Lines []string
	}{Name: "grid", Lines: []string{"HA"}}
	require.NoError(t, w.Serialize(context.Background(), data))
	out := buf.String()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Lines.[0]")
	assert.Contains(t, out, "HA")
}

func TestNewWriterUnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	require.NoError(t, w.Serialize(context.Background(), map[string]int{"rows": 3}))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
}

func TestFromFileRoundTrip(t *testing.T) {
	type doc struct {
		Archive string    `yaml:"archive" json:"archive"`
		Z       []float64 `yaml:"z" json:"z"`
	}

	for _, name := range []string{"doc.yaml", "doc.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := NewFileWriter(FormatFromPath(path), path)
			require.NoError(t, err)
			require.NoError(t, w.Serialize(context.Background(), doc{Archive: "a.h5", Z: []float64{0.001, 0.02}}))
			require.NoError(t, w.Close())
			require.NoError(t, w.Close())

			got, err := FromFile[doc](path)
			require.NoError(t, err)
			assert.Equal(t, "a.h5", got.Archive)
			assert.Equal(t, []float64{0.001, 0.02}, got.Z)
		})
	}
}

func TestReaderRejectsWriteOnlyFormats(t *testing.T) {
	_, err := NewReader(FormatCSV, strings.NewReader(""))
	assert.Error(t, err)
	_, err = NewReader(FormatTable, strings.NewReader(""))
	assert.Error(t, err)
}

func TestNewFileReaderMissing(t *testing.T) {
	_, err := NewFileReader(FormatYAML, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errorsUnwrapAll(err)))
}

func errorsUnwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}
