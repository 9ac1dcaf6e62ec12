package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mediabuddy/internal/services"
)

func sampleDocument() Document {
	return Document{
		RequestID:     "req-42",
		Mode:          "rewrite",
		Topic:         "Traffic Congestion: Downtown",
		TargetWords:   50,
		Words:         48,
		Attempts:      2,
		Backend:       "openrouter",
		Model:         "test-model",
		CorpusVersion: "abc123",
		Warning:       "",
		CreatedAt:     time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Text:          "Traffic is bad.\n\nIt will get worse.",
	}
}

func TestEncodeDecode(t *testing.T) {
	doc := sampleDocument()
	data, err := Encode(doc)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "---\nrequest_id: req-42\n"))
	require.NotContains(t, string(data), "warning:")

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, doc, got)
}

func TestDecodePlainText(t *testing.T) {
	got, err := Decode([]byte("  just text\n"))
	require.NoError(t, err)
	require.Equal(t, "just text", got.Text)
	require.Empty(t, got.RequestID)
}

func TestDecodeUnclosedFrontMatter(t *testing.T) {
	_, err := Decode([]byte("---\nmode: rewrite\nno end"))
	require.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(dir)
	require.NoError(t, err)

	path, err := w.Write(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	require.True(t, strings.HasPrefix(filepath.Base(path), "20260304-traffic-congestion-downtown-"))
	require.True(t, strings.HasSuffix(path, ".md"))

	got, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, "req-42", got.RequestID)
	require.Equal(t, "Traffic is bad.\n\nIt will get worse.", got.Text)
}

func TestWriterRejectsEmptyText(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	doc := sampleDocument()
	doc.Text = "  "
	_, err = w.Write(context.Background(), doc)
	require.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestWriterConcurrentWritesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	paths := make([]string, writers)
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = w.Write(context.Background(), sampleDocument())
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range writers {
		require.NoError(t, errs[i])
		require.False(t, seen[paths[i]])
		seen[paths[i]] = true
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var docs int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".md") {
			docs++
		}
	}
	require.Equal(t, writers, docs)
}

func TestNewWriterRequiresDir(t *testing.T) {
	_, err := NewWriter("")
	require.ErrorIs(t, err, services.ErrConfiguration)
}
