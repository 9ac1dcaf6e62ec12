// Package output writes generated text to the output directory as Markdown
// with YAML front matter.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mediabuddy/internal/fileutil"
	"mediabuddy/internal/services"
	"mediabuddy/internal/textutil"
)

const (
	lockFile       = ".mediabuddy.lock"
	lockRetryDelay = 50 * time.Millisecond
	slugLength     = 48
	fence          = "---"
)

// Document is one generated piece of text and its provenance.
type Document struct {
	RequestID     string    `yaml:"request_id"`
	Mode          string    `yaml:"mode"`
	Topic         string    `yaml:"topic"`
	TargetWords   int       `yaml:"target_words"`
	Words         int       `yaml:"words"`
	Attempts      int       `yaml:"attempts,omitempty"`
	Backend       string    `yaml:"backend,omitempty"`
	Model         string    `yaml:"model,omitempty"`
	CorpusVersion string    `yaml:"corpus_version,omitempty"`
	Warning       string    `yaml:"warning,omitempty"`
	CreatedAt     time.Time `yaml:"created_at"`
	Text          string    `yaml:"-"`
}

// Writer stores documents in one directory. Concurrent writers, including
// other processes, are serialised by a lock file in that directory.
type Writer struct {
	dir string
	// mu serialises goroutines; lock only excludes other processes.
	mu   sync.Mutex
	lock *flock.Flock
	now  func() time.Time
}

// NewWriter returns a writer rooted at dir, creating it when missing.
func NewWriter(dir string) (*Writer, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "output", "new writer", "output directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{dir: dir, lock: flock.New(filepath.Join(dir, lockFile)), now: time.Now}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Write stores doc and returns the file path. The file name combines the
// date, a slug of the topic and a fresh UUID, so it never collides.
func (w *Writer) Write(ctx context.Context, doc Document) (string, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return "", services.Wrap(services.ErrInvalidInput, "output", "write", "document text is empty", nil)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = w.now().UTC()
	}
	data, err := Encode(doc)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	locked, err := w.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return "", errors.New("acquire output lock: not acquired")
	}
	defer func() { _ = w.lock.Unlock() }()

	name := fmt.Sprintf("%s-%s-%s.md", doc.CreatedAt.Format("20060102"), textutil.Slug(doc.Topic, slugLength), uuid.NewString())
	path := filepath.Join(w.dir, name)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

// Encode renders doc as front matter followed by the text.
func Encode(doc Document) ([]byte, error) {
	meta, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(fence + "\n")
	buf.Write(meta)
	buf.WriteString(fence + "\n\n")
	buf.WriteString(strings.TrimSpace(doc.Text))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Decode parses a document produced by Encode. Input without front matter is
// returned as bare text.
func Decode(data []byte) (Document, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, fence+"\n") {
		return Document{Text: strings.TrimSpace(text)}, nil
	}
	rest := text[len(fence)+1:]
	end := strings.Index(rest, "\n"+fence+"\n")
	if end < 0 {
		return Document{}, services.Wrap(services.ErrInvalidInput, "output", "decode", "front matter is not closed", nil)
	}
	var doc Document
	if err := yaml.Unmarshal([]byte(rest[:end]), &doc); err != nil {
		return Document{}, services.Wrap(services.ErrInvalidInput, "output", "decode", "invalid front matter", err)
	}
	doc.Text = strings.TrimSpace(rest[end+len(fence)+2:])
	return doc, nil
}

// Read loads and decodes the document at path.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Decode(data)
}
