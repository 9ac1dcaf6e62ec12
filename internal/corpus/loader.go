package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mediabuddy/internal/services"
	"mediabuddy/internal/textutil"
)

// LoadOptions controls how a source directory is read.
type LoadOptions struct {
	Extensions []string
	Delimiter  string
	MinWords   int
}

type frontMatter struct {
	Source string `yaml:"source"`
	Title  string `yaml:"title"`
	Skip   bool   `yaml:"skip"`
}

// Load reads every matching document under source and splits it into samples.
// A source may also name a single file. Returns an ErrCorpusEmpty error when no
// usable sample is found.
func Load(ctx context.Context, source string, opts LoadOptions) ([]WritingSample, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, services.Wrap(services.ErrCorpusEmpty, "sampling", "load corpus", "no corpus source configured", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrCorpusEmpty, "sampling", "load corpus", fmt.Sprintf("source %q does not exist", source), err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "sampling", "load corpus", fmt.Sprintf("stat %q", source), err)
	}

	var files []string
	if info.IsDir() {
		files, err = collectFiles(ctx, source, opts.Extensions)
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{source}
	}

	base := source
	if !info.IsDir() {
		base = filepath.Dir(source)
	}

	var samples []WritingSample
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "sampling", "read document", path, err)
		}
		label, err := filepath.Rel(base, path)
		if err != nil {
			label = filepath.Base(path)
		}
		parsed, err := ParseDocument(raw, filepath.ToSlash(label), isMarkdown(path), opts)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "sampling", "parse document", path, err)
		}
		samples = append(samples, parsed...)
	}

	if len(samples) == 0 {
		return nil, services.Wrap(services.ErrCorpusEmpty, "sampling", "load corpus", fmt.Sprintf("no writing samples found in %s", source), nil)
	}
	return samples, nil
}

func collectFiles(ctx context.Context, root string, extensions []string) ([]string, error) {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "sampling", "walk corpus", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ParseDocument splits one document into samples. label is used as the source
// when the front matter does not name one; multi-section documents get a
// "#n" suffix per section.
func ParseDocument(raw []byte, label string, markdown bool, opts LoadOptions) ([]WritingSample, error) {
	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}
	if meta.Skip {
		return nil, nil
	}
	source := label
	switch {
	case strings.TrimSpace(meta.Source) != "":
		source = strings.TrimSpace(meta.Source)
	case strings.TrimSpace(meta.Title) != "":
		source = strings.TrimSpace(meta.Title)
	}

	sections := splitSections(textutil.Normalize(string(body)), opts.Delimiter)
	out := make([]WritingSample, 0, len(sections))
	for i, section := range sections {
		var text string
		if markdown {
			text = markdownToProse([]byte(section))
		} else {
			text = plainParagraphs(section)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if opts.MinWords > 0 && textutil.WordCount(text) < opts.MinWords {
			continue
		}
		sampleSource := source
		if len(sections) > 1 {
			sampleSource = fmt.Sprintf("%s#%d", source, i+1)
		}
		out = append(out, NewSample(text, sampleSource))
	}
	return out, nil
}

var fence = []byte("---")

func splitFrontMatter(raw []byte) (frontMatter, []byte, error) {
	var meta frontMatter
	trimmed := bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(trimmed, fence) {
		return meta, trimmed, nil
	}
	firstLine, rest, ok := bytes.Cut(trimmed, []byte("\n"))
	if !ok || string(bytes.TrimSpace(firstLine)) != "---" {
		return meta, trimmed, nil
	}
	lines := bytes.SplitAfter(rest, []byte("\n"))
	offset := 0
	for _, line := range lines {
		if string(bytes.TrimSpace(line)) == "---" {
			header := rest[:offset]
			if err := yaml.Unmarshal(header, &meta); err != nil {
				return meta, nil, fmt.Errorf("front matter: %w", err)
			}
			return meta, rest[offset+len(line):], nil
		}
		offset += len(line)
	}
	// Unterminated fence: treat the whole document as body.
	return frontMatter{}, trimmed, nil
}

func splitSections(body, delimiter string) []string {
	delimiter = strings.TrimSpace(delimiter)
	if delimiter == "" {
		return []string{body}
	}
	var (
		sections []string
		current  strings.Builder
	)
	for _, line := range strings.SplitAfter(body, "\n") {
		if strings.TrimSpace(line) == delimiter {
			sections = append(sections, current.String())
			current.Reset()
			continue
		}
		current.WriteString(line)
	}
	sections = append(sections, current.String())
	return sections
}

// plainParagraphs collapses line wrapping inside paragraphs while keeping
// blank-line paragraph breaks.
func plainParagraphs(text string) string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		if p := textutil.CollapseWhitespace(block); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
