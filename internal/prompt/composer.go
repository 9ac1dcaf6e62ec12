package prompt

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"mediabuddy/internal/services"
	"mediabuddy/internal/style"
)

// Options configures composition.
type Options struct {
	AuthorName    string
	Tolerance     float64
	TokensPerWord float64
	// TokenHeadroom is added to the derived output-token budget.
	TokenHeadroom int
}

// DefaultOptions returns stock composer settings.
func DefaultOptions() Options {
	return Options{AuthorName: "the author", Tolerance: 0.2, TokensPerWord: 1.5, TokenHeadroom: 64}
}

// Source is one piece of topical reference material.
type Source struct {
	Title string
	URL   string
	Body  string
}

// Content is the topical input for one request.
type Content struct {
	Mode Mode
	// Text is the primary material: the passage to rewrite, the article to
	// respond to, the topic to synthesize, the user's draft, or the question.
	Text    string
	Sources []Source
	// Prior is optional earlier conversation for query mode.
	Prior string
	// Notes are learned, topic-free style preferences.
	Notes []string
}

// Composer builds requests that keep style guidance and topical content in
// separate partitions.
type Composer struct {
	opts Options
}

// NewComposer returns a composer; zero options take defaults.
func NewComposer(opts Options) *Composer {
	def := DefaultOptions()
	if strings.TrimSpace(opts.AuthorName) == "" {
		opts.AuthorName = def.AuthorName
	}
	if opts.Tolerance <= 0 || opts.Tolerance >= 1 {
		opts.Tolerance = def.Tolerance
	}
	if opts.TokensPerWord <= 0 {
		opts.TokensPerWord = def.TokensPerWord
	}
	if opts.TokenHeadroom < 0 {
		opts.TokenHeadroom = 0
	}
	return &Composer{opts: opts}
}

// Compose builds a rewrite request for topic.
func (c *Composer) Compose(d style.Descriptor, topic string, target int) (Request, error) {
	return c.ComposeContent(d, Content{Mode: ModeRewrite, Text: topic}, target)
}

// ComposeContent builds a request for any mode. Empty primary text, a
// non-positive target, or missing mode material fail with ErrInvalidInput.
func (c *Composer) ComposeContent(d style.Descriptor, content Content, target int) (Request, error) {
	if target <= 0 {
		return Request{}, invalid(fmt.Sprintf("target length must be positive, got %d", target))
	}
	if strings.TrimSpace(content.Text) == "" {
		return Request{}, invalid("topic text is empty")
	}
	if content.Mode == "" {
		content.Mode = ModeRewrite
	}
	if !content.Mode.Valid() {
		return Request{}, invalid(fmt.Sprintf("unknown mode %q", content.Mode))
	}
	if (content.Mode == ModeSynthesize || content.Mode == ModeEnhance) && len(usableSources(content.Sources)) == 0 {
		return Request{}, invalid(fmt.Sprintf("%s mode needs at least one source", content.Mode))
	}
	if d.Empty() {
		return Request{}, services.Wrap(services.ErrCorpusEmpty, "composing", "compose prompt", "style descriptor has no samples", nil)
	}

	tol := c.opts.Tolerance
	minWords := int(math.Floor(float64(target) * (1 - tol)))
	if minWords < 1 {
		minWords = 1
	}
	maxWords := int(math.Ceil(float64(target) * (1 + tol)))

	req := Request{
		Mode:            content.Mode,
		System:          c.system(),
		Style:           c.stylePartition(d, content.Notes),
		Content:         c.contentPartition(content),
		TargetWords:     target,
		MinWords:        minWords,
		MaxWords:        maxWords,
		Tolerance:       tol,
		MaxOutputTokens: int(math.Ceil(float64(target)*(1+tol)*c.opts.TokensPerWord)) + c.opts.TokenHeadroom,
	}
	req.Length = lengthPartition(req)
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrInvalidInput, "composing", "compose prompt", message, nil)
}

func (c *Composer) system() string {
	return fmt.Sprintf("You write in the voice of %s. Output only the requested text: no preamble, no headings, no notes about the task.", c.opts.AuthorName)
}

func (c *Composer) stylePartition(d style.Descriptor, notes []string) string {
	var b strings.Builder
	b.WriteString("How to write. This section describes style only and contains no subject matter.\n\n")
	b.WriteString(d.Render())
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Match the rhythm, register, connectives and devices described above.\n")
	b.WriteString("- Never bring in people, places, brands, numbers, hobbies or topics from the author's own writing. Write as if the author were writing about the new subject.\n")
	b.WriteString("- Skeleton slots are placeholders. Fill them only with material from the CONTENT section.\n")

	var learned []string
	for _, note := range notes {
		if note = strings.TrimSpace(note); note != "" {
			learned = append(learned, note)
		}
	}
	if len(learned) > 0 {
		b.WriteString("\nLearned preferences from past edits:\n")
		for _, note := range learned {
			b.WriteString("- ")
			b.WriteString(note)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Composer) contentPartition(content Content) string {
	var b strings.Builder
	text := strings.TrimSpace(content.Text)
	author := c.opts.AuthorName

	switch content.Mode {
	case ModeRewrite:
		b.WriteString("Rewrite the material below in the voice described in STYLE. Keep its facts and change only how it is said.\n")
		writeBlock(&b, "Material", text)
	case ModeRespond:
		fmt.Fprintf(&b, "%s has just read the article below. Write %s's own response to it: perspective, reaction, added context. This is commentary, not a summary.\n", capitalise(author), author)
		writeBlock(&b, "Article", text)
		writeSources(&b, content.Sources)
	case ModeSynthesize:
		fmt.Fprintf(&b, "Write a script to be read aloud about %q. Combine the information below into one narrative and speak about the situation directly. Do not mention articles, sources or reports.\n", text)
		writeSources(&b, content.Sources)
	case ModeEnhance:
		b.WriteString("Use the draft below as the foundation and main thread. Expand it with relevant details from the supporting context while keeping the draft's core ideas. Blend the material; do not concatenate it.\n")
		writeBlock(&b, "Draft", text)
		writeSources(&b, content.Sources)
	case ModeQuery:
		b.WriteString("Answer the question below in the voice described in STYLE.\n")
		if prior := strings.TrimSpace(content.Prior); prior != "" {
			writeBlock(&b, "Earlier conversation", prior)
		}
		writeBlock(&b, "Question", text)
	}
	return b.String()
}

func lengthPartition(req Request) string {
	return fmt.Sprintf("Write approximately %d words. Anything between %d and %d words is acceptable; outside that range is not. Cover the content and stop; do not pad.",
		req.TargetWords, req.MinWords, req.MaxWords)
}

func writeBlock(b *strings.Builder, label, body string) {
	fmt.Fprintf(b, "\n%s:\n---\n%s\n---\n", label, body)
}

func usableSources(sources []Source) []Source {
	out := make([]Source, 0, len(sources))
	for _, src := range sources {
		if strings.TrimSpace(src.Body) != "" {
			out = append(out, src)
		}
	}
	return out
}

func writeSources(b *strings.Builder, sources []Source) {
	for i, src := range usableSources(sources) {
		n := i + 1
		title := strings.TrimSpace(src.Title)
		if title == "" {
			title = "untitled"
		}
		fmt.Fprintf(b, "\n--- SOURCE %d: %s ---\n", n, title)
		if url := strings.TrimSpace(src.URL); url != "" {
			fmt.Fprintf(b, "URL: %s\n", url)
		}
		b.WriteString(strings.TrimSpace(src.Body))
		fmt.Fprintf(b, "\n--- END SOURCE %d ---\n", n)
	}
}

// capitalise upper-cases the first rune only; the rest of a name is kept.
func capitalise(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
