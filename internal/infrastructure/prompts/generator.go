package prompts

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"

	"voice-relay/internal/application/port/output"
)

var _ output.PromptBuilder = (*Builder)(nil)

// DefaultCharLimit is the page-content cap the extension was tuned against.
const DefaultCharLimit = 6000

// Template variable names.
const (
	FieldHTML       = "html"
	FieldElement    = "element"
	FieldTranscript = "transcript"
	FieldScreenshot = "screenshot"
)

var templateVars = map[output.PromptID][]string{
	output.PromptDescribe: {FieldHTML, FieldScreenshot},
	output.PromptCommand:  {FieldTranscript, FieldHTML},
	output.PromptElement:  {FieldElement},
}

type HTMLCleaner interface {
	Clean(rawHTML string) string
}

type Config struct {
	Version string
	// Dir overrides the embedded template sets when non-empty.
	Dir string
	// CharLimit caps page content, in characters.
	CharLimit int
	// Cleaner, when set, compresses the html field before truncation.
	Cleaner HTMLCleaner
}

type Builder struct {
	templates map[output.PromptID]prompts.PromptTemplate
	charLimit int
	cleaner   HTMLCleaner
}

func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.CharLimit <= 0 {
		return nil, fmt.Errorf("prompt char limit must be positive, got %d", cfg.CharLimit)
	}

	texts, err := LoadTemplates(cfg.Version, cfg.Dir)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		templates: make(map[output.PromptID]prompts.PromptTemplate, len(texts)),
		charLimit: cfg.CharLimit,
		cleaner:   cfg.Cleaner,
	}

	for id, text := range texts {
		tmpl := prompts.NewPromptTemplate(text, templateVars[id])
		if _, err := tmpl.Format(placeholderValues(id)); err != nil {
			return nil, fmt.Errorf("prompt %s: %w", id, err)
		}
		b.templates[id] = tmpl
	}

	return b, nil
}

// Build renders a template. Page content is cut to the first CharLimit
// characters with no regard for markup boundaries.
func (b *Builder) Build(id output.PromptID, fields map[string]string) (string, error) {
	tmpl, ok := b.templates[id]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", id)
	}

	values := make(map[string]any, len(templateVars[id]))
	for _, name := range templateVars[id] {
		val := fields[name]
		switch name {
		case FieldHTML:
			if b.cleaner != nil {
				val = b.cleaner.Clean(val)
			}
			val = Truncate(val, b.charLimit)
		case FieldElement:
			val = Truncate(val, b.charLimit)
		}
		values[name] = val
	}

	return tmpl.Format(values)
}

// Truncate returns the first limit characters (code points) of s.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func placeholderValues(id output.PromptID) map[string]any {
	values := make(map[string]any, len(templateVars[id]))
	for _, name := range templateVars[id] {
		values[name] = "x"
	}
	return values
}
