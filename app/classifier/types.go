package classifier

import (
	"context"
	"strings"
	"unicode"
)

// Completer is the external text-completion capability: it receives a prompt
// and an upper bound on the response size and returns free text.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Candidate is a tool mention proposed by the classifier. Source is the URL
// of the post it was found in.
type Candidate struct {
	Name        string
	Category    string
	Description string
	URL         string
	Confidence  float64
	Source      string
}

// Categories resolves loosely written category names to their canonical
// heading. Matching ignores case, punctuation and "&" versus "and".
type Categories struct {
	names []string
	index map[string]string
}

func NewCategories(names []string) *Categories {
	c := &Categories{index: make(map[string]string, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c.names = append(c.names, name)
		c.index[categoryKey(name)] = name
	}
	return c
}

func (c *Categories) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *Categories) Resolve(name string) (string, bool) {
	canonical, ok := c.index[categoryKey(name)]
	return canonical, ok
}

func categoryKey(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), "&", " and ")
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
