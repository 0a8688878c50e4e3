package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleReadme = `# Awesome Web Dev Baseline

A curated list of tools for Baseline.

## Contents

- [Linting & Code Quality](#linting--code-quality)
- [CSS Tools](#css-tools)

## Linting & Code Quality

- [eslint-plugin-compat](https://github.com/amilajack/eslint-plugin-compat) - Lint browser compatibility.
- [Stylelint Baseline](https://github.com/acme/stylelint-baseline) - Flags non-Baseline CSS.
  Works with any Stylelint config.

## CSS Tools

### Polyfills

- [CSS Has Polyfill](https://example.org/has) - Polyfills :has().

` + "```md" + `
## Not A Section
- [Fenced](https://fenced.dev) - Inside a code block.
` + "```" + `

## Testing Tools

No tools yet.

## License

MIT
`

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		sampleReadme,
		"",
		"no trailing newline",
		"# Title\r\n\r\n## CSS Tools\r\n- [A](https://a.dev) - A.\r\n",
		"## CSS Tools\n\n\n",
	}

	for _, input := range inputs {
		doc, err := Parse([]byte(input))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if doc.String() != input {
			t.Errorf("Expected byte-identical round trip for %q, got %q", input, doc.String())
		}
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	if _, err := Parse([]byte{0xff, 0xfe, '#'}); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got: %v", err)
	}
}

func TestSections(t *testing.T) {
	doc, _ := Parse([]byte(sampleReadme))

	sections := doc.Sections()
	want := []string{"Contents", "Linting & Code Quality", "CSS Tools", "Testing Tools", "License"}
	if len(sections) != len(want) {
		t.Fatalf("Expected %d sections, got %d: %+v", len(want), len(sections), sections)
	}
	for i, heading := range want {
		if sections[i].Heading != heading {
			t.Errorf("Expected section %d to be '%s', got '%s'", i, heading, sections[i].Heading)
		}
	}

	section, ok := doc.Section("linting and code quality")
	if !ok || section.Heading != "Linting & Code Quality" {
		t.Errorf("Expected loose heading match, got %+v (%v)", section, ok)
	}
	if _, ok := doc.Section("Not A Section"); ok {
		t.Error("Expected heading inside code fence to be ignored")
	}
}

func TestKnownTools(t *testing.T) {
	doc, _ := Parse([]byte(sampleReadme))

	tools := doc.KnownTools()
	if len(tools) != 3 {
		t.Fatalf("Expected 3 tools, got %d: %+v", len(tools), tools)
	}

	if tools[0].Name != "eslint-plugin-compat" || tools[0].Section != "Linting & Code Quality" {
		t.Errorf("Unexpected first tool: %+v", tools[0])
	}
	if tools[0].Description != "Lint browser compatibility." {
		t.Errorf("Expected description, got '%s'", tools[0].Description)
	}
	if tools[2].Name != "CSS Has Polyfill" || tools[2].Section != "CSS Tools" {
		t.Errorf("Expected entry under sub-heading to belong to CSS Tools, got %+v", tools[2])
	}
	for _, tool := range tools {
		if tool.Name == "Fenced" {
			t.Error("Expected fenced entries to be ignored")
		}
	}
}

func TestKnownToolsSkipsGenericLinkText(t *testing.T) {
	doc, _ := Parse([]byte(`## Development Tools

- [Vite](https://vite.dev) - Build tool.
- [npm](https://npmjs.com) - Too short to be a tool name.
- [ Go ](https://go.dev) - Padded but still short.
- [https://example.com/tool](https://example.com/tool) - Bare URL.
- [www.example.org](https://www.example.org) - Bare host.
- [HTTP Toolkit](https://httptoolkit.com) - Case matters.
`))

	tools := doc.KnownTools()
	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}

	want := []string{"Vite", "HTTP Toolkit"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected tool %d to be '%s', got '%s'", i, want[i], names[i])
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	if err := os.WriteFile(path, []byte(sampleReadme), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if doc.String() != sampleReadme {
		t.Error("Expected file contents to round trip")
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFormatEntry(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{Entry{Name: "ExampleLint", URL: "https://examplelint.dev", Description: "Lints Baseline."}, "- [ExampleLint](https://examplelint.dev) - Lints Baseline."},
		{Entry{Name: "No Description", URL: "https://nodesc.dev"}, "- [No Description](https://nodesc.dev)"},
		{Entry{Name: "Odd [Name]", URL: "https://odd.dev/a b(c)", Description: "Multi\nline   text"}, "- [Odd (Name)](https://odd.dev/a%20b%28c%29) - Multi line text"},
	}

	for _, tt := range tests {
		if got := FormatEntry(tt.entry); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}

	line := FormatEntry(Entry{Name: "RoundTrip", URL: "https://rt.dev", Description: "Parses back."})
	entry, ok := parseEntry(line)
	if !ok || entry.Name != "RoundTrip" || entry.URL != "https://rt.dev" || entry.Description != "Parses back." {
		t.Errorf("Expected formatted entry to parse back, got %+v", entry)
	}

	if !strings.HasPrefix(line, "- [") {
		t.Errorf("Expected list item, got %q", line)
	}
}
