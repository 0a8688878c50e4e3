package document

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrInvalidEncoding = errors.New("document is not valid UTF-8")

var (
	entryPattern   = regexp.MustCompile(`^\s*[-*+]\s+\[([^\]]+)\]\(([^)\s]+)\)(?:\s+-\s+(.*))?`)
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
)

// Document is a Markdown file kept as its original lines. Every line retains
// its own line ending so String reproduces the input byte for byte.
type Document struct {
	lines   []string
	newline string
}

// Entry is a list item of the form "- [Name](URL) - Description".
type Entry struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Section     string `json:"section,omitempty"`
	Line        int    `json:"-"`
}

// Section is a level-two heading and the lines up to the next heading of
// level one or two. Start is the heading line, End is exclusive.
type Section struct {
	Heading string
	Start   int
	End     int
}

func Parse(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	text := string(data)
	doc := &Document{newline: "\n"}
	if i := strings.Index(text, "\n"); i > 0 && text[i-1] == '\r' {
		doc.newline = "\r\n"
	}

	for len(text) > 0 {
		i := strings.Index(text, "\n")
		if i < 0 {
			doc.lines = append(doc.lines, text)
			break
		}
		doc.lines = append(doc.lines, text[:i+1])
		text = text[i+1:]
	}

	return doc, nil
}

func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (d *Document) String() string {
	return strings.Join(d.lines, "")
}

func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

// Sections returns the level-two sections in document order. Headings inside
// fenced code blocks are ignored.
func (d *Document) Sections() []Section {
	var sections []Section
	current := -1

	d.walk(func(i int, line string) {
		level, title := parseHeading(line)
		if level == 0 || level > 2 {
			return
		}
		if current >= 0 {
			sections[current].End = i
			current = -1
		}
		if level == 2 {
			sections = append(sections, Section{Heading: title, Start: i, End: len(d.lines)})
			current = len(sections) - 1
		}
	})

	return sections
}

// Entries returns every list entry in document order, tagged with the
// heading of the section it belongs to.
func (d *Document) Entries() []Entry {
	sections := d.Sections()
	var entries []Entry

	d.walk(func(i int, line string) {
		entry, ok := parseEntry(line)
		if !ok {
			return
		}
		entry.Line = i
		for _, section := range sections {
			if i > section.Start && i < section.End {
				entry.Section = section.Heading
				break
			}
		}
		entries = append(entries, entry)
	})

	return entries
}

// KnownTools returns the entries that name a tool, skipping links that point
// inside the document and generic link texts.
func (d *Document) KnownTools() []Entry {
	var tools []Entry
	for _, entry := range d.Entries() {
		if strings.HasPrefix(entry.URL, "#") || !isToolName(entry.Name) {
			continue
		}
		tools = append(tools, entry)
	}
	return tools
}

const minToolNameLen = 3

// isToolName rejects very short names and link texts that are themselves URLs.
func isToolName(name string) bool {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= minToolNameLen {
		return false
	}
	return !strings.HasPrefix(name, "http") && !strings.HasPrefix(name, "www")
}

func (d *Document) Section(category string) (Section, bool) {
	key := sectionKey(category)
	for _, section := range d.Sections() {
		if sectionKey(section.Heading) == key {
			return section, true
		}
	}
	return Section{}, false
}

// walk calls fn for every line outside fenced code blocks, without its line
// ending.
func (d *Document) walk(fn func(i int, line string)) {
	fence := ""
	for i, raw := range d.lines {
		line := trimEOL(raw)
		trimmed := strings.TrimSpace(line)

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			fence = "```"
			continue
		}
		if strings.HasPrefix(trimmed, "~~~") {
			fence = "~~~"
			continue
		}

		fn(i, line)
	}
}

func parseHeading(line string) (int, string) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, ""
	}
	return len(m[1]), m[2]
}

func parseEntry(line string) (Entry, bool) {
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	return Entry{
		Name:        strings.TrimSpace(m[1]),
		URL:         m[2],
		Description: strings.TrimSpace(m[3]),
	}, true
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func hasEOL(line string) bool {
	return strings.HasSuffix(line, "\n")
}

// sectionKey compares headings loosely: case, punctuation, emoji and "&"
// versus "and" are ignored.
func sectionKey(heading string) string {
	heading = strings.ReplaceAll(strings.ToLower(heading), "&", " and ")
	var b strings.Builder
	for _, r := range heading {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
