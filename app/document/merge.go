package document

import (
	"fmt"
	"strings"
)

// Policies for categories without a matching heading.
const (
	MissingSectionSkip   = "skip"
	MissingSectionAppend = "append"
)

// Group is a set of new entries destined for one category section.
type Group struct {
	Category string
	Entries  []Entry
}

// Result reports what a merge did. Added entries carry the heading they were
// placed under; Skipped entries carry the category that had no heading.
type Result struct {
	Added   []Entry
	Skipped []Entry
	Created []string
}

func (r Result) Changed() bool {
	return len(r.Added) > 0
}

// SkippedCategories returns each skipped category once, in merge order.
func (r Result) SkippedCategories() []string {
	var categories []string
	seen := make(map[string]bool)
	for _, entry := range r.Skipped {
		if !seen[entry.Section] {
			seen[entry.Section] = true
			categories = append(categories, entry.Section)
		}
	}
	return categories
}

// Merge returns a new document with each group's entries inserted right
// after the last existing entry of the matching section. Existing lines are
// never changed, removed or reordered. Merging no entries returns a document
// that serializes to the same bytes.
func Merge(doc *Document, groups []Group, policy string) (*Document, Result) {
	merged := &Document{
		lines:   append([]string(nil), doc.lines...),
		newline: doc.newline,
	}

	var result Result
	for _, group := range groups {
		if len(group.Entries) == 0 {
			continue
		}

		section, ok := merged.Section(group.Category)
		if !ok && policy == MissingSectionAppend {
			section = merged.appendSection(group.Category)
			result.Created = append(result.Created, group.Category)
			ok = true
		}

		if !ok {
			for _, entry := range group.Entries {
				entry.Section = group.Category
				result.Skipped = append(result.Skipped, entry)
			}
			continue
		}

		at := merged.insertionPoint(section)
		lines := make([]string, 0, len(group.Entries))
		for _, entry := range group.Entries {
			lines = append(lines, FormatEntry(entry))
		}
		merged.insertAfter(at, lines)

		for _, entry := range group.Entries {
			entry.Section = section.Heading
			result.Added = append(result.Added, entry)
		}
	}

	return merged, result
}

// FormatEntry renders an entry as a Markdown list item.
func FormatEntry(entry Entry) string {
	name := strings.Join(strings.Fields(entry.Name), " ")
	name = strings.NewReplacer("[", "(", "]", ")").Replace(name)
	url := strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(strings.TrimSpace(entry.URL))

	line := fmt.Sprintf("- [%s](%s)", name, url)
	if description := strings.Join(strings.Fields(entry.Description), " "); description != "" {
		line += " - " + description
	}
	return line
}

// insertionPoint returns the index of the line new entries follow: the last
// entry of the section including its indented continuation lines, or the
// last non-blank line when the section has no entries yet.
func (d *Document) insertionPoint(section Section) int {
	last := -1
	d.walk(func(i int, line string) {
		if i > section.Start && i < section.End {
			if _, ok := parseEntry(line); ok {
				last = i
			}
		}
	})

	if last >= 0 {
		for last+1 < section.End && isContinuation(trimEOL(d.lines[last+1])) {
			last++
		}
		return last
	}

	last = section.Start
	for i := section.Start + 1; i < section.End; i++ {
		if strings.TrimSpace(d.lines[i]) != "" {
			last = i
		}
	}
	return last
}

func isContinuation(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if line[0] != ' ' && line[0] != '\t' {
		return false
	}
	_, isEntry := parseEntry(line)
	return !isEntry
}

// insertAfter places lines after index at. When at is the final line and it
// has no line ending, the ending moves to the inserted block so the document
// keeps its unterminated last line.
func (d *Document) insertAfter(at int, lines []string) {
	block := make([]string, len(lines))
	for i, line := range lines {
		block[i] = line + d.newline
	}

	if !hasEOL(d.lines[at]) {
		d.lines[at] += d.newline
		block[len(block)-1] = lines[len(lines)-1]
	}

	tail := append([]string(nil), d.lines[at+1:]...)
	d.lines = append(append(d.lines[:at+1], block...), tail...)
}

// appendSection adds "## category" at the end of the document and returns it.
func (d *Document) appendSection(category string) Section {
	if n := len(d.lines); n > 0 && !hasEOL(d.lines[n-1]) {
		d.lines[n-1] += d.newline
	}
	if n := len(d.lines); n > 0 && strings.TrimSpace(d.lines[n-1]) != "" {
		d.lines = append(d.lines, d.newline)
	}

	start := len(d.lines)
	d.lines = append(d.lines, "## "+category+d.newline)
	return Section{Heading: category, Start: start, End: len(d.lines)}
}
