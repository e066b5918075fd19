// Package bibtex reads and writes publication lists in BibTeX format.
package bibtex

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/labsite/internal/publication"
)

// Entry is one parsed BibTeX entry with lowercased field names.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
	Line   int // Line the entry starts on
}

// skipTypes are entry types that carry no publication.
var skipTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

var (
	andSplitRegex = regexp.MustCompile(`(?i)\s+and\s+`)
	yearRegex     = regexp.MustCompile(`\d{4}`)
	spaceRegex    = regexp.MustCompile(`\s+`)
)

// ParseFile parses a .bib file into publications.
func ParseFile(path string) ([]publication.Publication, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bib file: %w", err)
	}
	defer f.Close()

	pubs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return pubs, nil
}

// Parse reads BibTeX entries and converts them to publications in file order.
func Parse(r io.Reader) ([]publication.Publication, error) {
	entries, err := ParseEntries(r)
	if err != nil {
		return nil, err
	}

	pubs := make([]publication.Publication, 0, len(entries))
	for _, e := range entries {
		pubs = append(pubs, e.Publication())
	}
	return pubs, nil
}

// ParseEntries reads raw BibTeX entries. @comment, @preamble and @string blocks are skipped.
func ParseEntries(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibtex: %w", err)
	}

	p := &parser{src: data, line: 1}
	var entries []Entry
	for {
		if !p.skipTo('@') {
			return entries, nil
		}
		start := p.line
		p.pos++ // '@'

		entryType := strings.ToLower(p.ident())
		p.skipSpace()
		open := p.peek()
		if open != '{' && open != '(' {
			// Stray '@' in free text between entries
			continue
		}
		closer := byte('}')
		if open == '(' {
			closer = ')'
		}

		if skipTypes[entryType] {
			if _, err := p.balanced(open, closer); err != nil {
				return nil, fmt.Errorf("line %d: @%s: %w", start, entryType, err)
			}
			continue
		}

		p.pos++ // opener
		e, err := p.entryBody(entryType, closer)
		if err != nil {
			return nil, fmt.Errorf("line %d: @%s: %w", start, entryType, err)
		}
		e.Line = start
		entries = append(entries, e)
	}
}

// Publication converts the entry into a publication.
func (e Entry) Publication() publication.Publication {
	pub := publication.Publication{
		ID:    e.Key,
		Title: cleanLatex(e.Fields["title"]),
		Venue: cleanLatex(firstNonEmpty(e.Fields["journal"], e.Fields["booktitle"], e.Fields["publisher"])),
		DOI:   strings.TrimSpace(e.Fields["doi"]),
	}
	if m := yearRegex.FindString(e.Fields["year"]); m != "" {
		pub.Year, _ = strconv.Atoi(m)
	}
	for _, name := range SplitAuthors(e.Fields["author"]) {
		pub.Authors = append(pub.Authors, publication.Author{Name: name})
	}
	return pub
}

// SplitAuthors splits a BibTeX author field into display names ("First Last").
// Both "Last, First" and "First Last" forms are accepted.
func SplitAuthors(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}

	var names []string
	for _, part := range splitTopLevel(field) {
		if name := normalizeName(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// splitTopLevel splits on " and " outside of braces, so "{Barnes and Noble}" stays whole.
func splitTopLevel(field string) []string {
	var parts []string
	depth, last := 0, 0
	masked := []byte(field)
	for i := range masked {
		switch masked[i] {
		case '{':
			depth++
		case '}':
			depth--
		default:
			if depth > 0 {
				masked[i] = '_'
			}
		}
	}
	for _, loc := range andSplitRegex.FindAllIndex(masked, -1) {
		parts = append(parts, field[last:loc[0]])
		last = loc[1]
	}
	return append(parts, field[last:])
}

// normalizeName turns "Last, First" or "Last, Jr., First" into "First Last".
func normalizeName(raw string) string {
	raw = cleanLatex(raw)
	if raw == "" {
		return ""
	}

	segs := strings.Split(raw, ",")
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}
	switch len(segs) {
	case 1:
		return segs[0]
	case 2:
		return strings.TrimSpace(segs[1] + " " + segs[0])
	default:
		// Last, Jr, First
		return strings.TrimSpace(segs[2] + " " + segs[0] + " " + segs[1])
	}
}

// latexReplacer undoes the escapes ToBibTeX writes, plus common ties.
var latexReplacer = strings.NewReplacer(
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	`\{`, "\x01",
	`\}`, "\x02",
	`\textasciitilde{}`, "~",
	`\textasciicircum{}`, "^",
	"~", " ",
)

// cleanLatex strips grouping braces and simple escapes, and collapses whitespace.
func cleanLatex(s string) string {
	s = latexReplacer.Replace(s)
	s = strings.NewReplacer("{", "", "}", "", "\x01", "{", "\x02", "}").Replace(s)
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// parser is a cursor over BibTeX source.
type parser struct {
	src  []byte
	pos  int
	line int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() byte {
	c := p.src[p.pos]
	if c == '\n' {
		p.line++
	}
	p.pos++
	return c
}

// skipTo moves to the next occurrence of c. Returns false at end of input.
func (p *parser) skipTo(c byte) bool {
	i := bytes.IndexByte(p.src[p.pos:], c)
	if i < 0 {
		p.line += bytes.Count(p.src[p.pos:], []byte{'\n'})
		p.pos = len(p.src)
		return false
	}
	p.line += bytes.Count(p.src[p.pos:p.pos+i], []byte{'\n'})
	p.pos += i
	return true
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.peek())) {
		p.advance()
	}
}

// ident reads an entry type, citation key or field name.
func (p *parser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if unicode.IsSpace(rune(c)) || strings.IndexByte(`{}(),="#`, c) >= 0 {
			break
		}
		p.advance()
	}
	return string(p.src[start:p.pos])
}

// balanced consumes a group starting at the current opener and returns its contents.
func (p *parser) balanced(open, closer byte) (string, error) {
	if p.peek() != open {
		return "", fmt.Errorf("expected %q", open)
	}
	p.advance()
	start := p.pos
	depth := 1
	for !p.eof() {
		c := p.advance()
		switch c {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return string(p.src[start : p.pos-1]), nil
			}
		}
	}
	return "", fmt.Errorf("unterminated %q", open)
}

// quoted consumes a "..." value; braces inside protect embedded quotes.
func (p *parser) quoted() (string, error) {
	p.advance() // opening quote
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.advance()
		switch {
		case c == '{':
			depth++
		case c == '}':
			depth--
		case c == '"' && depth == 0:
			return string(p.src[start : p.pos-1]), nil
		}
	}
	return "", fmt.Errorf("unterminated quoted value")
}

// value reads a field value, joining '#'-concatenated parts.
func (p *parser) value() (string, error) {
	var parts []string
	for {
		p.skipSpace()
		var part string
		var err error
		switch p.peek() {
		case '{':
			part, err = p.balanced('{', '}')
		case '"':
			part, err = p.quoted()
		default:
			part = p.ident()
			if part == "" {
				return "", fmt.Errorf("missing value")
			}
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, part)

		p.skipSpace()
		if p.peek() != '#' {
			return strings.Join(parts, ""), nil
		}
		p.advance()
	}
}

// entryBody parses "key, field = value, ..." up to the entry's closer.
func (p *parser) entryBody(entryType string, closer byte) (Entry, error) {
	e := Entry{Type: entryType, Fields: make(map[string]string)}

	p.skipSpace()
	e.Key = strings.TrimSpace(p.ident())
	p.skipSpace()

	for {
		if p.eof() {
			return e, fmt.Errorf("entry %q: unterminated", e.Key)
		}
		switch p.peek() {
		case closer:
			p.advance()
			return e, nil
		case ',':
			p.advance()
			p.skipSpace()
			continue
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return e, fmt.Errorf("entry %q: unexpected %q", e.Key, p.peek())
		}
		p.skipSpace()
		if p.peek() != '=' {
			return e, fmt.Errorf("entry %q: field %q missing '='", e.Key, name)
		}
		p.advance()

		val, err := p.value()
		if err != nil {
			return e, fmt.Errorf("entry %q: field %q: %w", e.Key, name, err)
		}
		e.Fields[name] = val
		p.skipSpace()
	}
}
