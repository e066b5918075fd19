package bibtex

import (
	"fmt"
	"strings"

	"github.com/matsen/labsite/internal/publication"
)

// ToBibTeX converts a publication to a BibTeX entry.
func ToBibTeX(pub publication.Publication) string {
	entryType := determineEntryType(pub)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, citationKey(pub)))

	if len(pub.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(pub.Authors)))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(pub.Title)))

	if pub.Venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(pub.Venue)))
	}

	b.WriteString(fmt.Sprintf("  year = {%d},\n", pub.Year))

	if pub.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", pub.DOI))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple publications to BibTeX format.
func ToBibTeXList(pubs []publication.Publication) string {
	entries := make([]string, 0, len(pubs))
	for _, pub := range pubs {
		entries = append(entries, ToBibTeX(pub))
	}
	return strings.Join(entries, "\n")
}

// citationKey returns the publication's key, deriving "<LastName><Year>" when it has none.
func citationKey(pub publication.Publication) string {
	if pub.ID != "" {
		return pub.ID
	}
	last := "anon"
	if len(pub.Authors) > 0 {
		_, last = splitName(pub.Authors[0].Name)
		last = strings.Map(func(r rune) rune {
			if r == ' ' || r == ',' || r == '{' || r == '}' {
				return -1
			}
			return r
		}, last)
	}
	return fmt.Sprintf("%s%d", last, pub.Year)
}

// determineEntryType returns the BibTeX entry type for a publication.
func determineEntryType(pub publication.Publication) string {
	venue := strings.ToLower(pub.Venue)

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	// Preprints and journals
	return "article"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []publication.Author) string {
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		first, last := splitName(a.Name)
		if first != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", last, first))
		} else {
			formatted = append(formatted, last)
		}
	}
	return strings.Join(formatted, " and ")
}

// splitName splits a display name at its last space: "Timothy C Yu" → ("Timothy C", "Yu").
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return "", name
	}
	return strings.TrimSpace(name[:i]), name[i+1:]
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
