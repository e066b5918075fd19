// Package publication defines the core domain types for a lab's publication list.
package publication

// Publication represents one paper in the site's publication list.
// Values are treated as immutable once loaded.
type Publication struct {
	ID      string   `json:"id,omitempty" validate:"omitempty,max=200"` // Citation key
	Title   string   `json:"title" validate:"required"`
	Year    int      `json:"year" validate:"gte=1000,lte=9999"`
	Venue   string   `json:"venue,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	Authors []Author `json:"authors" validate:"required,min=1,dive"`
}

// Author is an author as listed on a single publication.
// Name is the identity key: two authors with the same name string are the same person.
type Author struct {
	Name        string `json:"name" validate:"required,notblank"`
	Affiliation string `json:"affiliation,omitempty"`
	Highlighted bool   `json:"highlighted,omitempty"` // e.g. the site owner
}

// AuthorNames returns the author names of a publication in listed order.
func (p Publication) AuthorNames() []string {
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Name
	}
	return names
}

// Annotate returns a copy of pubs with per-author highlight flags and affiliations
// filled in from site configuration. Sources like BibTeX carry neither.
//
// An author is highlighted if its name appears in highlight. An author with no
// affiliation takes the one from affiliations, if present. Existing values are kept.
func Annotate(pubs []Publication, highlight []string, affiliations map[string]string) []Publication {
	hl := make(map[string]bool, len(highlight))
	for _, name := range highlight {
		hl[name] = true
	}

	out := make([]Publication, len(pubs))
	for i, p := range pubs {
		authors := make([]Author, len(p.Authors))
		for j, a := range p.Authors {
			if hl[a.Name] {
				a.Highlighted = true
			}
			if a.Affiliation == "" {
				a.Affiliation = affiliations[a.Name]
			}
			authors[j] = a
		}
		p.Authors = authors
		out[i] = p
	}
	return out
}
