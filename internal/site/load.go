// Package site exports the static lab website.
package site

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matsen/labsite/internal/bibtex"
	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/storage"
)

// ErrUnsupportedFormat is returned for publication files that are neither BibTeX nor JSONL.
var ErrUnsupportedFormat = errors.New("unsupported publication format")

// LoadPublications reads a publication list, choosing the parser by file extension.
func LoadPublications(path string) ([]publication.Publication, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib":
		return bibtex.ParseFile(path)
	case ".jsonl":
		pubs, err := storage.ReadAll(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return pubs, nil
	default:
		return nil, fmt.Errorf("%w: %s (want .bib or .jsonl)", ErrUnsupportedFormat, path)
	}
}
