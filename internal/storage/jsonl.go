// Package storage handles publication persistence in JSONL and the SQLite graph cache.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/labsite/internal/publication"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all publications from a JSONL file.
func ReadAll(path string) ([]publication.Publication, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file is an empty list
		}
		return nil, fmt.Errorf("opening publications file: %w", err)
	}
	defer f.Close()

	var pubs []publication.Publication
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var pub publication.Publication
		if err := json.Unmarshal(line, &pub); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		pubs = append(pubs, pub)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading publications file: %w", err)
	}

	return pubs, nil
}

// Append adds a publication to the end of a JSONL file.
func Append(path string, pub publication.Publication) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening publications file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(pub)
	if err != nil {
		return fmt.Errorf("encoding publication: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing publication: %w", err)
	}
	return nil
}

// WriteAll writes all publications to a JSONL file, replacing existing content.
func WriteAll(path string, pubs []publication.Publication) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating publications file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, pub := range pubs {
		data, err := json.Marshal(pub)
		if err != nil {
			return fmt.Errorf("encoding publication %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing publication %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing publications file: %w", err)
	}
	return nil
}

// FindByID searches for a publication by citation key.
func FindByID(pubs []publication.Publication, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, pub := range pubs {
		if pub.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Merge adds incoming publications to existing ones. An incoming publication with the
// ID of an existing one replaces it in place; the rest are appended.
// Returns the merged list and the number of added and updated entries.
func Merge(existing, incoming []publication.Publication) (merged []publication.Publication, added, updated int) {
	merged = append([]publication.Publication(nil), existing...)
	for _, pub := range incoming {
		if i, found := FindByID(merged, pub.ID); found {
			merged[i] = pub
			updated++
			continue
		}
		merged = append(merged, pub)
		added++
	}
	return merged, added, updated
}
