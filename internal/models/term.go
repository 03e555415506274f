// Package models defines the domain types for lexicon.
package models

import (
	"path"
	"time"
)

// Location is where a resolved term lives inside the vocabulary root.
type Location struct {
	Name string `json:"name"`
	// Path is slash-separated and relative to the vocabulary root. For a parent
	// term it points at the index entry.
	Path   string `json:"path"`
	Parent bool   `json:"parent"`
}

// Dir returns the directory holding the term's own entry, relative to the root.
// For a parent term this is the term's directory; for a leaf it is the
// directory containing the leaf file.
func (l Location) Dir() string {
	dir := path.Dir(l.Path)
	if dir == "." {
		return ""
	}
	return dir
}

// TermInfo is the result of looking up a single term.
type TermInfo struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Parent      bool     `json:"parent"`
	Children    []string `json:"children,omitempty"`
}

// TermNode is one node of the whole-vocabulary tree listing.
type TermNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Parent   bool        `json:"parent"`
	Children []*TermNode `json:"children,omitempty"`
}

// Addition is a journal record of one successful term creation.
type Addition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Parent    string    `json:"parent,omitempty"`
	Path      string    `json:"path"`
	Promoted  bool      `json:"promoted"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
