package vocab

import (
	"io/fs"
	"path"

	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/storage"
)

// Resolver finds terms by exact name.
//
// Every lookup walks the whole tree. Vocabularies are small, so no index is
// kept and the disk stays the only source of truth.
type Resolver struct {
	fs storage.Provider
}

// NewResolver creates a resolver over the given vocabulary.
func NewResolver(p storage.Provider) *Resolver {
	return &Resolver{fs: p}
}

// Find locates name in the tree. The boolean is false when nothing matches,
// including when the root is missing. The first match in lexical walk order
// wins.
func (r *Resolver) Find(name string) (models.Location, bool, error) {
	var (
		loc   models.Location
		found bool
	)
	err := r.fs.Walk(func(rel string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		switch d.Name() {
		case leafFile(name):
			loc = models.Location{Name: name, Path: rel}
		case IndexName:
			dir := path.Dir(rel)
			if dir == "." || path.Base(dir) != name {
				return nil
			}
			loc = models.Location{Name: name, Path: rel, Parent: true}
		default:
			return nil
		}
		found = true
		return fs.SkipAll
	})
	if err != nil {
		return models.Location{}, false, err
	}
	return loc, found, nil
}
