package vocab

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/storage"
)

// Created describes a term written by Store.Create.
type Created struct {
	// Path is the display path, prefixed with the configured root.
	Path string
	// Rel is the slash-separated path relative to the vocabulary root.
	Rel string
	// Promoted is true when the parent was converted from a leaf.
	Promoted bool
	Content  []byte
}

// ParentIndex returns the root-relative index entry of the directory that
// holds the created term. It is only meaningful for terms created under a
// parent.
func (c *Created) ParentIndex() string {
	return path.Join(path.Dir(c.Rel), IndexName)
}

// Store creates and reads terms.
type Store struct {
	fs       storage.Provider
	resolver *Resolver
	display  string
}

// NewStore creates a Store. displayRoot prefixes every path the store
// reports, normally the root exactly as configured (for example "terms").
func NewStore(p storage.Provider, displayRoot string) *Store {
	return &Store{
		fs:       p,
		resolver: NewResolver(p),
		display:  filepath.ToSlash(displayRoot),
	}
}

// DisplayPath prefixes a root-relative path with the configured root.
func (s *Store) DisplayPath(rel string) string {
	return path.Join(s.display, rel)
}

// Create adds a term with the given description. When parent is non-empty the
// term is placed under it, promoting the parent to a directory first if it is
// still a leaf.
func (s *Store) Create(name, description, parent string) (*Created, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	dir := ""
	promoted := false
	if parent != "" {
		loc, ok, err := s.resolver.Find(parent)
		if err != nil {
			return nil, fmt.Errorf("resolve parent %q: %w", parent, err)
		}
		if !ok {
			return nil, fmt.Errorf("%q: %w", parent, apperr.ErrParentNotFound)
		}
		if loc.Parent {
			dir = loc.Dir()
		} else {
			if dir, err = s.promote(loc); err != nil {
				return nil, err
			}
			promoted = true
		}
	}

	target := path.Join(dir, leafFile(name))
	if err := s.checkFree(dir, name); err != nil {
		return nil, err
	}

	content := []byte(description + "\n")
	if err := s.fs.Write(target, content); err != nil {
		return nil, fmt.Errorf("write term %q: %w", name, err)
	}
	return &Created{
		Path:     s.DisplayPath(target),
		Rel:      target,
		Promoted: promoted,
		Content:  content,
	}, nil
}

// promote turns the leaf at loc into a parent directory and returns the new
// directory. The directory is created before the leaf moves into it, so an
// interruption between the two steps leaves the leaf resolvable.
func (s *Store) promote(loc models.Location) (string, error) {
	base, _ := termName(path.Base(loc.Path))
	dir := path.Join(loc.Dir(), base)

	if err := s.fs.Mkdir(dir); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%q: %w", dir, apperr.ErrPromotionConflict)
		}
		return "", fmt.Errorf("promote %q: %w", loc.Name, err)
	}
	if err := s.fs.Move(loc.Path, path.Join(dir, IndexName)); err != nil {
		// The directory is still empty; drop it so a retry can promote again.
		if derr := s.fs.Delete(dir); derr != nil {
			err = errors.Join(err, fmt.Errorf("remove %q: %w", dir, derr))
		}
		return "", fmt.Errorf("promote %q: %w", loc.Name, err)
	}
	return dir, nil
}

// checkFree fails with apperr.ErrTermExists when name is already taken inside
// dir, either as a leaf file or as a parent directory.
func (s *Store) checkFree(dir, name string) error {
	if _, err := s.fs.Stat(path.Join(dir, leafFile(name))); err == nil {
		return fmt.Errorf("%q: %w", name, apperr.ErrTermExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	info, err := s.fs.Stat(path.Join(dir, name))
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%q: %w", name, apperr.ErrTermExists)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return nil
}

// Search reads a term's description and, for parents, its immediate children.
func (s *Store) Search(name string) (*models.TermInfo, error) {
	loc, ok, err := s.resolver.Find(name)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, apperr.ErrTermNotFound)
	}

	data, err := s.fs.Read(loc.Path)
	if err != nil {
		return nil, err
	}
	info := &models.TermInfo{
		Name:        name,
		Path:        s.DisplayPath(loc.Path),
		Description: string(data),
		Parent:      loc.Parent,
	}
	if loc.Parent {
		if info.Children, err = s.children(loc.Dir()); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// children lists the bare names of the terms directly inside dir. Children
// that were promoted themselves are included by directory name: their
// description moved into <name>/_index, and counting only leaf files would
// drop a child from its parent's listing the moment it gains a child.
func (s *Store) children(dir string) ([]string, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			if n, ok := termName(e.Name()); ok {
				out = append(out, n)
			}
			continue
		}
		if s.isParentDir(path.Join(dir, e.Name())) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) isParentDir(dir string) bool {
	info, err := s.fs.Stat(path.Join(dir, IndexName))
	return err == nil && !info.IsDir()
}

// Tree returns every term in the vocabulary as a forest of nodes, sorted by
// name at each level.
func (s *Store) Tree() ([]*models.TermNode, error) {
	return s.level("")
}

func (s *Store) level(dir string) ([]*models.TermNode, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*models.TermNode
	for _, e := range entries {
		rel := path.Join(dir, e.Name())
		if !e.IsDir() {
			if n, ok := termName(e.Name()); ok {
				out = append(out, &models.TermNode{Name: n, Path: s.DisplayPath(rel)})
			}
			continue
		}
		if !s.isParentDir(rel) {
			continue
		}
		kids, err := s.level(rel)
		if err != nil {
			return nil, err
		}
		out = append(out, &models.TermNode{
			Name:     e.Name(),
			Path:     s.DisplayPath(path.Join(rel, IndexName)),
			Parent:   true,
			Children: kids,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
