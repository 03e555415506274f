// Package vocab implements term resolution and creation over a vocabulary
// tree stored on disk.
//
// A leaf term is a file named <name>.txt holding its description. A parent
// term is a directory named <name> holding an _index file with its own
// description plus one entry per child term.
package vocab

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lexicon/internal/apperr"
)

const (
	// Ext is appended to every leaf term's file name.
	Ext = ".txt"
	// IndexName is the reserved entry holding a parent term's description.
	IndexName = "_index"
)

var nameRules = []validation.Rule{
	validation.Required,
	validation.By(func(value interface{}) error {
		name, _ := value.(string)
		if name == "." || name == ".." {
			return errors.New("must not be a relative path element")
		}
		if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
			return errors.New("must not contain path separators")
		}
		return nil
	}),
}

// ValidateName reports whether name may be used for a new term.
func ValidateName(name string) error {
	if name == IndexName {
		return fmt.Errorf("%q: %w", name, apperr.ErrReservedName)
	}
	if err := validation.Validate(name, nameRules...); err != nil {
		return fmt.Errorf("%q %v: %w", name, err, apperr.ErrInvalidName)
	}
	return nil
}

// leafFile returns the file name of a leaf term.
func leafFile(name string) string {
	return name + Ext
}

// termName strips the leaf extension from a file name. It reports false for
// names that do not carry the extension.
func termName(file string) (string, bool) {
	if !strings.HasSuffix(file, Ext) || len(file) == len(Ext) {
		return "", false
	}
	return strings.TrimSuffix(file, Ext), true
}
