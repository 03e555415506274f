// Package testutil provides shared test helpers for setting up vocabularies and journals.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/lexicon/internal/journal"
	"github.com/starford/lexicon/internal/storage"
	"github.com/starford/lexicon/internal/vocab"
)

// TestJournal creates a temporary journal database that is automatically closed.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(filepath.Join(t.TempDir(), "lexicon-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVocabulary creates a temporary vocabulary root named "terms" and a
// store reporting paths relative to it.
func TestVocabulary(t *testing.T) (string, *vocab.Store) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "terms")
	fs, err := storage.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, vocab.NewStore(fs, "terms")
}
