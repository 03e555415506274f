// Package storage defines the vocabulary file-system abstraction.
package storage

import "io/fs"

// WalkFunc is called for every entry under the vocabulary root. rel is
// slash-separated and relative to the root.
type WalkFunc func(rel string, d fs.DirEntry) error

// Provider is the interface for vocabulary file operations.
// All paths are relative to the vocabulary root.
type Provider interface {
	// Root returns the absolute path of the vocabulary root.
	Root() string
	// Walk visits every entry below the root in lexical order.
	Walk(fn WalkFunc) error
	// Stat describes the entry at path without following symlinks.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir lists the immediate entries of the directory at path.
	ReadDir(path string) ([]fs.DirEntry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path. The parent directory must exist.
	Write(path string, content []byte) error
	// Mkdir creates a single directory and fails with fs.ErrExist if anything
	// already occupies path.
	Mkdir(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Delete removes the file or empty directory at path.
	Delete(path string) error
}
