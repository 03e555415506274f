package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/lexicon/internal/apperr"
)

func tempVocabulary(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempVocabulary(t)
	content := []byte("a sweet food\n")
	if err := s.Write("fruit.txt", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("fruit.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteRequiresParentDir(t *testing.T) {
	s := tempVocabulary(t)
	if err := s.Write("a/b/c.txt", []byte("deep")); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestMkdirIsExclusive(t *testing.T) {
	s := tempVocabulary(t)
	if err := s.Mkdir("fruit"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	err := s.Mkdir("fruit")
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("second Mkdir err = %v, want fs.ErrExist", err)
	}
}

func TestMove(t *testing.T) {
	s := tempVocabulary(t)
	_ = s.Write("fruit.txt", []byte("data\n"))
	_ = s.Mkdir("fruit")
	if err := s.Move("fruit.txt", "fruit/_index"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("fruit/_index")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data\n" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("fruit.txt"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestMoveDoesNotCreateDirs(t *testing.T) {
	s := tempVocabulary(t)
	_ = s.Write("fruit.txt", []byte("data\n"))
	if err := s.Move("fruit.txt", "fruit/_index"); err == nil {
		t.Fatal("expected error moving into a missing directory")
	}
	if _, err := s.Read("fruit.txt"); err != nil {
		t.Errorf("source must be untouched: %v", err)
	}
}

func TestWalk(t *testing.T) {
	s := tempVocabulary(t)
	_ = s.Write("a.txt", []byte("a"))
	_ = s.Mkdir("sub")
	_ = s.Write("sub/b.txt", []byte("b"))

	var seen []string
	err := s.Walk(func(rel string, d fs.DirEntry) error {
		seen = append(seen, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"a.txt", "sub", "sub/b.txt"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestWalkMissingRoot(t *testing.T) {
	s := tempVocabulary(t)
	if err := os.Remove(s.root); err != nil {
		t.Fatal(err)
	}
	calls := 0
	if err := s.Walk(func(string, fs.DirEntry) error { calls++; return nil }); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestStat(t *testing.T) {
	s := tempVocabulary(t)
	_ = s.Mkdir("fruit")
	info, err := s.Stat("fruit")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory")
	}
	if _, err := s.Stat("nope.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat missing err = %v, want fs.ErrNotExist", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVocabulary(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.txt",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if err := s.Mkdir(p); err == nil {
			t.Errorf("expected error for mkdir %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempVocabulary(t)
	if err := s.Write("atomic.txt", []byte("content\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".lexicon-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestOpen_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "terms")
	s, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	info, err := os.Stat(s.Root())
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestOpen_RootCollision(t *testing.T) {
	root := filepath.Join(t.TempDir(), "terms")
	if err := os.WriteFile(root, []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(root)
	if !errors.Is(err, apperr.ErrRootCollision) {
		t.Fatalf("err = %v, want ErrRootCollision", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempVocabulary(t)
	_ = s.Mkdir("empty")
	if err := s.Delete("empty"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Stat("empty"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("directory still present: %v", err)
	}
	if err := s.Delete(""); err == nil {
		t.Error("expected error deleting the root")
	}
}

func TestNewFS_SymlinkedRootIsWalked(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "terms")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s, err := Open(link)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Write("fruit.txt", []byte("a sweet food\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var seen []string
	if err := s.Walk(func(rel string, _ fs.DirEntry) error {
		seen = append(seen, rel)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(seen) != 1 || seen[0] != "fruit.txt" {
		t.Errorf("walk = %v, want [fruit.txt]", seen)
	}
}
