package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/storage"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "terms")
	fs, err := storage.Open(root)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	return NewStore(fs, "terms"), root
}

func mustCreate(t *testing.T, s *Store, name, desc, parent string) *Created {
	t.Helper()
	c, err := s.Create(name, desc, parent)
	if err != nil {
		t.Fatalf("Create(%q, parent=%q): %v", name, parent, err)
	}
	return c
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(data)
}

func TestCreateThenSearchLeaf(t *testing.T) {
	s, _ := testStore(t)
	cases := []struct{ name, desc string }{
		{"fruit", "a sweet food"},
		{"empty", ""},
		{"multi", "two\nlines"},
	}
	for _, tc := range cases {
		mustCreate(t, s, tc.name, tc.desc, "")

		info, err := s.Search(tc.name)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.name, err)
		}
		if info.Description != tc.desc+"\n" {
			t.Errorf("description = %q, want %q", info.Description, tc.desc+"\n")
		}
		if info.Parent {
			t.Errorf("%q should be a leaf", tc.name)
		}
		if len(info.Children) != 0 {
			t.Errorf("leaf has children: %v", info.Children)
		}
	}
}

func TestEndToEndFruitApple(t *testing.T) {
	s, root := testStore(t)

	c := mustCreate(t, s, "fruit", "a sweet food", "")
	if c.Path != "terms/fruit.txt" {
		t.Errorf("path = %q, want terms/fruit.txt", c.Path)
	}
	if c.Promoted {
		t.Error("root-level create must not promote")
	}

	c = mustCreate(t, s, "apple", "a red fruit", "fruit")
	if c.Path != "terms/fruit/apple.txt" {
		t.Errorf("path = %q, want terms/fruit/apple.txt", c.Path)
	}
	if !c.Promoted {
		t.Error("first child should promote the parent")
	}

	if _, err := os.Stat(filepath.Join(root, "fruit.txt")); !os.IsNotExist(err) {
		t.Errorf("fruit.txt should be gone after promotion: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "fruit", IndexName)); got != "a sweet food\n" {
		t.Errorf("index content = %q", got)
	}

	fruit, err := s.Search("fruit")
	if err != nil {
		t.Fatalf("Search(fruit): %v", err)
	}
	if !fruit.Parent {
		t.Error("fruit should be a parent")
	}
	if fruit.Description != "a sweet food\n" {
		t.Errorf("fruit description = %q", fruit.Description)
	}
	if len(fruit.Children) != 1 || fruit.Children[0] != "apple" {
		t.Errorf("children = %v, want [apple]", fruit.Children)
	}
	if fruit.Path != "terms/fruit/_index" {
		t.Errorf("fruit path = %q", fruit.Path)
	}

	apple, err := s.Search("apple")
	if err != nil {
		t.Fatalf("Search(apple): %v", err)
	}
	if apple.Parent || apple.Description != "a red fruit\n" {
		t.Errorf("apple = %+v", apple)
	}
}

func TestPromotionPreservesBytes(t *testing.T) {
	s, root := testStore(t)
	desc := "  spaced\ttabs\nand ünïcödé  "
	mustCreate(t, s, "fruit", desc, "")
	before := readFile(t, filepath.Join(root, "fruit.txt"))

	mustCreate(t, s, "apple", "a red fruit", "fruit")
	after := readFile(t, filepath.Join(root, "fruit", IndexName))
	if before != after {
		t.Errorf("index = %q, want %q", after, before)
	}
}

func TestSecondChildDoesNotPromoteAgain(t *testing.T) {
	s, _ := testStore(t)
	mustCreate(t, s, "fruit", "a sweet food", "")
	mustCreate(t, s, "apple", "a red fruit", "fruit")
	c := mustCreate(t, s, "pear", "a green fruit", "fruit")
	if c.Promoted {
		t.Error("parent was already promoted")
	}
	info, err := s.Search("fruit")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(info.Children) != 2 || info.Children[0] != "apple" || info.Children[1] != "pear" {
		t.Errorf("children = %v", info.Children)
	}
}

func TestNestedPromotion(t *testing.T) {
	s, root := testStore(t)
	mustCreate(t, s, "food", "things to eat", "")
	mustCreate(t, s, "fruit", "a sweet food", "food")
	c := mustCreate(t, s, "apple", "a red fruit", "fruit")
	if c.Path != "terms/food/fruit/apple.txt" {
		t.Errorf("path = %q", c.Path)
	}
	if got := readFile(t, filepath.Join(root, "food", "fruit", IndexName)); got != "a sweet food\n" {
		t.Errorf("fruit index = %q", got)
	}

	food, err := s.Search("food")
	if err != nil {
		t.Fatalf("Search(food): %v", err)
	}
	if len(food.Children) != 1 || food.Children[0] != "fruit" {
		t.Errorf("food children = %v, want [fruit]", food.Children)
	}
}

func TestCreateDuplicate(t *testing.T) {
	s, _ := testStore(t)
	mustCreate(t, s, "fruit", "a sweet food", "")
	if _, err := s.Create("fruit", "something else", ""); !errors.Is(err, apperr.ErrTermExists) {
		t.Fatalf("err = %v, want ErrTermExists", err)
	}

	mustCreate(t, s, "apple", "a red fruit", "fruit")
	if _, err := s.Create("apple", "again", "fruit"); !errors.Is(err, apperr.ErrTermExists) {
		t.Fatalf("child err = %v, want ErrTermExists", err)
	}
}

func TestCreateDuplicateOfParentDirectory(t *testing.T) {
	s, _ := testStore(t)
	mustCreate(t, s, "fruit", "a sweet food", "")
	mustCreate(t, s, "apple", "a red fruit", "fruit")

	// fruit is now a directory at the root; a new root-level fruit must fail.
	if _, err := s.Create("fruit", "again", ""); !errors.Is(err, apperr.ErrTermExists) {
		t.Fatalf("err = %v, want ErrTermExists", err)
	}
}

func TestCreateReservedName(t *testing.T) {
	s, root := testStore(t)
	mustCreate(t, s, "fruit", "a sweet food", "")
	for _, parent := range []string{"", "fruit", "missing"} {
		if _, err := s.Create(IndexName, "x", parent); !errors.Is(err, apperr.ErrReservedName) {
			t.Errorf("parent=%q: err = %v, want ErrReservedName", parent, err)
		}
	}
	// The reserved-name check must not have promoted fruit.
	if _, err := os.Stat(filepath.Join(root, "fruit.txt")); err != nil {
		t.Errorf("fruit.txt should be untouched: %v", err)
	}
}

func TestCreateInvalidName(t *testing.T) {
	s, _ := testStore(t)
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := s.Create(name, "x", ""); !errors.Is(err, apperr.ErrInvalidName) {
			t.Errorf("name=%q: err = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestCreateParentNotFound(t *testing.T) {
	s, root := testStore(t)
	if _, err := s.Create("apple", "a red fruit", "fruit"); !errors.Is(err, apperr.ErrParentNotFound) {
		t.Fatalf("err = %v, want ErrParentNotFound", err)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Errorf("nothing should be written, found %d entries", len(entries))
	}
}

func TestCreatePromotionConflict(t *testing.T) {
	s, root := testStore(t)
	mustCreate(t, s, "fruit", "a sweet food", "")
	if err := os.Mkdir(filepath.Join(root, "fruit"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := s.Create("apple", "a red fruit", "fruit")
	if !errors.Is(err, apperr.ErrPromotionConflict) {
		t.Fatalf("err = %v, want ErrPromotionConflict", err)
	}
	if got := readFile(t, filepath.Join(root, "fruit.txt")); got != "a sweet food\n" {
		t.Errorf("leaf should be untouched, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "fruit", "apple.txt")); !os.IsNotExist(err) {
		t.Error("child must not be written on conflict")
	}
}

func TestExtensionLikeSuffixIsExact(t *testing.T) {
	s, root := testStore(t)
	// "te" becomes a directory. Trimming the characters of ".txt" from
	// "text.txt" would also yield "te" and wrongly report a duplicate.
	mustCreate(t, s, "te", "short", "")
	mustCreate(t, s, "child", "", "te")
	if _, err := os.Stat(filepath.Join(root, "te", IndexName)); err != nil {
		t.Fatalf("expected directory te/: %v", err)
	}

	c := mustCreate(t, s, "text", "prose", "")
	if c.Path != "terms/text.txt" {
		t.Errorf("path = %q", c.Path)
	}
}

func TestSearchNotFound(t *testing.T) {
	s, _ := testStore(t)
	mustCreate(t, s, "fruit", "a sweet food", "")
	if _, err := s.Search("apple"); !errors.Is(err, apperr.ErrTermNotFound) {
		t.Fatalf("err = %v, want ErrTermNotFound", err)
	}
}

func TestTree(t *testing.T) {
	s, _ := testStore(t)
	mustCreate(t, s, "vegetable", "", "")
	mustCreate(t, s, "fruit", "a sweet food", "")
	mustCreate(t, s, "pear", "", "fruit")
	mustCreate(t, s, "apple", "", "fruit")

	nodes, err := s.Tree()
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Name != "fruit" || nodes[1].Name != "vegetable" {
		t.Fatalf("roots = %+v", nodes)
	}
	fruit := nodes[0]
	if !fruit.Parent || len(fruit.Children) != 2 {
		t.Fatalf("fruit = %+v", fruit)
	}
	if fruit.Children[0].Name != "apple" || fruit.Children[1].Name != "pear" {
		t.Errorf("children order = %s, %s", fruit.Children[0].Name, fruit.Children[1].Name)
	}
	if fruit.Children[0].Path != "terms/fruit/apple.txt" {
		t.Errorf("apple path = %q", fruit.Children[0].Path)
	}
}

// failingMove wraps a provider and fails every Move while fail is set.
type failingMove struct {
	storage.Provider
	fail bool
}

func (f *failingMove) Move(oldPath, newPath string) error {
	if f.fail {
		return errors.New("rename refused")
	}
	return f.Provider.Move(oldPath, newPath)
}

func TestPromotionRollsBackWhenMoveFails(t *testing.T) {
	root := filepath.Join(t.TempDir(), "terms")
	fsys, err := storage.Open(root)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	p := &failingMove{Provider: fsys}
	s := NewStore(p, "terms")
	mustCreate(t, s, "fruit", "a sweet food", "")

	p.fail = true
	if _, err := s.Create("apple", "a red fruit", "fruit"); err == nil {
		t.Fatal("expected promotion to fail")
	}
	if got := readFile(t, filepath.Join(root, "fruit.txt")); got != "a sweet food\n" {
		t.Errorf("leaf should be untouched, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "fruit")); !os.IsNotExist(err) {
		t.Errorf("directory should be removed after failed promotion, stat err = %v", err)
	}

	p.fail = false
	c := mustCreate(t, s, "apple", "a red fruit", "fruit")
	if !c.Promoted || c.Path != "terms/fruit/apple.txt" {
		t.Errorf("retry = %+v", c)
	}
	if got := readFile(t, filepath.Join(root, "fruit", IndexName)); got != "a sweet food\n" {
		t.Errorf("_index = %q", got)
	}
}

func TestSymlinkedRootCreateThenSearch(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "real"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "terms")
	if err := os.Symlink(filepath.Join(dir, "real"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	fsys, err := storage.Open(link)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	s := NewStore(fsys, "terms")

	mustCreate(t, s, "fruit", "a sweet food", "")
	info, err := s.Search("fruit")
	if err != nil {
		t.Fatalf("Search after Create: %v", err)
	}
	if info.Description != "a sweet food\n" {
		t.Errorf("description = %q", info.Description)
	}

	c := mustCreate(t, s, "apple", "a red fruit", "fruit")
	if c.Path != "terms/fruit/apple.txt" || !c.Promoted {
		t.Errorf("child = %+v", c)
	}
}
