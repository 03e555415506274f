package journal

import "github.com/starford/lexicon/internal/models"

// Journal records term additions.
// Consumers depend on this interface so the journal can be switched off.
type Journal interface {
	Record(a models.Addition) (models.Addition, error)
	Recent(limit int) ([]models.Addition, error)
	ForName(name string) ([]models.Addition, error)
	Close() error
}

// Verify *DB satisfies Journal at compile time.
var _ Journal = (*DB)(nil)

// Nop is a Journal that keeps nothing.
type Nop struct{}

func (Nop) Record(a models.Addition) (models.Addition, error) { return a, nil }
func (Nop) Recent(int) ([]models.Addition, error)             { return nil, nil }
func (Nop) ForName(string) ([]models.Addition, error)         { return nil, nil }
func (Nop) Close() error                                      { return nil }
