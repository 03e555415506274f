// Package termservice coordinates the vocabulary store, the journal, and
// change notifications for every lexicon surface (CLI, HTTP, MCP).
package termservice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/lexicon/internal/checksum"
	"github.com/starford/lexicon/internal/journal"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/vocab"
)

// Event kinds passed to an EventSink. EventChanged reports an edit made to
// the tree outside this process.
const (
	EventCreated  = "created"
	EventPromoted = "promoted"
	EventChanged  = "changed"
)

// EventSink receives term change notifications.
type EventSink interface {
	PublishTermEvent(kind, name, path string)
}

// AddResult is returned by AddTerm.
type AddResult struct {
	Name     string `json:"name"`
	Parent   string `json:"parent,omitempty"`
	Path     string `json:"path"`
	Promoted bool   `json:"promoted"`
}

// Service coordinates store and journal operations.
//
// Mutations are serialized within the process. Separate processes sharing a
// vocabulary are not coordinated.
type Service struct {
	mu      sync.Mutex
	store   *vocab.Store
	journal journal.Journal
	events  EventSink
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every addition in j.
func WithJournal(j journal.Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithEvents publishes term changes to sink.
func WithEvents(sink EventSink) Option {
	return func(s *Service) { s.events = sink }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a new term service.
func New(store *vocab.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		journal: journal.Nop{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTerm creates a term, optionally under parent.
func (s *Service) AddTerm(ctx context.Context, name, description, parent string) (*AddResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	created, err := s.store.Create(name, description, parent)
	s.mu.Unlock()
	if err != nil {
		s.logger.Debug("add term rejected",
			slog.String("name", name),
			slog.String("parent", parent),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("term added",
		slog.String("name", name),
		slog.String("path", created.Path),
		slog.Bool("promoted", created.Promoted))

	if _, err := s.journal.Record(models.Addition{
		Name:     name,
		Parent:   parent,
		Path:     created.Path,
		Promoted: created.Promoted,
		Checksum: checksum.Sum(created.Content),
	}); err != nil {
		s.logger.Warn("journal record failed", slog.String("name", name), slog.String("error", err.Error()))
	}

	if s.events != nil {
		if created.Promoted {
			s.events.PublishTermEvent(EventPromoted, parent, s.store.DisplayPath(created.ParentIndex()))
		}
		s.events.PublishTermEvent(EventCreated, name, created.Path)
	}

	return &AddResult{
		Name:     name,
		Parent:   parent,
		Path:     created.Path,
		Promoted: created.Promoted,
	}, nil
}

// SearchTerm looks up a term by exact name.
func (s *Service) SearchTerm(ctx context.Context, name string) (*models.TermInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Search(name)
}

// Tree returns the whole vocabulary.
func (s *Service) Tree(ctx context.Context) ([]*models.TermNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nodes, err := s.store.Tree()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(nodes), nil
}

// History returns the most recent additions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.Addition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.journal.Recent(limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(items), nil
}

// TermHistory returns every recorded addition of name, oldest first.
func (s *Service) TermHistory(ctx context.Context, name string) ([]models.Addition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.journal.ForName(name)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(items), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
