package internal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/lexicon/internal/journal"
	"github.com/starford/lexicon/internal/storage"
	"github.com/starford/lexicon/internal/termservice"
	"github.com/starford/lexicon/internal/vocab"
)

// Runtime bundles everything one invocation needs to serve term operations.
type Runtime struct {
	Config  *Config
	Storage *storage.FS
	Service *termservice.Service

	journal journal.Journal
}

// NewLogger builds the process logger. CLI invocations log text to stderr so
// stdout carries only command output; servers log JSON.
func NewLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Bootstrap prepares the vocabulary root, opens the journal when enabled, and
// builds the term service. A non-directory at the root path fails with
// apperr.ErrRootCollision before anything else happens.
func Bootstrap(cfg *Config, logger *slog.Logger, extra ...termservice.Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fs, err := storage.Open(cfg.Vocabulary.Root)
	if err != nil {
		return nil, err
	}

	var j journal.Journal = journal.Nop{}
	if cfg.Journal.Enabled {
		path := cfg.Journal.Location(cfg.Vocabulary.Root)
		db, err := journal.Open(path)
		if err != nil {
			// The journal is advisory; term operations still work without it.
			logger.Warn("journal unavailable",
				slog.String("path", path),
				slog.String("error", err.Error()))
		} else {
			j = db
		}
	}

	opts := append([]termservice.Option{
		termservice.WithJournal(j),
		termservice.WithLogger(logger),
	}, extra...)

	return &Runtime{
		Config:  cfg,
		Storage: fs,
		Service: termservice.New(vocab.NewStore(fs, cfg.Vocabulary.Root), opts...),
		journal: j,
	}, nil
}

// Close releases the journal.
func (r *Runtime) Close() error {
	return r.journal.Close()
}
