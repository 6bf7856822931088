// Package knowledge holds the troubleshooting knowledge base: an
// immutable default layer and a persisted layer of user contributions,
// presented as one case-insensitive, insertion-ordered view.
package knowledge

import (
	"context"
	"fmt"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/confidence"
	"github.com/ziadkadry99/fixbot/internal/storage"
)

// Store is safe for concurrent use. Every mutation is flushed to the
// backend before the call returns.
type Store struct {
	mu       sync.RWMutex
	backend  storage.Backend
	logger   *zap.Logger
	defaults *orderedmap.OrderedMap[string, Entry] // lowercased key -> entry
	user     *orderedmap.OrderedMap[string, Entry]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithCatalog appends extra entries to the default layer after the
// built-in catalog. Later entries replace earlier ones with the same key.
func WithCatalog(entries []CatalogEntry) Option {
	return func(s *Store) {
		for _, e := range entries {
			s.addDefault(e)
		}
	}
}

// NewStore builds the default layer and loads the user layer from backend.
// A missing or corrupt blob yields an empty user layer.
func NewStore(ctx context.Context, backend storage.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend:  backend,
		logger:   zap.NewNop(),
		defaults: orderedmap.New[string, Entry](),
		user:     orderedmap.New[string, Entry](),
	}
	for _, e := range BuiltinCatalog {
		s.addDefault(e)
	}
	for _, opt := range opts {
		opt(s)
	}

	persisted := orderedmap.New[string, Record]()
	ok, err := storage.LoadJSON(ctx, backend, storage.KeyKnowledge, persisted, s.logger)
	if err != nil {
		return nil, err
	}
	if !ok {
		persisted = orderedmap.New[string, Record]()
	}
	for pair := persisted.Oldest(); pair != nil; pair = pair.Next() {
		key := normalizeKey(pair.Key)
		if key == "" {
			continue
		}
		s.user.Set(key, Entry{Problem: s.displayName(key, pair.Key), Record: pair.Value, Layer: LayerUser})
	}
	if n := s.user.Len(); n > 0 {
		s.logger.Debug("loaded user knowledge", zap.Int("entries", n))
	}
	return s, nil
}

func (s *Store) addDefault(e CatalogEntry) {
	key := normalizeKey(e.Problem)
	if key == "" || strings.TrimSpace(e.Solution) == "" {
		return
	}
	author := e.SubmittedBy
	if author == "" {
		author = SystemAuthor
	}
	s.defaults.Set(key, Entry{
		Problem: strings.TrimSpace(e.Problem),
		Record: Record{
			SolutionText: e.Solution,
			SubmittedBy:  author,
			Confidence:   confidence.Neutral,
		},
		Layer: LayerDefault,
	})
}

// normalizeKey is the case-insensitive identity of a problem.
func normalizeKey(problem string) string {
	return strings.ToLower(strings.TrimSpace(problem))
}

// displayName keeps the default layer's spelling for overridden keys.
func (s *Store) displayName(key, fallback string) string {
	if d, ok := s.defaults.Get(key); ok {
		return d.Problem
	}
	return strings.TrimSpace(fallback)
}

// Lookup finds a problem in the merged view, ignoring case.
func (s *Store) Lookup(problem string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(normalizeKey(problem))
}

func (s *Store) lookup(key string) (Entry, bool) {
	if e, ok := s.user.Get(key); ok {
		return e, true
	}
	return s.defaults.Get(key)
}

// Entries returns the merged view: defaults in catalog order (a user
// override keeps its default's slot), then user entries in the order
// they were taught.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, s.defaults.Len()+s.user.Len())
	for pair := s.defaults.Oldest(); pair != nil; pair = pair.Next() {
		if u, ok := s.user.Get(pair.Key); ok {
			out = append(out, u)
			continue
		}
		out = append(out, pair.Value)
	}
	for pair := s.user.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := s.defaults.Get(pair.Key); ok {
			continue
		}
		out = append(out, pair.Value)
	}
	return out
}

// Problems returns the merged problem names in Entries order.
func (s *Store) Problems() []string {
	entries := s.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Problem
	}
	return out
}

// DefaultProblems returns the default layer's problem names in catalog order.
func (s *Store) DefaultProblems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, s.defaults.Len())
	for pair := s.defaults.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Problem)
	}
	return out
}

// Len returns the number of problems in the merged view.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.defaults.Len()
	for pair := s.user.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := s.defaults.Get(pair.Key); !ok {
			n++
		}
	}
	return n
}

// Teach stores solution for problem on behalf of user. Teaching a known
// problem replaces its text and submitter but keeps its feedback counts.
// The in-memory change survives a flush error, which is returned.
func (s *Store) Teach(ctx context.Context, problem, solution, user string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.teach(problem, solution, user)
	if err != nil {
		return Entry{}, err
	}
	return entry, s.flush(ctx)
}

// TeachAll teaches every entry and flushes once. Entries without a
// submitter are attributed to user. It returns how many were stored.
func (s *Store) TeachAll(ctx context.Context, entries []CatalogEntry, user string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range entries {
		author := e.SubmittedBy
		if author == "" {
			author = user
		}
		if _, err := s.teach(e.Problem, e.Solution, author); err != nil {
			continue
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.flush(ctx)
}

func (s *Store) teach(problem, solution, user string) (Entry, error) {
	key := normalizeKey(problem)
	if key == "" {
		return Entry{}, ErrEmptyProblem
	}

	rec := Record{Confidence: confidence.Neutral}
	name := key
	if existing, ok := s.lookup(key); ok {
		rec = existing.Record
		name = existing.Problem
	}
	rec.SolutionText = solution
	rec.SubmittedBy = user
	rec.Confidence = confidence.Recalculate(rec.SuccessCount, rec.FailureCount)

	entry := Entry{Problem: name, Record: rec, Layer: LayerUser}
	s.user.Set(key, entry)
	return entry, nil
}

// RecordFeedback counts a helpful or unhelpful verdict against problem
// and recomputes its confidence. Default entries are copied into the
// user layer on their first rating.
func (s *Store) RecordFeedback(ctx context.Context, problem string, helpful bool) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeKey(problem)
	entry, ok := s.lookup(key)
	if !ok {
		return Entry{}, ErrUnknownProblem
	}
	if helpful {
		entry.SuccessCount++
	} else {
		entry.FailureCount++
	}
	entry.Confidence = confidence.Recalculate(entry.SuccessCount, entry.FailureCount)
	entry.Layer = LayerUser
	s.user.Set(key, entry)
	return entry, s.flush(ctx)
}

// Reset discards every user contribution and rating.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = orderedmap.New[string, Entry]()
	return s.flush(ctx)
}

// flush writes the user layer. Callers hold s.mu.
func (s *Store) flush(ctx context.Context) error {
	out := orderedmap.New[string, Record]()
	for pair := s.user.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Value.Problem, pair.Value.Record)
	}
	if err := storage.SaveJSON(ctx, s.backend, storage.KeyKnowledge, out); err != nil {
		return fmt.Errorf("persisting knowledge: %w", err)
	}
	return nil
}
