// Package stats counts how often multi-word questions are asked.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/storage"
)

// MinWords is the shortest query that is counted.
const MinWords = 2

// QueryCount is one ranked query.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Store keeps query frequencies in first-seen order.
type Store struct {
	mu      sync.RWMutex
	backend storage.Backend
	counts  *orderedmap.OrderedMap[string, int]
}

// NewStore loads counts from backend. A missing or corrupt blob starts empty.
func NewStore(ctx context.Context, backend storage.Backend, logger *zap.Logger) (*Store, error) {
	s := &Store{backend: backend, counts: orderedmap.New[string, int]()}
	loaded := orderedmap.New[string, int]()
	ok, err := storage.LoadJSON(ctx, backend, storage.KeyQueryStats, loaded, logger)
	if err != nil {
		return nil, err
	}
	if ok {
		for pair := loaded.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value > 0 {
				s.counts.Set(pair.Key, pair.Value)
			}
		}
	}
	return s, nil
}

// Record counts query if it has at least MinWords words. It reports
// whether the query was counted. The count survives a flush error.
func (s *Store) Record(ctx context.Context, query string) (bool, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(strings.Fields(q)) < MinWords {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := s.counts.Get(q)
	s.counts.Set(q, n+1)
	return true, s.flush(ctx)
}

// Count returns how often query was recorded.
func (s *Store) Count(query string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, _ := s.counts.Get(strings.ToLower(strings.TrimSpace(query)))
	return n
}

// Ranked returns every query by descending count; ties keep first-seen order.
func (s *Store) Ranked() []QueryCount {
	s.mu.RLock()
	out := make([]QueryCount, 0, s.counts.Len())
	for pair := s.counts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, QueryCount{Query: pair.Key, Count: pair.Value})
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Reset forgets every query.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = orderedmap.New[string, int]()
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.backend, storage.KeyQueryStats, s.counts); err != nil {
		return fmt.Errorf("persisting query stats: %w", err)
	}
	return nil
}
