package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"budgetbuddy/internal/kv"
)

var _ kv.Store = (*Store)(nil)

// Store keeps values in process memory. Nothing survives a restart.
type Store struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func New() *Store {
	return &Store{values: map[string]string{}}
}

// NewFromFiles seeds the store from "<key>.json" files in base. Missing files
// are skipped so an empty or absent directory yields an empty store.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range kv.Keys() {
		data, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil {
			continue
		}
		v := strings.TrimSpace(string(data))
		if v == "" {
			continue
		}
		s.values[key] = v
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Writes returns how many Set calls succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
