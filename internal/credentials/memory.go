package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps connections in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	conns  []Connection
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// LoadMemoryStore reads a JSON array of connections from path.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential seed file: %w", err)
	}

	var conns []Connection
	if err := json.Unmarshal(data, &conns); err != nil {
		return nil, fmt.Errorf("parse credential seed file: %w", err)
	}

	s := NewMemoryStore()
	for _, c := range conns {
		s.Add(c)
	}
	return s, nil
}

// Add stores c. A zero ID or CreatedAt is filled in.
func (s *MemoryStore) Add(c Connection) Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = s.nextID
	}
	if c.ID >= s.nextID {
		s.nextID = c.ID + 1
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UserID = strings.TrimSpace(c.UserID)
	s.conns = append(s.conns, c)
	return c
}

// ListConnections implements Store.
func (s *MemoryStore) ListConnections(_ context.Context, userID string) ([]Connection, error) {
	userID = strings.TrimSpace(userID)

	s.mu.RLock()
	var out []Connection
	for _, c := range s.conns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
