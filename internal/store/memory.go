package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialdemo/internal/content"
)

var _ Store = (*Memory)(nil)

// Memory keeps items in process. It is used when no database is configured.
type Memory struct {
	mu    sync.RWMutex
	users []string
	items []*content.Item
}

func NewMemory(users []string) *Memory {
	m := &Memory{users: make([]string, len(users))}
	copy(m.users, users)
	return m
}

func (m *Memory) SaveItem(ctx context.Context, item *content.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	stored := *item
	m.items = append(m.items, &stored)
	return nil
}

func (m *Memory) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.users))
	copy(ids, m.users)
	return ids, nil
}

// ListItems returns items of runID in insertion order. An empty runID
// returns everything.
func (m *Memory) ListItems(ctx context.Context, runID string) ([]*content.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*content.Item
	for _, it := range m.items {
		if runID != "" && it.RunID != runID {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
