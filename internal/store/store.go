package store

import (
	"context"

	"socialdemo/internal/content"
)

// Store is the content store generation writes into and reads users from.
type Store interface {
	content.Store
	ListUserIDs(ctx context.Context) ([]string, error)
	ListItems(ctx context.Context, runID string) ([]*content.Item, error)
	Close() error
}
