package lookup

import (
	"context"

	"github.com/google/uuid"
)

// ListRepository is the persistence interface for lookup lists and their
// items. FindByName returns (nil, nil) when no list has the given name.
type ListRepository interface {
	FindByName(ctx context.Context, name string) (*LookupList, error)
	Create(ctx context.Context, l *LookupList) error
	RemoveItems(ctx context.Context, listID uuid.UUID) error
	AddItem(ctx context.Context, item *LookupListItem) error
	ListItems(ctx context.Context, listID uuid.UUID) ([]*LookupListItem, error)
}
