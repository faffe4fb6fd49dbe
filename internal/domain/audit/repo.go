package audit

import "context"

type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
