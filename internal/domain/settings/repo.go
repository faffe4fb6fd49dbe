package settings

import "context"

// PropertyRepository is the persistence interface for named settings.
// Get returns (nil, nil) when the property does not exist.
type PropertyRepository interface {
	Get(ctx context.Context, name string) (*Property, error)
	Upsert(ctx context.Context, name, value string) error
}
