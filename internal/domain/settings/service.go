package settings

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Service wraps the property store with the watermark and activation
// semantics the catalogue sync depends on.
type Service struct {
	props PropertyRepository
}

func NewService(props PropertyRepository) *Service {
	return &Service{props: props}
}

// LastUpdated returns the date of the most recent successful sync, or nil
// when no sync has completed yet.
func (s *Service) LastUpdated(ctx context.Context) (*time.Time, error) {
	p, err := s.props.Get(ctx, PropLastUpdated)
	if err != nil || p == nil {
		return nil, err
	}
	t, err := time.Parse(DateLayout, p.Value)
	if err != nil {
		return nil, fmt.Errorf("parse %s property %q: %w", PropLastUpdated, p.Value, err)
	}
	return &t, nil
}

// RecordLastUpdated overwrites the "last updated" watermark unconditionally.
func (s *Service) RecordLastUpdated(ctx context.Context, t time.Time) error {
	return s.props.Upsert(ctx, PropLastUpdated, t.Format(DateLayout))
}

// FirstSyncDate returns the instant of the first successful sync, or nil
// when no sync has completed yet. Stored as epoch milliseconds text.
func (s *Service) FirstSyncDate(ctx context.Context) (*time.Time, error) {
	p, err := s.props.Get(ctx, PropFirstSyncDate)
	if err != nil || p == nil {
		return nil, err
	}
	millis, err := strconv.ParseInt(p.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s property %q: %w", PropFirstSyncDate, p.Value, err)
	}
	t := time.UnixMilli(millis)
	return &t, nil
}

// EnsureFirstSyncDate sets the first-sync watermark if and only if it has
// never been set. Once present it is immutable.
func (s *Service) EnsureFirstSyncDate(ctx context.Context, t time.Time) error {
	p, err := s.props.Get(ctx, PropFirstSyncDate)
	if err != nil {
		return err
	}
	if p != nil {
		return nil
	}
	return s.props.Upsert(ctx, PropFirstSyncDate, strconv.FormatInt(t.UnixMilli(), 10))
}

// Active reports whether the catalogue feature is considered active
// relative to the given reference date: a first-sync date must exist, and
// when a reference date is supplied the first sync must precede it.
func (s *Service) Active(ctx context.Context, reference *time.Time) (bool, error) {
	first, err := s.FirstSyncDate(ctx)
	if err != nil {
		return false, err
	}
	if first == nil {
		return false, nil
	}
	if reference == nil {
		return true, nil
	}
	return first.Before(*reference), nil
}

// BaseURL returns the catalogue base URL, preferring a non-empty operator
// override from the property store over the configured value.
func (s *Service) BaseURL(ctx context.Context, configured string) (string, error) {
	p, err := s.props.Get(ctx, PropBaseURL)
	if err != nil {
		return "", err
	}
	if p != nil && p.Value != "" {
		return p.Value, nil
	}
	return configured, nil
}
