package settings

import (
	"context"
	"testing"
	"time"
)

type mockPropertyRepo struct {
	props map[string]string
}

func newMockPropertyRepo() *mockPropertyRepo {
	return &mockPropertyRepo{props: make(map[string]string)}
}

func (m *mockPropertyRepo) Get(_ context.Context, name string) (*Property, error) {
	v, ok := m.props[name]
	if !ok {
		return nil, nil
	}
	return &Property{Name: name, Value: v}, nil
}

func (m *mockPropertyRepo) Upsert(_ context.Context, name, value string) error {
	m.props[name] = value
	return nil
}

func TestRecordLastUpdatedOverwrites(t *testing.T) {
	repo := newMockPropertyRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.RecordLastUpdated(ctx, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := svc.RecordLastUpdated(ctx, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	got, err := svc.LastUpdated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Format(DateLayout) != "2026-03-04" {
		t.Errorf("LastUpdated = %v", got)
	}
}

func TestFirstSyncDateIsImmutable(t *testing.T) {
	repo := newMockPropertyRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first := time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC)
	if err := svc.EnsureFirstSyncDate(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := svc.EnsureFirstSyncDate(ctx, first.Add(48*time.Hour)); err != nil {
		t.Fatal(err)
	}

	got, err := svc.FirstSyncDate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.Equal(first) {
		t.Errorf("FirstSyncDate = %v, want %v", got, first)
	}
}

func TestFirstSyncDateAbsent(t *testing.T) {
	svc := NewService(newMockPropertyRepo())
	got, err := svc.FirstSyncDate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("FirstSyncDate = %v, want nil", got)
	}
}

func TestActiveGating(t *testing.T) {
	repo := newMockPropertyRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// No first-sync date: never active.
	if active, _ := svc.Active(ctx, nil); active {
		t.Error("active before any sync")
	}

	first := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if err := svc.EnsureFirstSyncDate(ctx, first); err != nil {
		t.Fatal(err)
	}

	if active, _ := svc.Active(ctx, nil); !active {
		t.Error("nil reference date should be active once first sync exists")
	}

	after := first.AddDate(0, 1, 0)
	if active, _ := svc.Active(ctx, &after); !active {
		t.Error("reference after first sync should be active")
	}

	before := first.AddDate(0, -1, 0)
	if active, _ := svc.Active(ctx, &before); active {
		t.Error("reference before first sync should not be active")
	}
}

func TestBaseURLOverride(t *testing.T) {
	repo := newMockPropertyRepo()
	svc := NewService(repo)
	ctx := context.Background()

	got, err := svc.BaseURL(ctx, "https://nvc-cnv.canada.ca/v1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://nvc-cnv.canada.ca/v1" {
		t.Errorf("BaseURL = %q", got)
	}

	repo.props[PropBaseURL] = "https://mirror.example.org/v1"
	got, err = svc.BaseURL(ctx, "https://nvc-cnv.canada.ca/v1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://mirror.example.org/v1" {
		t.Errorf("BaseURL override = %q", got)
	}
}
