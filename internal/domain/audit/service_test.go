package audit

import (
	"context"
	"errors"
	"testing"
)

type mockEntryRepo struct {
	entries []*Entry
	fail    bool
}

func (m *mockEntryRepo) Create(_ context.Context, e *Entry) error {
	if m.fail {
		return errors.New("insert failed")
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockEntryRepo) ListRecent(_ context.Context, limit int) ([]*Entry, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func TestLogRecordsEntry(t *testing.T) {
	repo := &mockEntryRepo{}
	svc := NewService(repo)

	svc.Log(context.Background(), ActionSaveMedication, "med-123")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != ActionSaveMedication || e.RecordID != "med-123" {
		t.Errorf("entry = %+v", e)
	}
}

func TestLogSwallowsRepoErrors(t *testing.T) {
	svc := NewService(&mockEntryRepo{fail: true})

	// Must not panic or propagate the failure.
	svc.Log(context.Background(), ActionDownloadError, "")
}

func TestRecentDefaultsLimit(t *testing.T) {
	repo := &mockEntryRepo{}
	svc := NewService(repo)
	for i := 0; i < 3; i++ {
		svc.Log(context.Background(), ActionSaveImmunization, "g")
	}

	got, err := svc.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("recent = %d, want 3", len(got))
	}
}
