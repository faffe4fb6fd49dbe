package lookup

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockListRepo struct {
	lists map[string]*LookupList
	items map[uuid.UUID][]*LookupListItem
}

func newMockListRepo() *mockListRepo {
	return &mockListRepo{
		lists: make(map[string]*LookupList),
		items: make(map[uuid.UUID][]*LookupListItem),
	}
}

func (m *mockListRepo) FindByName(_ context.Context, name string) (*LookupList, error) {
	return m.lists[name], nil
}

func (m *mockListRepo) Create(_ context.Context, l *LookupList) error {
	l.ID = uuid.New()
	m.lists[l.Name] = l
	return nil
}

func (m *mockListRepo) RemoveItems(_ context.Context, listID uuid.UUID) error {
	delete(m.items, listID)
	return nil
}

func (m *mockListRepo) AddItem(_ context.Context, item *LookupListItem) error {
	item.ID = uuid.New()
	m.items[item.ListID] = append(m.items[item.ListID], item)
	return nil
}

func (m *mockListRepo) ListItems(_ context.Context, listID uuid.UUID) ([]*LookupListItem, error) {
	return m.items[listID], nil
}

func TestReplaceCreatesListOnFirstRun(t *testing.T) {
	repo := newMockListRepo()
	svc := NewService(repo)
	ctx := context.Background()

	items := []Item{
		{Label: "Left deltoid", Value: "LD"},
		{Label: "Right deltoid", Value: "RD"},
	}
	if err := svc.Replace(ctx, "AnatomicalSite", "Anatomical Site", "Anatomical Sites from CVC", items); err != nil {
		t.Fatal(err)
	}

	list := repo.lists["AnatomicalSite"]
	if list == nil {
		t.Fatal("list not created")
	}
	if !list.Active || list.CreatedBy != "CVC" || list.Title != "Anatomical Site" {
		t.Errorf("list = %+v", list)
	}

	got, err := svc.Items(ctx, "AnatomicalSite")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("items = %d, want 2", len(got))
	}
	for i, it := range got {
		if it.DisplayOrder != i {
			t.Errorf("item %d display order = %d", i, it.DisplayOrder)
		}
		if it.CreatedBy != "CVC" || !it.Active {
			t.Errorf("item %d = %+v", i, it)
		}
	}
}

func TestReplaceDiscardsPriorItems(t *testing.T) {
	repo := newMockListRepo()
	svc := NewService(repo)
	ctx := context.Background()

	prior := []Item{
		{Label: "a", Value: "A"}, {Label: "b", Value: "B"}, {Label: "c", Value: "C"},
		{Label: "d", Value: "D"}, {Label: "e", Value: "E"},
	}
	if err := svc.Replace(ctx, "RouteOfAdmin", "RouteOfAdmin", "Routes of Administration from CVC", prior); err != nil {
		t.Fatal(err)
	}

	next := []Item{
		{Label: "Intramuscular", Value: "IM"},
		{Label: "Subcutaneous", Value: "SC"},
		{Label: "Oral", Value: "PO"},
	}
	if err := svc.Replace(ctx, "RouteOfAdmin", "RouteOfAdmin", "Routes of Administration from CVC", next); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Items(ctx, "RouteOfAdmin")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("items = %d, want 3", len(got))
	}
	for i, it := range got {
		if it.Value != next[i].Value || it.DisplayOrder != i {
			t.Errorf("item %d = %+v, want value %q order %d", i, it, next[i].Value, i)
		}
	}
	if len(repo.lists) != 1 {
		t.Errorf("lists = %d, want 1", len(repo.lists))
	}
}

func TestReplaceEmptySetClearsList(t *testing.T) {
	repo := newMockListRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Replace(ctx, "AnatomicalSite", "Anatomical Site", "Anatomical Sites from CVC",
		[]Item{{Label: "x", Value: "X"}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Replace(ctx, "AnatomicalSite", "Anatomical Site", "Anatomical Sites from CVC", nil); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Items(ctx, "AnatomicalSite")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("items = %d, want 0", len(got))
	}
}

func TestItemsForUnknownList(t *testing.T) {
	svc := NewService(newMockListRepo())
	got, err := svc.Items(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Items = %v, want nil", got)
	}
}
