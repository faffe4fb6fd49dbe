package lookup

import (
	"context"
	"fmt"
)

const createdBy = "CVC"

// Service manages named lookup lists with full-replace semantics: each
// sync run supplies the complete new item set for a list.
type Service struct {
	lists ListRepository
}

func NewService(lists ListRepository) *Service {
	return &Service{lists: lists}
}

// Replace creates the named list if it does not exist (active, with the
// given title and description) or clears all of its items if it does, then
// inserts the supplied items in order with display order counting from 0.
// The prior item set never survives, even when the new set is empty.
func (s *Service) Replace(ctx context.Context, name, title, description string, items []Item) error {
	list, err := s.lists.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("find lookup list %q: %w", name, err)
	}
	if list == nil {
		list = &LookupList{
			Name:        name,
			Title:       title,
			Description: description,
			Active:      true,
			CreatedBy:   createdBy,
		}
		if err := s.lists.Create(ctx, list); err != nil {
			return fmt.Errorf("create lookup list %q: %w", name, err)
		}
	} else {
		if err := s.lists.RemoveItems(ctx, list.ID); err != nil {
			return fmt.Errorf("clear lookup list %q: %w", name, err)
		}
	}

	for order, item := range items {
		lli := &LookupListItem{
			ListID:       list.ID,
			Label:        item.Label,
			Value:        item.Value,
			DisplayOrder: order,
			Active:       true,
			CreatedBy:    createdBy,
		}
		if err := s.lists.AddItem(ctx, lli); err != nil {
			return fmt.Errorf("add item %q to lookup list %q: %w", item.Value, name, err)
		}
	}
	return nil
}

// Items returns the named list's items in display order, or nil when the
// list does not exist.
func (s *Service) Items(ctx context.Context, name string) ([]*LookupListItem, error) {
	list, err := s.lists.FindByName(ctx, name)
	if err != nil || list == nil {
		return nil, err
	}
	return s.lists.ListItems(ctx, list.ID)
}
