package lookup

import (
	"time"

	"github.com/google/uuid"
)

// LookupList maps to the lookup_list table: a named, ordered pick list
// managed wholesale by the catalogue sync.
type LookupList struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// LookupListItem maps to the lookup_list_item table.
type LookupListItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ListID       uuid.UUID `db:"list_id" json:"list_id"`
	Label        string    `db:"label" json:"label"`
	Value        string    `db:"value" json:"value"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	Active       bool      `db:"active" json:"active"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Item is one {label, value} pair supplied by a sync pass; ordering and
// bookkeeping fields are assigned on insert.
type Item struct {
	Label string
	Value string
}
