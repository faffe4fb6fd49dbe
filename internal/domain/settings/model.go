package settings

import "time"

// Property is one named string setting in the generic key-value store.
type Property struct {
	Name      string    `db:"name" json:"name"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Well-known property names used by the catalogue sync.
const (
	PropLastUpdated   = "cvc.updated"
	PropFirstSyncDate = "cvc.firstdate"
	PropBaseURL       = "cvc.url"
)

// DateLayout is the calendar-date format of the "last updated" watermark.
const DateLayout = "2006-01-02"
