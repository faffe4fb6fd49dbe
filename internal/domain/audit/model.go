package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the catalogue sync.
const (
	ActionDownloadReceived = "catalogue.download.received"
	ActionDownloadError    = "catalogue.download.error"
	ActionSaveImmunization = "catalogue.immunization.saved"
	ActionSaveMedication   = "catalogue.medication.saved"
)

// Entry maps to the audit_log table: one row per recorded action.
type Entry struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Action   string    `db:"action" json:"action"`
	RecordID string    `db:"record_id" json:"record_id"`
	Detail   string    `db:"detail" json:"detail"`
	Recorded time.Time `db:"recorded" json:"recorded"`
}
