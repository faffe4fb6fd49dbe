package catalogue

import (
	"context"

	"github.com/google/uuid"
)

// ImmunizationRepository persists immunization concepts and their name
// designations. Create assigns the generated identifier and inserts the
// name rows in order.
type ImmunizationRepository interface {
	RemoveAll(ctx context.Context) error
	Create(ctx context.Context, imm *Immunization) error
	Count(ctx context.Context) (int64, error)
	FindByConceptID(ctx context.Context, conceptID string) (*Immunization, error)
}

// MedicationRepository persists medication records and their child lot
// number and product identifier rows. Children reference the medication
// id and must be inserted after Create has assigned it.
type MedicationRepository interface {
	RemoveAll(ctx context.Context) error
	Create(ctx context.Context, med *Medication) error
	AddLotNumber(ctx context.Context, medicationID uuid.UUID, lot *LotNumber) error
	AddProductIdentifier(ctx context.Context, medicationID uuid.UUID, pi *ProductIdentifier) error
	Count(ctx context.Context) (int64, error)
	CountLotNumbers(ctx context.Context) (int64, error)
	CountProductIdentifiers(ctx context.Context) (int64, error)
}
