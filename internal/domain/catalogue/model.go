package catalogue

import (
	"time"

	"github.com/google/uuid"
)

// Immunization is one coded catalogue concept, either a generic drug
// family or a specific branded product, with its ordered name designations.
type Immunization struct {
	ID              uuid.UUID `db:"id" json:"id"`
	ConceptID       string    `db:"concept_id" json:"concept_id"`
	IsGeneric       bool      `db:"is_generic" json:"is_generic"`
	ParentConceptID *string   `db:"parent_concept_id" json:"parent_concept_id,omitempty"`
	ShelfStatus     *string   `db:"shelf_status" json:"shelf_status,omitempty"`
	Route           *string   `db:"route" json:"route,omitempty"`
	Strength        *string   `db:"strength" json:"strength,omitempty"`
	TypicalDose     *string   `db:"typical_dose" json:"typical_dose,omitempty"`
	TypicalDoseUnit *string   `db:"typical_dose_unit" json:"typical_dose_unit,omitempty"`
	VersionID       int       `db:"version_id" json:"version_id"`
	Names           []Name    `json:"names"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Name is one designation row owned by an Immunization, kept in source
// order.
type Name struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Language   string    `db:"language" json:"language"`
	UseSystem  string    `db:"use_system" json:"use_system"`
	UseCode    string    `db:"use_code" json:"use_code"`
	UseDisplay string    `db:"use_display" json:"use_display"`
	Value      string    `db:"value" json:"value"`
}

// Medication is one dispensable catalogue product with its retained lot
// numbers and GTIN product identifiers.
type Medication struct {
	ID                  uuid.UUID           `db:"id" json:"id"`
	DIN                 *string             `db:"din" json:"din,omitempty"`
	DINDisplayName      *string             `db:"din_display_name" json:"din_display_name,omitempty"`
	SNOMEDCode          *string             `db:"snomed_code" json:"snomed_code,omitempty"`
	SNOMEDDisplay       *string             `db:"snomed_display" json:"snomed_display,omitempty"`
	Status              string              `db:"status" json:"status"`
	ManufacturerDisplay *string             `db:"manufacturer_display" json:"manufacturer_display,omitempty"`
	LotNumbers          []LotNumber         `json:"lot_numbers"`
	ProductIdentifiers  []ProductIdentifier `json:"product_identifiers"`
	CreatedAt           time.Time           `db:"created_at" json:"created_at"`
}

type LotNumber struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	LotNumber    string    `db:"lot_number" json:"lot_number"`
	ExpiryDate   time.Time `db:"expiry_date" json:"expiry_date"`
}

// ProductIdentifier is one GS1 GTIN attached to a medication.
type ProductIdentifier struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	GTIN         string    `db:"gtin" json:"gtin"`
}

// CrossReferenceIndex carries concept-level facts from the brand pass to
// the medication pass within a single run. A fresh instance is built per
// run; it is not safe for concurrent use.
type CrossReferenceIndex struct {
	manufacturers map[string]string
	dins          map[string]string
}

func NewCrossReferenceIndex() *CrossReferenceIndex {
	return &CrossReferenceIndex{
		manufacturers: make(map[string]string),
		dins:          make(map[string]string),
	}
}

func (x *CrossReferenceIndex) SetManufacturer(conceptID, display string) {
	x.manufacturers[conceptID] = display
}

func (x *CrossReferenceIndex) Manufacturer(conceptID string) (string, bool) {
	v, ok := x.manufacturers[conceptID]
	return v, ok
}

func (x *CrossReferenceIndex) SetDIN(conceptID, din string) {
	x.dins[conceptID] = din
}

func (x *CrossReferenceIndex) DIN(conceptID string) (string, bool) {
	v, ok := x.dins[conceptID]
	return v, ok
}
