package catalogue

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type immunizationRepoPG struct{ pool *pgxpool.Pool }

func NewImmunizationRepoPG(pool *pgxpool.Pool) ImmunizationRepository {
	return &immunizationRepoPG{pool: pool}
}

func (r *immunizationRepoPG) RemoveAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cvc_immunization_name`); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cvc_immunization`)
	return err
}

func (r *immunizationRepoPG) Create(ctx context.Context, imm *Immunization) error {
	imm.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cvc_immunization
			(id, concept_id, is_generic, parent_concept_id, shelf_status,
			 route, strength, typical_dose, typical_dose_unit, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		imm.ID, imm.ConceptID, imm.IsGeneric, imm.ParentConceptID, imm.ShelfStatus,
		imm.Route, imm.Strength, imm.TypicalDose, imm.TypicalDoseUnit, imm.VersionID)
	if err != nil {
		return err
	}
	for i := range imm.Names {
		n := &imm.Names[i]
		n.ID = uuid.New()
		_, err := r.pool.Exec(ctx, `
			INSERT INTO cvc_immunization_name
				(id, immunization_id, display_order, language, use_system, use_code, use_display, value)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			n.ID, imm.ID, i, n.Language, n.UseSystem, n.UseCode, n.UseDisplay, n.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *immunizationRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cvc_immunization`).Scan(&n)
	return n, err
}

func (r *immunizationRepoPG) FindByConceptID(ctx context.Context, conceptID string) (*Immunization, error) {
	var imm Immunization
	err := r.pool.QueryRow(ctx, `
		SELECT id, concept_id, is_generic, parent_concept_id, shelf_status,
		       route, strength, typical_dose, typical_dose_unit, version_id, created_at
		FROM cvc_immunization WHERE concept_id = $1`, conceptID).
		Scan(&imm.ID, &imm.ConceptID, &imm.IsGeneric, &imm.ParentConceptID, &imm.ShelfStatus,
			&imm.Route, &imm.Strength, &imm.TypicalDose, &imm.TypicalDoseUnit, &imm.VersionID, &imm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, language, use_system, use_code, use_display, value
		FROM cvc_immunization_name WHERE immunization_id = $1 ORDER BY display_order`, imm.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var n Name
		if err := rows.Scan(&n.ID, &n.Language, &n.UseSystem, &n.UseCode, &n.UseDisplay, &n.Value); err != nil {
			return nil, err
		}
		imm.Names = append(imm.Names, n)
	}
	return &imm, rows.Err()
}

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

func (r *medicationRepoPG) RemoveAll(ctx context.Context) error {
	for _, table := range []string{"cvc_medication_lot_number", "cvc_medication_gtin", "cvc_medication"} {
		if _, err := r.pool.Exec(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return nil
}

func (r *medicationRepoPG) Create(ctx context.Context, med *Medication) error {
	med.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cvc_medication
			(id, din, din_display_name, snomed_code, snomed_display, status, manufacturer_display)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		med.ID, med.DIN, med.DINDisplayName, med.SNOMEDCode, med.SNOMEDDisplay,
		med.Status, med.ManufacturerDisplay)
	return err
}

func (r *medicationRepoPG) AddLotNumber(ctx context.Context, medicationID uuid.UUID, lot *LotNumber) error {
	lot.ID = uuid.New()
	lot.MedicationID = medicationID
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cvc_medication_lot_number (id, medication_id, lot_number, expiry_date)
		VALUES ($1,$2,$3,$4)`,
		lot.ID, medicationID, lot.LotNumber, lot.ExpiryDate)
	return err
}

func (r *medicationRepoPG) AddProductIdentifier(ctx context.Context, medicationID uuid.UUID, pi *ProductIdentifier) error {
	pi.ID = uuid.New()
	pi.MedicationID = medicationID
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cvc_medication_gtin (id, medication_id, gtin)
		VALUES ($1,$2,$3)`,
		pi.ID, medicationID, pi.GTIN)
	return err
}

func (r *medicationRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cvc_medication`).Scan(&n)
	return n, err
}

func (r *medicationRepoPG) CountLotNumbers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cvc_medication_lot_number`).Scan(&n)
	return n, err
}

func (r *medicationRepoPG) CountProductIdentifiers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cvc_medication_gtin`).Scan(&n)
	return n, err
}
