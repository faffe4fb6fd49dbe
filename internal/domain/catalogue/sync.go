package catalogue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cvc/cvc/internal/domain/audit"
	"github.com/cvc/cvc/internal/domain/lookup"
	"github.com/cvc/cvc/internal/domain/settings"
	"github.com/cvc/cvc/internal/platform/fhir"
)

// ErrRunInProgress is returned when a sync run is requested while another
// run holds the run lock.
var ErrRunInProgress = errors.New("catalogue sync already in progress")

type RunState string

const (
	StateIdle               RunState = "idle"
	StateFetching           RunState = "fetching"
	StateParsing            RunState = "parsing"
	StateClearing           RunState = "clearing"
	StateLoadingGeneric     RunState = "loading-generic"
	StateLoadingBrand       RunState = "loading-brand"
	StateLoadingMedication  RunState = "loading-medication"
	StateLoadingSites       RunState = "loading-sites"
	StateLoadingRoutes      RunState = "loading-routes"
	StateRecordingWatermark RunState = "recording-watermark"
	StateDone               RunState = "done"
	StateFailed             RunState = "failed"
)

// RunReport is the outcome of one sync run.
type RunReport struct {
	State              RunState   `json:"state"`
	Started            time.Time  `json:"started"`
	Finished           *time.Time `json:"finished,omitempty"`
	Immunizations      int        `json:"immunizations"`
	Medications        int        `json:"medications"`
	LotNumbers         int        `json:"lot_numbers"`
	ProductIdentifiers int        `json:"product_identifiers"`
	LookupItems        int        `json:"lookup_items"`
	Error              string     `json:"error,omitempty"`
}

// Syncer drives one full catalogue replacement: fetch, parse, clear, load
// by resource kind (brand strictly before medication), record watermark.
// Runs are serialized by an internal run lock; a second concurrent Run
// fails fast with ErrRunInProgress.
type Syncer struct {
	client        *Client
	immunizations ImmunizationRepository
	medications   MedicationRepository
	lookups       *lookup.Service
	settings      *settings.Service
	auditor       *audit.Service
	baseURL       string

	now func() time.Time

	mu      sync.Mutex
	running bool
	last    *RunReport
}

func NewSyncer(
	client *Client,
	immunizations ImmunizationRepository,
	medications MedicationRepository,
	lookups *lookup.Service,
	props *settings.Service,
	auditor *audit.Service,
	baseURL string,
) *Syncer {
	return &Syncer{
		client:        client,
		immunizations: immunizations,
		medications:   medications,
		lookups:       lookups,
		settings:      props,
		auditor:       auditor,
		baseURL:       baseURL,
		now:           time.Now,
	}
}

// Status returns a copy of the most recent run report, or an idle report
// when no run has happened yet.
func (s *Syncer) Status() RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return RunReport{State: StateIdle}
	}
	return *s.last
}

// Run executes one sync run end to end and returns its report. Fetch and
// parse failures abort before any write, leaving the store untouched. A
// persistence failure after the clearing stage leaves the store partially
// loaded; the next run's clearing stage resets it.
func (s *Syncer) Run(ctx context.Context) (*RunReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()

	// The report is owned by this goroutine; Status readers only ever see
	// the snapshots published under the mutex.
	report := &RunReport{State: StateFetching, Started: s.now()}
	s.publish(report)

	err := s.run(ctx, report)

	finished := s.now()
	report.Finished = &finished
	if err != nil {
		report.State = StateFailed
		report.Error = err.Error()
	} else {
		report.State = StateDone
	}

	s.mu.Lock()
	snap := *report
	s.last = &snap
	s.running = false
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("catalogue sync failed")
		return report, err
	}
	log.Info().
		Int("immunizations", report.Immunizations).
		Int("medications", report.Medications).
		Int("lot_numbers", report.LotNumbers).
		Msg("catalogue sync completed")
	return report, nil
}

func (s *Syncer) run(ctx context.Context, report *RunReport) error {
	baseURL, err := s.settings.BaseURL(ctx, s.baseURL)
	if err != nil {
		return &PersistenceError{Op: "read base url property", Err: err}
	}

	s.setState(report, StateFetching)
	body, err := s.client.Fetch(ctx, baseURL)
	if err != nil {
		s.auditor.LogDetail(ctx, audit.ActionDownloadError, "", err.Error())
		return err
	}

	s.setState(report, StateParsing)
	bundle, err := fhir.ParseBundle(body)
	if err != nil {
		s.auditor.LogDetail(ctx, audit.ActionDownloadError, "", err.Error())
		return err
	}
	s.auditor.Log(ctx, audit.ActionDownloadReceived, bundle.ID)

	extractor := NewExtractor(baseURL)
	xref := NewCrossReferenceIndex()

	s.setState(report, StateClearing)
	if err := s.medications.RemoveAll(ctx); err != nil {
		return &PersistenceError{Op: "clear medications", Err: err}
	}
	if err := s.immunizations.RemoveAll(ctx); err != nil {
		return &PersistenceError{Op: "clear immunizations", Err: err}
	}

	s.setState(report, StateLoadingGeneric)
	for _, entry := range bundle.EntriesOfKind(fhir.KindGenericValueSet) {
		vs, err := entry.AsValueSet()
		if err != nil {
			return err
		}
		if err := s.saveImmunizations(ctx, report, extractor.GenericImmunizations(vs)); err != nil {
			return err
		}
	}

	s.setState(report, StateLoadingBrand)
	for _, entry := range bundle.EntriesOfKind(fhir.KindBrandValueSet) {
		vs, err := entry.AsValueSet()
		if err != nil {
			return err
		}
		if err := s.saveImmunizations(ctx, report, extractor.BrandImmunizations(vs, xref)); err != nil {
			return err
		}
	}

	// The brand pass must have populated the cross-reference index before
	// any medication is processed.
	s.setState(report, StateLoadingMedication)
	for _, entry := range bundle.EntriesOfKind(fhir.KindMedicationBundle) {
		nested, err := entry.AsBundle()
		if err != nil {
			return err
		}
		if err := s.saveMedications(ctx, report, extractor.Medications(nested, xref, s.now())); err != nil {
			return err
		}
	}

	s.setState(report, StateLoadingSites)
	if err := s.replaceLookup(ctx, report, bundle, extractor, fhir.KindAnatomicalSiteValueSet,
		"AnatomicalSite", "Anatomical Site", "Anatomical Sites from CVC"); err != nil {
		return err
	}

	s.setState(report, StateLoadingRoutes)
	if err := s.replaceLookup(ctx, report, bundle, extractor, fhir.KindRouteValueSet,
		"RouteOfAdmin", "Routes of Administration", "Routes of Administration from CVC"); err != nil {
		return err
	}

	s.setState(report, StateRecordingWatermark)
	runTime := s.now()
	if err := s.settings.RecordLastUpdated(ctx, runTime); err != nil {
		return &PersistenceError{Op: "record last updated", Err: err}
	}
	if err := s.settings.EnsureFirstSyncDate(ctx, runTime); err != nil {
		return &PersistenceError{Op: "record first sync date", Err: err}
	}
	return nil
}

func (s *Syncer) saveImmunizations(ctx context.Context, report *RunReport, imms []*Immunization) error {
	for _, imm := range imms {
		if err := s.immunizations.Create(ctx, imm); err != nil {
			return &PersistenceError{Op: "save immunization " + imm.ConceptID, Err: err}
		}
		s.auditor.Log(ctx, audit.ActionSaveImmunization, imm.ID.String())
		report.Immunizations++
	}
	return nil
}

func (s *Syncer) saveMedications(ctx context.Context, report *RunReport, meds []*Medication) error {
	for _, med := range meds {
		// Parent first so the child rows have an id to reference.
		if err := s.medications.Create(ctx, med); err != nil {
			return &PersistenceError{Op: "save medication", Err: err}
		}
		for i := range med.LotNumbers {
			if err := s.medications.AddLotNumber(ctx, med.ID, &med.LotNumbers[i]); err != nil {
				return &PersistenceError{Op: "save lot number", Err: err}
			}
			report.LotNumbers++
		}
		for i := range med.ProductIdentifiers {
			if err := s.medications.AddProductIdentifier(ctx, med.ID, &med.ProductIdentifiers[i]); err != nil {
				return &PersistenceError{Op: "save product identifier", Err: err}
			}
			report.ProductIdentifiers++
		}
		s.auditor.Log(ctx, audit.ActionSaveMedication, med.ID.String())
		report.Medications++
	}
	return nil
}

func (s *Syncer) replaceLookup(ctx context.Context, report *RunReport, bundle *fhir.Bundle,
	extractor *Extractor, kind fhir.ResourceKind, name, title, description string) error {
	for _, entry := range bundle.EntriesOfKind(kind) {
		vs, err := entry.AsValueSet()
		if err != nil {
			return err
		}
		items := extractor.LookupItems(vs)
		if err := s.lookups.Replace(ctx, name, title, description, items); err != nil {
			return &PersistenceError{Op: "replace lookup list " + name, Err: err}
		}
		report.LookupItems += len(items)
	}
	return nil
}

func (s *Syncer) setState(report *RunReport, state RunState) {
	report.State = state
	s.publish(report)
	log.Debug().Str("state", string(state)).Msg("catalogue sync stage")
}

// publish stores a copy of the run-local report as the latest status. The
// stored snapshot is never mutated afterwards.
func (s *Syncer) publish(report *RunReport) {
	s.mu.Lock()
	snap := *report
	s.last = &snap
	s.mu.Unlock()
}
