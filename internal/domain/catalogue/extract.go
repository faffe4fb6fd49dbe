package catalogue

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cvc/cvc/internal/domain/lookup"
	"github.com/cvc/cvc/internal/platform/fhir"
)

const (
	picklistUseSystem  = "https://api.cvc.canimmunize.ca/v3/NamingSystem/ca-cvc-display-terms-designation"
	picklistUseCode    = "enClinicianPicklistTerm"
	picklistUseDisplay = "Clinician Tradename Picklist (en)"

	useCodeAbbreviation      = "enAbbreviation"
	useCodeFullySpecified    = "900000000000003001"
	useDisplayFullySpecified = "Fully Specified Name"

	systemDIN    = "http://hl7.org/fhir/NamingSystem/ca-hc-din"
	systemSNOMED = "http://snomed.info/sct"
	systemGTIN   = "http://www.gs1.org/gtin"

	expiryLayout = "2006-01-02"
)

// Extractor turns parsed catalogue resources into store records. Extension
// URLs are namespaced under the feed's base URL, so the extractor is bound
// to the base URL the bundle was fetched from.
type Extractor struct {
	baseURL string
}

func NewExtractor(baseURL string) *Extractor {
	return &Extractor{baseURL: baseURL}
}

func (e *Extractor) structDef(name string) string {
	return e.baseURL + "/StructureDefinition/" + name
}

func (e *Extractor) valueSetSystem(name string) string {
	return e.baseURL + "/ValueSet/" + name
}

// GenericImmunizations builds one generic immunization record per concept
// in the generic value set. Designations without a use coding are logged
// and skipped; the concept itself is kept.
func (e *Extractor) GenericImmunizations(vs *fhir.ValueSet) []*Immunization {
	var out []*Immunization
	for _, include := range vs.Compose.Include {
		for _, cc := range include.Concept {
			imm := &Immunization{ConceptID: cc.Code, IsGeneric: true}
			log.Info().Str("concept_id", cc.Code).Msg("loading names for generic concept")

			var abbreviation, fsnValue string
			var abbreviationSeen, fsnSeen bool
			for _, d := range cc.Designation {
				if d.Use == nil {
					log.Warn().Str("concept_id", cc.Code).Str("value", d.Value).
						Msg("designation without use coding, skipping")
					continue
				}
				name := Name{
					Language:   d.Language,
					UseSystem:  d.Use.System,
					UseCode:    d.Use.Code,
					UseDisplay: d.Use.Display,
				}
				if d.Use.Code == useCodeAbbreviation {
					abbreviation = d.Value
					abbreviationSeen = true
				}
				if d.Use.Display == useDisplayFullySpecified {
					fsnValue = d.Value
					fsnSeen = true
					name.Value = d.Value + " (generic)"
				} else {
					name.Value = d.Value
				}
				imm.Names = append(imm.Names, name)
			}
			if abbreviationSeen {
				value := abbreviation
				if fsnSeen {
					value = fsnValue + " (generic)"
				}
				imm.Names = append(imm.Names, picklistName(value))
			}

			fhir.Visit(cc.Extension, fhir.Handlers{
				e.structDef("nvc-product-status"): func(ext fhir.Extension) {
					if s := e.shelfStatus(ext); s != "" {
						imm.ShelfStatus = &s
					}
				},
				// Recognized but not persisted in this version.
				e.structDef("nvc-concept-last-updated"):      func(fhir.Extension) {},
				e.structDef("nvc-passive-immunizing-agent"):  func(fhir.Extension) {},
				e.structDef("nvc-contains-antigen"):          func(fhir.Extension) {},
				e.structDef("nvc-contains-antigens"):         func(fhir.Extension) {},
				e.structDef("nvc-protects-against-diseases"): func(fhir.Extension) {},
			})

			out = append(out, imm)
		}
	}
	return out
}

// BrandImmunizations builds one brand immunization record per concept in
// the tradename value set and feeds the cross-reference index consumed by
// the medication pass.
func (e *Extractor) BrandImmunizations(vs *fhir.ValueSet, xref *CrossReferenceIndex) []*Immunization {
	var out []*Immunization
	for _, include := range vs.Compose.Include {
		for _, cc := range include.Concept {
			imm := &Immunization{ConceptID: cc.Code, IsGeneric: false}
			log.Info().Str("concept_id", cc.Code).Msg("loading names for brand concept")

			var abbreviation, fullName string
			var abbreviationSeen, fullNameSeen bool
			for _, d := range cc.Designation {
				if d.Use == nil {
					log.Warn().Str("concept_id", cc.Code).Str("value", d.Value).
						Msg("designation without use coding, skipping")
					continue
				}
				if d.Use.Code == useCodeAbbreviation {
					abbreviation = d.Value
					abbreviationSeen = true
				}
				if d.Use.Code == useCodeFullySpecified {
					fullName = d.Value
					fullNameSeen = true
				}
				imm.Names = append(imm.Names, Name{
					Language:   d.Language,
					UseSystem:  d.Use.System,
					UseCode:    d.Use.Code,
					UseDisplay: d.Use.Display,
					Value:      d.Value,
				})
			}
			if abbreviationSeen && fullNameSeen {
				imm.Names = append(imm.Names, picklistName(firstToken(fullName)+" ("+abbreviation+")"))
			}

			var manufacturer, din string
			fhir.Visit(cc.Extension, fhir.Handlers{
				e.structDef("nvc-product-statuses"): func(ext fhir.Extension) {
					for _, statusExt := range ext.Each(e.structDef("nvc-product-status")) {
						if s := e.shelfStatus(statusExt); s != "" {
							imm.ShelfStatus = &s
						}
					}
				},
				e.structDef("nvc-parent-concept"): func(ext fhir.Extension) {
					if ext.ValueCodeableConcept == nil {
						return
					}
					if c := ext.ValueCodeableConcept.CodingForSystem(e.valueSetSystem("Generic")); c != nil {
						parent := c.Code
						imm.ParentConceptID = &parent
					}
				},
				e.structDef("nvc-market-authorization-holders"): func(ext fhir.Extension) {
					for _, holderExt := range ext.Each(e.structDef("nvc-market-authorization-holder")) {
						manufacturer = holderExt.Primitive()
					}
				},
				e.structDef("nvc-typical-dose-sizes"): func(ext fhir.Extension) {
					for _, doseExt := range ext.Each(e.structDef("nvc-typical-dose-size")) {
						dose := doseExt.Primitive()
						imm.TypicalDose = &dose
					}
				},
				e.structDef("nvc-typical-dose-sizes-uom"): func(ext fhir.Extension) {
					for _, uomExt := range ext.Each(e.structDef("nvc-typical-dose-size-uom")) {
						uom := uomExt.Primitive()
						imm.TypicalDoseUnit = &uom
					}
				},
				e.structDef("nvc-strengths"): func(ext fhir.Extension) {
					for _, strExt := range ext.Each(e.structDef("nvc-strength")) {
						strength := strExt.Primitive()
						imm.Strength = &strength
					}
				},
				e.structDef("nvc-route-of-admins"): func(ext fhir.Extension) {
					for _, routeExt := range ext.Each(e.structDef("nvc-route-of-admin")) {
						if routeExt.ValueCodeableConcept == nil {
							continue
						}
						if c := routeExt.ValueCodeableConcept.CodingForSystem(e.valueSetSystem("RouteOfAdmin")); c != nil {
							route := c.Code
							imm.Route = &route
						}
					}
				},
				e.structDef("nvc-dins"): func(ext fhir.Extension) {
					for _, dinExt := range ext.Each(e.structDef("nvc-din")) {
						if dinExt.ValueCodeableConcept == nil {
							continue
						}
						if c := dinExt.ValueCodeableConcept.CodingForSystem(systemDIN); c != nil {
							din = c.Code
						}
					}
				},
			})

			if imm.ConceptID != "" && manufacturer != "" {
				xref.SetManufacturer(imm.ConceptID, manufacturer)
			}
			if imm.ConceptID != "" && din != "" {
				xref.SetDIN(imm.ConceptID, din)
			}

			out = append(out, imm)
		}
	}
	return out
}

// Medications builds one medication record per entry of the nested
// tradename bundle. Manufacturer and DIN come from the cross-reference
// index populated by the brand pass; a medication whose id was never seen
// there simply keeps those fields unset. Lots are retained only when
// their expiry date is strictly after now.
func (e *Extractor) Medications(bundle *fhir.Bundle, xref *CrossReferenceIndex, now time.Time) []*Medication {
	var out []*Medication
	for _, entry := range bundle.Entry {
		med, err := entry.AsMedication()
		if err != nil {
			log.Warn().Err(err).Str("full_url", entry.FullURL).Msg("skipping undecodable medication entry")
			continue
		}

		cm := &Medication{Status: med.Status}
		idPart := med.IDPart()
		log.Debug().Str("id", idPart).Msg("processing medication")

		if m, ok := xref.Manufacturer(idPart); ok {
			cm.ManufacturerDisplay = &m
		}
		if d, ok := xref.DIN(idPart); ok {
			din := d
			display := d
			cm.DIN = &din
			cm.DINDisplayName = &display
		}

		for _, c := range med.Code.Coding {
			switch c.System {
			case systemSNOMED:
				code, display := c.Code, c.Display
				cm.SNOMEDCode = &code
				cm.SNOMEDDisplay = &display
			case systemGTIN:
				cm.ProductIdentifiers = append(cm.ProductIdentifiers, ProductIdentifier{GTIN: c.Code})
			}
		}

		fhir.Visit(med.Extension, fhir.Handlers{
			e.structDef("nvc-market-authorization-holder"): func(ext fhir.Extension) {
				if v := ext.Primitive(); v != "" {
					cm.ManufacturerDisplay = &v
				}
			},
			e.structDef("nvc-product-status"): func(ext fhir.Extension) {
				if s := e.shelfStatus(ext); s != "" {
					cm.Status = s
				}
			},
			e.structDef("nvc-concept-last-updated"): func(fhir.Extension) {},
			e.structDef("nvc-lots"): func(ext fhir.Extension) {
				for _, lotExt := range ext.Each(e.structDef("nvc-lot")) {
					var lotNumber, expiry string
					fhir.Visit(lotExt.Extension, fhir.Handlers{
						e.structDef("nvc-lot-number"): func(inner fhir.Extension) {
							lotNumber = inner.Primitive()
						},
						e.structDef("nvc-expiry-date"): func(inner fhir.Extension) {
							expiry = inner.Primitive()
						},
					})
					expiryDate, err := time.Parse(expiryLayout, expiry)
					if err != nil {
						log.Warn().Err(err).Str("id", idPart).Str("lot_number", lotNumber).
							Msg("dropping lot with unresolvable expiry date")
						continue
					}
					if expiryDate.After(now) {
						cm.LotNumbers = append(cm.LotNumbers, LotNumber{
							LotNumber:  lotNumber,
							ExpiryDate: expiryDate,
						})
					}
				}
			},
		})

		out = append(out, cm)
	}
	return out
}

// LookupItems flattens a lookup value set (anatomical sites, routes) into
// ordered {label, value} pairs. Concept status and last-updated extensions
// are read and discarded.
func (e *Extractor) LookupItems(vs *fhir.ValueSet) []lookup.Item {
	var items []lookup.Item
	for _, include := range vs.Compose.Include {
		for _, cc := range include.Concept {
			fhir.Visit(cc.Extension, fhir.Handlers{
				e.structDef("nvc-concept-status-extension"): func(fhir.Extension) {},
				e.structDef("nvc-concept-last-updated"):     func(fhir.Extension) {},
			})
			items = append(items, lookup.Item{Label: cc.Display, Value: cc.Code})
		}
	}
	return items
}

func (e *Extractor) shelfStatus(ext fhir.Extension) string {
	if ext.ValueCodeableConcept == nil {
		return ""
	}
	if c := ext.ValueCodeableConcept.CodingForSystem(e.valueSetSystem("ShelfStatus")); c != nil {
		return c.Display
	}
	return ""
}

func picklistName(value string) Name {
	return Name{
		Language:   "en",
		UseSystem:  picklistUseSystem,
		UseCode:    picklistUseCode,
		UseDisplay: picklistUseDisplay,
		Value:      value,
	}
}

func firstToken(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}
