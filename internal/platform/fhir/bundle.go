package fhir

import (
	"encoding/json"
	"fmt"
)

// ResourceKind classifies a bundle entry for the sync pipeline. The feed
// disambiguates same-type resources by id ("Generic" and "Tradename" are
// both ValueSets; "Tradename" is also the id of the nested medication
// bundle).
type ResourceKind int

const (
	KindOther ResourceKind = iota
	KindGenericValueSet
	KindBrandValueSet
	KindAnatomicalSiteValueSet
	KindRouteValueSet
	KindMedicationBundle
)

func (k ResourceKind) String() string {
	switch k {
	case KindGenericValueSet:
		return "generic-value-set"
	case KindBrandValueSet:
		return "brand-value-set"
	case KindAnatomicalSiteValueSet:
		return "anatomical-site-value-set"
	case KindRouteValueSet:
		return "route-value-set"
	case KindMedicationBundle:
		return "medication-bundle"
	default:
		return "other"
	}
}

// MalformedDocumentError reports a document that is not valid JSON or lacks
// the expected Bundle envelope.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed catalogue document: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed catalogue document: %s", e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// Bundle is the top-level catalogue envelope: an ordered sequence of raw
// resource entries. Entry order is preserved exactly as received; the sync
// orchestrator sequences passes by resource kind, not arrival order.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

type resourceHeader struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

// Kind classifies the entry's resource by type and id. Entries with no
// resource or an unreadable header classify as KindOther.
func (e BundleEntry) Kind() ResourceKind {
	if len(e.Resource) == 0 {
		return KindOther
	}
	var h resourceHeader
	if err := json.Unmarshal(e.Resource, &h); err != nil {
		return KindOther
	}
	id := idPart(h.ID)
	switch h.ResourceType {
	case "ValueSet":
		switch id {
		case "Generic":
			return KindGenericValueSet
		case "Tradename":
			return KindBrandValueSet
		case "AnatomicalSite":
			return KindAnatomicalSiteValueSet
		case "RouteOfAdmin":
			return KindRouteValueSet
		}
	case "Bundle":
		if id == "Tradename" {
			return KindMedicationBundle
		}
	}
	return KindOther
}

// ResourceType returns the entry's resourceType, or "" when unreadable.
func (e BundleEntry) ResourceType() string {
	var h resourceHeader
	if err := json.Unmarshal(e.Resource, &h); err != nil {
		return ""
	}
	return h.ResourceType
}

// AsValueSet decodes the entry as a ValueSet resource.
func (e BundleEntry) AsValueSet() (*ValueSet, error) {
	var vs ValueSet
	if err := json.Unmarshal(e.Resource, &vs); err != nil {
		return nil, &MalformedDocumentError{Reason: "decode ValueSet entry", Err: err}
	}
	return &vs, nil
}

// AsBundle decodes the entry as a nested Bundle resource.
func (e BundleEntry) AsBundle() (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(e.Resource, &b); err != nil {
		return nil, &MalformedDocumentError{Reason: "decode nested Bundle entry", Err: err}
	}
	return &b, nil
}

// AsMedication decodes the entry as a Medication resource.
func (e BundleEntry) AsMedication() (*Medication, error) {
	var m Medication
	if err := json.Unmarshal(e.Resource, &m); err != nil {
		return nil, &MalformedDocumentError{Reason: "decode Medication entry", Err: err}
	}
	return &m, nil
}

// EntriesOfKind returns the bundle's entries matching the given kind, in
// document order.
func (b *Bundle) EntriesOfKind(kind ResourceKind) []BundleEntry {
	var out []BundleEntry
	for _, e := range b.Entry {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// ParseBundle decodes raw catalogue document text into a Bundle, failing
// with MalformedDocumentError when the text is not valid JSON or does not
// carry the Bundle envelope.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &MalformedDocumentError{Reason: "invalid JSON", Err: err}
	}
	if b.ResourceType != "Bundle" {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("expected resourceType Bundle, got %q", b.ResourceType)}
	}
	return &b, nil
}
