// Package fhir holds the subset of the FHIR R4 document model that the
// vaccine catalogue bundle uses, plus the order-preserving bundle parser.
// The source feed is externally controlled and loosely typed, so every
// field the extractors do not recognize is simply carried or ignored.
package fhir

import (
	"strconv"
	"strings"
)

// Coding is a single coded value from a code system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept is a set of codings plus optional free text.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// CodingForSystem returns the first coding whose system matches, or nil.
func (c CodeableConcept) CodingForSystem(system string) *Coding {
	for i := range c.Coding {
		if c.Coding[i].System == system {
			return &c.Coding[i]
		}
	}
	return nil
}

// Extension is a URL-keyed structured attribute attached to a concept or
// resource. The catalogue feed nests extensions one level inside plural
// "...s" container extensions, so an Extension carries its own children.
type Extension struct {
	URL                  string           `json:"url"`
	Extension            []Extension      `json:"extension,omitempty"`
	ValueString          *string          `json:"valueString,omitempty"`
	ValueCode            *string          `json:"valueCode,omitempty"`
	ValueBoolean         *bool            `json:"valueBoolean,omitempty"`
	ValueInteger         *int             `json:"valueInteger,omitempty"`
	ValueDecimal         *float64         `json:"valueDecimal,omitempty"`
	ValueDate            *string          `json:"valueDate,omitempty"`
	ValueDateTime        *string          `json:"valueDateTime,omitempty"`
	ValueCodeableConcept *CodeableConcept `json:"valueCodeableConcept,omitempty"`
}

// Primitive returns the extension's value[x] as a string when it carries a
// primitive value, mirroring how the feed mixes valueString/valueDecimal/
// valueDate for fields like dose sizes and expiry dates.
func (e Extension) Primitive() string {
	switch {
	case e.ValueString != nil:
		return *e.ValueString
	case e.ValueCode != nil:
		return *e.ValueCode
	case e.ValueDate != nil:
		return *e.ValueDate
	case e.ValueDateTime != nil:
		return *e.ValueDateTime
	case e.ValueBoolean != nil:
		return strconv.FormatBool(*e.ValueBoolean)
	case e.ValueInteger != nil:
		return strconv.Itoa(*e.ValueInteger)
	case e.ValueDecimal != nil:
		return strconv.FormatFloat(*e.ValueDecimal, 'f', -1, 64)
	}
	return ""
}

// Each returns the nested child extensions with the given URL, used to
// descend into plural container extensions.
func (e Extension) Each(url string) []Extension {
	var out []Extension
	for _, child := range e.Extension {
		if child.URL == url {
			out = append(out, child)
		}
	}
	return out
}

// Handlers maps an extension URL to its handler. Unknown URLs are no-ops
// by construction: Visit only dispatches URLs present in the table.
type Handlers map[string]func(Extension)

// Visit walks a list of extensions and dispatches each to its registered
// handler, if any.
func Visit(exts []Extension, handlers Handlers) {
	for _, ext := range exts {
		if h, ok := handlers[ext.URL]; ok {
			h(ext)
		}
	}
}

// ValueSet is the compose/include/concept slice of a FHIR ValueSet.
type ValueSet struct {
	ResourceType string          `json:"resourceType"`
	ID           string          `json:"id,omitempty"`
	Compose      ValueSetCompose `json:"compose"`
}

type ValueSetCompose struct {
	Include []ConceptSet `json:"include,omitempty"`
}

// ConceptSet is one compose.include block: a code system reference plus
// its enumerated concepts.
type ConceptSet struct {
	System  string    `json:"system,omitempty"`
	Version string    `json:"version,omitempty"`
	Concept []Concept `json:"concept,omitempty"`
}

// Concept is one coded entry within a value set.
type Concept struct {
	Code        string        `json:"code"`
	Display     string        `json:"display,omitempty"`
	Designation []Designation `json:"designation,omitempty"`
	Extension   []Extension   `json:"extension,omitempty"`
}

// Designation is a labeled textual representation of a concept.
type Designation struct {
	Language string  `json:"language,omitempty"`
	Use      *Coding `json:"use,omitempty"`
	Value    string  `json:"value"`
}

// Medication is the slice of a FHIR Medication resource the medication
// pass reads.
type Medication struct {
	ResourceType string          `json:"resourceType"`
	ID           string          `json:"id,omitempty"`
	Status       string          `json:"status,omitempty"`
	Code         CodeableConcept `json:"code"`
	Extension    []Extension     `json:"extension,omitempty"`
}

// IDPart returns the bare logical id of the medication, stripping any
// resource-type prefix or _history suffix the feed may include.
func (m Medication) IDPart() string {
	return idPart(m.ID)
}

func idPart(id string) string {
	if id == "" {
		return ""
	}
	segs := strings.Split(id, "/")
	for i, s := range segs {
		if s == "_history" && i > 0 {
			return segs[i-1]
		}
	}
	return segs[len(segs)-1]
}
