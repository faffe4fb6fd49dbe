package fhir

import (
	"encoding/json"
	"testing"
)

func strp(s string) *string { return &s }

func TestVisitDispatchesKnownURLsOnly(t *testing.T) {
	exts := []Extension{
		{URL: "https://example.org/known", ValueString: strp("a")},
		{URL: "https://example.org/unknown", ValueString: strp("b")},
		{URL: "https://example.org/known", ValueString: strp("c")},
	}

	var seen []string
	Visit(exts, Handlers{
		"https://example.org/known": func(e Extension) {
			seen = append(seen, e.Primitive())
		},
	})

	if len(seen) != 2 || seen[0] != "a" || seen[1] != "c" {
		t.Errorf("seen = %v", seen)
	}
}

func TestEachDescendsOneLevel(t *testing.T) {
	container := Extension{
		URL: "https://example.org/lots",
		Extension: []Extension{
			{URL: "https://example.org/lot", ValueString: strp("A1")},
			{URL: "https://example.org/other"},
			{URL: "https://example.org/lot", ValueString: strp("A2")},
		},
	}

	lots := container.Each("https://example.org/lot")
	if len(lots) != 2 {
		t.Fatalf("got %d lots, want 2", len(lots))
	}
	if lots[1].Primitive() != "A2" {
		t.Errorf("second lot = %q", lots[1].Primitive())
	}
	if got := container.Each("https://example.org/absent"); got != nil {
		t.Errorf("absent url returned %v", got)
	}
}

func TestPrimitiveCoversValueTypes(t *testing.T) {
	dec := 0.5
	b := true
	n := 3
	cases := []struct {
		name string
		ext  Extension
		want string
	}{
		{"string", Extension{ValueString: strp("x")}, "x"},
		{"code", Extension{ValueCode: strp("active")}, "active"},
		{"date", Extension{ValueDate: strp("2031-01-02")}, "2031-01-02"},
		{"datetime", Extension{ValueDateTime: strp("2031-01-02T00:00:00Z")}, "2031-01-02T00:00:00Z"},
		{"bool", Extension{ValueBoolean: &b}, "true"},
		{"int", Extension{ValueInteger: &n}, "3"},
		{"decimal", Extension{ValueDecimal: &dec}, "0.5"},
		{"empty", Extension{}, ""},
	}
	for _, tc := range cases {
		if got := tc.ext.Primitive(); got != tc.want {
			t.Errorf("%s: Primitive() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCodingForSystem(t *testing.T) {
	cc := CodeableConcept{Coding: []Coding{
		{System: "http://hl7.org/fhir/NamingSystem/ca-hc-din", Code: "02420643", Display: "AGRIFLU"},
		{System: "http://snomed.info/sct", Code: "19291000087108"},
	}}
	if c := cc.CodingForSystem("http://snomed.info/sct"); c == nil || c.Code != "19291000087108" {
		t.Errorf("snomed coding = %+v", c)
	}
	if c := cc.CodingForSystem("http://www.gs1.org/gtin"); c != nil {
		t.Errorf("expected nil, got %+v", c)
	}
}

func TestExtensionDecodesNestedTree(t *testing.T) {
	raw := `{
      "url": "https://nvc-cnv.canada.ca/v1/StructureDefinition/nvc-lots",
      "extension": [{
        "url": "https://nvc-cnv.canada.ca/v1/StructureDefinition/nvc-lot",
        "extension": [
          {"url": "https://nvc-cnv.canada.ca/v1/StructureDefinition/nvc-lot-number", "valueString": "K5332"},
          {"url": "https://nvc-cnv.canada.ca/v1/StructureDefinition/nvc-expiry-date", "valueDate": "2031-06-30"}
        ]
      }]
    }`
	var ext Extension
	if err := json.Unmarshal([]byte(raw), &ext); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	lots := ext.Each("https://nvc-cnv.canada.ca/v1/StructureDefinition/nvc-lot")
	if len(lots) != 1 {
		t.Fatalf("got %d lot extensions", len(lots))
	}
	if len(lots[0].Extension) != 2 {
		t.Fatalf("lot children = %d, want 2", len(lots[0].Extension))
	}
	if lots[0].Extension[1].Primitive() != "2031-06-30" {
		t.Errorf("expiry = %q", lots[0].Extension[1].Primitive())
	}
}
