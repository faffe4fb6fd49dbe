package catalogue

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClientSendsConfiguredHeaders(t *testing.T) {
	var gotAccept, gotAppDesc, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAppDesc = r.Header.Get("x-app-desc")
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{
		Accept:     "application/json+fhir",
		AppDesc:    "OSCAREMR",
		BundlePath: "/Bundle/NVC",
		Timeout:    5 * time.Second,
	})
	body, err := client.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{}` {
		t.Errorf("body = %q", body)
	}
	if gotAccept != "application/json+fhir" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotAppDesc != "OSCAREMR" {
		t.Errorf("x-app-desc = %q", gotAppDesc)
	}
	if gotPath != "/Bundle/NVC" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestClientNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{BundlePath: "/Bundle/NVC", Timeout: 5 * time.Second})
	_, err := client.Fetch(context.Background(), srv.URL)

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %T, want TransportError", err)
	}
	if terr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", terr.StatusCode)
	}
}

func TestClientNetworkFailureIsTransportError(t *testing.T) {
	client := NewClient(ClientOptions{BundlePath: "/Bundle/NVC", Timeout: time.Second})
	_, err := client.Fetch(context.Background(), "http://127.0.0.1:1")

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %T, want TransportError", err)
	}
}

func TestClientDumpsVerbatimBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resourceType":"Bundle"}`))
	}))
	defer srv.Close()

	dump := filepath.Join(t.TempDir(), "bundle.json")
	client := NewClient(ClientOptions{
		BundlePath: "/Bundle/NVC",
		DumpFile:   dump,
		Timeout:    5 * time.Second,
	})
	if _, err := client.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(dump)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"resourceType":"Bundle"}` {
		t.Errorf("dump = %q", data)
	}
}
