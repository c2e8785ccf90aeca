package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adaptive/scheduler/internal/core/domain"
)

func TestEndpointConfigValidateRejectsEmptyServer(t *testing.T) {
	ec := EndpointConfig{ID: "ep-1", Server: ""}
	err := ec.Validate()
	if err == nil {
		t.Fatal("expected an error for an empty server address")
	}
	var inputErr *domain.InputError
	if !asInputError(err, &inputErr) {
		t.Fatalf("expected *domain.InputError, got %T", err)
	}
}

func TestEndpointConfigValidateRejectsMissingIdentity(t *testing.T) {
	ec := EndpointConfig{Server: "proxy.example.net:8080"}
	if err := ec.Validate(); err == nil {
		t.Fatal("expected an error when neither id nor name is set")
	}
}

func TestEndpointConfigValidateAcceptsMinimalEntry(t *testing.T) {
	ec := EndpointConfig{ID: "ep-1", Server: "proxy.example.net:8080"}
	if err := ec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadEndpointsFileParsesStandaloneDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "endpoints.yaml")
	doc := `
endpoints:
  - id: fleet-1
    server: 10.0.0.1:8080
    type: https
  - id: fleet-2
    server: 10.0.0.2:8080
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	got, err := LoadEndpointsFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(got))
	}
	if got[0].ID != "fleet-1" || got[1].ID != "fleet-2" {
		t.Fatalf("unexpected endpoint ids: %+v", got)
	}
}

func TestLoadEndpointsFileMissingFileErrors(t *testing.T) {
	if _, err := LoadEndpointsFile("/nonexistent/endpoints.yaml"); err == nil {
		t.Fatal("expected an error for a missing endpoints file")
	}
}

func asInputError(err error, target **domain.InputError) bool {
	if ie, ok := err.(*domain.InputError); ok {
		*target = ie
		return true
	}
	return false
}
