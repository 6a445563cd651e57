package connection

import (
	"errors"
	"testing"
)

func TestResolveConnectorKnownTypes(t *testing.T) {
	cases := []struct {
		connectorType string
		category      Category
		namespace     string
	}{
		{"google_drive", CategoryFileStorage, "filestorage"},
		{"dropbox", CategoryFileStorage, "filestorage"},
		{"jira", CategoryTicketing, "ticketing"},
		{"salesforce", CategoryCRM, "crm"},
		{"workday", CategoryHRIS, "hris"},
		{"xero", CategoryAccounting, "accounting"},
	}

	for _, tc := range cases {
		cfg, err := ResolveConnector(tc.connectorType)
		if err != nil {
			t.Fatalf("ResolveConnector(%q) returned error: %v", tc.connectorType, err)
		}
		if cfg.Category != tc.category {
			t.Fatalf("connector %q: expected category %q, got %q", tc.connectorType, tc.category, cfg.Category)
		}
		if cfg.Namespace != tc.namespace {
			t.Fatalf("connector %q: expected namespace %q, got %q", tc.connectorType, tc.namespace, cfg.Namespace)
		}
	}
}

func TestResolveConnectorUnknownType(t *testing.T) {
	_, err := ResolveConnector("carrier_pigeon")
	if !errors.Is(err, ErrUnknownConnector) {
		t.Fatalf("expected ErrUnknownConnector, got %v", err)
	}
}
