package connection

import "fmt"

// Category groups connectors by the vertical they integrate with.
type Category string

const (
	CategoryFileStorage Category = "filestorage"
	CategoryTicketing   Category = "ticketing"
	CategoryCRM         Category = "crm"
	CategoryATS         Category = "ats"
	CategoryHRIS        Category = "hris"
	CategoryAccounting  Category = "accounting"
)

// ConnectorConfig describes one supported connector: the API namespace its
// requests are routed under and the vertical it belongs to.
type ConnectorConfig struct {
	Type      string
	Category  Category
	Namespace string
}

// connectorTable is the closed set of supported connector types. It is
// consulted once per connection, never indexed dynamically by caller input
// beyond this lookup.
var connectorTable = map[string]ConnectorConfig{
	"google_drive": {Type: "google_drive", Category: CategoryFileStorage, Namespace: "filestorage"},
	"dropbox":      {Type: "dropbox", Category: CategoryFileStorage, Namespace: "filestorage"},
	"box":          {Type: "box", Category: CategoryFileStorage, Namespace: "filestorage"},
	"zendesk":      {Type: "zendesk", Category: CategoryTicketing, Namespace: "ticketing"},
	"jira":         {Type: "jira", Category: CategoryTicketing, Namespace: "ticketing"},
	"freshdesk":    {Type: "freshdesk", Category: CategoryTicketing, Namespace: "ticketing"},
	"salesforce":   {Type: "salesforce", Category: CategoryCRM, Namespace: "crm"},
	"hubspot":      {Type: "hubspot", Category: CategoryCRM, Namespace: "crm"},
	"greenhouse":   {Type: "greenhouse", Category: CategoryATS, Namespace: "ats"},
	"lever":        {Type: "lever", Category: CategoryATS, Namespace: "ats"},
	"workday":      {Type: "workday", Category: CategoryHRIS, Namespace: "hris"},
	"bamboohr":     {Type: "bamboohr", Category: CategoryHRIS, Namespace: "hris"},
	"quickbooks":   {Type: "quickbooks", Category: CategoryAccounting, Namespace: "accounting"},
	"xero":         {Type: "xero", Category: CategoryAccounting, Namespace: "accounting"},
}

// ResolveConnector maps a stored connector type to its configuration.
func ResolveConnector(connectorType string) (ConnectorConfig, error) {
	cfg, ok := connectorTable[connectorType]
	if !ok {
		return ConnectorConfig{}, fmt.Errorf("%w: %q", ErrUnknownConnector, connectorType)
	}
	return cfg, nil
}
