package request

import "github.com/reltio-open/reltio-mcp-server/pkg/errors"

// EntityDetails retrieves one entity, optionally projecting it down to an
// allow-list of top-level fields and their sub-fields.
type EntityDetails struct {
	EntityID    string              `mapstructure:"entity_id"`
	FilterField map[string][]string `mapstructure:"filter_field"`
	TenantID    string              `mapstructure:"tenant_id"`
}

func (r *EntityDetails) Validate(defaultTenant string) error {
	if err := validateEntityID("entity_id", r.EntityID); err != nil {
		return err
	}
	r.EntityID = ExtractID(r.EntityID)
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// DataModel projects the business configuration down to the requested
// object type collections. An empty list means all of them.
type DataModel struct {
	ObjectTypes []string `mapstructure:"object_type"`
	TenantID    string   `mapstructure:"tenant_id"`
}

func (r *DataModel) Validate(defaultTenant string) error {
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// TypeDefinition looks up one type definition by its configuration URI,
// e.g. configuration/entityTypes/Individual.
type TypeDefinition struct {
	TypeURI  string
	TenantID string
}

func (r *TypeDefinition) Validate(defaultTenant string) error {
	if r.TypeURI == "" {
		return errors.Validation("type", "a configuration type URI is required")
	}
	return normalizeTenant(&r.TenantID, defaultTenant)
}
