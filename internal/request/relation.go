package request

// RelationID identifies one relation within a tenant.
type RelationID struct {
	RelationID string `mapstructure:"relation_id"`
	TenantID   string `mapstructure:"tenant_id"`
}

func (r *RelationID) Validate(defaultTenant string) error {
	if err := validateRelationID("relation_id", r.RelationID); err != nil {
		return err
	}
	r.RelationID = ExtractID(r.RelationID)
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// Tenant is the minimal request for tenant-scoped configuration lookups.
type Tenant struct {
	TenantID string `mapstructure:"tenant_id"`
}

func (r *Tenant) Validate(defaultTenant string) error {
	return normalizeTenant(&r.TenantID, defaultTenant)
}
