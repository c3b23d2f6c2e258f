package request

import (
	"fmt"
	"strings"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// EntityID identifies one entity within a tenant. Used by the lookup,
// match and export operations.
type EntityID struct {
	EntityID string `mapstructure:"entity_id"`
	TenantID string `mapstructure:"tenant_id"`
}

// Validate checks the raw inputs, then strips any URI prefix from the
// entity ID.
func (r *EntityID) Validate(defaultTenant string) error {
	if err := validateEntityID("entity_id", r.EntityID); err != nil {
		return err
	}
	r.EntityID = ExtractID(r.EntityID)
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// UpdateEntityAttributes carries a list of attribute update operations.
type UpdateEntityAttributes struct {
	EntityID string                   `mapstructure:"entity_id"`
	Updates  []map[string]interface{} `mapstructure:"updates"`
	TenantID string                   `mapstructure:"tenant_id"`
}

func (r *UpdateEntityAttributes) Validate(defaultTenant string) error {
	if err := validateEntityID("entity_id", r.EntityID); err != nil {
		return err
	}
	r.EntityID = ExtractID(r.EntityID)
	if len(r.Updates) == 0 {
		return errors.Validation("updates", "at least one update operation is required")
	}
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// MergeEntities merges exactly two entities. IDs are normalized to the
// entities/<id> form the _same endpoint expects.
type MergeEntities struct {
	EntityIDs []string `mapstructure:"entity_ids"`
	TenantID  string   `mapstructure:"tenant_id"`
}

func (r *MergeEntities) Validate(defaultTenant string) error {
	if len(r.EntityIDs) != 2 {
		return errors.Validation("entity_ids", "exactly two entity IDs must be provided")
	}
	formatted := make([]string, 0, 2)
	for _, id := range r.EntityIDs {
		if strings.HasPrefix(id, "entities/") {
			formatted = append(formatted, id)
			continue
		}
		formatted = append(formatted, fmt.Sprintf("entities/%s", ExtractID(id)))
	}
	r.EntityIDs = formatted
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// RejectMatch rejects a potential match between a source and target entity.
type RejectMatch struct {
	SourceID string `mapstructure:"source_id"`
	TargetID string `mapstructure:"target_id"`
	TenantID string `mapstructure:"tenant_id"`
}

func (r *RejectMatch) Validate(defaultTenant string) error {
	if err := validateEntityID("source_id", r.SourceID); err != nil {
		return err
	}
	if err := validateEntityID("target_id", r.TargetID); err != nil {
		return err
	}
	r.SourceID = ExtractID(r.SourceID)
	r.TargetID = ExtractID(r.TargetID)
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// UnmergeEntity splits a contributor out of a merged entity. The same
// request shape serves both the single unmerge and the tree unmerge.
type UnmergeEntity struct {
	OriginEntityID      string `mapstructure:"origin_entity_id"`
	ContributorEntityID string `mapstructure:"contributor_entity_id"`
	TenantID            string `mapstructure:"tenant_id"`
}

func (r *UnmergeEntity) Validate(defaultTenant string) error {
	if err := validateEntityID("origin_entity_id", r.OriginEntityID); err != nil {
		return err
	}
	if err := validateEntityID("contributor_entity_id", r.ContributorEntityID); err != nil {
		return err
	}
	r.OriginEntityID = ExtractID(r.OriginEntityID)
	r.ContributorEntityID = ExtractID(r.ContributorEntityID)
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// ExportMergeTree submits an asynchronous crosswalks-tree export job.
type ExportMergeTree struct {
	EmailID  string `mapstructure:"email_id"`
	TenantID string `mapstructure:"tenant_id"`
}

func (r *ExportMergeTree) Validate(defaultTenant string) error {
	if r.EmailID == "" {
		return errors.Validation("email_id", "email address for job notification is required")
	}
	return normalizeTenant(&r.TenantID, defaultTenant)
}
