package request

import (
	"fmt"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// matchPageLimit caps the per-call page size of match listing operations.
const matchPageLimit = 10

// MatchScore asks for entities whose potential-match score falls inside an
// inclusive range.
type MatchScore struct {
	StartMatchScore int    `mapstructure:"start_match_score"`
	EndMatchScore   int    `mapstructure:"end_match_score"`
	EntityType      string `mapstructure:"entity_type"`
	TenantID        string `mapstructure:"tenant_id"`
	MaxResults      int    `mapstructure:"max_results"`
	Offset          int    `mapstructure:"offset"`
}

func (r *MatchScore) Validate(defaultTenant string) error {
	if r.StartMatchScore < 0 || r.StartMatchScore > 100 {
		return errors.Validation("start_match_score", "must be between 0 and 100")
	}
	if r.EndMatchScore < 0 || r.EndMatchScore > 100 {
		return errors.Validation("end_match_score", "must be between 0 and 100")
	}
	if r.EndMatchScore == 0 && r.StartMatchScore == 0 {
		r.EndMatchScore = 100
	}
	if r.StartMatchScore > r.EndMatchScore {
		return errors.Validation("start_match_score", "must be less than or equal to end_match_score")
	}

	if r.EntityType == "" {
		r.EntityType = "Individual"
	}
	if len(r.EntityType) > MaxEntityTypeLength {
		return errors.Validation("entity_type", fmt.Sprintf("must be at most %d characters", MaxEntityTypeLength))
	}

	if r.MaxResults == 0 {
		r.MaxResults = matchPageLimit
	}
	if r.MaxResults < 1 {
		return errors.Validation("max_results", "must be a positive integer")
	}
	if r.MaxResults > matchPageLimit {
		r.MaxResults = matchPageLimit
	}
	if err := validateWindow(r.Offset, r.MaxResults); err != nil {
		return err
	}

	return normalizeTenant(&r.TenantID, defaultTenant)
}

// ConfidenceLevel asks for entities with potential matches in a named
// confidence band.
type ConfidenceLevel struct {
	ConfidenceLevel string `mapstructure:"confidence_level"`
	EntityType      string `mapstructure:"entity_type"`
	TenantID        string `mapstructure:"tenant_id"`
	MaxResults      int    `mapstructure:"max_results"`
	Offset          int    `mapstructure:"offset"`
}

func (r *ConfidenceLevel) Validate(defaultTenant string) error {
	if r.ConfidenceLevel == "" {
		r.ConfidenceLevel = "Low confidence"
	}
	if r.EntityType == "" {
		r.EntityType = "Individual"
	}
	if len(r.EntityType) > MaxEntityTypeLength {
		return errors.Validation("entity_type", fmt.Sprintf("must be at most %d characters", MaxEntityTypeLength))
	}

	if r.MaxResults == 0 {
		r.MaxResults = matchPageLimit
	}
	if r.MaxResults < 1 {
		return errors.Validation("max_results", "must be a positive integer")
	}
	if r.MaxResults > matchPageLimit {
		r.MaxResults = matchPageLimit
	}
	if err := validateWindow(r.Offset, r.MaxResults); err != nil {
		return err
	}

	return normalizeTenant(&r.TenantID, defaultTenant)
}

// TotalMatches counts entities with more than MinMatches potential matches.
// The same shape serves the overall total and the per-entity-type facets.
type TotalMatches struct {
	MinMatches int    `mapstructure:"min_matches"`
	TenantID   string `mapstructure:"tenant_id"`
}

func (r *TotalMatches) Validate(defaultTenant string) error {
	if r.MinMatches < 0 {
		return errors.Validation("min_matches", "must be a non-negative integer")
	}
	return normalizeTenant(&r.TenantID, defaultTenant)
}

// EntityMatches asks for the transitive potential matches of one entity.
type EntityMatches struct {
	EntityID   string `mapstructure:"entity_id"`
	TenantID   string `mapstructure:"tenant_id"`
	MaxResults int    `mapstructure:"max_results"`
}

func (r *EntityMatches) Validate(defaultTenant string) error {
	if err := validateEntityID("entity_id", r.EntityID); err != nil {
		return err
	}
	r.EntityID = ExtractID(r.EntityID)

	if r.MaxResults == 0 {
		r.MaxResults = 25
	}
	// Out-of-range page sizes are clamped, not rejected.
	if r.MaxResults < 1 {
		r.MaxResults = 1
	}
	if r.MaxResults > MaxResultsLimit {
		r.MaxResults = MaxResultsLimit
	}

	return normalizeTenant(&r.TenantID, defaultTenant)
}
