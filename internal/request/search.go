package request

import (
	"fmt"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// EntitySearch is the advanced entity search request. Defaults mirror the
// public search surface: OV-only values, active entities, uri+label
// projection.
type EntitySearch struct {
	Query      string `mapstructure:"query"`
	Filter     string `mapstructure:"filter"`
	EntityType string `mapstructure:"entity_type"`
	TenantID   string `mapstructure:"tenant_id"`
	MaxResults int    `mapstructure:"max_results"`
	Sort       string `mapstructure:"sort"`
	Order      string `mapstructure:"order"`
	Select     string `mapstructure:"select"`
	Options    string `mapstructure:"options"`
	Activeness string `mapstructure:"activeness"`
	Offset     int    `mapstructure:"offset"`
}

func (r *EntitySearch) Validate(defaultTenant string) error {
	if len(r.Query) > MaxQueryLength {
		return errors.Validation("query", fmt.Sprintf("must be at most %d characters", MaxQueryLength))
	}
	r.Query = Sanitize(r.Query)

	filter, err := validateFilter(r.Filter)
	if err != nil {
		return err
	}
	r.Filter = filter

	if len(r.EntityType) > MaxEntityTypeLength {
		return errors.Validation("entity_type", fmt.Sprintf("must be at most %d characters", MaxEntityTypeLength))
	}

	if r.MaxResults == 0 {
		r.MaxResults = 10
	}
	if r.MaxResults < 1 || r.MaxResults > MaxResultsLimit {
		return errors.Validation("max_results", fmt.Sprintf("must be between 1 and %d", MaxResultsLimit))
	}
	if err := validateWindow(r.Offset, r.MaxResults); err != nil {
		return err
	}

	switch r.Order {
	case "":
		r.Order = "asc"
	case "asc", "desc", "ASC", "DESC", "Asc", "Desc":
		r.Order = normalizeOrder(r.Order)
	default:
		return errors.Validation("order", "must be 'asc' or 'desc'")
	}

	if r.Select == "" {
		r.Select = "uri,label"
	}
	if r.Options == "" {
		r.Options = "ovOnly"
	}
	if r.Activeness == "" {
		r.Activeness = "active"
	}

	return normalizeTenant(&r.TenantID, defaultTenant)
}

func normalizeOrder(order string) string {
	switch order {
	case "asc", "ASC", "Asc":
		return "asc"
	default:
		return "desc"
	}
}
