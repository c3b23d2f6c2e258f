package request

import (
	"fmt"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// MergeActivities retrieves merge events from the activity log within a
// timestamp window.
type MergeActivities struct {
	TimestampGT int64    `mapstructure:"timestamp_gt"`
	EventTypes  []string `mapstructure:"event_types"`
	TimestampLT int64    `mapstructure:"timestamp_lt"`
	EntityType  string   `mapstructure:"entity_type"`
	User        string   `mapstructure:"user"`
	TenantID    string   `mapstructure:"tenant_id"`
	Offset      int      `mapstructure:"offset"`
	MaxResults  int      `mapstructure:"max_results"`
}

func (r *MergeActivities) Validate(defaultTenant string) error {
	if r.TimestampGT <= 0 {
		return errors.Validation("timestamp_gt", "must be a positive integer")
	}
	if r.TimestampLT != 0 {
		if r.TimestampLT <= 0 {
			return errors.Validation("timestamp_lt", "must be a positive integer")
		}
		if r.TimestampLT <= r.TimestampGT {
			return errors.Validation("timestamp_lt", "must be greater than timestamp_gt")
		}
	}

	if len(r.EntityType) > MaxEntityTypeLength {
		return errors.Validation("entity_type", fmt.Sprintf("must be at most %d characters", MaxEntityTypeLength))
	}

	if r.MaxResults == 0 {
		r.MaxResults = MaxResultsLimit
	}
	// Out-of-range page sizes are clamped, not rejected.
	if r.MaxResults < 1 {
		r.MaxResults = 1
	}
	if r.MaxResults > MaxResultsLimit {
		r.MaxResults = MaxResultsLimit
	}
	if r.Offset < 0 {
		return errors.Validation("offset", "must be non-negative")
	}

	return normalizeTenant(&r.TenantID, defaultTenant)
}
