package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/request"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// defaultMergeEventTypes are the activity event kinds that represent a
// completed merge.
var defaultMergeEventTypes = []string{
	"ENTITIES_MERGED_MANUALLY",
	"ENTITIES_MERGED",
	"ENTITIES_MERGED_ON_THE_FLY",
}

// mergeActivitiesFilter builds the AND-joined activity log filter: the
// timestamp window, an OR-group over event types, and optional entity type
// and user clauses.
func mergeActivitiesFilter(req *request.MergeActivities) string {
	parts := []string{fmt.Sprintf("gt(timestamp,%d)", req.TimestampGT)}

	if req.TimestampLT != 0 {
		parts = append(parts, fmt.Sprintf("lt(timestamp,%d)", req.TimestampLT))
	}

	eventTypes := req.EventTypes
	if eventTypes == nil {
		eventTypes = defaultMergeEventTypes
	}
	var typeClauses []string
	for _, et := range eventTypes {
		typeClauses = append(typeClauses, fmt.Sprintf("equals(items.data.type,'%s')", et))
	}
	switch len(typeClauses) {
	case 0:
	case 1:
		parts = append(parts, typeClauses[0])
	default:
		parts = append(parts, "("+strings.Join(typeClauses, " OR ")+")")
	}

	if req.EntityType != "" {
		parts = append(parts, fmt.Sprintf("equals(items.objectType,'configuration/entityTypes/%s')", req.EntityType))
	}
	if req.User != "" {
		parts = append(parts, fmt.Sprintf("equals(user,'%s')", req.User))
	}

	return strings.Join(parts, " AND ")
}

// getMergeActivities lists merge events from the tenant's activity log.
func (r *Registry) getMergeActivities(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.MergeActivities
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("activities", reltio.FamilyAPI, req.TenantID),
		Params: map[string]string{
			"filter": mergeActivitiesFilter(&req),
			"offset": strconv.Itoa(req.Offset),
			"max":    strconv.Itoa(req.MaxResults),
		},
	})
	if err != nil {
		// The activity log reports a connection-security failure as an
		// authorization problem, unlike every other tool.
		if errors.Is(err, errors.ErrCodeSecurity) {
			return nil, nil, errors.New(errors.ErrCodeAuthorization, "Security requirements not met")
		}
		return nil, nil, apiFailure(err, failureText{
			notFound: "Activities resource not found",
			fallback: "Failed to retrieve activity events from Reltio API",
		})
	}

	out, err := renderYAML(result)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while retrieving merge activities")
	}

	var activityIDs []string
	for _, raw := range asList(result) {
		if activity := asMap(raw); activity != nil {
			activityIDs = append(activityIDs, stringField(activity, "uri"))
		}
	}
	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"get_merge_activities_tool : MCP server successfully fetched merge activities, merge activities IDs: %s",
			strings.Join(activityIDs, ", ")),
	}
	return out, audit, nil
}
