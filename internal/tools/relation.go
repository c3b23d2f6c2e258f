package tools

import (
	"context"
	"fmt"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/request"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// getRelationDetails fetches one relation and simplifies its attributes.
func (r *Registry) getRelationDetails(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.RelationID
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("relations/"+req.RelationID, reltio.FamilyAPI, req.TenantID),
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound: fmt.Sprintf("Relation with ID %s not found", req.RelationID),
			fallback: "Failed to retrieve relation details from Reltio API",
		})
	}

	relation := asMap(result)
	if relation != nil {
		relation["attributes"] = reltio.SimplifyAttributes(asMap(relation["attributes"]))
	}

	out, err := renderYAML(result)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while retrieving relation details")
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"get_relation_details_tool : Successfully fetched relation details for relation %s", req.RelationID),
	}
	return out, audit, nil
}
