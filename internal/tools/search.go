package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/request"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

func entityTypeClause(entityType string) string {
	return fmt.Sprintf("equals(type,'configuration/entityTypes/%s')", entityType)
}

// searchEntities runs an advanced entity search. The entity type is folded
// into the filter expression, the uri field is always selected, and results
// come back as a YAML list of either bare URIs or {uri: selected fields}.
func (r *Registry) searchEntities(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.EntitySearch
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	filter := req.Filter
	switch {
	case filter != "" && req.EntityType != "":
		filter = filter + " and " + entityTypeClause(req.EntityType)
	case req.EntityType != "":
		filter = entityTypeClause(req.EntityType)
	}

	sel := req.Select
	if !strings.Contains(sel, "uri") {
		sel = "uri," + sel
	}

	// The search page size is capped harder than other listings.
	max := req.MaxResults
	if max > 10 {
		max = 10
	}

	payload := map[string]interface{}{
		"filter":       filter,
		"select":       sel,
		"max":          max,
		"offset":       req.Offset,
		"scoreEnabled": false,
		"options":      req.Options,
		"activeness":   req.Activeness,
	}
	if req.Sort != "" {
		payload["sort"] = req.Sort
		payload["order"] = req.Order
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/_search", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Body:   payload,
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			fallback: "Failed to retrieve search results from Reltio API",
		})
	}

	filtered := reshapeSearchResults(asList(result), sel)
	out, err := renderYAML(filtered)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while processing your request")
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"search_entities_tool : Successfully searched for entities with entity_type %s", req.EntityType),
	}
	return out, audit, nil
}

// reshapeSearchResults keys each hit by its URI, carrying only the selected
// fields. A hit with no fields beyond uri collapses to the bare URI string.
func reshapeSearchResults(entities []interface{}, sel string) []interface{} {
	var fields []string
	for _, f := range splitFields(sel) {
		if f != "uri" {
			fields = append(fields, f)
		}
	}

	filtered := make([]interface{}, 0, len(entities))
	for _, raw := range entities {
		entity := asMap(raw)
		if entity == nil {
			continue
		}
		entityDoc := newDoc()
		for _, field := range fields {
			if strings.HasPrefix(field, "attributes") {
				entityDoc.set("attributes", reltio.SimplifyAttributes(asMap(entity["attributes"])))
			} else {
				entityDoc.set(field, entity[field])
			}
		}
		uri := stringField(entity, "uri")
		if entityDoc.len() == 0 {
			filtered = append(filtered, uri)
		} else {
			filtered = append(filtered, newDoc().set(uri, entityDoc))
		}
	}
	return filtered
}
