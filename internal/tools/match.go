package tools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/request"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// matchListPayload is the fixed search payload shape shared by the
// match-listing tools.
func matchListPayload(filter string, max, offset int) map[string]interface{} {
	return map[string]interface{}{
		"filter":       filter,
		"select":       "uri,label,type,relevanceScores",
		"max":          max,
		"offset":       offset,
		"scoreEnabled": false,
		"options":      "ovOnly",
		"activeness":   "active",
	}
}

// reshapeMatchList projects each hit down to uri, label, and type, keeping
// the order the API returned.
func reshapeMatchList(hits []interface{}) []interface{} {
	out := make([]interface{}, 0, len(hits))
	for _, raw := range hits {
		hit := asMap(raw)
		if hit == nil {
			continue
		}
		out = append(out, newDoc().
			set("uri", hit["uri"]).
			set("label", hit["label"]).
			set("type", hit["type"]))
	}
	return out
}

// findMatchesByMatchScore lists entities whose potential-match score falls
// inside an inclusive range.
func (r *Registry) findMatchesByMatchScore(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.MatchScore
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	// The leading parenthesis is deliberately unbalanced; the search API
	// tolerates it and this exact shape is known to work.
	filter := fmt.Sprintf("(range(potentialMatches.matchScore,%d,%d) and %s",
		req.StartMatchScore, req.EndMatchScore, entityTypeClause(req.EntityType))

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/_search", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Body:   matchListPayload(filter, req.MaxResults, req.Offset),
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			fallback: fmt.Sprintf("Failed to retrieve matches: %v", err),
		})
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"find_matches_by_match_score_tool : Successfully fetched potential matches for entity type %s with match score between %d and %d",
			req.EntityType, req.StartMatchScore, req.EndMatchScore),
	}

	hits := asList(result)
	if len(hits) == 0 {
		return newDoc().
			set("message", fmt.Sprintf(
				"No potential matches found for entity type %s with match score between %d and %d.",
				req.EntityType, req.StartMatchScore, req.EndMatchScore)).
			set("results", []interface{}{}), audit, nil
	}

	out, err := renderYAML(reshapeMatchList(hits))
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while searching for matches")
	}
	return out, audit, nil
}

// findMatchesByConfidence lists entities whose potential matches carry a
// named confidence band such as "Low confidence" or "Strong matches".
func (r *Registry) findMatchesByConfidence(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.ConfidenceLevel
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	filter := fmt.Sprintf("(%s and equals(relevanceScores.actionLabel,'%s')) and %s",
		entityTypeClause(req.EntityType), req.ConfidenceLevel, entityTypeClause(req.EntityType))

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/_search", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Body:   matchListPayload(filter, req.MaxResults, req.Offset),
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			fallback: fmt.Sprintf("Failed to retrieve matches: %v", err),
		})
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"find_matches_by_confidence_tool : Successfully fetched potential matches for entity type %s with confidence level %s",
			req.EntityType, req.ConfidenceLevel),
	}

	hits := asList(result)
	if len(hits) == 0 {
		return newDoc().
			set("message", fmt.Sprintf(
				"No potential matches found for entity type %s with confidence level %s.",
				req.EntityType, req.ConfidenceLevel)).
			set("results", []interface{}{}), audit, nil
	}

	out, err := renderYAML(reshapeMatchList(hits))
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while searching for matches by confidence")
	}
	return out, audit, nil
}

// getTotalMatches counts entities with more than min_matches potential
// matches across the tenant.
func (r *Registry) getTotalMatches(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.TotalMatches
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	payload := map[string]interface{}{
		"filter":     fmt.Sprintf("(gt(matches,'%d'))", req.MinMatches),
		"options":    "searchByOv,ovOnly",
		"activeness": "active",
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/_total", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Body:   payload,
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			fallback: fmt.Sprintf("Failed to retrieve total matches count: %v", err),
		})
	}

	resultMap := asMap(result)
	total, ok := resultMap["total"]
	if !ok {
		return newDoc().
			set("error", "RESPONSE_ERROR").
			set("message", "API response did not contain a total count").
			set("details", result), nil, nil
	}

	message := fmt.Sprintf("Found %v entities with more than %d potential matches.", total, req.MinMatches)
	audit := &auditEvent{
		tenant:      req.TenantID,
		description: "get_total_matches_tool : " + message,
	}
	return newDoc().
		set("total", total).
		set("min_matches", req.MinMatches).
		set("message", message), audit, nil
}

// getTotalMatchesByEntityType facets the potential-match counts by entity
// type.
func (r *Registry) getTotalMatchesByEntityType(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.TotalMatches
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/_facets", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Params: map[string]string{
			"activeness": "active",
			"filter":     fmt.Sprintf("(gt(matches,'%d'))", req.MinMatches),
			"options":    "searchByOv,ovOnly",
		},
		Body: []map[string]interface{}{
			{"fieldName": "type", "pageSize": 101, "pageNo": 1},
		},
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			fallback: fmt.Sprintf("Failed to retrieve match facets: %v", err),
		})
	}

	resultMap := asMap(result)
	typeCounts, ok := resultMap["type"]
	if !ok {
		return newDoc().
			set("error", "RESPONSE_ERROR").
			set("message", "API response did not contain facet counts").
			set("details", result), nil, nil
	}

	message := fmt.Sprintf("Found entities by type with more than %d potential matches.", req.MinMatches)
	audit := &auditEvent{
		tenant:      req.TenantID,
		description: "get_total_matches_by_entity_type_tool : " + message,
	}
	return newDoc().
		set("type_counts", typeCounts).
		set("min_matches", req.MinMatches).
		set("message", message), audit, nil
}
