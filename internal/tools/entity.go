package tools

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/request"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// validValue reports whether a field value is worth keeping: non-nil and,
// for strings, lists, and objects, non-empty.
func validValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// filterEntity projects an entity down to an allow-list of fields. For an
// object-valued field, a non-empty subfield list keeps only those subfields;
// an empty list keeps the whole object minus empty values.
func filterEntity(entity map[string]interface{}, filterField map[string][]string) map[string]interface{} {
	if filterField == nil {
		return entity
	}

	filtered := map[string]interface{}{}
	for field, subfields := range filterField {
		value, ok := entity[field]
		if !ok || !validValue(value) {
			continue
		}

		obj, isObj := value.(map[string]interface{})
		switch {
		case isObj && len(subfields) > 0:
			sub := map[string]interface{}{}
			for _, k := range subfields {
				if v, ok := obj[k]; ok && validValue(v) {
					sub[k] = v
				}
			}
			if len(sub) > 0 {
				filtered[field] = sub
			}
		case isObj:
			sub := map[string]interface{}{}
			for k, v := range obj {
				if validValue(v) {
					sub[k] = v
				}
			}
			if len(sub) > 0 {
				filtered[field] = sub
			}
		default:
			filtered[field] = value
		}
	}
	return filtered
}

// getEntity fetches one entity and renders its simplified attributes plus
// slimmed crosswalks.
func (r *Registry) getEntity(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.EntityDetails
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("entities/"+req.EntityID, reltio.FamilyAPI, req.TenantID),
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound: fmt.Sprintf("Entity with ID %s not found", req.EntityID),
			fallback: "Failed to retrieve entity details from Reltio API",
		})
	}

	entity := asMap(result)
	filtered := entity
	if req.FilterField != nil {
		filtered = filterEntity(entity, req.FilterField)
	}

	payload := newDoc().set("attributes", reltio.SimplifyAttributes(asMap(filtered["attributes"])))
	if crosswalks, ok := filtered["crosswalks"]; ok {
		payload.set("crosswalks", reltio.SlimCrosswalks(asList(crosswalks)))
	}

	out, err := renderYAML(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while retrieving entity details")
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"get_entity_details_tool : Successfully fetched entity details for entity: %s, label: %s",
			req.EntityID, stringField(entity, "label")),
	}
	return out, audit, nil
}

// updateEntityAttributes posts a list of attribute update operations.
func (r *Registry) updateEntityAttributes(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.UpdateEntityAttributes
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/"+req.EntityID+"/_update", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Body:   req.Updates,
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound: fmt.Sprintf("Entity with ID %s not found", req.EntityID),
			fallback: "Failed to update entity attributes in Reltio API",
		})
	}

	out, err := renderYAML(result)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while updating entity attributes")
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"update_entity_attributes_tool : Successfully updated entity: %s, label: %s",
			req.EntityID, stringField(asMap(result), "label")),
	}
	return out, audit, nil
}

// getEntityMatches lists the transitive potential matches of one entity and
// enriches them with the source entity. A failed enrichment degrades to the
// raw matches rather than failing the call.
func (r *Registry) getEntityMatches(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.EntityMatches
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	matchesResult, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("entities/"+req.EntityID+"/_transitiveMatches", reltio.FamilyAPI, req.TenantID),
		Params: map[string]string{
			"deep":              "1",
			"markMatchedValues": "true",
			"sort":              "score",
			"order":             "desc",
			"activeness":        "active",
			"limit":             strconv.Itoa(req.MaxResults),
		},
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound: fmt.Sprintf("Entity with ID %s not found", req.EntityID),
			fallback: "Failed to retrieve matches from Reltio API",
		})
	}

	matches := asList(matchesResult)
	if len(matches) == 0 {
		return newDoc().
			set("message", fmt.Sprintf("No potential matches found for entity %s.", req.EntityID)).
			set("matches", []interface{}{}), nil, nil
	}

	sourceResult, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("entities/"+req.EntityID, reltio.FamilyAPI, req.TenantID),
	})
	if err != nil {
		return newDoc().
			set("message", fmt.Sprintf("Found matches but could not retrieve source entity details: %v", err)).
			set("matches", matches), nil, nil
	}

	payload := newDoc().
		set("source_entity", req.EntityID).
		set("matches", reltio.FormatEntityMatches(matches))
	out, err := renderYAML(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while retrieving entity matches")
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"get_entity_matches_tool : Successfully fetched potential matches for entity: %s, label: %s",
			req.EntityID, stringField(asMap(sourceResult), "label")),
	}
	return out, audit, nil
}

// getEntityMatchHistory renders the crosswalk tree of one entity.
func (r *Registry) getEntityMatchHistory(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.EntityID
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	history, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("entities/"+req.EntityID+"/_crosswalkTree", reltio.FamilyAPI, req.TenantID),
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound: fmt.Sprintf("Entity with ID %s not found", req.EntityID),
			fallback: "Failed to retrieve match history from Reltio API",
		})
	}

	historyMap := asMap(history)
	if len(historyMap) == 0 {
		result := newDoc().
			set("message", fmt.Sprintf("No match history found for entity %s.", req.EntityID)).
			set("match_history", []interface{}{})
		audit := &auditEvent{
			tenant:      req.TenantID,
			description: fmt.Sprintf("get_entity_match_history_tool : No match history found for entity %s", req.EntityID),
		}
		return result, audit, nil
	}

	sourceResult, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("entities/"+req.EntityID, reltio.FamilyAPI, req.TenantID),
	})
	if err != nil {
		return newDoc().
			set("message", fmt.Sprintf("Found match history but could not retrieve source entity details: %v", err)).
			set("match_history", history), nil, nil
	}

	out, err := renderYAML(history)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"An unexpected error occurred while retrieving entity match history")
	}

	var crosswalkURIs []string
	for _, raw := range asList(historyMap["crosswalks"]) {
		if cw := asMap(raw); cw != nil {
			crosswalkURIs = append(crosswalkURIs, stringField(cw, "uri"))
		}
	}
	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"get_entity_match_history_tool : Successfully fetched match history for entity: %s, label: %s, crosswalk URIs: %v",
			req.EntityID, stringField(asMap(sourceResult), "label"), crosswalkURIs),
	}
	return out, audit, nil
}

// mergeEntities merges exactly two entities into one.
func (r *Registry) mergeEntities(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.MergeEntities
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/_same", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Body:   req.EntityIDs,
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound:   "One or more entities not found",
			badRequest: "Invalid merge request",
			fallback:   "Failed to merge entities",
		})
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf("merge_entities_tool : Successfully merged entities %s",
			strings.Join(req.EntityIDs, ", ")),
	}
	return result, audit, nil
}

// rejectEntityMatch marks a target entity as not a match for the source.
// The API answers with an empty body on success.
func (r *Registry) rejectEntityMatch(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.RejectMatch
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/"+req.SourceID+"/_notMatch", reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Params: map[string]string{"uri": "entities/" + req.TargetID},
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound:   "One or more entities not found",
			badRequest: "Invalid reject match request",
			fallback:   "Failed to reject entity match",
		})
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf(
			"reject_entity_match_tool : Successfully rejected match between entities %s and %s",
			req.SourceID, req.TargetID),
	}
	if result == nil {
		return newDoc().
			set("success", true).
			set("message", fmt.Sprintf("Successfully rejected match between entities %s and %s",
				req.SourceID, req.TargetID)), audit, nil
	}
	return result, audit, nil
}

// exportMergeTree schedules a crosswalk tree export job for the whole
// tenant; the caller is notified by email when the job finishes.
func (r *Registry) exportMergeTree(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.ExportMergeTree
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:     r.urls.ExportJobURL("entities/_crosswalksTree", req.TenantID),
		Method:  http.MethodPost,
		Body:    map[string]interface{}{"outputAsJsonArray": true},
		Params:  map[string]string{"email": req.EmailID},
		Timeout: reltio.LongOperationTimeout,
	})
	if err != nil {
		if errors.IsAny(err, errors.ErrCodeAuthentication, errors.ErrCodeSecurity) {
			return nil, nil, errors.New(errors.ErrCodeAuthentication,
				"Failed to authenticate or security requirements not met")
		}
		return nil, nil, errors.Wrap(err, errors.ErrCodeServer,
			"Failed to schedule export merge tree job")
	}

	audit := &auditEvent{
		tenant:      req.TenantID,
		description: fmt.Sprintf("export_merge_tree_tool : %v", result),
	}
	return result, audit, nil
}

func (r *Registry) unmergeEntityByContributor(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.unmerge(ctx, args, "_unmerge", "Invalid unmerge request", "Failed to unmerge entity",
		"unmerge_entity_by_contributor_tool : Successfully unmerged origin entity %s by contributor entity %s")
}

func (r *Registry) unmergeEntityTreeByContributor(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.unmerge(ctx, args, "_treeUnmerge", "Invalid tree unmerge request", "Failed to tree unmerge entity",
		"unmerge_entity_tree_by_contributor_tool : Successfully unmerged origin entity %s by contributor entity %s and all profiles merged beneath it from a merged entity")
}

// unmerge splits a contributor out of a merged entity. The response carries
// the modified origin under "a" and the spawned entity under "b".
func (r *Registry) unmerge(ctx context.Context, args map[string]interface{}, endpoint, badRequest, fallback, auditFormat string) (interface{}, *auditEvent, error) {
	var req request.UnmergeEntity
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL:    r.urls.APIURL("entities/"+req.OriginEntityID+"/"+endpoint, reltio.FamilyAPI, req.TenantID),
		Method: http.MethodPost,
		Params: map[string]string{"contributorURI": "entities/" + req.ContributorEntityID},
	})
	if err != nil {
		return nil, nil, apiFailure(err, failureText{
			notFound:   "One or more entities not found",
			badRequest: badRequest,
			fallback:   fallback,
		})
	}

	audit := &auditEvent{
		tenant:      req.TenantID,
		description: fmt.Sprintf(auditFormat, req.OriginEntityID, req.ContributorEntityID),
	}
	return result, audit, nil
}
