package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// stubCaller replays canned responses in order and records every request.
type stubCaller struct {
	calls     []reltio.Request
	responses []func(req reltio.Request) (interface{}, error)
}

func (s *stubCaller) Do(ctx context.Context, req reltio.Request) (interface{}, error) {
	s.calls = append(s.calls, req)
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("unexpected call to %s", req.URL)
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next(req)
}

func respond(result interface{}, err error) func(reltio.Request) (interface{}, error) {
	return func(reltio.Request) (interface{}, error) { return result, err }
}

type stubAuditor struct {
	tenants      []string
	descriptions []string
}

func (s *stubAuditor) Record(ctx context.Context, tenant, description string) error {
	s.tenants = append(s.tenants, tenant)
	s.descriptions = append(s.descriptions, description)
	return nil
}

func newTestRegistry(caller Caller, auditor Auditor) *Registry {
	cfg := &config.Settings{
		ServerName:  "reltio-mcp-server",
		Environment: "test",
		Tenant:      "testTenant",
	}
	return NewRegistry(cfg, caller, auditor)
}

func asEnvelope(t *testing.T, result interface{}) errors.ErrorEnvelope {
	t.Helper()
	env, ok := result.(errors.ErrorEnvelope)
	require.True(t, ok, "expected an error envelope, got %T", result)
	return env
}

func TestHandleListTools(t *testing.T) {
	r := newTestRegistry(&stubCaller{}, &stubAuditor{})
	defs := r.HandleListTools()
	assert.Len(t, defs, 27)

	names := map[string]bool{}
	for _, def := range defs {
		assert.NotEmpty(t, def.Description, "tool %s has no description", def.Name)
		names[def.Name] = true
	}
	assert.True(t, names["search_entities_tool"])
	assert.True(t, names["capabilities_tool"])
	assert.True(t, names["get_merge_activities_tool"])
}

func TestHandleCallTool_UnknownTool(t *testing.T) {
	r := newTestRegistry(&stubCaller{}, &stubAuditor{})
	_, err := r.HandleCallTool(context.Background(), "no_such_tool", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRequest))
}

func TestHandleCallTool_ValidationFailureBecomesEnvelope(t *testing.T) {
	r := newTestRegistry(&stubCaller{}, &stubAuditor{})
	result, err := r.HandleCallTool(context.Background(), "get_entity_tool",
		map[string]interface{}{"entity_id": "x"})

	require.NoError(t, err)
	env := asEnvelope(t, result)
	assert.Equal(t, 400, env.Error.Code)
	assert.Equal(t, errors.ErrCodeValidation, env.Error.CodeKey)
}

func TestHandleCallTool_RecoversFromPanic(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		func(reltio.Request) (interface{}, error) { panic("boom") },
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_entity_tool",
		map[string]interface{}{"entity_id": "1a2b3c4d"})

	require.NoError(t, err)
	env := asEnvelope(t, result)
	assert.Equal(t, errors.ErrCodeServer, env.Error.CodeKey)
	assert.Contains(t, env.Error.Message, "get_entity_tool")
}

func TestSearchEntities_ComposesFilterAndPayload(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond([]interface{}{
			map[string]interface{}{"uri": "entities/1", "label": "John Smith"},
			map[string]interface{}{"uri": "entities/2", "label": "Jane Doe"},
		}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "search_entities_tool",
		map[string]interface{}{
			"filter":      "equals(attributes.FirstName,John)",
			"entity_type": "Individual",
			"max_results": 50,
		})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)

	call := caller.calls[0]
	assert.Contains(t, call.URL, "/reltio/api/testTenant/entities/_search")
	payload, ok := call.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t,
		"equals(attributes.FirstName,John) and equals(type,'configuration/entityTypes/Individual')",
		payload["filter"])
	assert.Equal(t, "uri,label", payload["select"])
	// Search pages are capped at 10 regardless of the requested size.
	assert.Equal(t, 10, payload["max"])
	assert.Equal(t, false, payload["scoreEnabled"])
	assert.NotContains(t, payload, "sort")

	out, ok := result.(string)
	require.True(t, ok)
	var decoded []map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "John Smith", decoded[0]["entities/1"]["label"])

	require.Len(t, auditor.descriptions, 1)
	assert.Contains(t, auditor.descriptions[0], "search_entities_tool")
}

func TestSearchEntities_BareURIWhenOnlyURISelected(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond([]interface{}{
			map[string]interface{}{"uri": "entities/1"},
		}, nil),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "search_entities_tool",
		map[string]interface{}{"select": "uri"})

	require.NoError(t, err)
	var decoded []string
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))
	assert.Equal(t, []string{"entities/1"}, decoded)
}

func TestGetEntity_NotFound(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(nil, errors.New(errors.ErrCodeNotFound, "API request failed: 404")),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_entity_tool",
		map[string]interface{}{"entity_id": "1a2b3c4d"})

	require.NoError(t, err)
	env := asEnvelope(t, result)
	assert.Equal(t, errors.ErrCodeNotFound, env.Error.CodeKey)
	assert.Equal(t, "Entity with ID 1a2b3c4d not found", env.Error.Message)
}

func TestGetEntity_RendersAttributesAndCrosswalks(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(map[string]interface{}{
			"uri":   "entities/1a2b3c4d",
			"label": "John Smith",
			"attributes": map[string]interface{}{
				"FirstName": []interface{}{map[string]interface{}{"value": "John"}},
			},
			"crosswalks": []interface{}{
				map[string]interface{}{
					"uri":   "entities/1a2b3c4d/crosswalks/55",
					"type":  "configuration/sources/CRM",
					"value": "CRM-55",
				},
			},
		}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "get_entity_tool",
		map[string]interface{}{"entity_id": "entities/1a2b3c4d"})

	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))

	attrs, ok := decoded["attributes"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "John", attrs["FirstName"])

	crosswalks, ok := decoded["crosswalks"].([]interface{})
	require.True(t, ok)
	require.Len(t, crosswalks, 1)
	cw := crosswalks[0].(map[string]interface{})
	assert.Equal(t, "55", cw["id"])
	assert.Equal(t, "CRM", cw["type"])

	require.Len(t, auditor.descriptions, 1)
	assert.Contains(t, auditor.descriptions[0], "John Smith")
}

func TestGetEntityMatches_ZeroMatchesShortCircuits(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond([]interface{}{}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "get_entity_matches_tool",
		map[string]interface{}{"entity_id": "1a2b3c4d"})

	require.NoError(t, err)
	// Only the matches endpoint was hit; no source entity fetch.
	assert.Len(t, caller.calls, 1)
	assert.Empty(t, auditor.descriptions)

	doc, ok := result.(*doc)
	require.True(t, ok)
	msg, _ := doc.values["message"].(string)
	assert.Contains(t, msg, "No potential matches found")
}

func TestGetEntityMatches_DegradesWhenSourceFetchFails(t *testing.T) {
	matches := []interface{}{
		map[string]interface{}{
			"object":     map[string]interface{}{"uri": "entities/9z8y7x6w"},
			"matchScore": 90,
		},
	}
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(matches, nil),
		respond(nil, errors.New(errors.ErrCodeServer, "upstream blew up")),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_entity_matches_tool",
		map[string]interface{}{"entity_id": "1a2b3c4d"})

	require.NoError(t, err)
	assert.Len(t, caller.calls, 2)

	doc, ok := result.(*doc)
	require.True(t, ok)
	msg, _ := doc.values["message"].(string)
	assert.Contains(t, msg, "could not retrieve source entity details")
	assert.Equal(t, matches, doc.values["matches"])
}

func TestMergeEntities_PostsNormalizedIDs(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(map[string]interface{}{"uri": "entities/1a2b3c4d"}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	_, err := r.HandleCallTool(context.Background(), "merge_entities_tool",
		map[string]interface{}{
			"entity_ids": []interface{}{"1a2b3c4d", "entities/5e6f7a8b"},
		})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)
	assert.Contains(t, caller.calls[0].URL, "entities/_same")
	assert.Equal(t, []string{"entities/1a2b3c4d", "entities/5e6f7a8b"}, caller.calls[0].Body)
	require.Len(t, auditor.descriptions, 1)
	assert.Contains(t, auditor.descriptions[0], "entities/1a2b3c4d, entities/5e6f7a8b")
}

func TestRejectEntityMatch_EmptyBodyIsSuccess(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(nil, nil),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "reject_entity_match_tool",
		map[string]interface{}{"source_id": "1a2b3c4d", "target_id": "5e6f7a8b"})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)
	assert.Equal(t, "entities/5e6f7a8b", caller.calls[0].Params["uri"])

	doc, ok := result.(*doc)
	require.True(t, ok)
	assert.Equal(t, true, doc.values["success"])
	msg, _ := doc.values["message"].(string)
	assert.Equal(t, "Successfully rejected match between entities 1a2b3c4d and 5e6f7a8b", msg)
}

func TestExportMergeTree_AuthFailureMessage(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(nil, errors.New(errors.ErrCodeSecurity, "tls required")),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "export_merge_tree_tool",
		map[string]interface{}{"email_id": "steward@example.com"})

	require.NoError(t, err)
	env := asEnvelope(t, result)
	assert.Equal(t, errors.ErrCodeAuthentication, env.Error.CodeKey)
	assert.Equal(t, "Failed to authenticate or security requirements not met", env.Error.Message)
}

func TestUnmerge_PostsContributorURI(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(map[string]interface{}{
			"a": map[string]interface{}{"uri": "entities/1a2b3c4d"},
			"b": map[string]interface{}{"uri": "entities/5e6f7a8b"},
		}, nil),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	_, err := r.HandleCallTool(context.Background(), "unmerge_entity_tree_by_contributor_tool",
		map[string]interface{}{
			"origin_entity_id":      "1a2b3c4d",
			"contributor_entity_id": "5e6f7a8b",
		})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)
	assert.Contains(t, caller.calls[0].URL, "entities/1a2b3c4d/_treeUnmerge")
	assert.Equal(t, "entities/5e6f7a8b", caller.calls[0].Params["contributorURI"])
}

func TestCapabilities_ListsEverything(t *testing.T) {
	r := newTestRegistry(&stubCaller{}, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "capabilities_tool", nil)

	require.NoError(t, err)
	doc, ok := result.(*doc)
	require.True(t, ok)
	assert.Equal(t, "reltio-mcp-server", doc.values["server_name"])

	tools, ok := doc.values["tools"].([]Definition)
	require.True(t, ok)
	assert.Len(t, tools, 27)
}
