package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
)

func TestFindMatchesByMatchScore_FilterAndProjection(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond([]interface{}{
			map[string]interface{}{
				"uri":             "entities/1a2b3c4d",
				"label":           "Acme Corp",
				"type":            "configuration/entityTypes/Organization",
				"relevanceScores": []interface{}{map[string]interface{}{"score": 88}},
			},
		}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "find_entities_by_match_score_tool",
		map[string]interface{}{
			"start_match_score": 50,
			"end_match_score":   90,
			"entity_type":       "Organization",
		})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)

	payload, ok := caller.calls[0].Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t,
		"(range(potentialMatches.matchScore,50,90) and equals(type,'configuration/entityTypes/Organization')",
		payload["filter"])
	assert.Equal(t, "uri,label,type,relevanceScores", payload["select"])
	assert.Equal(t, 10, payload["max"])

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Acme Corp", decoded[0]["label"])
	// The projection drops everything but uri, label, and type.
	assert.NotContains(t, decoded[0], "relevanceScores")

	require.Len(t, auditor.descriptions, 1)
	assert.Contains(t, auditor.descriptions[0], "between 50 and 90")
}

func TestFindMatchesByMatchScore_NoHits(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond([]interface{}{}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "find_entities_by_match_score_tool",
		map[string]interface{}{"end_match_score": 100})

	require.NoError(t, err)
	doc, ok := result.(*doc)
	require.True(t, ok)
	msg, _ := doc.values["message"].(string)
	assert.Contains(t, msg, "No potential matches found")
	assert.Equal(t, []interface{}{}, doc.values["results"])
	// The empty listing is still a successful, audited call.
	assert.Len(t, auditor.descriptions, 1)
}

func TestFindMatchesByConfidence_Defaults(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond([]interface{}{}, nil),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	_, err := r.HandleCallTool(context.Background(), "find_entities_by_confidence_tool", nil)

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)
	payload, ok := caller.calls[0].Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t,
		"(equals(type,'configuration/entityTypes/Individual') and equals(relevanceScores.actionLabel,'Low confidence')) and equals(type,'configuration/entityTypes/Individual')",
		payload["filter"])
}

func TestGetTotalMatches(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(map[string]interface{}{"total": float64(42)}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "get_total_matches_tool",
		map[string]interface{}{"min_matches": 5})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)
	assert.Contains(t, caller.calls[0].URL, "entities/_total")
	payload, ok := caller.calls[0].Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "(gt(matches,'5'))", payload["filter"])
	assert.Equal(t, "searchByOv,ovOnly", payload["options"])

	doc, ok := result.(*doc)
	require.True(t, ok)
	assert.Equal(t, float64(42), doc.values["total"])
	assert.Equal(t, 5, doc.values["min_matches"])
	require.Len(t, auditor.descriptions, 1)
	assert.Contains(t, auditor.descriptions[0], "42 entities")
}

func TestGetTotalMatches_MissingTotal(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(map[string]interface{}{"unexpected": "shape"}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "get_total_matches_tool", nil)

	require.NoError(t, err)
	doc, ok := result.(*doc)
	require.True(t, ok)
	assert.Equal(t, "RESPONSE_ERROR", doc.values["error"])
	assert.Empty(t, auditor.descriptions)
}

func TestGetTotalMatchesByEntityType(t *testing.T) {
	facets := map[string]interface{}{
		"configuration/entityTypes/Individual":   float64(120),
		"configuration/entityTypes/Organization": float64(7),
	}
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(map[string]interface{}{"type": facets}, nil),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_total_matches_by_entity_type_tool",
		map[string]interface{}{"min_matches": 0})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	assert.Contains(t, call.URL, "entities/_facets")
	assert.Equal(t, "(gt(matches,'0'))", call.Params["filter"])

	body, ok := call.Body.([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, body, 1)
	assert.Equal(t, "type", body[0]["fieldName"])

	doc, ok := result.(*doc)
	require.True(t, ok)
	assert.Equal(t, facets, doc.values["type_counts"])
}
