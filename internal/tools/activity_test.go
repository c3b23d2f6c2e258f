package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/request"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

func TestMergeActivitiesFilter_Defaults(t *testing.T) {
	req := &request.MergeActivities{TimestampGT: 100}

	filter := mergeActivitiesFilter(req)

	assert.Equal(t,
		"gt(timestamp,100) AND (equals(items.data.type,'ENTITIES_MERGED_MANUALLY')"+
			" OR equals(items.data.type,'ENTITIES_MERGED')"+
			" OR equals(items.data.type,'ENTITIES_MERGED_ON_THE_FLY'))",
		filter)
}

func TestMergeActivitiesFilter_AllClauses(t *testing.T) {
	req := &request.MergeActivities{
		TimestampGT: 100,
		TimestampLT: 200,
		EventTypes:  []string{"ENTITIES_MERGED"},
		EntityType:  "Individual",
		User:        "steward@example.com",
	}

	filter := mergeActivitiesFilter(req)

	assert.Equal(t,
		"gt(timestamp,100) AND lt(timestamp,200)"+
			" AND equals(items.data.type,'ENTITIES_MERGED')"+
			" AND equals(items.objectType,'configuration/entityTypes/Individual')"+
			" AND equals(user,'steward@example.com')",
		filter)
}

func TestGetMergeActivities(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond([]interface{}{
			map[string]interface{}{"uri": "activities/111", "timestamp": float64(150)},
			map[string]interface{}{"uri": "activities/222", "timestamp": float64(160)},
		}, nil),
	}}
	auditor := &stubAuditor{}
	r := newTestRegistry(caller, auditor)

	result, err := r.HandleCallTool(context.Background(), "get_merge_activities_tool",
		map[string]interface{}{"timestamp_gt": 100, "max_results": 50})

	require.NoError(t, err)
	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	assert.Contains(t, call.URL, "/activities")
	assert.Equal(t, "0", call.Params["offset"])
	assert.Equal(t, "50", call.Params["max"])
	assert.Contains(t, call.Params["filter"], "gt(timestamp,100)")

	out, ok := result.(string)
	require.True(t, ok)
	assert.Contains(t, out, "activities/111")

	require.Len(t, auditor.descriptions, 1)
	assert.Contains(t, auditor.descriptions[0], "activities/111, activities/222")
}

func TestGetMergeActivities_SecurityFailureIsAuthorization(t *testing.T) {
	caller := &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		respond(nil, errors.New(errors.ErrCodeSecurity, "tls required")),
	}}
	r := newTestRegistry(caller, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_merge_activities_tool",
		map[string]interface{}{"timestamp_gt": 100})

	require.NoError(t, err)
	env := asEnvelope(t, result)
	assert.Equal(t, errors.ErrCodeAuthorization, env.Error.CodeKey)
	assert.Equal(t, 403, env.Error.Code)
	assert.Equal(t, "Security requirements not met", env.Error.Message)
}

func TestGetMergeActivities_RequiresTimestamp(t *testing.T) {
	r := newTestRegistry(&stubCaller{}, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_merge_activities_tool", nil)

	require.NoError(t, err)
	env := asEnvelope(t, result)
	assert.Contains(t, env.Error.Message, "timestamp_gt")
}
