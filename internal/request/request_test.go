package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

const testTenant = "testTenant"

func TestExtractID_Idempotent(t *testing.T) {
	assert.Equal(t, "1a2b3c4d", ExtractID("entities/1a2b3c4d"))
	assert.Equal(t, "1a2b3c4d", ExtractID("1a2b3c4d"))
	assert.Equal(t, "1a2b3c4d", ExtractID(ExtractID("entities/1a2b3c4d")))
	assert.Equal(t, "N/A", ExtractID(""))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "equals(name,John)", Sanitize(`equals(name,'John')`))
	assert.Equal(t, "scriptalert(1)/script", Sanitize(`<script>alert(1)</script>`))
	assert.Equal(t, "plain text", Sanitize("plain text"))
}

func TestEntityID_Validate(t *testing.T) {
	r := &EntityID{EntityID: "entities/1a2b3c4d"}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, "1a2b3c4d", r.EntityID)
	assert.Equal(t, testTenant, r.TenantID)
}

func TestEntityID_RejectsMalformedIDs(t *testing.T) {
	tests := []string{"", "abc", "id with spaces", strings.Repeat("x", 31), "bad;id!"}
	for _, id := range tests {
		r := &EntityID{EntityID: id}
		err := r.Validate(testTenant)
		assert.Error(t, err, "id %q should be rejected", id)
		assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	}
}

func TestEntityID_RejectsBadTenant(t *testing.T) {
	r := &EntityID{EntityID: "1a2b3c4d", TenantID: "bad tenant!"}
	err := r.Validate(testTenant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestEntitySearch_Defaults(t *testing.T) {
	r := &EntitySearch{}
	require.NoError(t, r.Validate(testTenant))

	assert.Equal(t, 10, r.MaxResults)
	assert.Equal(t, "asc", r.Order)
	assert.Equal(t, "uri,label", r.Select)
	assert.Equal(t, "ovOnly", r.Options)
	assert.Equal(t, "active", r.Activeness)
	assert.Equal(t, testTenant, r.TenantID)
}

func TestEntitySearch_WindowLimit(t *testing.T) {
	r := &EntitySearch{Offset: 9995, MaxResults: 10}
	err := r.Validate(testTenant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10000")

	r = &EntitySearch{Offset: 9990, MaxResults: 10}
	assert.NoError(t, r.Validate(testTenant))
}

func TestEntitySearch_UnbalancedFilter(t *testing.T) {
	r := &EntitySearch{Filter: "equals(type,abc"}
	err := r.Validate(testTenant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced parentheses")
}

func TestEntitySearch_SanitizesFilter(t *testing.T) {
	r := &EntitySearch{Filter: "equals(name,'John')"}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, "equals(name,John)", r.Filter)
}

func TestEntitySearch_OrderNormalization(t *testing.T) {
	r := &EntitySearch{Order: "DESC"}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, "desc", r.Order)

	r = &EntitySearch{Order: "random"}
	assert.Error(t, r.Validate(testTenant))
}

func TestMergeEntities_RequiresExactlyTwo(t *testing.T) {
	r := &MergeEntities{EntityIDs: []string{"1a2b3c4d"}}
	assert.Error(t, r.Validate(testTenant))

	r = &MergeEntities{EntityIDs: []string{"1a2b3c4d", "5e6f7a8b", "9c0d1e2f"}}
	assert.Error(t, r.Validate(testTenant))
}

func TestMergeEntities_NormalizesURIs(t *testing.T) {
	r := &MergeEntities{EntityIDs: []string{"1a2b3c4d", "entities/5e6f7a8b"}}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, []string{"entities/1a2b3c4d", "entities/5e6f7a8b"}, r.EntityIDs)
}

func TestEntityMatches_ClampsMaxResults(t *testing.T) {
	r := &EntityMatches{EntityID: "1a2b3c4d", MaxResults: 500}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, MaxResultsLimit, r.MaxResults)

	r = &EntityMatches{EntityID: "1a2b3c4d", MaxResults: -3}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, 1, r.MaxResults)
}

func TestMatchScore_ClampsPageSize(t *testing.T) {
	r := &MatchScore{EndMatchScore: 100, MaxResults: 10000}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, 10, r.MaxResults)
	assert.Equal(t, "Individual", r.EntityType)
}

func TestMatchScore_RejectsNegativePageSize(t *testing.T) {
	r := &MatchScore{EndMatchScore: 100, MaxResults: -5}
	err := r.Validate(testTenant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestMatchScore_ScoreRange(t *testing.T) {
	r := &MatchScore{StartMatchScore: 80, EndMatchScore: 40}
	assert.Error(t, r.Validate(testTenant))

	r = &MatchScore{}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, 100, r.EndMatchScore)
}

func TestUpdateEntityAttributes_RequiresUpdates(t *testing.T) {
	r := &UpdateEntityAttributes{EntityID: "1a2b3c4d"}
	err := r.Validate(testTenant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update operation")
}

func TestExportMergeTree_RequiresEmail(t *testing.T) {
	r := &ExportMergeTree{}
	assert.Error(t, r.Validate(testTenant))

	r = &ExportMergeTree{EmailID: "steward@example.com"}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, testTenant, r.TenantID)
}

func TestMergeActivities_ClampsAndDefaults(t *testing.T) {
	r := &MergeActivities{TimestampGT: 1700000000000, MaxResults: 1000}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, MaxResultsLimit, r.MaxResults)

	r = &MergeActivities{TimestampGT: 1700000000000}
	require.NoError(t, r.Validate(testTenant))
	assert.Equal(t, MaxResultsLimit, r.MaxResults)
}

func TestMergeActivities_TimestampWindow(t *testing.T) {
	r := &MergeActivities{}
	assert.Error(t, r.Validate(testTenant))

	r = &MergeActivities{TimestampGT: 200, TimestampLT: 100}
	assert.Error(t, r.Validate(testTenant))

	r = &MergeActivities{TimestampGT: 100, TimestampLT: 200}
	assert.NoError(t, r.Validate(testTenant))
}
