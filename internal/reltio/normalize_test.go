package reltio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifyAttributes_ScalarsAndLists(t *testing.T) {
	attributes := map[string]interface{}{
		"FirstName": []interface{}{
			map[string]interface{}{"value": "John"},
		},
		"Phone": []interface{}{
			map[string]interface{}{"value": "555-0100"},
			map[string]interface{}{"value": "555-0101"},
		},
	}

	result := SimplifyAttributes(attributes)

	assert.Equal(t, "John", result["FirstName"])
	assert.Equal(t, []interface{}{"555-0100", "555-0101"}, result["Phone"])
}

func TestSimplifyAttributes_NestedValues(t *testing.T) {
	attributes := map[string]interface{}{
		"Address": []interface{}{
			map[string]interface{}{
				"value": map[string]interface{}{
					"City": []interface{}{
						map[string]interface{}{"value": "Boston"},
					},
				},
			},
		},
	}

	result := SimplifyAttributes(attributes)

	address, ok := result["Address"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Boston", address["City"])
}

func TestSimplifyAttributes_DropsEmptyAndMalformed(t *testing.T) {
	attributes := map[string]interface{}{
		"Empty":    []interface{}{},
		"NotAList": "scalar",
		"NoValue": []interface{}{
			map[string]interface{}{"ov": true},
		},
	}

	result := SimplifyAttributes(attributes)
	assert.Empty(t, result)
}

func TestSlimCrosswalks(t *testing.T) {
	crosswalks := []interface{}{
		map[string]interface{}{
			"uri":        "entities/abc/crosswalks/123",
			"type":       "configuration/sources/Salesforce",
			"value":      "SF-1",
			"createDate": "2024-01-01T00:00:00Z",
			"attributes": map[string]interface{}{"noise": true},
		},
		"not-an-object",
	}

	out := SlimCrosswalks(crosswalks)

	require.Len(t, out, 1)
	assert.Equal(t, "123", out[0]["id"])
	assert.Equal(t, "Salesforce", out[0]["type"])
	assert.Equal(t, "SF-1", out[0]["value"])
	assert.Equal(t, "2024-01-01T00:00:00Z", out[0]["createDate"])
	assert.NotContains(t, out[0], "attributes")
}

func TestSlimCrosswalks_CreateDateFallbacks(t *testing.T) {
	crosswalks := []interface{}{
		map[string]interface{}{"id": "1", "createTime": "t1"},
		map[string]interface{}{"id": "2", "createdTime": "t2"},
	}

	out := SlimCrosswalks(crosswalks)

	require.Len(t, out, 2)
	assert.Equal(t, "t1", out[0]["createDate"])
	assert.Equal(t, "t2", out[1]["createDate"])
}

func TestFormatEntityMatches(t *testing.T) {
	matches := []interface{}{
		map[string]interface{}{
			"object":      map[string]interface{}{"uri": "entities/42"},
			"matchRules":  []interface{}{"rule1"},
			"matchScore":  95,
			"relevance":   0.9,
			"label":       "Jane Doe",
			"createdTime": 1700000000,
		},
		map[string]interface{}{"matchScore": 10}, // no object uri, skipped
	}

	out := FormatEntityMatches(matches)

	require.Len(t, out, 1)
	entry, ok := out["entities/42"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 95, entry["matchScore"])
	assert.Equal(t, "Jane Doe", entry["label"])
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "123", ExtractID("entities/123"))
	assert.Equal(t, "123", ExtractID("123"))
	assert.Equal(t, "N/A", ExtractID(""))
	// Idempotent: running twice changes nothing.
	assert.Equal(t, ExtractID("entities/123"), ExtractID(ExtractID("entities/123")))
}

func TestExtractName(t *testing.T) {
	attributes := map[string]interface{}{
		"Name": []interface{}{
			map[string]interface{}{"value": "Acme Corp"},
		},
	}
	assert.Equal(t, "Acme Corp", ExtractName(attributes))
	assert.Equal(t, "N/A", ExtractName(map[string]interface{}{}))
	assert.Equal(t, "N/A", ExtractName(map[string]interface{}{"Name": []interface{}{}}))
}
