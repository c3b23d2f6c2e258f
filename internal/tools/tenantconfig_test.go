package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
)

// businessConfig is a minimal tenant configuration shared by the
// configuration tool tests.
func businessConfig() map[string]interface{} {
	return map[string]interface{}{
		"uri":           "configuration/testTenant",
		"description":   "Test tenant",
		"schemaVersion": float64(12),
		"label":         "Test",
		"createdBy":     "admin",
		"updatedBy":     "admin",
		"sources": []interface{}{
			map[string]interface{}{"uri": "configuration/sources/CRM"},
			map[string]interface{}{"uri": "configuration/sources/ERP"},
		},
		"entityTypes": []interface{}{
			map[string]interface{}{
				"uri":         "configuration/entityTypes/Organization",
				"label":       "Organization",
				"description": "A company",
				"attributes": []interface{}{
					map[string]interface{}{
						"label":      "Name",
						"name":       "Name",
						"type":       "String",
						"required":   true,
						"searchable": true,
					},
				},
			},
		},
		"relationTypes": []interface{}{
			map[string]interface{}{
				"uri":   "configuration/relationTypes/OrganizationIndividual",
				"label": "Employs",
				"startObject": map[string]interface{}{
					"objectTypeURI": "configuration/entityTypes/Organization",
				},
				"endObject": map[string]interface{}{
					"objectTypeURI": "configuration/entityTypes/Individual",
				},
			},
		},
	}
}

func configCaller(t *testing.T) *stubCaller {
	t.Helper()
	return &stubCaller{responses: []func(reltio.Request) (interface{}, error){
		func(req reltio.Request) (interface{}, error) {
			assert.Contains(t, req.URL, "configuration/_noInheritance")
			return businessConfig(), nil
		},
	}}
}

func TestGetBusinessConfiguration(t *testing.T) {
	r := newTestRegistry(configCaller(t), &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_business_configuration_tool", nil)

	require.NoError(t, err)
	doc, ok := result.(*doc)
	require.True(t, ok)
	assert.Equal(t, "configuration/testTenant", doc.values["uri"])
	assert.Equal(t, "Test tenant", doc.values["description"])
	assert.Equal(t, float64(12), doc.values["schemaVersion"])
	assert.Len(t, doc.values["sources"], 2)
}

func TestGetTenantMetadata_CollectionsReducedToCounts(t *testing.T) {
	auditor := &stubAuditor{}
	r := newTestRegistry(configCaller(t), auditor)

	result, err := r.HandleCallTool(context.Background(), "get_tenant_metadata_tool", nil)

	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))

	assert.Equal(t, "configuration/testTenant", decoded["uri"])
	assert.Equal(t, 2, decoded["sources"])
	assert.Equal(t, 1, decoded["entityTypes"])
	assert.Equal(t, 1, decoded["relationTypes"])
	assert.Equal(t, 0, decoded["graphTypes"])

	require.Len(t, auditor.descriptions, 1)
	assert.Contains(t, auditor.descriptions[0], "tenant testTenant")
}

func TestGetDataModelDefinition_SelectsRequestedCollections(t *testing.T) {
	r := newTestRegistry(configCaller(t), &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_data_model_definition_tool",
		map[string]interface{}{"object_type": []interface{}{"entityTypes"}})

	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))

	require.Contains(t, decoded, "entityTypes")
	assert.NotContains(t, decoded, "relationTypes")
	assert.NotContains(t, decoded, "sources")

	items, ok := decoded["entityTypes"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "configuration/entityTypes/Organization", item["uri"])
	// The listing projection keeps identity fields only.
	assert.NotContains(t, item, "attributes")
}

func TestGetEntityTypeDefinition(t *testing.T) {
	r := newTestRegistry(configCaller(t), &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_entity_type_definition_tool",
		map[string]interface{}{"entity_type": "configuration/entityTypes/Organization"})

	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))

	assert.Equal(t, "Organization", decoded["label"])
	attrs, ok := decoded["attributes"].([]interface{})
	require.True(t, ok)
	require.Len(t, attrs, 1)
	attr := attrs[0].(map[string]interface{})
	assert.Equal(t, "Name", attr["name"])
	assert.Equal(t, true, attr["required"])
	assert.Equal(t, true, attr["searchable"])
}

func TestGetRelationTypeDefinition_ResolvesEndpoints(t *testing.T) {
	r := newTestRegistry(configCaller(t), &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_relation_type_definition_tool",
		map[string]interface{}{"relation_type": "configuration/relationTypes/OrganizationIndividual"})

	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))

	assert.Equal(t, "configuration/entityTypes/Organization", decoded["startObject"])
	assert.Equal(t, "configuration/entityTypes/Individual", decoded["endObject"])
}

func TestTypeDefinition_UnknownURIRendersEmpty(t *testing.T) {
	r := newTestRegistry(configCaller(t), &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_entity_type_definition_tool",
		map[string]interface{}{"entity_type": "configuration/entityTypes/Nope"})

	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(result.(string)), &decoded))
	assert.Empty(t, decoded)
}

func TestTypeDefinition_RequiresURI(t *testing.T) {
	r := newTestRegistry(&stubCaller{}, &stubAuditor{})

	result, err := r.HandleCallTool(context.Background(), "get_entity_type_definition_tool", nil)

	require.NoError(t, err)
	env := asEnvelope(t, result)
	assert.Contains(t, env.Error.Message, "type URI is required")
}
