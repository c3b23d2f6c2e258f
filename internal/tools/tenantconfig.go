package tools

import (
	"context"
	"fmt"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/internal/request"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// fetchBusinessConfig retrieves the tenant's own business configuration,
// without inherited layers. Configuration lookups filter it client-side.
func (r *Registry) fetchBusinessConfig(ctx context.Context, tenant string) (map[string]interface{}, error) {
	result, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("configuration/_noInheritance", reltio.FamilyAPI, tenant),
	})
	if err != nil {
		if errors.IsAny(err, errors.ErrCodeAuthentication, errors.ErrCodeSecurity) {
			return nil, errors.New(errors.ErrCodeAuthentication, "Failed to authenticate with Reltio API")
		}
		return nil, errors.Wrapf(err, errors.ErrCodeAPIRequest,
			"Failed to retrieve business configuration: %v", err)
	}
	return asMap(result), nil
}

// configList reads a list-valued collection such as entityTypes from the
// business configuration.
func configList(cfg map[string]interface{}, key string) []interface{} {
	return asList(cfg[key])
}

// getBusinessConfiguration summarizes the tenant's business configuration.
// Unlike the other configuration tools this one answers with a structured
// object, not YAML text.
func (r *Registry) getBusinessConfiguration(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.Tenant
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	cfg, err := r.fetchBusinessConfig(ctx, req.TenantID)
	if err != nil {
		return nil, nil, err
	}

	return newDoc().
		set("uri", cfg["uri"]).
		set("description", cfg["description"]).
		set("schemaVersion", cfg["schemaVersion"]).
		set("sources", cfg["sources"]), nil, nil
}

// getTenantPermissionsMetadata renders the tenant's permissions metadata.
func (r *Registry) getTenantPermissionsMetadata(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.Tenant
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	result, err := r.caller.Do(ctx, reltio.Request{
		URL: r.urls.APIURL("", reltio.FamilyPermissions, req.TenantID),
	})
	if err != nil {
		if errors.IsAny(err, errors.ErrCodeAuthentication, errors.ErrCodeSecurity) {
			return nil, nil, errors.New(errors.ErrCodeAuthentication, "Failed to authenticate with Reltio API")
		}
		return nil, nil, errors.Wrapf(err, errors.ErrCodeAPIRequest,
			"Failed to retrieve tenant permissions metadata: %v", err)
	}

	out, err := renderYAML(result)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrCodeInternal,
			"An error occurred while retrieving tenant permissions metadata: %v", err)
	}

	audit := &auditEvent{
		tenant:      req.TenantID,
		description: "get_tenant_permissions_metadata_tool : MCP server successfully fetched tenant permissions metadata",
	}
	return out, audit, nil
}

// getTenantMetadata renders a summary of the business configuration:
// identity fields verbatim, collections reduced to their sizes.
func (r *Registry) getTenantMetadata(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.Tenant
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	cfg, err := r.fetchBusinessConfig(ctx, req.TenantID)
	if err != nil {
		return nil, nil, err
	}

	payload := newDoc().
		set("uri", stringField(cfg, "uri")).
		set("description", stringField(cfg, "description")).
		set("schemaVersion", cfg["schemaVersion"]).
		set("sources", len(configList(cfg, "sources"))).
		set("label", stringField(cfg, "label")).
		set("createdTime", cfg["createdTime"]).
		set("updatedTime", cfg["updatedTime"]).
		set("createdBy", stringField(cfg, "createdBy")).
		set("updatedBy", stringField(cfg, "updatedBy")).
		set("entityTypes", len(configList(cfg, "entityTypes"))).
		set("changeRequestTypes", len(configList(cfg, "changeRequestTypes"))).
		set("relationTypes", len(configList(cfg, "relationTypes"))).
		set("interactionTypes", len(configList(cfg, "interactionTypes"))).
		set("graphTypes", len(configList(cfg, "graphTypes"))).
		set("survivorshipStrategies", len(configList(cfg, "survivorshipStrategies"))).
		set("groupingTypes", len(configList(cfg, "groupingTypes")))

	out, err := renderYAML(payload)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrCodeInternal,
			"An error occurred while retrieving tenant metadata: %v", err)
	}

	audit := &auditEvent{
		tenant:      req.TenantID,
		description: fmt.Sprintf("get_tenant_metadata_tool : MCP server successfully fetched tenant metadata for tenant %s", req.TenantID),
	}
	return out, audit, nil
}

// Projections applied per collection by the data model listing.

func projectEntityType(item map[string]interface{}) *doc {
	return newDoc().
		set("uri", stringField(item, "uri")).
		set("label", stringField(item, "label")).
		set("description", stringField(item, "description"))
}

func projectChangeRequestType(item map[string]interface{}) *doc {
	return newDoc().set("uri", stringField(item, "uri"))
}

func projectInteractionTypeSummary(item map[string]interface{}) *doc {
	return newDoc().
		set("uri", stringField(item, "uri")).
		set("label", stringField(item, "label"))
}

func projectGraphType(item map[string]interface{}) *doc {
	uris := item["relationshipTypeURIs"]
	if uris == nil {
		uris = []interface{}{}
	}
	return newDoc().
		set("uri", stringField(item, "uri")).
		set("label", stringField(item, "label")).
		set("relationshipTypeURIs", uris)
}

func projectSurvivorshipStrategy(item map[string]interface{}) *doc {
	return newDoc().
		set("uri", stringField(item, "uri")).
		set("label", stringField(item, "label"))
}

func projectGroupingTypeSummary(item map[string]interface{}) *doc {
	return newDoc().
		set("uri", stringField(item, "uri")).
		set("description", stringField(item, "description"))
}

// getDataModelDefinition lists the tenant's data model collections, each
// item reduced to identifying fields. An empty object_type selects all
// collections.
func (r *Registry) getDataModelDefinition(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	var req request.DataModel
	if err := decodeArgs(args, &req); err != nil {
		return nil, nil, err
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	cfg, err := r.fetchBusinessConfig(ctx, req.TenantID)
	if err != nil {
		return nil, nil, err
	}

	wanted := func(collection string) bool {
		if len(req.ObjectTypes) == 0 {
			return true
		}
		for _, t := range req.ObjectTypes {
			if t == collection {
				return true
			}
		}
		return false
	}

	project := func(collection string, projectItem func(map[string]interface{}) *doc) []interface{} {
		items := configList(cfg, collection)
		out := make([]interface{}, 0, len(items))
		for _, raw := range items {
			if item := asMap(raw); item != nil {
				out = append(out, projectItem(item))
			}
		}
		return out
	}

	payload := newDoc()
	if wanted("entityTypes") {
		payload.set("entityTypes", project("entityTypes", projectEntityType))
	}
	if wanted("changeRequestTypes") {
		payload.set("changeRequestTypes", project("changeRequestTypes", projectChangeRequestType))
	}
	if wanted("relationTypes") {
		payload.set("relationTypes", project("relationTypes", projectEntityType))
	}
	if wanted("interactionTypes") {
		payload.set("interactionTypes", project("interactionTypes", projectInteractionTypeSummary))
	}
	if wanted("graphTypes") {
		payload.set("graphTypes", project("graphTypes", projectGraphType))
	}
	if wanted("survivorshipStrategies") {
		payload.set("survivorshipStrategies", project("survivorshipStrategies", projectSurvivorshipStrategy))
	}
	if wanted("groupingTypes") {
		payload.set("groupingTypes", project("groupingTypes", projectGroupingTypeSummary))
	}

	out, err := renderYAML(payload)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrCodeInternal,
			"An error occurred while retrieving data model definition: %v", err)
	}

	audit := &auditEvent{
		tenant:      req.TenantID,
		description: fmt.Sprintf("get_data_model_definition_tool : MCP server successfully fetched data model definition for tenant %s", req.TenantID),
	}
	return out, audit, nil
}

// projectAttributeDefinition is the six-field attribute projection shared by
// entity and relation type definitions.
func projectAttributeDefinition(attr map[string]interface{}) *doc {
	required, _ := attr["required"].(bool)
	searchable, _ := attr["searchable"].(bool)
	return newDoc().
		set("label", stringField(attr, "label")).
		set("name", stringField(attr, "name")).
		set("description", stringField(attr, "description")).
		set("type", stringField(attr, "type")).
		set("required", required).
		set("searchable", searchable)
}

func projectAttributeList(item map[string]interface{}) []interface{} {
	attrs := asList(item["attributes"])
	out := make([]interface{}, 0, len(attrs))
	for _, raw := range attrs {
		if attr := asMap(raw); attr != nil {
			out = append(out, projectAttributeDefinition(attr))
		}
	}
	return out
}

// typeDefinition fetches the business configuration and returns the
// projection of the first collection item whose uri matches. A miss renders
// an empty document.
func (r *Registry) typeDefinition(ctx context.Context, args map[string]interface{},
	argName, collection, toolName, errContext string,
	project func(map[string]interface{}) *doc) (interface{}, *auditEvent, error) {

	typeURI, _ := args[argName].(string)
	req := request.TypeDefinition{TypeURI: typeURI}
	if tenant, ok := args["tenant_id"].(string); ok {
		req.TenantID = tenant
	}
	if err := req.Validate(r.tenant); err != nil {
		return nil, nil, err
	}

	cfg, err := r.fetchBusinessConfig(ctx, req.TenantID)
	if err != nil {
		return nil, nil, err
	}

	var payload interface{} = map[string]interface{}{}
	for _, raw := range configList(cfg, collection) {
		item := asMap(raw)
		if item != nil && stringField(item, "uri") == req.TypeURI {
			payload = project(item)
			break
		}
	}

	out, err := renderYAML(payload)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrCodeInternal,
			"An error occurred while retrieving %s: %v", errContext, err)
	}

	audit := &auditEvent{
		tenant: req.TenantID,
		description: fmt.Sprintf("%s : MCP server successfully fetched %s definition for tenant %s",
			toolName, req.TypeURI, req.TenantID),
	}
	return out, audit, nil
}

func (r *Registry) getEntityTypeDefinition(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.typeDefinition(ctx, args, "entity_type", "entityTypes",
		"get_entity_type_definition_tool", "entity type definition",
		func(item map[string]interface{}) *doc {
			return newDoc().
				set("uri", stringField(item, "uri")).
				set("label", stringField(item, "label")).
				set("description", stringField(item, "description")).
				set("attributes", projectAttributeList(item))
		})
}

func (r *Registry) getChangeRequestTypeDefinition(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.typeDefinition(ctx, args, "change_request_type", "changeRequestTypes",
		"get_change_request_type_definition_tool", "change request type definition",
		projectChangeRequestType)
}

func (r *Registry) getRelationTypeDefinition(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.typeDefinition(ctx, args, "relation_type", "relationTypes",
		"get_relation_type_definition_tool", "relation type definition",
		func(item map[string]interface{}) *doc {
			return newDoc().
				set("uri", stringField(item, "uri")).
				set("label", stringField(item, "label")).
				set("description", stringField(item, "description")).
				set("startObject", stringField(asMap(item["startObject"]), "objectTypeURI")).
				set("endObject", stringField(asMap(item["endObject"]), "objectTypeURI")).
				set("attributes", projectAttributeList(item))
		})
}

func (r *Registry) getInteractionTypeDefinition(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.typeDefinition(ctx, args, "interaction_type", "interactionTypes",
		"get_interaction_type_definition_tool", "interaction type definition",
		func(item map[string]interface{}) *doc {
			memberTypes := make([]interface{}, 0)
			for _, raw := range asList(item["memberTypes"]) {
				if mt := asMap(raw); mt != nil {
					memberTypes = append(memberTypes, newDoc().set("name", stringField(mt, "name")))
				}
			}
			attrs := make([]interface{}, 0)
			for _, raw := range asList(item["attributes"]) {
				if attr := asMap(raw); attr != nil {
					attrs = append(attrs, newDoc().
						set("label", stringField(attr, "label")).
						set("name", stringField(attr, "name")).
						set("type", stringField(attr, "type")))
				}
			}
			return newDoc().
				set("uri", stringField(item, "uri")).
				set("label", stringField(item, "label")).
				set("memberTypes", memberTypes).
				set("attributes", attrs)
		})
}

func (r *Registry) getGraphTypeDefinition(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.typeDefinition(ctx, args, "graph_type", "graphTypes",
		"get_graph_type_definition_tool", "graph type definition",
		projectGraphType)
}

func (r *Registry) getGroupingTypeDefinition(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return r.typeDefinition(ctx, args, "grouping_type", "groupingTypes",
		"get_grouping_type_definition_tool", "grouping type definition",
		func(item map[string]interface{}) *doc {
			return newDoc().
				set("uri", stringField(item, "uri")).
				set("description", stringField(item, "description")).
				set("source", stringField(item, "source"))
		})
}
