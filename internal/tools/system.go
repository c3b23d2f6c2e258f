package tools

import "context"

// exampleUsage shows one invocation per tool for the capabilities listing.
var exampleUsage = []string{
	`search_entities_tool(filter="containsWordStartingWith(attributes,'John')")`,
	`search_entities_tool(filter="equals(type,'configuration/entityTypes/Individual')")`,
	`get_entity_tool(entity_id='118C6Ujm')`,
	`update_entity_attributes_tool(entity_id='118C6Ujm', updates=[{'type': 'UPDATE_ATTRIBUTE', 'uri': 'entities/118C6Ujm/attributes/FirstName/3Z3Tq6BBE', 'newValue': [{'value': 'John'}]}])`,
	`get_entity_matches_tool(entity_id='118C6Ujm')`,
	`get_entity_match_history_tool(entity_id='118C6Ujm')`,
	`get_relation_tool(relation_id='relation_id')`,
	`find_entities_by_match_score_tool(start_match_score=50, end_match_score=100, entity_type='Individual', tenant_id='tenant_id', max_results=10)`,
	`find_entities_by_confidence_tool(confidence_level='High confidence', entity_type='Individual', tenant_id='tenant_id', max_results=10)`,
	`get_total_matches_tool(min_matches=0, tenant_id='tenant_id')`,
	`get_total_matches_by_entity_type_tool(min_matches=0, tenant_id='tenant_id')`,
	`merge_entities_tool(entity_ids=['entities/123abc', 'entities/456def'], tenant_id='tenant_id')`,
	`reject_entity_match_tool(source_id='123abc', target_id='456def', tenant_id='tenant_id')`,
	`unmerge_entity_by_contributor_tool(origin_entity_id='123abc', contributor_entity_id='456def', tenant_id='tenant_id')`,
	`unmerge_entity_tree_by_contributor_tool(origin_entity_id='123abc', contributor_entity_id='456def', tenant_id='tenant_id')`,
	`export_merge_tree_tool(email_id='dummy.svr@email.com', tenant_id='tenant_id')`,
	`get_business_configuration_tool(tenant_id='tenant_id')`,
	`get_tenant_permissions_metadata_tool(tenant_id='tenant_id')`,
	`get_merge_activities_tool(timestamp_gt=1744191663000, event_types=['ENTITIES_MERGED_MANUALLY'], entity_type='Individual')`,
	`get_tenant_metadata_tool(tenant_id='tenant_id')`,
	`get_data_model_definition_tool(object_type=['entityTypes'], tenant_id='tenant_id')`,
	`get_entity_type_definition_tool(entity_type='configuration/entityTypes/Organization', tenant_id='tenant_id')`,
	`get_change_request_type_definition_tool(change_request_type='configuration/changeRequestTypes/default', tenant_id='tenant_id')`,
	`get_relation_type_definition_tool(relation_type='configuration/relationTypes/OrganizationIndividual', tenant_id='tenant_id')`,
	`get_interaction_type_definition_tool(interaction_type='configuration/interactionTypes/PurchaseOrder', tenant_id='tenant_id')`,
	`get_graph_type_definition_tool(graph_type='configuration/graphTypes/Hierarchy', tenant_id='tenant_id')`,
	`get_grouping_type_definition_tool(grouping_type='configuration/groupingTypes/Household', tenant_id='tenant_id')`,
}

// listCapabilities answers the help listing: every tool with its parameters,
// the prompts, and example invocations.
func (r *Registry) listCapabilities(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error) {
	return newDoc().
		set("server_name", r.serverName).
		set("tools", definitions).
		set("prompts", []interface{}{
			newDoc().
				set("name", "duplicate_review").
				set("description", "Helps review potential duplicates for an entity"),
		}).
		set("example_usage", exampleUsage), nil, nil
}
