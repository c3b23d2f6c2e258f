package tools

// definitions is the tools/list metadata, in the order tools are presented
// to clients.
var definitions = []Definition{
	{
		Name:        "search_entities_tool",
		Description: "Search for entities with advanced filtering",
		Parameters:  []string{"filter", "entity_type", "tenant_id", "max_results", "sort", "order", "select", "options", "activeness", "offset"},
	},
	{
		Name:        "get_entity_tool",
		Description: "Get detailed information about a Reltio entity by ID",
		Parameters:  []string{"entity_id", "filter_field", "tenant_id"},
	},
	{
		Name:        "update_entity_attributes_tool",
		Description: "Update specific attributes of an entity in Reltio",
		Parameters:  []string{"entity_id", "updates", "tenant_id"},
	},
	{
		Name:        "get_entity_matches_tool",
		Description: "Find potential matches for a specific entity",
		Parameters:  []string{"entity_id", "tenant_id", "max_results"},
	},
	{
		Name:        "get_entity_match_history_tool",
		Description: "Find the match history for a specific entity",
		Parameters:  []string{"entity_id", "tenant_id"},
	},
	{
		Name:        "get_relation_tool",
		Description: "Get detailed information about a Reltio relation by ID",
		Parameters:  []string{"relation_id", "tenant_id"},
	},
	{
		Name:        "find_entities_by_match_score_tool",
		Description: "Find all potential matches by match score range",
		Parameters:  []string{"start_match_score", "end_match_score", "entity_type", "tenant_id", "max_results", "offset"},
	},
	{
		Name:        "find_entities_by_confidence_tool",
		Description: "Find all potential matches by confidence level",
		Parameters:  []string{"confidence_level", "entity_type", "tenant_id", "max_results", "offset"},
	},
	{
		Name:        "get_total_matches_tool",
		Description: "Get the total count of potential matches in the tenant",
		Parameters:  []string{"min_matches", "tenant_id"},
	},
	{
		Name:        "get_total_matches_by_entity_type_tool",
		Description: "Get the facet counts of potential matches by entity type",
		Parameters:  []string{"min_matches", "tenant_id"},
	},
	{
		Name:        "merge_entities_tool",
		Description: "Merge multiple entities in Reltio",
		Parameters:  []string{"entity_ids", "tenant_id"},
	},
	{
		Name:        "reject_entity_match_tool",
		Description: "Mark an entity as not a match (reject the potential duplicate)",
		Parameters:  []string{"source_id", "target_id", "tenant_id"},
	},
	{
		Name:        "unmerge_entity_by_contributor_tool",
		Description: "Unmerge a contributor entity from a merged entity, keeping profiles merged beneath it intact",
		Parameters:  []string{"origin_entity_id", "contributor_entity_id", "tenant_id"},
	},
	{
		Name:        "unmerge_entity_tree_by_contributor_tool",
		Description: "Unmerge a contributor entity and all profiles merged beneath it from a merged entity",
		Parameters:  []string{"origin_entity_id", "contributor_entity_id", "tenant_id"},
	},
	{
		Name:        "export_merge_tree_tool",
		Description: "Export the merge tree for all entities in a specific tenant",
		Parameters:  []string{"email_id", "tenant_id"},
	},
	{
		Name:        "get_business_configuration_tool",
		Description: "Get the business configuration for a specific tenant",
		Parameters:  []string{"tenant_id"},
	},
	{
		Name:        "get_tenant_permissions_metadata_tool",
		Description: "Get the permissions and security metadata for a specific tenant",
		Parameters:  []string{"tenant_id"},
	},
	{
		Name:        "get_merge_activities_tool",
		Description: "Retrieve activity events related to entity merges with flexible filtering options",
		Parameters:  []string{"timestamp_gt", "event_types", "timestamp_lt", "entity_type", "user", "tenant_id", "offset", "max_results"},
	},
	{
		Name:        "get_tenant_metadata_tool",
		Description: "Get the tenant metadata details from the business configuration for a specific tenant",
		Parameters:  []string{"tenant_id"},
	},
	{
		Name:        "get_data_model_definition_tool",
		Description: "Get complete details about the data model definition from the business configuration for a specific tenant",
		Parameters:  []string{"object_type", "tenant_id"},
	},
	{
		Name:        "get_entity_type_definition_tool",
		Description: "Get the entity type definition for a specified entity type from the business configuration of a specific tenant",
		Parameters:  []string{"entity_type", "tenant_id"},
	},
	{
		Name:        "get_change_request_type_definition_tool",
		Description: "Get the change request type definition for a specified change request type from the business configuration of a specific tenant",
		Parameters:  []string{"change_request_type", "tenant_id"},
	},
	{
		Name:        "get_relation_type_definition_tool",
		Description: "Get the relation type definition for a specified relation type from the business configuration of a specific tenant",
		Parameters:  []string{"relation_type", "tenant_id"},
	},
	{
		Name:        "get_interaction_type_definition_tool",
		Description: "Get the interaction type definition for a specified interaction type from the business configuration of a specific tenant",
		Parameters:  []string{"interaction_type", "tenant_id"},
	},
	{
		Name:        "get_graph_type_definition_tool",
		Description: "Get the graph type definition for a specified graph type from the business configuration of a specific tenant",
		Parameters:  []string{"graph_type", "tenant_id"},
	},
	{
		Name:        "get_grouping_type_definition_tool",
		Description: "Get the grouping type definition for a specified grouping type from the business configuration of a specific tenant",
		Parameters:  []string{"grouping_type", "tenant_id"},
	},
	{
		Name:        "capabilities_tool",
		Description: "Display this help information",
		Parameters:  []string{},
	},
}
