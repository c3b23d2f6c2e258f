package tools

import (
	"context"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/reltio-open/reltio-mcp-server/internal/reltio"
	"github.com/reltio-open/reltio-mcp-server/pkg/config"
	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

// Caller is the slice of the Reltio client the registry needs. The concrete
// client satisfies it; tests substitute a stub.
type Caller interface {
	Do(ctx context.Context, req reltio.Request) (interface{}, error)
}

// Auditor writes best-effort audit records for successful tool calls.
type Auditor interface {
	Record(ctx context.Context, tenant, description string) error
}

// Definition describes one tool for tools/list and the capabilities listing.
type Definition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

// auditEvent is emitted by a handler after its primary result succeeded.
type auditEvent struct {
	tenant      string
	description string
}

// handler executes one tool. A non-nil auditEvent is recorded only when the
// handler returned without error.
type handler func(ctx context.Context, args map[string]interface{}) (interface{}, *auditEvent, error)

// Registry dispatches tool calls against the Reltio API.
type Registry struct {
	caller     Caller
	auditor    Auditor
	urls       *reltio.URLBuilder
	tenant     string
	serverName string
	logger     *slog.Logger
}

// NewRegistry builds the registry from server settings and a Reltio client.
func NewRegistry(cfg *config.Settings, caller Caller, auditor Auditor) *Registry {
	return &Registry{
		caller:     caller,
		auditor:    auditor,
		urls:       reltio.NewURLBuilder(cfg.Environment),
		tenant:     cfg.Tenant,
		serverName: cfg.ServerName,
		logger:     logging.GetGlobalLogger("tools"),
	}
}

// HandleListTools returns the metadata of every registered tool.
func (r *Registry) HandleListTools() []Definition {
	return definitions
}

// HandleCallTool runs the named tool. Tool-level failures come back as the
// error envelope payload, not as an error: the model is expected to read
// them. Only an unknown tool name is a caller error.
func (r *Registry) HandleCallTool(ctx context.Context, name string, args map[string]interface{}) (result interface{}, err error) {
	h := r.handlerFor(name)
	if h == nil {
		return nil, errors.Newf(errors.ErrCodeInvalidRequest, "unknown tool: %s", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "tool panicked",
				slog.String("tool", name),
				slog.Any("panic", rec),
			)
			result = errors.Envelope(errors.Newf(errors.ErrCodeServer,
				"An unexpected error occurred while executing %s", name))
			err = nil
		}
	}()

	payload, audit, herr := h(ctx, args)
	if herr != nil {
		r.logger.WarnContext(ctx, "tool call failed",
			slog.String("tool", name),
			slog.String("error", herr.Error()),
		)
		return errors.Envelope(herr), nil
	}

	if audit != nil {
		// Best effort. The recorder logs its own failures.
		_ = r.auditor.Record(ctx, audit.tenant, audit.description)
	}
	return payload, nil
}

func (r *Registry) handlerFor(name string) handler {
	switch name {
	case "search_entities_tool":
		return r.searchEntities
	case "get_entity_tool":
		return r.getEntity
	case "update_entity_attributes_tool":
		return r.updateEntityAttributes
	case "get_entity_matches_tool":
		return r.getEntityMatches
	case "get_entity_match_history_tool":
		return r.getEntityMatchHistory
	case "merge_entities_tool":
		return r.mergeEntities
	case "reject_entity_match_tool":
		return r.rejectEntityMatch
	case "unmerge_entity_by_contributor_tool":
		return r.unmergeEntityByContributor
	case "unmerge_entity_tree_by_contributor_tool":
		return r.unmergeEntityTreeByContributor
	case "export_merge_tree_tool":
		return r.exportMergeTree
	case "get_relation_tool":
		return r.getRelationDetails
	case "find_entities_by_match_score_tool":
		return r.findMatchesByMatchScore
	case "find_entities_by_confidence_tool":
		return r.findMatchesByConfidence
	case "get_total_matches_tool":
		return r.getTotalMatches
	case "get_total_matches_by_entity_type_tool":
		return r.getTotalMatchesByEntityType
	case "get_merge_activities_tool":
		return r.getMergeActivities
	case "get_business_configuration_tool":
		return r.getBusinessConfiguration
	case "get_tenant_permissions_metadata_tool":
		return r.getTenantPermissionsMetadata
	case "get_tenant_metadata_tool":
		return r.getTenantMetadata
	case "get_data_model_definition_tool":
		return r.getDataModelDefinition
	case "get_entity_type_definition_tool":
		return r.getEntityTypeDefinition
	case "get_change_request_type_definition_tool":
		return r.getChangeRequestTypeDefinition
	case "get_relation_type_definition_tool":
		return r.getRelationTypeDefinition
	case "get_interaction_type_definition_tool":
		return r.getInteractionTypeDefinition
	case "get_graph_type_definition_tool":
		return r.getGraphTypeDefinition
	case "get_grouping_type_definition_tool":
		return r.getGroupingTypeDefinition
	case "capabilities_tool":
		return r.listCapabilities
	default:
		return nil
	}
}

// decodeArgs maps raw JSON-RPC arguments onto a typed request struct.
func decodeArgs(args map[string]interface{}, out interface{}) error {
	if err := mapstructure.Decode(args, out); err != nil {
		return errors.Wrapf(err, errors.ErrCodeValidation, "Invalid input parameters: %v", err)
	}
	return nil
}

// failureText carries the per-tool messages used when an API call fails.
// Empty fields fall through to the generic fallback.
type failureText struct {
	notFound   string
	badRequest string
	fallback   string
}

// apiFailure converts a client error into the message the tool reports.
// Authentication and security failures keep their fixed wording regardless
// of the tool.
func apiFailure(err error, txt failureText) error {
	switch {
	case errors.Is(err, errors.ErrCodeAuthentication):
		return errors.New(errors.ErrCodeAuthentication, "Failed to authenticate with Reltio API")
	case errors.Is(err, errors.ErrCodeSecurity):
		return errors.New(errors.ErrCodeSecurity, "Security requirements not met")
	case txt.notFound != "" && errors.Is(err, errors.ErrCodeNotFound):
		return errors.New(errors.ErrCodeNotFound, txt.notFound)
	case txt.badRequest != "" && errors.Is(err, errors.ErrCodeValidation):
		return errors.Wrapf(err, errors.ErrCodeInvalidRequest, "%s: %v", txt.badRequest, err)
	default:
		return errors.Wrap(err, errors.ErrCodeServer, txt.fallback)
	}
}
