package reltio

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/reltio-open/reltio-mcp-server/pkg/logging"
)

// ActivityLogLabel tags every audit record written by this server.
const ActivityLogLabel = "OPEN_MCP_SERVER"

// ActivityRecorder posts audit records to the tenant's activities endpoint.
// Recording is best effort: failures are logged and never surface to the
// caller of the primary operation.
type ActivityRecorder struct {
	client *Client
	logger *slog.Logger
}

// NewActivityRecorder creates a recorder bound to the given client.
func NewActivityRecorder(client *Client) *ActivityRecorder {
	return &ActivityRecorder{
		client: client,
		logger: logging.GetGlobalLogger("reltio.activity"),
	}
}

// GenerateActivityID produces a correlation ID in the xxxx-xxxx-xxxxxxxx
// format, e.g. d7f7-22cd-a022424f.
func GenerateActivityID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return hex[:4] + "-" + hex[4:8] + "-" + hex[8:16]
}

// Record posts one audit entry for the tenant. Errors are returned for the
// caller to log and drop.
func (r *ActivityRecorder) Record(ctx context.Context, tenant, description string) error {
	activityID := GenerateActivityID()

	url := r.client.URLs().APIURL("activities", FamilyAPI, tenant)
	headers, err := r.client.Headers(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "audit record authentication failed",
			slog.String("tenant", tenant),
			slog.String("error", err.Error()),
		)
		return err
	}
	headers["ActivityID"] = activityID

	body := map[string]interface{}{
		"label":       ActivityLogLabel,
		"description": description,
	}

	_, err = r.client.Do(ctx, Request{
		URL:     url,
		Method:  "POST",
		Body:    body,
		Headers: headers,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "audit record failed",
			slog.String("tenant", tenant),
			slog.String("activity_id", activityID),
			slog.String("error", err.Error()),
		)
		return err
	}

	r.logger.DebugContext(ctx, "audit record written",
		slog.String("tenant", tenant),
		slog.String("activity_id", activityID),
	)
	return nil
}
