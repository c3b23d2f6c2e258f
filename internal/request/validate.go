// Package request defines the typed request structs for every tool
// operation. Each struct validates and normalizes itself before any network
// traffic happens, so a rejected request costs zero API calls.
package request

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

// Validation limits shared across operations.
const (
	MaxQueryLength      = 200
	MaxFilterLength     = 1000
	MaxEntityTypeLength = 50
	MaxResultsLimit     = 100

	// MaxSearchWindow bounds offset+max_results for deep paging.
	MaxSearchWindow = 10000
)

var (
	entityIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9-_/]{5,30}$`)
	relationIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_/]{5,30}$`)
	tenantIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9-_]{3,30}$`)

	// unsafeChars are stripped from free-text inputs before they reach a
	// filter or query expression.
	unsafeChars = regexp.MustCompile(`[<>'";]`)
)

// ExtractID returns the trailing segment of an entity or relation URI.
// Already-bare IDs pass through unchanged.
func ExtractID(uri string) string {
	if uri == "" {
		return "N/A"
	}
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

// Sanitize strips characters that could break out of a filter expression.
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "")
}

func validateEntityID(field, value string) error {
	if !entityIDPattern.MatchString(value) {
		return errors.Validation(field, "must match ^[a-zA-Z0-9-_/]{5,30}$")
	}
	return nil
}

func validateRelationID(field, value string) error {
	if !relationIDPattern.MatchString(value) {
		return errors.Validation(field, "must match ^[a-zA-Z0-9-_/]{5,30}$")
	}
	return nil
}

func validateTenantID(value string) error {
	if !tenantIDPattern.MatchString(value) {
		return errors.Validation("tenant_id", "must match ^[a-zA-Z0-9-_]{3,30}$")
	}
	return nil
}

// normalizeTenant fills in the default tenant and validates the result.
func normalizeTenant(tenant *string, defaultTenant string) error {
	if *tenant == "" {
		*tenant = defaultTenant
	}
	return validateTenantID(*tenant)
}

func validateFilter(filter string) (string, error) {
	if filter == "" {
		return "", nil
	}
	if len(filter) > MaxFilterLength {
		return "", errors.Validation("filter", fmt.Sprintf("must be at most %d characters", MaxFilterLength))
	}
	if strings.Count(filter, "(") != strings.Count(filter, ")") {
		return "", errors.Validation("filter", "unbalanced parentheses in filter expression")
	}
	return Sanitize(filter), nil
}

func validateWindow(offset, maxResults int) error {
	if offset < 0 {
		return errors.Validation("offset", "must be non-negative")
	}
	if offset+maxResults > MaxSearchWindow {
		return errors.Validation("offset", fmt.Sprintf("the sum of offset and max_results must not exceed %d", MaxSearchWindow))
	}
	return nil
}
