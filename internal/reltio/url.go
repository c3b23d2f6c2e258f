package reltio

import "fmt"

// API URL families. The family is the path segment between /reltio/ and the
// tenant ID.
const (
	FamilyAPI         = "api"
	FamilyPermissions = "permissions"
)

// URLBuilder composes Reltio REST API URLs for one environment.
type URLBuilder struct {
	environment string
}

// NewURLBuilder returns a builder for the given environment, e.g. "dev" or
// "prod-usg".
func NewURLBuilder(environment string) *URLBuilder {
	return &URLBuilder{environment: environment}
}

// APIURL builds a tenant-scoped API URL:
// https://{environment}.reltio.com/reltio/{family}/{tenant}/{path}
func (b *URLBuilder) APIURL(path, family, tenant string) string {
	return fmt.Sprintf("https://%s.reltio.com/reltio/%s/%s/%s", b.environment, family, tenant, path)
}

// ExportJobURL builds an export job URL:
// https://{environment}.reltio.com/jobs/export/{tenant}/{path}
func (b *URLBuilder) ExportJobURL(path, tenant string) string {
	return fmt.Sprintf("https://%s.reltio.com/jobs/export/%s/%s", b.environment, tenant, path)
}
