package repository

import (
	"context"
	"strings"

	"github.com/mesterwork/worksite-api/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (updated_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "updatedAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config.
// fieldMap maps API field names to database column names; falls back to
// defaultColumn when the field is not whitelisted.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyTenantFilter applies the multi-tenant filter to a GORM query.
// Every tenant-scoped query goes through here so a record belonging to
// another tenant behaves exactly like a record that does not exist.
// A context without a tenant matches nothing rather than everything.
func ApplyTenantFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return query.Where("1 = 0")
	}
	return query.Where("tenant_email = ?", tenant)
}

// ApplyTenantFilterWithAlias applies the tenant filter using a table alias.
// Use this when joining multiple tables and you need to specify which
// table's tenant_email to filter on.
func ApplyTenantFilterWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	tenant := auth.TenantEmailFromContext(ctx)
	if tenant == "" {
		return query.Where("1 = 0")
	}
	return query.Where(tableAlias+".tenant_email = ?", tenant)
}
