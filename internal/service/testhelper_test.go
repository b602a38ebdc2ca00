package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/database"
	"github.com/mesterwork/worksite-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory sqlite database and migrates
// the full schema into it
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// tenantCtx returns a context authenticated as the given tenant
func tenantCtx(email string) context.Context {
	return auth.WithTenantContext(context.Background(), &auth.TenantContext{
		UserEmail:   email,
		TenantEmail: email,
	})
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }

// findItem picks a work item by name; list order is not guaranteed for
// items created in one batch
func findItem(t *testing.T, items []domain.WorkItemDTO, name string) *domain.WorkItemDTO {
	t.Helper()
	for i := range items {
		if items[i].Name == name {
			return &items[i]
		}
	}
	t.Fatalf("work item %q not found", name)
	return nil
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
