package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/database"
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
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
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
