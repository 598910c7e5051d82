//go:build integration

package persistence_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/domain/shared/valueobject"
	"github.com/dropship/backend/internal/infrastructure/migration"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newPostgres starts a PostgreSQL container and applies the embedded migrations
func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("dropship_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return db
}

func TestPostgres_RepositoriesAgainstMigratedSchema(t *testing.T) {
	db := newPostgres(t)
	ctx := context.Background()

	rules := persistence.NewGormRuleRepository(db)
	seeded, err := persistence.SeedComplianceRules(ctx, rules, zap.NewNop())
	require.NoError(t, err)
	assert.Positive(t, seeded.Total())

	dup, err := eligibility.NewBrandRule("ＳＨＵＮ", "ebay", "", "")
	require.NoError(t, err)
	assert.ErrorIs(t, rules.SaveBrandRule(ctx, dup), shared.ErrAlreadyExists)

	set, err := eligibility.LoadRuleSet(ctx, rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"GB", "IE"}, set.ExcludedCountries(eligibility.CategoryKnife))

	products := persistence.NewGormProductRepository(db)
	p, err := eligibility.NewProduct("SUP-PG-1", eligibility.CategoryIncense,
		valueobject.MustMoney("980.5", valueobject.JPY), 120, "お香", "Incense sticks")
	require.NoError(t, err)
	require.NoError(t, products.Save(ctx, p))

	got, err := products.FindBySupplierID(ctx, "SUP-PG-1")
	require.NoError(t, err)
	assert.True(t, got.WholesalePrice.Equals(valueobject.MustMoney("980.5", valueobject.JPY)))

	other, err := eligibility.NewProduct("SUP-PG-1", eligibility.CategoryOther,
		valueobject.MustMoney("1", valueobject.JPY), 1, "", "Clash")
	require.NoError(t, err)
	assert.ErrorIs(t, products.Save(ctx, other), shared.ErrAlreadyExists)
}
