package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/money"
	pg "github.com/ariefcatur/go-storefront.git/internal/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRepo(t *testing.T) (*Repo, func()) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pg.Connect(ctx, dsn, pg.Options{MaxConns: 2})
	require.NoError(t, err)

	repo := &Repo{DB: pool}
	require.NoError(t, repo.EnsureSchema(ctx))

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return repo, cleanup
}

func TestRepo_ListProducts_Empty(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	ps, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestRepo_SeedAndList(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, Default()))
	// seeding twice keeps one row per sku
	require.NoError(t, repo.Seed(ctx, Default()))

	ps, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, "Bronton", ps[0].Name)
	assert.Equal(t, money.Cents(300000), ps[0].PriceCents)
	assert.Equal(t, "F-65", ps[2].SKU)
}

func TestRepo_InitSeedsFreshDatabase(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Init(ctx, Default()))
	ps, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, []string{"BRONTON", "E-BMX", "F-65"}, []string{ps[0].SKU, ps[1].SKU, ps[2].SKU})

	// operator edits survive a restart
	_, err = repo.DB.Exec(ctx, `UPDATE products SET price_cents = 1 WHERE sku = 'F-65'`)
	require.NoError(t, err)
	require.NoError(t, repo.Init(ctx, Default()))
	ps, err = repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, money.Cents(1), ps[2].PriceCents)
}
