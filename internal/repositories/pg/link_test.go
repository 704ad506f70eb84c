package pg_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/repositories/pg"
	"github.com/fsdevblog/shortlinks/internal/repositories/repotest"
)

func TestLinkRepo(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}
	suite.Run(t, &repotest.StoreSuite{
		NewStore: func(t *testing.T) repotest.Store {
			pool, err := db.NewPostgresConnection(t.Context(), dsn)
			require.NoError(t, err)
			t.Cleanup(pool.Close)
			require.NoError(t, db.MigratePostgres(t.Context(), pool))
			_, err = pool.Exec(t.Context(), `TRUNCATE links, clicks RESTART IDENTITY`)
			require.NoError(t, err)
			return pg.NewLinkRepo(pool)
		},
	})
}
