package sql_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/repositories/repotest"
	"github.com/fsdevblog/shortlinks/internal/repositories/sql"
)

func TestLinkRepo(t *testing.T) {
	suite.Run(t, &repotest.StoreSuite{
		NewStore: func(t *testing.T) repotest.Store {
			conn, err := db.NewSQLite(filepath.Join(t.TempDir(), "links.sqlite"))
			require.NoError(t, err)
			t.Cleanup(func() {
				_ = db.Close(t.Context(), conn)
			})
			return sql.NewLinkRepo(conn)
		},
	})
}
