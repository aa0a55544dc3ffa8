package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
	"github.com/spec-kit/case-service/internal/repository/memstore"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	repos := SeedRepositories{Users: store.Users(), Statuses: store.Statuses(), Cases: store.Cases()}

	require.NoError(t, Seed(ctx, repos, zap.NewNop()))
	require.NoError(t, Seed(ctx, repos, zap.NewNop()))

	statuses, err := store.Statuses().List(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 4)
	for i, status := range statuses {
		assert.Equal(t, i+1, status.ID)
		assert.Equal(t, domain.CaseStatusNames[i], status.Name)
	}

	sam, err := store.Users().GetByID(ctx, DemoAgentID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, sam.Role)

	total, err := store.Cases().Count(ctx, repository.CaseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	cases, err := store.Cases().List(ctx, repository.CaseFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.True(t, cases[0].IsAssignedTo(DemoSupervisorID))
	require.NotNil(t, cases[0].Assigner)
	assert.Equal(t, "John", cases[0].Assigner.Name)
	assert.Equal(t, domain.CaseStatusToBeReviewed, cases[0].Status.Name)
}

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)

	_, err = migrationFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "migrations", zap.NewNop()))
}
