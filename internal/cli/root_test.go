package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "calendar.db"))
	t.Setenv("AUTH_JWT_SECRET", "cli-test-secret-0123456789")
	t.Setenv("AUTH_ADMIN_PASSWORD", "ramadan-2026")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "init-db", "worker", "sweep-sessions"})
}

func TestInitDB_SeedsThenRepairsIdempotently(t *testing.T) {
	setTestEnv(t)

	out, err := execute(t, "init-db")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted=31 repaired=0 unchanged=0")

	out, err = execute(t, "init-db")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted=0 repaired=0 unchanged=31")

	out, err = execute(t, "init-db", "--fresh")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted=31")
}

func TestSweepSessions(t *testing.T) {
	setTestEnv(t)

	_, err := execute(t, "init-db")
	require.NoError(t, err)

	out, err := execute(t, "sweep-sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 0 expired sessions")
}

func TestWorker_RequiresBroker(t *testing.T) {
	setTestEnv(t)
	t.Setenv("RABBITMQ_URL", "")

	_, err := execute(t, "worker")
	assert.ErrorContains(t, err, "rabbitmq.url is required")
}

func TestInvalidConfig(t *testing.T) {
	setTestEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "short")

	_, err := execute(t, "init-db")
	assert.ErrorContains(t, err, "jwt_secret")
}
