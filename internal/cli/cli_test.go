package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tasktimer/backend/internal/database"
	"tasktimer/backend/internal/models"
	"tasktimer/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// writeConfig points the CLI at a fresh SQLite file through a TOML config.
func writeConfig(t *testing.T) (configFile, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "tasktimer.db")
	configFile = filepath.Join(dir, "tasktimer.toml")

	content := fmt.Sprintf(`
[database]
driver = "sqlite"
sqlite_path = %q
log_level = "silent"
max_open_conns = 1

[cache]
summary_ttl = "30s"
`, dbPath)
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	for _, key := range []string{"DB_DRIVER", "DB_SQLITE_PATH", "DB_LOG_LEVEL", "REDIS_ENABLED", "ENVIRONMENT"} {
		t.Setenv(key, "")
	}
	return configFile, dbPath
}

func openTestPool(t *testing.T, dbPath string) *database.DatabasePool {
	t.Helper()
	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:       database.DriverSQLite,
		DSN:          dbPath,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestMigrateCommand(t *testing.T) {
	configFile, dbPath := writeConfig(t)

	var out bytes.Buffer
	require.NoError(t, run(&out, "--config", configFile, "migrate"))
	assert.Contains(t, out.String(), "Schema up to date (sqlite)")

	pool := openTestPool(t, dbPath)
	for _, table := range []string{"users", "tasks", "time_entries", "refresh_tokens"} {
		assert.True(t, pool.DB.Migrator().HasTable(table), table)
	}
}

func TestUsersDeleteCommand(t *testing.T) {
	configFile, dbPath := writeConfig(t)
	require.NoError(t, run(&bytes.Buffer{}, "--config", configFile, "migrate"))

	pool := openTestPool(t, dbPath)
	user, err := services.NewRegisterService(4).RegisterUser(pool.DB, services.RegistrationRequest{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	task := models.Task{
		ID:       uuid.Must(uuid.NewV4()),
		UserID:   user.ID,
		Title:    "Leftover",
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
	}
	require.NoError(t, pool.DB.Create(&task).Error)
	require.NoError(t, pool.Close())

	var out bytes.Buffer
	require.NoError(t, run(&out, "--config", configFile, "users", "delete", "ada"))
	assert.Contains(t, out.String(), "Deleted user ada")

	pool = openTestPool(t, dbPath)
	var users, tasks int64
	pool.DB.Model(&models.User{}).Count(&users)
	pool.DB.Model(&models.Task{}).Count(&tasks)
	assert.Zero(t, users)
	assert.Zero(t, tasks)
}

func TestUsersDeleteCommand_UnknownUser(t *testing.T) {
	configFile, _ := writeConfig(t)
	require.NoError(t, run(&bytes.Buffer{}, "--config", configFile, "migrate"))

	err := run(&bytes.Buffer{}, "--config", configFile, "users", "delete", "nobody")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestUsersDeleteCommand_RequiresUsername(t *testing.T) {
	configFile, _ := writeConfig(t)

	err := run(&bytes.Buffer{}, "--config", configFile, "users", "delete")
	assert.Error(t, err)
}

func TestBadConfigFile(t *testing.T) {
	err := run(&bytes.Buffer{}, "--config", filepath.Join(t.TempDir(), "missing.toml"), "migrate")
	assert.ErrorContains(t, err, "failed to load configuration")
}
