package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/household-finance/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Household.ID)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 5, cfg.Jobs.Workers)
	assert.Equal(t, 0, cfg.Jobs.MaxRetries)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.NotEmpty(t, cfg.Recurring.Keywords)

	member, err := cfg.Household.DefaultMember()
	require.NoError(t, err)
	assert.Equal(t, domain.MemberJoint, member)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "custom.yaml", `
household:
  id: casa-silva
  member: Esposa
storage:
  backend: bigquery
  bigquery:
    project: my-project
    dataset: finance
ai:
  timeout: 45s
recurring:
  keywords: [netflix, ginasio]
server:
  port: 9090
log:
  format: json
jobs:
  max_retries: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "casa-silva", cfg.Household.ID)
	assert.Equal(t, BackendBigQuery, cfg.Storage.Backend)
	assert.Equal(t, "my-project", cfg.Storage.BigQuery.Project)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, []string{"netflix", "ginasio"}, cfg.Recurring.Keywords)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Jobs.MaxRetries)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	writeFile(t, dir, "finance.yaml", "household:\n  id: from-cwd\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-cwd", cfg.Household.ID)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FINANCE_HOUSEHOLD_ID", "env-house")
	t.Setenv("FINANCE_SERVER_PORT", "7000")
	t.Setenv("GEMINI_API_KEY", "key-from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-house", cfg.Household.ID)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "key-from-env", cfg.AI.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	// Registered so the variable set by godotenv is cleared after the test.
	t.Setenv("FINANCE_NOTION_DATABASE_ID", "")
	os.Unsetenv("FINANCE_NOTION_DATABASE_ID")
	writeFile(t, dir, ".env", "FINANCE_NOTION_DATABASE_ID=db-123\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "db-123", cfg.Notion.DatabaseID)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "storage:\n  backend: postgres\n"},
		{"bigquery without project", "storage:\n  backend: bigquery\n"},
		{"unknown member", "household:\n  member: Vizinho\n"},
		{"empty household", "household:\n  id: \"  \"\n"},
		{"zero workers", "jobs:\n  workers: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := writeFile(t, dir, "finance.yaml", tt.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	t.Run("explicit file missing", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
