package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "metadump.yaml", `
engine: pg
host: db.internal
port: 6543
user: app
password: ""
database: shop
connect_timeout: 5s
output: out/metadata.json
log:
  level: debug
  format: json
upload:
  endpoint: localhost:9000
  bucket: dumps
  use_ssl: true
`)

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "out/metadata.json", f.Output)
	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, "json", f.Log.Format)

	p, err := f.Partial()
	require.NoError(t, err)
	assert.Equal(t, database.EnginePostgres, p.Engine)
	assert.Equal(t, 6543, p.Port)
	assert.Equal(t, 5*time.Second, p.ConnectTimeout)
	require.NotNil(t, p.Password)
	assert.Equal(t, "", *p.Password)

	store := f.Upload.Store()
	assert.True(t, store.Enabled())
	assert.True(t, store.UseSSL)
	assert.Equal(t, "localhost:9000", store.Endpoint)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errs.IsInvalidInput(err))

	_, err = LoadFile(writeFile(t, "bad.yaml", "hostname: typo\n"))
	assert.True(t, errs.IsInvalidInput(err), "unknown keys are rejected")

	f, err := LoadFile(writeFile(t, "engine.yaml", "engine: oracle\n"))
	require.NoError(t, err)
	_, err = f.Partial()
	assert.True(t, errs.IsInvalidInput(err))
}

func TestLoadFile_EmptyPathAndEmptyFile(t *testing.T) {
	f, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, &File{}, f)

	f, err = LoadFile(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, &File{}, f)
}

func TestFromEnv(t *testing.T) {
	p, err := FromEnv(envMap(map[string]string{
		EnvEngine:         "sql server",
		EnvHost:           "mssql",
		EnvPort:           "14330",
		EnvPassword:       "",
		EnvDatabase:       "Shop",
		EnvConnectTimeout: "3s",
	}))
	require.NoError(t, err)

	assert.Equal(t, database.EngineSQLServer, p.Engine)
	assert.Equal(t, "mssql", p.Host)
	assert.Equal(t, 14330, p.Port)
	assert.Equal(t, "", p.User)
	require.NotNil(t, p.Password, "an empty password that is set still counts")
	assert.Equal(t, 3*time.Second, p.ConnectTimeout)
}

func TestFromEnv_Invalid(t *testing.T) {
	for _, env := range []map[string]string{
		{EnvPort: "abc"},
		{EnvPort: "70000"},
		{EnvEngine: "db2"},
		{EnvConnectTimeout: "soon"},
	} {
		_, err := FromEnv(envMap(env))
		assert.True(t, errs.IsInvalidInput(err), "%v", env)
	}
}

func TestMerge_Precedence(t *testing.T) {
	pw := "from-flag"
	file := Partial{Engine: database.EngineMySQL, Host: "file-host", Port: 3307, User: "file-user", Database: "file-db"}
	env := Partial{Host: "env-host", User: "env-user"}
	flags := Partial{Host: "flag-host", Password: &pw}

	got := file.Merge(env).Merge(flags)

	assert.Equal(t, database.EngineMySQL, got.Engine)
	assert.Equal(t, "flag-host", got.Host)
	assert.Equal(t, "env-user", got.User)
	assert.Equal(t, 3307, got.Port)
	assert.Equal(t, "file-db", got.Database)
	assert.Equal(t, "from-flag", *got.Password)
}

func TestPartial_Config(t *testing.T) {
	pw := "secret"
	cfg, err := Partial{Engine: database.EnginePostgres, Host: "h", Port: 5432, User: "u", Password: &pw, Database: "d"}.Config()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Password)

	_, err = Partial{Engine: database.EnginePostgres, Host: "h", Port: 5432}.Config()
	assert.True(t, errs.IsInvalidInput(err))
}

func TestUploadMerge(t *testing.T) {
	file := Upload{Endpoint: "file:9000", Bucket: "dumps", AccessKey: "file-key"}
	env := UploadFromEnv(envMap(map[string]string{EnvUploadAccessKey: "env-key", EnvUploadSecretKey: "env-secret"}))

	got := file.Merge(env).Merge(Upload{Bucket: "flag-bucket"})
	assert.Equal(t, Upload{Endpoint: "file:9000", Bucket: "flag-bucket", AccessKey: "env-key", SecretKey: "env-secret"}, got)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "METADUMP_TEST_DOTENV_HOST"
	path := writeFile(t, ".env", key+"=from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	require.NoError(t, LoadDotEnv(path, true))
	assert.Equal(t, "from-dotenv", os.Getenv(key))

	missing := filepath.Join(t.TempDir(), ".env")
	assert.NoError(t, LoadDotEnv(missing, false))
	assert.True(t, errs.IsInvalidInput(LoadDotEnv(missing, true)))
}
