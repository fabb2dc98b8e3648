package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  host: 0.0.0.0
  port: 8081
database:
  host: localhost
  user: giveup
  password: secret
  dbname: giveup
aws:
  region: eu-central-1
  s3_bucket: giveup-images
auth:
  issuer: https://securetoken.example.com/giveup
  audience: giveup
  provider_secret: provider-secret
  session_secret: session-secret
  session_ttl: 72h
log:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 72*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxImageBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.APNs.PushEnabled())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("GIVEUP_SERVER_PORT", "9090")
	t.Setenv("GIVEUP_AWS_S3BUCKET", "other-bucket")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "other-bucket", cfg.AWS.S3Bucket)
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoadRejectsMissingSessionSecret(t *testing.T) {
	body := `
database:
  host: localhost
  dbname: giveup
aws:
  s3_bucket: giveup-images
auth:
  provider_secret: provider-secret
`
	_, err := Load(writeConfig(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "giveup", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=giveup sslmode=disable", db.DSN())
}
