package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjcal.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "calendar", cfg.Mongo.Database)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjcal.yaml")

	want := &Config{
		Listen:   "0.0.0.0:9000",
		Timezone: "Europe/Berlin",
		Auth:     AuthConfig{Username: "admin", Password: "secret"},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "calendar_test",
		},
		PurgeCron: "0 3 * * *",
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: UTC\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "calendar", cfg.Mongo.Database)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	t.Setenv(EnvUsername, "env-user")
	t.Setenv(EnvPassword, "env-pass")
	t.Setenv(EnvMongoURI, "mongodb://env-host:27017")

	cfg := &Config{
		Auth:  AuthConfig{Username: "file-user", Password: "file-pass"},
		Mongo: MongoConfig{URI: "mongodb://file-host:27017"},
	}
	cfg.ApplyEnv()

	assert.Equal(t, "env-user", cfg.Auth.Username)
	assert.Equal(t, "env-pass", cfg.Auth.Password)
	assert.Equal(t, "mongodb://env-host:27017", cfg.Mongo.URI)
}

func TestApplyEnvKeepsFileValuesWhenUnset(t *testing.T) {
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")
	t.Setenv(EnvMongoURI, "")

	cfg := &Config{
		Auth:  AuthConfig{Username: "file-user", Password: "file-pass"},
		Mongo: MongoConfig{URI: "mongodb://file-host:27017"},
	}
	cfg.ApplyEnv()

	assert.Equal(t, "file-user", cfg.Auth.Username)
	assert.Equal(t, "mongodb://file-host:27017", cfg.Mongo.URI)
}

func TestSaveRejectsNilConfig(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "subjcal.yaml"), nil)
	assert.Error(t, err)
}
