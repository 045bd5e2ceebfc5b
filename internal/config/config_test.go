package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chtemp moves the test into an empty directory and clears the tool's
// environment variables, so Load never picks up a stray inky-deploy.yaml,
// .env, or INKY_* setting from the caller's environment.
func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	vars := []string{
		"ENV_FILE", "INKY_HOST", "INKY_CROSS_TOOL", "INKY_TARGET",
		"INKY_BINARY", "INKY_DEPLOY_DIR", "INKY_TARGET_DIR", "INKY_GDB_PORT",
	}
	for _, k := range vars {
		k := k
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { _ = os.Setenv(k, v) })
		}
	}
	return dir
}

func TestDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "inky-gotchi", cfg.Host)
	assert.Equal(t, "cross", cfg.CrossTool)
	assert.Equal(t, "arm-unknown-linux-gnueabi", cfg.Target)
	assert.Equal(t, "inky-gotchi", cfg.Binary)
	assert.Equal(t, "inky-gotchi-deploy", cfg.DeployDir)
	assert.Equal(t, "target", cfg.TargetDir)
	assert.Equal(t, 1234, cfg.GDBPort)
}

func TestYAMLFile(t *testing.T) {
	dir := chtemp(t)

	yaml := "host: pi@10.0.0.7\ngdb_port: 2345\ntarget: armv7-unknown-linux-gnueabihf\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pi@10.0.0.7", cfg.Host)
	assert.Equal(t, 2345, cfg.GDBPort)
	assert.Equal(t, "armv7-unknown-linux-gnueabihf", cfg.Target)
	assert.Equal(t, "inky-gotchi", cfg.Binary, "unset keys keep their defaults")
}

func TestExplicitConfigMustExist(t *testing.T) {
	chtemp(t)

	_, err := Load("missing.yaml")
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := "host: from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(yaml), 0o644))
	t.Setenv("INKY_HOST", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Host)
}

func TestDotEnvFile(t *testing.T) {
	dir := chtemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INKY_DEPLOY_DIR=custom-deploy\n"), 0o644))
	// godotenv writes into the process environment; undo after the test.
	t.Cleanup(func() { _ = os.Unsetenv("INKY_DEPLOY_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "custom-deploy", cfg.DeployDir)
}

func TestPortValidation(t *testing.T) {
	t.Run("non-integer env port", func(t *testing.T) {
		chtemp(t)
		t.Setenv("INKY_GDB_PORT", "not-a-port")

		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("out of range port", func(t *testing.T) {
		chtemp(t)
		t.Setenv("INKY_GDB_PORT", "70000")

		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := chtemp(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("host: [\n"), 0o644))

		_, err := Load("")
		assert.Error(t, err)
	})
}
