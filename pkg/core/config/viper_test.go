package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewViper_ReadsFile(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, "mongo:\n  database: catalog\n  max-pool-size: 20\n")

	// Act
	v, err := newViper(FilePath(path))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "catalog", v.GetString("mongo.database"))
	assert.Equal(t, 20, v.GetInt("mongo.max-pool-size"))
	assert.Equal(t, path, v.ConfigFileUsed())
}

func TestNewViper_EnvOverridesFile(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, "mongo:\n  max-pool-size: 20\n")
	t.Setenv("MONGO_MAX_POOL_SIZE", "64")

	// Act
	v, err := newViper(FilePath(path))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 64, v.GetInt("mongo.max-pool-size"))
}

func TestNewViper_NoFile(t *testing.T) {
	// Arrange
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "broker:9092")

	// Act
	v, err := newViper("")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, v.ConfigFileUsed())
	assert.Equal(t, "broker:9092", v.GetString("kafka.bootstrap-servers"))
}

func TestNewViper_MissingFile(t *testing.T) {
	// Act
	_, err := newViper(FilePath(filepath.Join(t.TempDir(), "absent.yaml")))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestResolveFilePath(t *testing.T) {
	app := AppConfig{ConfigFile: "./configs/config.test.yaml"}

	t.Run("from app config", func(t *testing.T) {
		assert.Equal(t, FilePath("./configs/config.test.yaml"), resolveFilePath(&viperOptions{}, app))
	})

	t.Run("explicit path", func(t *testing.T) {
		o := &viperOptions{}
		WithConfigPath("/tmp/other.yaml")(o)
		assert.Equal(t, FilePath("/tmp/other.yaml"), resolveFilePath(o, app))
	})

	t.Run("disabled", func(t *testing.T) {
		o := &viperOptions{}
		WithoutConfigFile()(o)
		assert.Equal(t, FilePath(""), resolveFilePath(o, app))
	})
}
