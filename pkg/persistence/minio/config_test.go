package minio

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(
			"minio:\n  endpoint: minio:9000\n  bucket: media\n  access-key: key\n  secret-key: secret\n")))

		cfg, err := newConfig(v)

		require.NoError(t, err)
		assert.Equal(t, "media", cfg.Bucket)
		assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
		assert.False(t, cfg.UseSSL)
	})

	t.Run("missing credentials", func(t *testing.T) {
		v := viper.New()
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader("minio:\n  endpoint: minio:9000\n  bucket: media\n")))

		_, err := newConfig(v)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "access-key")
	})

	t.Run("missing section", func(t *testing.T) {
		_, err := newConfig(viper.New())

		assert.Error(t, err)
	})
}
