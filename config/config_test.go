package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "0.0.0.0:8888", c.Server.Addr)
	assert.Equal(t, "mysql", c.Database.Driver)
	assert.Equal(t, 10*time.Minute, c.Redis.CountTTL)
	assert.Equal(t, 2*time.Second, c.Feed.BranchTimeout)
	assert.Equal(t, "user_id", c.Jwt.IdentityKey)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("database.driver", "sqlite")
	v.Set("database.sqlite_path", ":memory:")
	v.Set("feed.branch_timeout", "500ms")
	v.Set("redis.toggle_lock", true)

	require.NoError(t, Load(v))
	assert.Equal(t, "sqlite", ConfigInfo.Database.Driver)
	assert.Equal(t, ":memory:", ConfigInfo.Database.SqlitePath)
	assert.Equal(t, 500*time.Millisecond, ConfigInfo.Feed.BranchTimeout)
	assert.True(t, ConfigInfo.Redis.ToggleLock)
	assert.Equal(t, 50, ConfigInfo.Database.MaxOpenConns)
}

func TestInitReadsEnv(t *testing.T) {
	t.Setenv("STREAMHUB_SERVER_ADDR", "127.0.0.1:9999")
	Init()
	assert.Equal(t, "127.0.0.1:9999", ConfigInfo.Server.Addr)
}
