package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, 120, c.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 300, c.CacheTTLSeconds)
	assert.Empty(t, c.RedisHost)

	pg := AppConfig{DBDriver: "postgres"}
	applyDefaults(&pg)
	assert.Equal(t, "5432", pg.DBPort)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("LOG_COMPRESS", "true")
	t.Setenv("REDIS_HOST", "cache")

	c := AppConfig{DBDriver: "mysql", RateLimitPerMinute: 120}
	applyEnvOverrides(&c)

	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, 30, c.RateLimitPerMinute)
	assert.True(t, c.LogCompress)
	assert.Equal(t, "cache", c.RedisHost)
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor(AppConfig{DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u", DBName: "feed", DBSSLMode: "disable"})
	assert.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = dialectorFor(AppConfig{DBDriver: "mysql", DatabaseURI: "u:p@tcp(db:3306)/feed"})
	assert.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	_, err = dialectorFor(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestToGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, toGormLogLevel("debug"))
	assert.Equal(t, logger.Warn, toGormLogLevel(""))
	assert.Equal(t, logger.Silent, toGormLogLevel("silent"))
}

func TestUseAppliesDefaults(t *testing.T) {
	Use(AppConfig{JWTSecret: "s"})
	got := Get()
	assert.Equal(t, "s", got.JWTSecret)
	assert.Equal(t, "8080", got.AppPort)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		entries, err := migrationFS.ReadDir("migrations/" + dialect)
		assert.NoError(t, err)
		assert.Len(t, entries, 2, dialect)
	}
}
