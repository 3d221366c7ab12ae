package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DATASET_PATH", "DATASET_TABLE", "DB_DSN", "TG_TOKEN", "HTTP_ADDR", "SESSION_TTL", "PUBLIC_URL"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, "Dados/PRF2021a2025.csv", c.DatasetPath)
	assert.Equal(t, ":8005", c.HTTPAddr)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.Empty(t, c.TgToken)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATASET_PATH", "/data/acidentes.csv.gz")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("TG_TOKEN", "token")
	c := FromEnv()
	assert.Equal(t, "/data/acidentes.csv.gz", c.DatasetPath)
	assert.Equal(t, "127.0.0.1:9000", c.HTTPAddr)
	assert.Equal(t, 15*time.Minute, c.SessionTTL)
	assert.Equal(t, "token", c.TgToken)
}

func TestFromEnvBadDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	assert.Equal(t, 2*time.Hour, FromEnv().SessionTTL)
}
