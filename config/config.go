package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatasetPath  string
	DatasetTable string
	DbDsn        string
	TgToken      string
	HTTPAddr     string
	SessionTTL   time.Duration
	PublicURL    string
}

const (
	defaultDatasetPath = "Dados/PRF2021a2025.csv"
	defaultHTTPAddr    = ":8005"
	defaultSessionTTL  = 2 * time.Hour
)

var (
	config *Config
	once   sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file, using the process environment")
		}
		config = FromEnv()
	})
	return config
}

// FromEnv reads the configuration from the environment without caching.
func FromEnv() *Config {
	return &Config{
		DatasetPath:  getenv("DATASET_PATH", defaultDatasetPath),
		DatasetTable: os.Getenv("DATASET_TABLE"),
		DbDsn:        os.Getenv("DB_DSN"),
		TgToken:      os.Getenv("TG_TOKEN"),
		HTTPAddr:     getenv("HTTP_ADDR", defaultHTTPAddr),
		SessionTTL:   duration("SESSION_TTL", defaultSessionTTL),
		PublicURL:    os.Getenv("PUBLIC_URL"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
