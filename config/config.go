package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is built once in main and passed explicitly; nothing reads the
// environment after Load returns.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	DataDir string
	LogFile string

	// Generator settings (media-etl generate).
	GenUsers                  int
	GenSessionsPerUser        int
	GenInteractionsPerSession int
	GenFiles                  int
	GenOutputDir              string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "etl"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "media_analytics"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DataDir: getEnv("DATA_DIR", "./data"),
		LogFile: getEnv("LOG_FILE", "etl_pipeline.log"),

		GenUsers:                  getEnvInt("GEN_USERS", 100),
		GenSessionsPerUser:        getEnvInt("GEN_SESSIONS_PER_USER", 5),
		GenInteractionsPerSession: getEnvInt("GEN_INTERACTIONS_PER_SESSION", 10),
		GenFiles:                  getEnvInt("GEN_FILES", 5),
		GenOutputDir:              getEnv("GEN_OUTPUT_DIR", "./data"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
