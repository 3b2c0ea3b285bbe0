package config

import (
	"os"
	"strconv"
	"strings"
)

// Store driver names accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Schema backend names accepted in SCHEMA_BACKEND.
const (
	SchemaBackendFS    = "fs"
	SchemaBackendMinIO = "minio"
)

// DatabaseConfig holds PostgreSQL connection settings used by the postgres document engine.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MongoConfig holds settings for the MongoDB document engine.
type MongoConfig struct {
	URI               string
	ConnectTimeoutSec int
}

// MinIOConfig holds object storage settings for the MinIO schema backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// SchemaConfig controls where schema definitions live and whether inserts are validated.
type SchemaConfig struct {
	Backend        string
	Dir            string
	DataValidation bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env         string
	Port        string
	LogLevel    string
	StoreDriver string
	CORSOrigins []string
	Database    DatabaseConfig
	Mongo       MongoConfig
	MinIO       MinIOConfig
	Schema      SchemaConfig
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		Env:         getEnv("APP_ENV", "production"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		CORSOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Mongo: MongoConfig{
			URI:               getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			ConnectTimeoutSec: getEnvInt("MONGODB_CONNECT_TIMEOUT_SEC", 10),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			Prefix:    getEnv("MINIO_PREFIX", "schemas"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Schema: SchemaConfig{
			Backend:        strings.ToLower(getEnv("SCHEMA_BACKEND", SchemaBackendFS)),
			Dir:            getEnv("SCHEMA_DIR", "allowed_schemas"),
			DataValidation: getEnvBool("DATA_VALIDATION", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
