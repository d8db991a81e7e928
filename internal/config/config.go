package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store drivers understood by store.Open.
const (
	DriverPostGIS = "postgis"
	DriverMongo   = "mongo"
	DriverElastic = "elastic"
	DriverMemory  = "memory"
)

// Config holds every runtime setting of the server and the import tool.
type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration
	StoreDriver    string

	// DatasetMaxAge bounds the staleness of the filtered views. Zero reloads
	// the dataset on every request.
	DatasetMaxAge time.Duration

	Postgres PostgresConfig
	Mongo    MongoConfig
	Elastic  ElasticConfig
	Redis    RedisConfig
	Log      LogConfig
	Auth     AuthConfig
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// DSN builds the key/value connection string understood by lib/pq.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		p.Host, p.User, p.Password, p.Name, p.Port, p.SSLMode, p.TimeZone,
	)
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type ElasticConfig struct {
	URL   string
	Index string
}

// RedisConfig leaves the stats cache disabled when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type LogConfig struct {
	File   string
	Level  string
	Stdout bool
}

// AuthConfig leaves editor authentication off when Secret is empty.
type AuthConfig struct {
	Secret             string
	EditorUser         string
	EditorPasswordHash string
	TokenTTL           time.Duration
}

func (a AuthConfig) Enabled() bool { return a.Secret != "" }

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}

	cfg := Config{
		HTTPAddr:       getEnv("HTTP_ADDR", "0.0.0.0:3000"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverPostGIS)),
		DatasetMaxAge:  getEnvDuration("DATASET_MAX_AGE", 5*time.Second),
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "restaurants"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DB", "first-db"),
			Collection: getEnv("MONGO_COLLECTION", "restaurants"),
		},
		Elastic: ElasticConfig{
			URL:   getEnv("ELASTIC_URL", "http://localhost:9200"),
			Index: getEnv("ELASTIC_INDEX", "restaurants"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("STATS_CACHE_TTL", time.Minute),
		},
		Log: LogConfig{
			File:   getEnv("LOG_FILE", "./logs/app.log"),
			Level:  getEnv("LOG_LEVEL", "debug"),
			Stdout: getEnvBool("LOG_STDOUT", false),
		},
		Auth: AuthConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			EditorUser:         getEnv("EDITOR_USER", "editor"),
			EditorPasswordHash: getEnv("EDITOR_PASSWORD_HASH", ""),
			TokenTTL:           getEnvDuration("TOKEN_TTL", 72*time.Hour),
		},
	}

	switch cfg.StoreDriver {
	case DriverPostGIS, DriverMongo, DriverElastic, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.Auth.Enabled() && cfg.Auth.EditorPasswordHash == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is set but EDITOR_PASSWORD_HASH is empty")
	}
	return cfg, nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	logrus.WithField("key", key).Warnf("ignoring invalid duration %q", raw)
	return defaultValue
}
