package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Storage StorageConfig
	Admin   AdminConfig
	JWT     JWTConfig
	Cache   CacheConfig
	CORS    CORSConfig
	Log     LogConfig
	Reports ReportsConfig
	Seed    SeedConfig
}

// StorageConfig locates the scope document tree and the upload blob store.
type StorageConfig struct {
	DataDir    string
	UploadsDir string
}

// AdminConfig holds the single main-admin credential. Password may be either
// a plain value or a bcrypt hash (detected by prefix).
type AdminConfig struct {
	UserID   string
	Password string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// CacheConfig governs the optional Redis listing cache.
type CacheConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ReportsConfig toggles the attendance register PDF endpoint.
type ReportsConfig struct {
	Enabled bool
}

// SeedConfig controls creation of the initial scope on first boot.
type SeedConfig struct {
	Enabled bool
	Course  string
	Year    string
	Section string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Storage = StorageConfig{
		DataDir:    v.GetString("DATA_DIR"),
		UploadsDir: v.GetString("UPLOADS_DIR"),
	}

	cfg.Admin = AdminConfig{
		UserID:   v.GetString("ADMIN_USER_ID"),
		Password: v.GetString("ADMIN_PASSWORD"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Cache = CacheConfig{
		Enabled:  v.GetBool("ENABLE_CACHE"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TTL:      parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Reports = ReportsConfig{Enabled: v.GetBool("ENABLE_REPORTS")}

	cfg.Seed = SeedConfig{
		Enabled: v.GetBool("SEED_DEFAULT_SCOPE"),
		Course:  v.GetString("SEED_COURSE"),
		Year:    v.GetString("SEED_YEAR"),
		Section: v.GetString("SEED_SECTION"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("UPLOADS_DIR", "./static/uploads")

	v.SetDefault("ADMIN_USER_ID", "faculty")
	v.SetDefault("ADMIN_PASSWORD", "1")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "section-portal-api")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_REPORTS", true)

	v.SetDefault("SEED_DEFAULT_SCOPE", true)
	v.SetDefault("SEED_COURSE", "B.Tech")
	v.SetDefault("SEED_YEAR", "1st Year")
	v.SetDefault("SEED_SECTION", "A Section")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
