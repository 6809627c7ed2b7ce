package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr           string
	DatabaseURL    string
	JWTSecret      string
	JWTTTL         time.Duration
	PublicDir      string
	PublicBaseURL  string
	LogLevel       string
	LogFormat      string
	CORSOrigins    string
	MigrateOnStart bool
	DefaultPerPage int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "72h")
	v.SetDefault("PUBLIC_DIR", "./public")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("DEFAULT_PER_PAGE", 10)

	ttl := v.GetDuration("JWT_TTL")
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	perPage := v.GetInt("DEFAULT_PER_PAGE")
	if perPage <= 0 {
		perPage = 10
	}

	return Config{
		Addr:           v.GetString("APP_ADDR"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         ttl,
		PublicDir:      v.GetString("PUBLIC_DIR"),
		PublicBaseURL:  strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		CORSOrigins:    v.GetString("CORS_ORIGINS"),
		MigrateOnStart: v.GetBool("MIGRATE_ON_START"),
		DefaultPerPage: perPage,
	}
}
