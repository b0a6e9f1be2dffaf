package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	RentCast  RentCastConfig  `yaml:"rentcast"`
	Maps      MapsConfig      `yaml:"maps"`
	LLM       LLMConfig       `yaml:"llm"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type RentCastConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type MapsConfig struct {
	APIKey string `yaml:"api_key"`
}

type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type UploadsConfig struct {
	Dir       string        `yaml:"dir"`
	MaxBytes  int64         `yaml:"max_bytes"`
	Retention time.Duration `yaml:"retention"`
}

type LogConfig struct {
	Dir string `yaml:"dir"`
}

// RateLimitConfig bounds insight generation per user.
type RateLimitConfig struct {
	InsightsPerMinute int `yaml:"insights_per_minute"`
	InsightsBurst     int `yaml:"insights_burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns a configuration with every optional value filled in
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "finsight",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			CacheTTL: 24 * time.Hour,
		},
		JWT: JWTConfig{
			ExpireHours: 24,
		},
		RentCast: RentCastConfig{
			BaseURL: "https://api.rentcast.io/v1",
			Timeout: 15 * time.Second,
		},
		LLM: LLMConfig{
			Model: "gemini-2.5-flash",
		},
		Uploads: UploadsConfig{
			Dir:       "uploads/csv",
			MaxBytes:  5 << 20,
			Retention: 7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Dir: "logs",
		},
		RateLimit: RateLimitConfig{
			InsightsPerMinute: 6,
			InsightsBurst:     3,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load loads configuration from file, .env and environment variables.
// A missing YAML file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("[INFO] Config file %s not found, using defaults", path)
	default:
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[INFO] .env not loaded: %v", err)
	}

	// Override with environment variables if present
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (TOKEN_SECRET or JWT_SECRET)")
	}
	if c.JWT.ExpireHours <= 0 {
		return errors.New("jwt expire_hours must be positive")
	}
	if c.Server.Port <= 0 {
		return errors.New("server port must be positive")
	}
	return nil
}

func (c *Config) loadFromEnv() {
	// Server
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if v := os.Getenv(key); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.Server.Port = port
			}
		}
	}
	if v := os.Getenv("SERVER_MODE"); v != "" {
		c.Server.Mode = v
	}

	// Database
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		c.Database.SSLMode = v
	}

	// Redis
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Redis.Enabled = enabled
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	// JWT
	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("JWT_EXPIRE_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.JWT.ExpireHours = hours
		}
	}

	// Third-party keys
	if v := os.Getenv("RENTCAST_API_KEY"); v != "" {
		c.RentCast.APIKey = v
	}
	if v := os.Getenv("RENTCAST_BASE_URL"); v != "" {
		c.RentCast.BaseURL = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		c.Maps.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}

	// Uploads
	if v := os.Getenv("UPLOADS_DIR"); v != "" {
		c.Uploads.Dir = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Log.Dir = v
	}
}

// DSN returns the PostgreSQL connection string.
// DATABASE_URL wins over the individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr returns host:port for the Redis client
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TokenTTL returns the session token lifetime
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpireHours) * time.Hour
}
