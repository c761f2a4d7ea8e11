// Package config loads server settings: defaults, then an optional TOML or
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort          = "8080"
	DefaultEnv           = "development"
	DefaultFrontendURL   = "http://localhost:3000"
	DefaultLogLevel      = "debug"
	DefaultTokenTTL      = 30 * 24 * time.Hour
	DefaultCacheTTL      = 300
	DefaultSQLitePath    = "blog.db"
	DefaultMongoDB       = "blog"
	DefaultMediaDir      = "uploads"
	DefaultMaxImageBytes = 5 * 1024 * 1024

	// ConfigPathEnvKey names the config file when --config is not given.
	ConfigPathEnvKey = "BLOG_CONFIG"

	devJWTSecret = "dev-secret-change-me"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMongo    = "mongo"

	MediaLocal      = "local"
	MediaCloudinary = "cloudinary"
)

type PostgresConfig struct {
	URL      string `toml:"url" yaml:"url"`
	Host     string `toml:"host" yaml:"host"`
	Port     string `toml:"port" yaml:"port"`
	User     string `toml:"user" yaml:"user"`
	Password string `toml:"password" yaml:"password"`
	Name     string `toml:"name" yaml:"name"`
	SSLMode  string `toml:"sslmode" yaml:"sslmode"`
}

type StoreConfig struct {
	Driver     string         `toml:"driver" yaml:"driver"`
	Postgres   PostgresConfig `toml:"postgres" yaml:"postgres"`
	SQLitePath string         `toml:"sqlite_path" yaml:"sqlite_path"`
	MongoURI   string         `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDB    string         `toml:"mongo_db" yaml:"mongo_db"`
}

// CacheConfig enables the Redis post cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr  string `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB    int    `toml:"redis_db" yaml:"redis_db"`
	TTLSeconds int    `toml:"ttl_seconds" yaml:"ttl_seconds"`
}

type MediaConfig struct {
	Driver        string `toml:"driver" yaml:"driver"`
	CloudName     string `toml:"cloud_name" yaml:"cloud_name"`
	APIKey        string `toml:"api_key" yaml:"api_key"`
	APISecret     string `toml:"api_secret" yaml:"api_secret"`
	Folder        string `toml:"folder" yaml:"folder"`
	LocalDir      string `toml:"local_dir" yaml:"local_dir"`
	PublicURL     string `toml:"public_url" yaml:"public_url"`
	MaxImageBytes int64  `toml:"max_image_bytes" yaml:"max_image_bytes"`
}

type Config struct {
	Port        string        `toml:"port" yaml:"port"`
	Env         string        `toml:"env" yaml:"env"`
	FrontendURL string        `toml:"frontend_url" yaml:"frontend_url"`
	LogLevel    string        `toml:"log_level" yaml:"log_level"`
	JWTSecret   string        `toml:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL    time.Duration `toml:"token_ttl" yaml:"token_ttl"`
	Store       StoreConfig   `toml:"store" yaml:"store"`
	Cache       CacheConfig   `toml:"cache" yaml:"cache"`
	Media       MediaConfig   `toml:"media" yaml:"media"`
}

// Default returns settings for a local development server.
func Default() Config {
	return Config{
		Port:        DefaultPort,
		Env:         DefaultEnv,
		FrontendURL: DefaultFrontendURL,
		LogLevel:    DefaultLogLevel,
		TokenTTL:    DefaultTokenTTL,
		Store: StoreConfig{
			Driver: StorePostgres,
			Postgres: PostgresConfig{
				Host:     "postgres",
				Port:     "5432",
				User:     "blog",
				Password: "blogpass",
				Name:     "blogdb",
				SSLMode:  "disable",
			},
			SQLitePath: DefaultSQLitePath,
			MongoDB:    DefaultMongoDB,
		},
		Cache: CacheConfig{TTLSeconds: DefaultCacheTTL},
		Media: MediaConfig{
			Driver:        MediaLocal,
			LocalDir:      DefaultMediaDir,
			MaxImageBytes: DefaultMaxImageBytes,
		},
	}
}

// IsProduction reports whether Env is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load applies the file at path (or $BLOG_CONFIG) and the environment on top
// of Default. A missing path is not an error; a missing file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigPathEnvKey))
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str("APP_PORT", &cfg.Port)
	str("APP_ENV", &cfg.Env)
	str("FRONTEND_URL", &cfg.FrontendURL)
	str("JWT_SECRET", &cfg.JWTSecret)

	str("STORE_DRIVER", &cfg.Store.Driver)
	str("DATABASE_URL", &cfg.Store.Postgres.URL)
	str("DB_HOST", &cfg.Store.Postgres.Host)
	str("DB_PORT", &cfg.Store.Postgres.Port)
	str("DB_USER", &cfg.Store.Postgres.User)
	str("DB_PASSWORD", &cfg.Store.Postgres.Password)
	str("DB_NAME", &cfg.Store.Postgres.Name)
	str("DB_SSLMODE", &cfg.Store.Postgres.SSLMode)
	str("SQLITE_PATH", &cfg.Store.SQLitePath)
	str("MONGO_URI", &cfg.Store.MongoURI)
	str("MONGO_DB", &cfg.Store.MongoDB)

	str("REDIS_ADDR", &cfg.Cache.RedisAddr)

	str("MEDIA_DRIVER", &cfg.Media.Driver)
	str("CLOUDINARY_CLOUD_NAME", &cfg.Media.CloudName)
	str("CLOUDINARY_API_KEY", &cfg.Media.APIKey)
	str("CLOUDINARY_API_SECRET", &cfg.Media.APISecret)
	str("CLOUDINARY_FOLDER", &cfg.Media.Folder)
	str("MEDIA_LOCAL_DIR", &cfg.Media.LocalDir)
	str("MEDIA_PUBLIC_URL", &cfg.Media.PublicURL)

	if v := strings.TrimSpace(os.Getenv("TOKEN_TTL")); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		cfg.TokenTTL = ttl
	}
	for key, dst := range map[string]*int{
		"REDIS_DB":          &cfg.Cache.RedisDB,
		"CACHE_TTL_SECONDS": &cfg.Cache.TTLSeconds,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q", key, v)
			}
			*dst = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_IMAGE_BYTES")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_IMAGE_BYTES %q", v)
		}
		cfg.Media.MaxImageBytes = n
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required in production"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}

	switch c.Store.Driver {
	case StorePostgres:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite driver"))
		}
	case StoreMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDB == "" {
			errs = append(errs, errors.New("store.mongo_uri and store.mongo_db are required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	switch c.Media.Driver {
	case MediaLocal:
		if c.Media.LocalDir == "" {
			errs = append(errs, errors.New("media.local_dir is required for the local driver"))
		}
	case MediaCloudinary:
		if c.Media.CloudName == "" || c.Media.APIKey == "" || c.Media.APISecret == "" {
			errs = append(errs, errors.New("cloudinary credentials are required for the cloudinary driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown media driver %q", c.Media.Driver))
	}
	if c.Media.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("media.max_image_bytes must be positive"))
	}
	if c.Cache.RedisAddr != "" && c.Cache.TTLSeconds <= 0 {
		errs = append(errs, errors.New("cache.ttl_seconds must be positive"))
	}
	return errors.Join(errs...)
}
