// Package config loads the API settings. Defaults are overridden by an
// optional YAML file, which is in turn overridden by the environment
// (including a .env file in the working directory).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	JWT     JWTConfig     `yaml:"jwt"`
	Uploads UploadsConfig `yaml:"uploads"`
	Payment PaymentConfig `yaml:"payment"`
	SMS     SMSConfig     `yaml:"sms"`
	AI      AIConfig      `yaml:"ai"`
	Admin   AdminConfig   `yaml:"admin"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	GinMode        string        `yaml:"gin_mode"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`  // requests per window and client
	RateWindow     time.Duration `yaml:"rate_window"`
	StaticDir      string        `yaml:"static_dir"` // built client, served with index.html fallback
}

type StoreConfig struct {
	Driver        string `yaml:"driver"` // mongo or sqlite
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	SQLiteDSN     string `yaml:"sqlite_dsn"`
	// Fallback switches to sqlite when MongoDB cannot be reached at startup.
	Fallback bool `yaml:"fallback"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

type UploadsConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type PaymentConfig struct {
	TelebirrNumber string `yaml:"telebirr_number"`
}

type SMSConfig struct {
	APIKey string `yaml:"api_key"`
	URL    string `yaml:"url"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
}

type AdminConfig struct {
	Create   bool   `yaml:"create"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "5000",
			GinMode:        "release",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:      100,
			RateWindow:     15 * time.Minute,
		},
		Store: StoreConfig{
			Driver:        DriverMongo,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "tena_flow",
			SQLiteDSN:     "file:tena?mode=memory&cache=shared",
			Fallback:      true,
		},
		JWT: JWTConfig{
			Expiry: 7 * 24 * time.Hour,
		},
		Uploads: UploadsConfig{
			Dir:      "uploads",
			MaxBytes: 5 << 20,
		},
		Payment: PaymentConfig{
			TelebirrNumber: "0978788034",
		},
		SMS: SMSConfig{
			URL: "https://textbelt.com/text",
		},
		AI: AIConfig{
			GeminiModel: "gemini-2.0-flash",
		},
		Admin: AdminConfig{
			Name: "Super Admin",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env, then the YAML file at path (if path is set), then the
// environment.
func Load(path string) (*Config, error) {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int64) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("PORT", &c.Server.Port)
	str("GIN_MODE", &c.Server.GinMode)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	rate := int64(c.Server.RateLimit)
	integer("RATE_LIMIT", &rate)
	c.Server.RateLimit = int(rate)
	duration("RATE_WINDOW", &c.Server.RateWindow)
	str("STATIC_DIR", &c.Server.StaticDir)

	str("STORE_DRIVER", &c.Store.Driver)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DATABASE", &c.Store.MongoDatabase)
	str("SQLITE_DSN", &c.Store.SQLiteDSN)
	boolean("STORE_FALLBACK", &c.Store.Fallback)

	str("JWT_SECRET", &c.JWT.Secret)
	duration("JWT_EXPIRY", &c.JWT.Expiry)

	str("UPLOAD_DIR", &c.Uploads.Dir)
	integer("MAX_UPLOAD_BYTES", &c.Uploads.MaxBytes)

	str("TELEBIRR_NUMBER", &c.Payment.TelebirrNumber)
	str("TEXTBELT_API_KEY", &c.SMS.APIKey)
	str("TEXTBELT_URL", &c.SMS.URL)
	str("GEMINI_API_KEY", &c.AI.GeminiAPIKey)
	str("GEMINI_MODEL", &c.AI.GeminiModel)

	boolean("CREATE_ADMIN", &c.Admin.Create)
	str("ADMIN_NAME", &c.Admin.Name)
	str("ADMIN_EMAIL", &c.Admin.Email)
	str("ADMIN_PASSWORD", &c.Admin.Password)

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)

	return errors.Join(errs...)
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.Expiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	switch c.Store.Driver {
	case DriverMongo, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Server.RateLimit <= 0 || c.Server.RateWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT and RATE_WINDOW must be positive"))
	}
	if c.Uploads.MaxBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.Admin.Create && (c.Admin.Email == "" || c.Admin.Password == "") {
		errs = append(errs, errors.New("CREATE_ADMIN needs ADMIN_EMAIL and ADMIN_PASSWORD"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
