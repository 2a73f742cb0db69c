package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Redis        RedisConfig        `yaml:"redis"`
	Mail         MailConfig         `yaml:"mail"`
	Storage      StorageConfig      `yaml:"storage"`
	Zoho         ZohoConfig         `yaml:"zoho"`
	Notification NotificationConfig `yaml:"notification"`
	App          AppConfig          `yaml:"app"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
	// MaxUploadMB bounds multipart bodies (documents, report attachments)
	MaxUploadMB int `yaml:"max_upload_mb"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// RedisConfig for optional async notification delivery
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	UseTLS   bool   `yaml:"use_tls"`
}

// StorageConfig selects the blob store for documents, attachments and PDFs.
type StorageConfig struct {
	Driver    string `yaml:"driver"` // local, s3
	LocalPath string `yaml:"local_path"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Region  string `yaml:"s3_region"`
	S3Prefix  string `yaml:"s3_prefix"`
}

type ZohoConfig struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RedirectURL    string `yaml:"redirect_url"`
	AccountsURL    string `yaml:"accounts_url"`
	APIBaseURL     string `yaml:"api_base_url"`
	Scopes         string `yaml:"scopes"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// MarketingAccounts lists expense account names counted as acquisition spend
	MarketingAccounts []string `yaml:"marketing_accounts"`
}

type NotificationConfig struct {
	MaxAttempts        int    `yaml:"max_attempts"`
	BaseBackoffSeconds int    `yaml:"base_backoff_seconds"`
	SweepSpec          string `yaml:"sweep_spec"` // cron spec for the outbox sweeper
}

type AppConfig struct {
	Name        string `yaml:"name"`
	FrontendURL string `yaml:"frontend_url"`
	Currency    string `yaml:"currency"` // prefix used when rendering money totals
}

var GlobalConfig *Config

// Load reads .env (when present), then the YAML file, then environment overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        "8080",
			Mode:        "debug",
			MaxUploadMB: 30,
		},
		Log: LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "venturelink.db",
		},
		JWT: JWTConfig{
			Secret:     "venturelink-secret-key-change-in-production",
			ExpireHour: 24,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Mail: MailConfig{
			Port: 587,
		},
		Storage: StorageConfig{
			Driver:    "local",
			LocalPath: "uploads",
		},
		Zoho: ZohoConfig{
			AccountsURL:       "https://accounts.zoho.in/oauth/v2",
			APIBaseURL:        "https://www.zohoapis.in/books/v3",
			Scopes:            "ZohoBooks.fullaccess.all,ZohoExpense.fullaccess.all",
			TimeoutSeconds:    15,
			MarketingAccounts: []string{"Marketing"},
		},
		Notification: NotificationConfig{
			MaxAttempts:        5,
			BaseBackoffSeconds: 30,
			SweepSpec:          "@every 1m",
		},
		App: AppConfig{
			Name:        "VentureLink",
			FrontendURL: "http://localhost:3000",
			Currency:    "₹",
		},
	}
}

// ZohoTimeout returns the configured HTTP timeout for accounting API calls.
func (c *Config) ZohoTimeout() time.Duration {
	if c.Zoho.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Zoho.TimeoutSeconds) * time.Second
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		c.Mail.Enabled = true
		c.Mail.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Mail.Port = p
		}
	}
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		c.Mail.Username = user
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		c.Mail.Password = pass
	}
	if from := os.Getenv("SMTP_FROM"); from != "" {
		c.Mail.From = from
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if bucket := os.Getenv("S3_BUCKET_NAME"); bucket != "" {
		c.Storage.S3Bucket = bucket
	}
	if region := os.Getenv("AWS_S3_REGION"); region != "" {
		c.Storage.S3Region = region
	}
	if id := os.Getenv("ZOHO_CLIENT_ID"); id != "" {
		c.Zoho.ClientID = id
	}
	if secret := os.Getenv("ZOHO_CLIENT_SECRET"); secret != "" {
		c.Zoho.ClientSecret = secret
	}
	if redirect := os.Getenv("ZOHO_REDIRECT_URL"); redirect != "" {
		c.Zoho.RedirectURL = redirect
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		c.App.FrontendURL = frontend
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
