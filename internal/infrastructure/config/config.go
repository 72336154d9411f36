package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Storage drivers
const (
	StorageS3         = "s3"
	StorageFilesystem = "filesystem"
	StorageMemory     = "memory"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Fonts     FontsConfig
	Designer  DesignerConfig
	PDF       PDFConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds template store connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite, mongo, memory
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	LogLevel        string
}

// MongoConfig holds MongoDB settings used when database.driver is mongo
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// StorageConfig holds asset storage settings
type StorageConfig struct {
	Driver            string // s3, filesystem, memory
	BasePath          string // filesystem root
	Bucket            string
	AccessKey         string
	SecretKey         string
	Region            string
	Endpoint          string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// FontsConfig holds font registry settings
type FontsConfig struct {
	SourceURL    string        // stylesheet endpoint, queried with family=<name>
	UserAgent    string        // sent with stylesheet requests; selects the served font format
	FetchTimeout time.Duration // per-fetch timeout
	FailureTTL   time.Duration // how long a failed family stays unresolved
	CacheTTL     time.Duration // redis font cache TTL
	LocalDir     string        // optional watched directory of .ttf/.otf files

	MaxRemoteFamilies int           // families fetched on demand that the registry tracks
	LoadRateLimit     int           // font load requests per client per window; negative disables
	LoadRateWindow    time.Duration
}

// DesignerConfig holds card designer settings
type DesignerConfig struct {
	DefaultDimension    string
	ExportMultiplier    float64
	MaxExportMultiplier float64
	TrustedImageHosts   []string
	SessionTTL          time.Duration
	SessionReapSchedule string // cron expression
	MaxUploadBytes      int64
	MaxImagePixels      int
	RemoteFetchTimeout  time.Duration
	RemoteAllowPrivate  bool // lets remote image URLs resolve to loopback and private networks
	RenderRateLimit     int // exports and previews per client and session per window; negative disables
	RenderRateWindow    time.Duration
}

// PDFConfig holds headless Chrome PDF export settings
type PDFConfig struct {
	Enabled   bool
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled               bool    // Whether to enable OpenTelemetry
	CollectorEndpoint     string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio         float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName           string
	Insecure              bool // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled        bool
	MetricsEnabled        bool
	MetricsExportInterval time.Duration
	LogsEnabled           bool
	ProfilingEnabled      bool
	ProfilingServer       string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BACKOFFICE_ prefix (e.g., BACKOFFICE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BACKOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("mongo.uri"),
			Database:   v.GetString("mongo.database"),
			Collection: v.GetString("mongo.collection"),
			Timeout:    v.GetDuration("mongo.timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Driver:            v.GetString("storage.driver"),
			BasePath:          v.GetString("storage.base_path"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			Region:            v.GetString("storage.region"),
			Endpoint:          v.GetString("storage.endpoint"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Fonts: FontsConfig{
			SourceURL:    v.GetString("fonts.source_url"),
			UserAgent:    v.GetString("fonts.user_agent"),
			FetchTimeout: v.GetDuration("fonts.fetch_timeout"),
			FailureTTL:   v.GetDuration("fonts.failure_ttl"),
			CacheTTL:     v.GetDuration("fonts.cache_ttl"),
			LocalDir:     v.GetString("fonts.local_dir"),

			MaxRemoteFamilies: v.GetInt("fonts.max_remote_families"),
			LoadRateLimit:     v.GetInt("fonts.load_rate_limit"),
			LoadRateWindow:    v.GetDuration("fonts.load_rate_window"),
		},
		Designer: DesignerConfig{
			DefaultDimension:    v.GetString("designer.default_dimension"),
			ExportMultiplier:    v.GetFloat64("designer.export_multiplier"),
			MaxExportMultiplier: v.GetFloat64("designer.max_export_multiplier"),
			TrustedImageHosts:   v.GetStringSlice("designer.trusted_image_hosts"),
			SessionTTL:          v.GetDuration("designer.session_ttl"),
			SessionReapSchedule: v.GetString("designer.session_reap_schedule"),
			MaxUploadBytes:      v.GetInt64("designer.max_upload_bytes"),
			MaxImagePixels:      v.GetInt("designer.max_image_pixels"),
			RemoteFetchTimeout:  v.GetDuration("designer.remote_fetch_timeout"),
			RemoteAllowPrivate:  v.GetBool("designer.remote_allow_private"),
			RenderRateLimit:     v.GetInt("designer.render_rate_limit"),
			RenderRateWindow:    v.GetDuration("designer.render_rate_window"),
		},
		PDF: PDFConfig{
			Enabled:   v.GetBool("pdf.enabled"),
			RemoteURL: v.GetString("pdf.remote_url"),
			NoSandbox: v.GetBool("pdf.no_sandbox"),
			Timeout:   v.GetDuration("pdf.timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:               v.GetBool("telemetry.enabled"),
			CollectorEndpoint:     v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:         v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:           v.GetString("telemetry.service_name"),
			Insecure:              v.GetBool("telemetry.insecure"),
			DBTraceEnabled:        v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:        v.GetBool("telemetry.metrics_enabled"),
			MetricsExportInterval: v.GetDuration("telemetry.metrics_export_interval"),
			LogsEnabled:           v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:      v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:       v.GetString("telemetry.profiling_server"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "backoffice"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "backoffice"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "backoffice.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "backoffice"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "card_templates"
	}
	if cfg.Mongo.Timeout == 0 {
		cfg.Mongo.Timeout = 10 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second // print-resolution exports take a while
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB for JSON bodies; uploads use designer.max_upload_bytes
	}
	// An empty origin list means no cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageFilesystem
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./storage/assets"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Fonts.SourceURL == "" {
		cfg.Fonts.SourceURL = "https://fonts.googleapis.com/css2"
	}
	if cfg.Fonts.UserAgent == "" {
		// Old agents are served TrueType instead of WOFF2.
		cfg.Fonts.UserAgent = "Mozilla/5.0 (Windows NT 6.1) AppleWebKit/534.30 (KHTML, like Gecko) Safari/534.30"
	}
	if cfg.Fonts.FetchTimeout == 0 {
		cfg.Fonts.FetchTimeout = 10 * time.Second
	}
	if cfg.Fonts.FailureTTL == 0 {
		cfg.Fonts.FailureTTL = 5 * time.Minute
	}
	if cfg.Fonts.CacheTTL == 0 {
		cfg.Fonts.CacheTTL = 7 * 24 * time.Hour
	}
	if cfg.Fonts.MaxRemoteFamilies == 0 {
		cfg.Fonts.MaxRemoteFamilies = 256
	}
	if cfg.Fonts.LoadRateLimit == 0 {
		cfg.Fonts.LoadRateLimit = 10
	}
	if cfg.Fonts.LoadRateWindow == 0 {
		cfg.Fonts.LoadRateWindow = time.Minute
	}
	if cfg.Designer.DefaultDimension == "" {
		cfg.Designer.DefaultDimension = "STANDARD"
	}
	if cfg.Designer.ExportMultiplier == 0 {
		cfg.Designer.ExportMultiplier = 300.0 / 72.0
	}
	if cfg.Designer.MaxExportMultiplier == 0 {
		cfg.Designer.MaxExportMultiplier = 10
	}
	if cfg.Designer.SessionTTL == 0 {
		cfg.Designer.SessionTTL = 2 * time.Hour
	}
	if cfg.Designer.SessionReapSchedule == "" {
		cfg.Designer.SessionReapSchedule = "*/5 * * * *"
	}
	if cfg.Designer.MaxUploadBytes == 0 {
		cfg.Designer.MaxUploadBytes = 20 << 20 // 20MB
	}
	if cfg.Designer.MaxImagePixels == 0 {
		cfg.Designer.MaxImagePixels = 64 << 20 // 64 megapixels
	}
	if cfg.Designer.RemoteFetchTimeout == 0 {
		cfg.Designer.RemoteFetchTimeout = 15 * time.Second
	}
	if cfg.Designer.RenderRateLimit == 0 {
		cfg.Designer.RenderRateLimit = 30
	}
	if cfg.Designer.RenderRateWindow == 0 {
		cfg.Designer.RenderRateWindow = time.Minute
	}
	if cfg.PDF.Timeout == 0 {
		cfg.PDF.Timeout = 30 * time.Second
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "backoffice"
	}
	if cfg.Telemetry.MetricsExportInterval == 0 {
		cfg.Telemetry.MetricsExportInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("database.driver must be one of postgres, sqlite, mongo, memory, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Storage.Driver {
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage.driver is s3")
		}
	case StorageFilesystem, StorageMemory:
	default:
		return fmt.Errorf("storage.driver must be one of s3, filesystem, memory, got %q", c.Storage.Driver)
	}

	if c.Designer.ExportMultiplier <= 0 {
		return fmt.Errorf("designer.export_multiplier must be positive")
	}
	if c.Designer.MaxExportMultiplier < c.Designer.ExportMultiplier {
		return fmt.Errorf("designer.max_export_multiplier (%g) cannot be below designer.export_multiplier (%g)",
			c.Designer.MaxExportMultiplier, c.Designer.ExportMultiplier)
	}
	if c.Designer.MaxUploadBytes < 0 {
		return fmt.Errorf("designer.max_upload_bytes cannot be negative")
	}
	if c.Designer.RenderRateWindow < 0 {
		return fmt.Errorf("designer.render_rate_window cannot be negative")
	}
	if c.Fonts.LoadRateWindow < 0 {
		return fmt.Errorf("fonts.load_rate_window cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Driver == DriverPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		if c.Database.Driver == DriverMemory {
			return fmt.Errorf("database.driver memory loses templates on restart and is not allowed in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
