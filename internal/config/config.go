// Package config loads the docfill service and CLI configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/reportkit/go-docfill/pkg/docfill"
)

// EnvPrefix is the prefix of environment overrides, e.g. DOCFILL_LOG_LEVEL.
const EnvPrefix = "DOCFILL"

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Render  RenderConfig  `mapstructure:"render"`
	Fonts   FontsConfig   `mapstructure:"fonts"`
	Report  ReportConfig  `mapstructure:"report"`
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Env  string `mapstructure:"env" validate:"oneof=development production test"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output" validate:"required"` // stdout, stderr, or file path
}

// StorageConfig selects where templates, payloads, images and outputs live.
type StorageConfig struct {
	Kind  string      `mapstructure:"kind" validate:"oneof=file s3"`
	Root  string      `mapstructure:"root" validate:"required_if=Kind file"`
	S3    S3Config    `mapstructure:"s3"`
	Cache CacheConfig `mapstructure:"cache"`
}

// CacheConfig controls the in-memory cache in front of the store.
// MaxEntries 0 disables it; TTL 0 means entries do not expire.
type CacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries" validate:"gte=0"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// S3Config holds S3 bucket settings. Static credentials are optional; the
// default AWS credential chain is used without them.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// RenderConfig holds PDF renderer settings
type RenderConfig struct {
	// RemoteURL points at a running Chrome DevTools endpoint. Empty launches a
	// local browser.
	RemoteURL string        `mapstructure:"remote_url" validate:"omitempty,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	NoSandbox bool          `mapstructure:"no_sandbox"`
	Paper     string        `mapstructure:"paper" validate:"oneof=A4 A5 Letter Legal"`
}

// FontsConfig holds font lookup settings
type FontsConfig struct {
	Dirs     []string `mapstructure:"dirs"`
	Fallback string   `mapstructure:"fallback" validate:"required"`
}

// ReportConfig describes the report produced by the service: where its
// inputs are read from and where the output goes. Keys are storage keys.
type ReportConfig struct {
	Template string `mapstructure:"template" validate:"required"`
	Payload  string `mapstructure:"payload" validate:"required"`
	// Images binds placeholder keys to image storage keys. A list keeps
	// the keys' case, which map keys lose on loading.
	Images []ImageConfig `mapstructure:"images" validate:"dive"`
	// Columns maps payload record fields to table headers, in column order.
	Columns []ColumnConfig `mapstructure:"columns" validate:"dive"`
	// TableKey is the payload field holding the table records.
	TableKey     string `mapstructure:"table_key" validate:"required"`
	IncludeTable bool   `mapstructure:"include_table"`
	Format       string `mapstructure:"format" validate:"oneof=pdf docx"`
	// Output is the storage key the generated report is written to. Empty
	// means the report is only returned to the caller.
	Output string `mapstructure:"output"`
	Title  string `mapstructure:"title"`
}

// ColumnConfig binds a record field to a table header.
type ColumnConfig struct {
	Field  string `mapstructure:"field" validate:"required"`
	Header string `mapstructure:"header" validate:"required"`
}

// ImageConfig binds a placeholder key to the storage key of its image.
type ImageConfig struct {
	Key    string `mapstructure:"key" validate:"required"`
	Object string `mapstructure:"object" validate:"required"`
}

// ColumnMapping converts the configured columns for the engine.
func (r ReportConfig) ColumnMapping() docfill.ColumnMapping {
	out := make(docfill.ColumnMapping, 0, len(r.Columns))
	for _, c := range r.Columns {
		out = append(out, docfill.Column{Field: c.Field, Header: c.Header})
	}
	return out
}

// Load loads configuration from a YAML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DOCFILL_ prefix (e.g., DOCFILL_LOG_LEVEL)
// 2. The config file: path when set, otherwise docfill.yaml in . or /etc/docfill
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docfill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/docfill")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "docfill")
	v.SetDefault("app.env", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 90*time.Second)
	v.SetDefault("http.idle_timeout", 120*time.Second)
	v.SetDefault("http.max_body_bytes", int64(32<<20))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("storage.kind", "file")
	v.SetDefault("storage.root", "./data")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("storage.cache.max_entries", 16)
	v.SetDefault("storage.cache.ttl", 5*time.Minute)

	v.SetDefault("render.remote_url", "")
	v.SetDefault("render.timeout", 60*time.Second)
	v.SetDefault("render.no_sandbox", false)
	v.SetDefault("render.paper", "A4")

	v.SetDefault("fonts.dirs", []string{"/usr/share/fonts"})
	v.SetDefault("fonts.fallback", docfill.DefaultConfig().FallbackFont)

	v.SetDefault("report.template", "template.docx")
	v.SetDefault("report.payload", "payload.json")
	v.SetDefault("report.table_key", "tableData")
	v.SetDefault("report.include_table", true)
	v.SetDefault("report.format", "pdf")
	v.SetDefault("report.output", "")
	v.SetDefault("report.title", "")
	v.SetDefault("report.columns", []map[string]any{
		{"field": "slNo", "header": "S/N"},
		{"field": "name", "header": "Name"},
		{"field": "relationship", "header": "Relationship"},
		{"field": "mobile", "header": "Mobile"},
	})
}

// Validate checks field constraints and the storage backend's requirements.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateStorage, StorageConfig{})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func validateStorage(sl validator.StructLevel) {
	s := sl.Current().Interface().(StorageConfig)
	if s.Kind == "s3" && s.S3.Bucket == "" {
		sl.ReportError(s.S3.Bucket, "S3.Bucket", "bucket", "required_for_s3", "")
	}
}
