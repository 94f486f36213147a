// Package config loads catalog2pdf settings from YAML files, .env files
// and CATALOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-catalog2pdf/internal/fileutil"
	"github.com/alnah/go-catalog2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTitleLength = 200  // Catalog title
	MaxPathLength  = 4096 // PATH_MAX on Linux
	MaxNameLength  = 100  // Style and template set names
)

// Defaults mirrored by the CLI flags.
const (
	DefaultDataPath   = "./dados.json"
	DefaultImagesDir  = "./imagens"
	DefaultOutputPath = "./catalogo.pdf"
	DefaultTitle      = "Catálogo de Produtos"
	DefaultColumns    = 2
	DefaultTimeout    = "30s"
	DefaultAddr       = ":3000"
	DefaultBackupDir  = "backup"
	DefaultCacheTTL   = "24h"
	DefaultRateLimit  = 1.0
	DefaultRateBurst  = 3
)

// envPrefix namespaces the environment overrides.
const envPrefix = "CATALOG_"

// Config holds all configuration for catalog generation and the service.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Output   OutputConfig   `yaml:"output"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Render   RenderConfig   `yaml:"render"`
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Backup   BackupConfig   `yaml:"backup"`
}

// DataConfig defines the product and image sources.
type DataConfig struct {
	Path   string `yaml:"path"`   // dados.json or a .yaml/.yml product list
	Images string `yaml:"images"` // Directory holding <id>.jpg|.jpeg|.png
}

// OutputConfig defines where generated files go.
type OutputConfig struct {
	Path string `yaml:"path"` // PDF destination
	HTML bool   `yaml:"html"` // Also write the composed HTML next to the PDF
}

// CatalogConfig defines document content defaults.
type CatalogConfig struct {
	Title   string `yaml:"title"`
	Columns int    `yaml:"columns"` // Clamped to 1..4 at render time
}

// RenderConfig defines browser and asset options.
type RenderConfig struct {
	Timeout     string `yaml:"timeout"`     // Network idle bound, e.g. "30s"
	AssetPath   string `yaml:"assetPath"`   // Empty = embedded assets
	Style       string `yaml:"style"`       // Empty = "catalog"
	TemplateSet string `yaml:"templateSet"` // Empty = "catalog"
	Workers     int    `yaml:"workers"`     // Browser pool size for the service, 0 = auto
}

// ServerConfig defines the HTTP service.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	StaticDir   string   `yaml:"staticDir"`   // Optional directory served at /
	CORSOrigins []string `yaml:"corsOrigins"` // Empty = allow all
	RateLimit   float64  `yaml:"rateLimit"`   // PDF requests per second per client
	RateBurst   int      `yaml:"rateBurst"`
}

// PostgresConfig selects the PostgreSQL product store when DSN is set.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the PDF cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

// BackupConfig defines where previous outputs are archived.
type BackupConfig struct {
	Dir   string      `yaml:"dir"` // Empty disables filesystem backups
	MinIO MinIOConfig `yaml:"minio"`
}

// MinIOConfig enables object storage backups when Endpoint is set.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSSL"`
}

// Enabled reports whether MinIO backups are configured.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Data:    DataConfig{Path: DefaultDataPath, Images: DefaultImagesDir},
		Output:  OutputConfig{Path: DefaultOutputPath},
		Catalog: CatalogConfig{Title: DefaultTitle, Columns: DefaultColumns},
		Render:  RenderConfig{Timeout: DefaultTimeout},
		Server: ServerConfig{
			Addr:      DefaultAddr,
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
		},
		Redis:  RedisConfig{TTL: DefaultCacheTTL},
		Backup: BackupConfig{Dir: DefaultBackupDir},
	}
}

// Validate checks value ranges and field lengths.
// Called automatically by LoadConfig and Load.
func (c *Config) Validate() error {
	if err := validateFieldLength("catalog.title", c.Catalog.Title, MaxTitleLength); err != nil {
		return err
	}
	paths := map[string]string{
		"data.path":        c.Data.Path,
		"data.images":      c.Data.Images,
		"output.path":      c.Output.Path,
		"render.assetPath": c.Render.AssetPath,
		"server.staticDir": c.Server.StaticDir,
		"backup.dir":       c.Backup.Dir,
	}
	for field, value := range paths {
		if err := validateFieldLength(field, value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("render.style", c.Render.Style, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.templateSet", c.Render.TemplateSet, MaxNameLength); err != nil {
		return err
	}

	if _, err := c.Render.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Redis.TTLDuration(); err != nil {
		return err
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("%w: render.workers must be >= 0, got %d", ErrInvalidValue, c.Render.Workers)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rateLimit must be >= 0, got %v", ErrInvalidValue, c.Server.RateLimit)
	}
	if c.Server.RateBurst < 0 {
		return fmt.Errorf("%w: server.rateBurst must be >= 0, got %d", ErrInvalidValue, c.Server.RateBurst)
	}
	if c.Backup.MinIO.Enabled() && c.Backup.MinIO.Bucket == "" {
		return fmt.Errorf("%w: backup.minio.bucket: required when endpoint is set", ErrInvalidValue)
	}
	return nil
}

// TimeoutDuration parses Render.Timeout. Empty means DefaultTimeout.
func (r RenderConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("render.timeout", r.Timeout, DefaultTimeout, true)
}

// TTLDuration parses Redis.TTL. Empty means DefaultCacheTTL; "0" means no expiry.
func (r RedisConfig) TTLDuration() (time.Duration, error) {
	return parseDuration("redis.ttl", r.TTL, DefaultCacheTTL, false)
}

func parseDuration(field, value, fallback string, positive bool) (time.Duration, error) {
	if value == "" {
		value = fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d < 0 || (positive && d == 0) {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the YAML file
// named by nameOrPath (skipped when empty), then environment overrides.
// .env files are read first and never override variables already set.
func Load(nameOrPath string, envFiles ...string) (*Config, error) {
	LoadDotEnv(envFiles...)

	cfg := DefaultConfig()
	if nameOrPath != "" {
		fileCfg, err := LoadConfig(nameOrPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored. With no arguments it reads ./.env.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if fileutil.FileExists(f) {
			_ = godotenv.Load(f)
		}
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-catalog2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-catalog2pdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// ApplyEnv overrides fields from CATALOG_* variables found through lookup.
// Unset variables leave the field untouched.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) error {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidValue, envPrefix, name, v)
		}
		*dst = n
		return nil
	}

	str("DATA", &c.Data.Path)
	str("IMAGES", &c.Data.Images)
	str("OUT", &c.Output.Path)
	str("TITLE", &c.Catalog.Title)
	str("TIMEOUT", &c.Render.Timeout)
	str("ASSET_PATH", &c.Render.AssetPath)
	str("STYLE", &c.Render.Style)
	str("ADDR", &c.Server.Addr)
	str("STATIC_DIR", &c.Server.StaticDir)
	str("POSTGRES_DSN", &c.Postgres.DSN)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("REDIS_TTL", &c.Redis.TTL)
	str("BACKUP_DIR", &c.Backup.Dir)
	str("MINIO_ENDPOINT", &c.Backup.MinIO.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Backup.MinIO.AccessKey)
	str("MINIO_SECRET_KEY", &c.Backup.MinIO.SecretKey)
	str("MINIO_BUCKET", &c.Backup.MinIO.Bucket)

	// Columns follow the --cols rules: non-numeric means the default.
	if v, ok := lookup(envPrefix + "COLS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			n = DefaultColumns
		}
		c.Catalog.Columns = n
	}

	for name, dst := range map[string]*int{
		"WORKERS":  &c.Render.Workers,
		"REDIS_DB": &c.Redis.DB,
	} {
		if err := integer(name, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup(envPrefix + "MINIO_USE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sMINIO_USE_SSL=%q", ErrInvalidValue, envPrefix, v)
		}
		c.Backup.MinIO.UseSSL = b
	}
	return nil
}
