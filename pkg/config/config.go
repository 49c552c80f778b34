package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/corescan/deployguard/internal/domain/entities"
)

const (
	// EnvProduction is the environment name in which persistence matters
	EnvProduction = "production"

	defaultHostMarkerEnv      = "RAILWAY_ENVIRONMENT"
	defaultDurableMountPrefix = "/durable"
)

// Config is the complete resolved configuration. It is loaded once at
// startup and validated; components never read the environment themselves.
type Config struct {
	Environment        string        `yaml:"environment"`
	DatabasePath       string        `yaml:"database_path"`
	UploadsDir         string        `yaml:"uploads_dir"`
	DurableMountPrefix string        `yaml:"durable_mount_prefix"`
	HostMarkerEnv      string        `yaml:"host_marker_env"`
	Port               string        `yaml:"port"`
	AuditLogPath       string        `yaml:"audit_log_path"`
	ProductionURL      string        `yaml:"production_url"`
	Backup             BackupConfig  `yaml:"backup"`
	Offsite            OffsiteConfig `yaml:"offsite"`

	// Derived at load time, not part of the file
	OnManagedHost   bool   `yaml:"-"`
	DeployTimestamp string `yaml:"-"`
}

// BackupConfig holds backup engine settings
type BackupConfig struct {
	Dir      string `yaml:"dir"`
	Prefix   string `yaml:"prefix"`
	MaxCount int    `yaml:"max_count"`
}

// OffsiteConfig holds optional S3 replication settings
type OffsiteConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key" sensitive:"true"`
	SecretKey string `yaml:"secret_key" sensitive:"true"`
}

// Enabled reports whether offsite replication is configured
func (o OffsiteConfig) Enabled() bool { return o.Bucket != "" }

// Load builds the configuration from an optional YAML file (CONFIG_PATH,
// falling back to ./config.yaml if present) overridden by environment
// variables, then validates it. Missing required settings surface as a
// ConfigurationError instead of a silently injected default.
func Load() (*Config, error) {
	// MaxCount is defaulted before the file and env layers so an explicit
	// zero stays visible to Validate instead of being replaced
	cfg := &Config{Backup: BackupConfig{MaxCount: 10}}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &entities.ConfigurationError{Field: configPath, Reason: fmt.Sprintf("invalid yaml: %v", err)}
		}
	}

	applyEnv(cfg)

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HostMarkerEnv == "" {
		cfg.HostMarkerEnv = defaultHostMarkerEnv
	}
	if cfg.DurableMountPrefix == "" {
		cfg.DurableMountPrefix = defaultDurableMountPrefix
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "./backups"
	}
	if cfg.Backup.Prefix == "" {
		cfg.Backup.Prefix = "corescan"
	}
	if cfg.AuditLogPath == "" {
		cfg.AuditLogPath = "./data/audit.log"
	}

	// Local paths are only defaulted outside production; in production an
	// implicit path would mask a persistence misconfiguration.
	if !cfg.IsProduction() {
		if cfg.DatabasePath == "" {
			cfg.DatabasePath = "./data/corescan.db"
		}
		if cfg.UploadsDir == "" {
			cfg.UploadsDir = "./data/uploads"
		}
	}

	cfg.OnManagedHost = os.Getenv(cfg.HostMarkerEnv) != ""
	cfg.DeployTimestamp = os.Getenv("DEPLOY_TIMESTAMP")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfPresent(&cfg.Environment, "APP_ENV")
	setIfPresent(&cfg.DatabasePath, "DATABASE_PATH")
	setIfPresent(&cfg.UploadsDir, "UPLOADS_DIR")
	setIfPresent(&cfg.DurableMountPrefix, "DURABLE_MOUNT_PREFIX")
	setIfPresent(&cfg.HostMarkerEnv, "HOST_MARKER_ENV")
	setIfPresent(&cfg.Port, "PORT")
	setIfPresent(&cfg.AuditLogPath, "AUDIT_LOG_PATH")
	setIfPresent(&cfg.ProductionURL, "PRODUCTION_URL")
	setIfPresent(&cfg.Backup.Dir, "BACKUP_DIR")
	setIfPresent(&cfg.Backup.Prefix, "BACKUP_PREFIX")
	setIfPresent(&cfg.Offsite.Bucket, "OFFSITE_S3_BUCKET")
	setIfPresent(&cfg.Offsite.Region, "OFFSITE_S3_REGION")
	setIfPresent(&cfg.Offsite.Endpoint, "OFFSITE_S3_ENDPOINT")
	setIfPresent(&cfg.Offsite.AccessKey, "OFFSITE_S3_ACCESS_KEY")
	setIfPresent(&cfg.Offsite.SecretKey, "OFFSITE_S3_SECRET_KEY")

	if v := os.Getenv("BACKUP_MAX_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backup.MaxCount = n
		} else {
			cfg.Backup.MaxCount = -1 // rejected by Validate with the field name
		}
	}
}

// IsProduction reports whether the declared environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate checks that every required setting is present and well formed
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.DatabasePath == "" {
			return &entities.ConfigurationError{Field: "DATABASE_PATH", Reason: "must be set explicitly in production"}
		}
		if c.UploadsDir == "" {
			return &entities.ConfigurationError{Field: "UPLOADS_DIR", Reason: "must be set explicitly in production"}
		}
	}
	if c.Backup.MaxCount < 1 {
		return &entities.ConfigurationError{Field: "BACKUP_MAX_COUNT", Reason: "must be a positive integer"}
	}
	return nil
}
