package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/linskybing/fundraise-go/pkg/logger"
	"gopkg.in/yaml.v2"
)

const (
	MediaProviderCloudinary = "cloudinary"
	MediaProviderMinio      = "minio"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type Config struct {
	ServerPort     string   `yaml:"server_port" env:"SERVER_PORT"`
	GinMode        string   `yaml:"gin_mode" env:"GIN_MODE"`
	LogLevel       string   `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string   `yaml:"log_format" env:"LOG_FORMAT"`
	JwtSecret      string   `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer         string   `yaml:"issuer" env:"ISSUER"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	KYCVerifyRoute string   `yaml:"kyc_verify_route" env:"KYC_VERIFY_ROUTE"`

	AuditRetentionDays int `yaml:"audit_retention_days" env:"AUDIT_RETENTION_DAYS"`

	DB      DBConfig      `yaml:"db" envPrefix:"DB_"`
	Media   MediaConfig   `yaml:"media" envPrefix:"MEDIA_"`
	Minio   MinioConfig   `yaml:"minio" envPrefix:"MINIO_"`
	Staging StagingConfig `yaml:"staging" envPrefix:"STAGING_"`
	Screen  ScreenConfig  `yaml:"screen" envPrefix:"SCREEN_"`
}

type DBConfig struct {
	Driver     string `yaml:"driver" env:"DRIVER"`
	Host       string `yaml:"host" env:"HOST"`
	Port       string `yaml:"port" env:"PORT"`
	User       string `yaml:"user" env:"USER"`
	Password   string `yaml:"password" env:"PASSWORD"`
	Name       string `yaml:"name" env:"NAME"`
	SSLMode    string `yaml:"sslmode" env:"SSLMODE"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// MediaConfig describes the unsigned upload endpoint of the media host.
type MediaConfig struct {
	Provider     string        `yaml:"provider" env:"PROVIDER"`
	Endpoint     string        `yaml:"endpoint" env:"ENDPOINT"`
	CloudName    string        `yaml:"cloud_name" env:"CLOUD_NAME"`
	UploadPreset string        `yaml:"upload_preset" env:"UPLOAD_PRESET"`
	Folder       string        `yaml:"folder" env:"FOLDER"`
	FileName     string        `yaml:"file_name" env:"FILE_NAME"`
	MimeType     string        `yaml:"mime_type" env:"MIME_TYPE"`
	HTTPTimeout  time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"USE_SSL"`
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL"`
}

// StagingConfig controls where picked images wait until they are uploaded.
// MaxPixels bounds width*height before a picked image is decoded.
type StagingConfig struct {
	Dir       string        `yaml:"dir" env:"DIR"`
	MaxBytes  int64         `yaml:"max_bytes" env:"MAX_BYTES"`
	MaxPixels int64         `yaml:"max_pixels" env:"MAX_PIXELS"`
	TTL       time.Duration `yaml:"ttl" env:"TTL"`
}

type ScreenConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" env:"IDLE_TTL"`
	SweepSchedule string        `yaml:"sweep_schedule" env:"SWEEP_SCHEDULE"`
}

func Default() *Config {
	return &Config{
		ServerPort:         "8080",
		GinMode:            "release",
		LogLevel:           "info",
		LogFormat:          "text",
		JwtSecret:          "defaultsecret",
		Issuer:             "fundraise",
		AllowedOrigins:     []string{"http://localhost:*", "http://127.0.0.1:*"},
		KYCVerifyRoute:     "/kycVerify",
		AuditRetentionDays: 30,
		DB: DBConfig{
			Driver:     DBDriverPostgres,
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Password:   "password",
			Name:       "fundraise",
			SSLMode:    "disable",
			SQLitePath: "fundraise.db",
		},
		Media: MediaConfig{
			Provider:     MediaProviderCloudinary,
			Endpoint:     "https://api.cloudinary.com/v1_1",
			CloudName:    "do8y0zgci",
			UploadPreset: "react-native",
			Folder:       "fund_requests",
			FileName:     "blog.jpg",
			MimeType:     "image/jpeg",
		},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "fundraise",
		},
		Staging: StagingConfig{
			Dir:       filepath.Join(os.TempDir(), "fundraise-staging"),
			MaxBytes:  10 << 20,
			MaxPixels: 25_000_000,
			TTL:       time.Hour,
		},
		Screen: ScreenConfig{
			IdleTTL:       30 * time.Minute,
			SweepSchedule: "@every 5m",
		},
	}
}

// LoadConfig layers defaults, an optional YAML file named by CONFIG_FILE and
// the process environment (including a .env file), in that order.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("No .env file found, using environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.JwtSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	switch c.DB.Driver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Media.Provider {
	case MediaProviderCloudinary:
		if c.Media.CloudName == "" || c.Media.UploadPreset == "" {
			return errors.New("MEDIA_CLOUD_NAME and MEDIA_UPLOAD_PRESET are required for cloudinary")
		}
	case MediaProviderMinio:
		if c.Minio.Bucket == "" {
			return errors.New("MINIO_BUCKET is required for the minio media provider")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_PROVIDER %q", c.Media.Provider)
	}
	if c.Staging.MaxBytes <= 0 {
		return errors.New("STAGING_MAX_BYTES must be positive")
	}
	if c.Staging.MaxPixels <= 0 {
		return errors.New("STAGING_MAX_PIXELS must be positive")
	}
	return nil
}
