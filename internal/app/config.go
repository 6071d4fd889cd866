package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/DavidAtikpo/irata-sub002/internal/data/db"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/envutil"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

const defaultMaxUploadBytes int64 = 10 << 20

type DBConfig struct {
	Driver     string `yaml:"driver" toml:"driver"`
	Host       string `yaml:"host" toml:"host"`
	Port       string `yaml:"port" toml:"port"`
	User       string `yaml:"user" toml:"user"`
	Password   string `yaml:"password" toml:"password"`
	Name       string `yaml:"name" toml:"name"`
	SSLMode    string `yaml:"sslmode" toml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`
}

type QRConfig struct {
	Size         int    `yaml:"size" toml:"size"`
	Primary      string `yaml:"wordmark_primary" toml:"wordmark_primary"`
	Secondary    string `yaml:"wordmark_secondary" toml:"wordmark_secondary"`
	FontPath     string `yaml:"font_path" toml:"font_path"`
	FallbackBase string `yaml:"fallback_base" toml:"fallback_base"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr" toml:"addr"`
	Channel string `yaml:"channel" toml:"channel"`
}

type DocumentAIConfig struct {
	ProjectID        string `yaml:"project_id" toml:"project_id"`
	Location         string `yaml:"location" toml:"location"`
	ProcessorID      string `yaml:"processor_id" toml:"processor_id"`
	ProcessorVersion string `yaml:"processor_version" toml:"processor_version"`
}

type StorageConfig struct {
	Mode         string `yaml:"mode" toml:"mode"`
	EmulatorHost string `yaml:"emulator_host" toml:"emulator_host"`
	UploadBucket string `yaml:"upload_bucket" toml:"upload_bucket"`
	UploadCDN    string `yaml:"upload_cdn" toml:"upload_cdn"`
	QRCodeBucket string `yaml:"qrcode_bucket" toml:"qrcode_bucket"`
	QRCodeCDN    string `yaml:"qrcode_cdn" toml:"qrcode_cdn"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled" toml:"enabled"`
	Endpoint    string  `yaml:"endpoint" toml:"endpoint"`
	Headers     string  `yaml:"headers" toml:"headers"`
	Insecure    bool    `yaml:"insecure" toml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio"`
	Environment string  `yaml:"environment" toml:"environment"`
}

type Config struct {
	Port           string   `yaml:"port" toml:"port"`
	PublicOrigin   string   `yaml:"public_origin" toml:"public_origin"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" toml:"max_upload_bytes"`

	// BroadcastBaseURL points propagation at a remote API; empty fans out
	// through the local database.
	BroadcastBaseURL        string `yaml:"broadcast_base_url" toml:"broadcast_base_url"`
	BroadcastTimeoutSeconds int    `yaml:"broadcast_timeout_seconds" toml:"broadcast_timeout_seconds"`

	DB         DBConfig         `yaml:"db" toml:"db"`
	QR         QRConfig         `yaml:"qr" toml:"qr"`
	Redis      RedisConfig      `yaml:"redis" toml:"redis"`
	DocumentAI DocumentAIConfig `yaml:"documentai" toml:"documentai"`
	Vision     bool             `yaml:"vision" toml:"vision"`
	Storage    StorageConfig    `yaml:"storage" toml:"storage"`
	Otel       OtelConfig       `yaml:"otel" toml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Port:                    "8080",
		PublicOrigin:            "http://localhost:5173",
		MaxUploadBytes:          defaultMaxUploadBytes,
		BroadcastTimeoutSeconds: 30,
		DB: DBConfig{
			Driver:     db.DriverPostgres,
			Host:       "localhost",
			Port:       "5432",
			User:       "postgres",
			Name:       "inspections",
			SSLMode:    "disable",
			SQLitePath: "inspections.db",
		},
		QR: QRConfig{Size: 300},
	}
}

// LoadConfig reads the optional file named by INSPECTION_CONFIG, then applies
// environment variables on top. Env always wins over the file.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path, ok := envutil.Lookup("INSPECTION_CONFIG", log); ok {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
		log.Info("Loaded config file", "path", path)
	}
	applyEnv(&cfg, log)
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	cfg.PublicOrigin = strings.TrimRight(cfg.PublicOrigin, "/")
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, log *logger.Logger) {
	str := func(key string, dst *string) {
		if v, ok := envutil.Lookup(key, log); ok {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("PUBLIC_ORIGIN", &cfg.PublicOrigin)
	if v, ok := envutil.Lookup("ALLOWED_ORIGINS", log); ok {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	cfg.MaxUploadBytes = envutil.Int64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	str("BROADCAST_BASE_URL", &cfg.BroadcastBaseURL)
	cfg.BroadcastTimeoutSeconds = envutil.Int("BROADCAST_TIMEOUT_SECONDS", cfg.BroadcastTimeoutSeconds)

	str("DB_DRIVER", &cfg.DB.Driver)
	str("POSTGRES_HOST", &cfg.DB.Host)
	str("POSTGRES_PORT", &cfg.DB.Port)
	str("POSTGRES_USER", &cfg.DB.User)
	str("POSTGRES_PASSWORD", &cfg.DB.Password)
	str("POSTGRES_NAME", &cfg.DB.Name)
	str("POSTGRES_SSLMODE", &cfg.DB.SSLMode)
	str("SQLITE_PATH", &cfg.DB.SQLitePath)

	cfg.QR.Size = envutil.Int("QR_SIZE", cfg.QR.Size)
	str("QR_WORDMARK_PRIMARY", &cfg.QR.Primary)
	str("QR_WORDMARK_SECONDARY", &cfg.QR.Secondary)
	str("QR_FONT_PATH", &cfg.QR.FontPath)
	str("QR_FALLBACK_BASE", &cfg.QR.FallbackBase)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_CHANNEL", &cfg.Redis.Channel)

	str("DOCUMENTAI_PROJECT_ID", &cfg.DocumentAI.ProjectID)
	str("DOCUMENTAI_LOCATION", &cfg.DocumentAI.Location)
	str("DOCUMENTAI_PROCESSOR_ID", &cfg.DocumentAI.ProcessorID)
	str("DOCUMENTAI_PROCESSOR_VERSION", &cfg.DocumentAI.ProcessorVersion)
	cfg.Vision = envutil.Bool("VISION_ENABLED", cfg.Vision)

	str("OBJECT_STORAGE_MODE", &cfg.Storage.Mode)
	str("STORAGE_EMULATOR_HOST", &cfg.Storage.EmulatorHost)
	str("INSPECTION_GCS_BUCKET_NAME", &cfg.Storage.UploadBucket)
	str("INSPECTION_GCS_CDN_DOMAIN", &cfg.Storage.UploadCDN)
	str("QRCODE_GCS_BUCKET_NAME", &cfg.Storage.QRCodeBucket)
	str("QRCODE_GCS_CDN_DOMAIN", &cfg.Storage.QRCodeCDN)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Otel.Endpoint)
	str("OTEL_EXPORTER_OTLP_HEADERS", &cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	if v, ok := envutil.Lookup("OTEL_SAMPLER_RATIO", log); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Otel.SampleRatio = f
		}
	}
	str("APP_ENV", &cfg.Otel.Environment)
}

func (c Config) Database() db.Config {
	return db.Config{
		Driver:           c.DB.Driver,
		PostgresHost:     c.DB.Host,
		PostgresPort:     c.DB.Port,
		PostgresUser:     c.DB.User,
		PostgresPassword: c.DB.Password,
		PostgresName:     c.DB.Name,
		PostgresSSLMode:  c.DB.SSLMode,
		SQLitePath:       c.DB.SQLitePath,
	}
}

func (c Config) BroadcastTimeout() time.Duration {
	if c.BroadcastTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.BroadcastTimeoutSeconds) * time.Second
}

// StorageEnabled reports whether uploads go to object storage.
func (c Config) StorageEnabled() bool {
	return strings.TrimSpace(c.Storage.UploadBucket) != ""
}

// DocumentAIEnabled reports whether a processor is configured.
func (c Config) DocumentAIEnabled() bool {
	return strings.TrimSpace(c.DocumentAI.ProjectID) != "" && strings.TrimSpace(c.DocumentAI.ProcessorID) != ""
}
