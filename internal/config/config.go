package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Бэкенды хранилища вложений.
const (
	BlobBackendFS     = "fs"
	BlobBackendS3     = "s3"
	BlobBackendMemory = "memory"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	Debug       bool   `env:"DEBUG"`

	// PublicURL — внешний адрес для публичных ссылок, если сервер стоит за прокси.
	PublicURL      string         `env:"PUBLIC_URL"`
	AllowedOrigins []string       `env:"ALLOWED_ORIGINS" envSeparator:","`
	Timezone       string         `env:"TIMEZONE"`
	Location       *time.Location `env:"-"`

	// Media
	BlobBackend string `env:"BLOB_BACKEND"`
	UploadDir   string `env:"UPLOAD_DIR"`
	MediaMaxMB  int    `env:"MEDIA_MAX_MB"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PathStyle bool   `env:"S3_PATH_STYLE"`

	// Bootstrap administrator
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Thematic analysis
	OpenAIKey       string        `env:"OPENAI_API_KEY"`
	AnalysisModel   string        `env:"ANALYSIS_MODEL"`
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги по умолчанию берут значения из env
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres:// или путь к SQLite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "каталог для вложений (BLOB_BACKEND=fs)")
	flag.StringVar(&cfg.BlobBackend, "blob-backend", cfg.BlobBackend, "хранилище вложений: fs, s3 или memory")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "подробный лог")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the FieldScribe server in host:port form")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	// BaseURL только в виде "address:port" (без схемы и пути), иначе значение по умолчанию
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	if cfg.PublicURL == "" {
		cfg.PublicURL = cfg.ServerURL
	}

	switch cfg.BlobBackend {
	case BlobBackendFS, BlobBackendS3, BlobBackendMemory:
	default:
		cfg.BlobBackend = BlobBackendFS
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.MediaMaxMB <= 0 {
		cfg.MediaMaxMB = 16
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}

	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = "admin@fieldscribe.local"
	}

	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = "gpt-4"
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 60 * time.Second
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		cfg.Timezone = "UTC"
		loc = time.UTC
	}
	cfg.Location = loc

	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".fieldscribe_token")
	}
}

// MediaMaxBytes — лимит вложения в байтах.
func (cfg *Config) MediaMaxBytes() int64 {
	return int64(cfg.MediaMaxMB) << 20
}

// ShareURL строит публичную ссылку по токену.
func (cfg *Config) ShareURL(token string) string {
	return cfg.PublicURL + "/api/shared/" + token
}
