package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int64
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type AppConfig struct {
	UploadDir string
	DataDir   string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
	AdminUser  string
	AdminPass  string
}

type StorageConfig struct {
	Enabled    bool
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	UseSSL     bool
	PresignTTL time.Duration
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

type ImportConfig struct {
	WorkerCount int
	TempDir     string
}

// DefaultJWTSecret is the development signing key. Release mode refuses it.
const DefaultJWTSecret = "change-me-in-production"

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("LOG_LEVEL", "")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("SERVER_MAX_UPLOAD_MB", 25)
		viper.SetDefault("DATABASE_URL", "")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "eximdesk")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_CONNS", 25)
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_DATA_DIR", "./data/output")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("JWT_SECRET", DefaultJWTSecret)
		viper.SetDefault("JWT_ISSUER", "eximdesk")
		viper.SetDefault("JWT_TTL", "12h")
		viper.SetDefault("BCRYPT_COST", 12)
		viper.SetDefault("ADMIN_USERNAME", "")
		viper.SetDefault("ADMIN_PASSWORD", "")
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "eximdesk-documents")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", false)
		viper.SetDefault("STORAGE_PRESIGN_TTL", "15m")
		viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
		viper.SetDefault("IMPORT_WORKER_COUNT", 4)
		viper.SetDefault("IMPORT_TEMP_DIR", "./data/imports")

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure upload and data directories exist
		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("IMPORT_TEMP_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				LogLevel:       viper.GetString("LOG_LEVEL"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
				MaxUploadMB:    viper.GetInt64("SERVER_MAX_UPLOAD_MB"),
			},
			Database: DatabaseConfig{
				URL:      viper.GetString("DATABASE_URL"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
				MaxConns: viper.GetInt("DB_MAX_CONNS"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
				DataDir:   viper.GetString("APP_DATA_DIR"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Auth: AuthConfig{
				JWTSecret:  viper.GetString("JWT_SECRET"),
				Issuer:     viper.GetString("JWT_ISSUER"),
				TokenTTL:   viper.GetDuration("JWT_TTL"),
				BcryptCost: viper.GetInt("BCRYPT_COST"),
				AdminUser:  viper.GetString("ADMIN_USERNAME"),
				AdminPass:  viper.GetString("ADMIN_PASSWORD"),
			},
			Storage: StorageConfig{
				Enabled:    viper.GetBool("STORAGE_ENABLED"),
				Endpoint:   viper.GetString("STORAGE_ENDPOINT"),
				AccessKey:  viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey:  viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:     viper.GetString("STORAGE_BUCKET"),
				Region:     viper.GetString("STORAGE_REGION"),
				UseSSL:     viper.GetBool("STORAGE_USE_SSL"),
				PresignTTL: viper.GetDuration("STORAGE_PRESIGN_TTL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				FolderID:        viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
			},
			Import: ImportConfig{
				WorkerCount: viper.GetInt("IMPORT_WORKER_COUNT"),
				TempDir:     viper.GetString("IMPORT_TEMP_DIR"),
			},
		}
	})

	return instance
}

// Validate rejects settings that are only acceptable in development. In
// release mode JWT_SECRET must be set to something other than the default.
func (c *Config) Validate() error {
	if c.Server.Mode != "release" {
		return nil
	}
	switch strings.TrimSpace(c.Auth.JWTSecret) {
	case "":
		return errors.New("JWT_SECRET is empty; set it before running in release mode")
	case DefaultJWTSecret:
		return errors.New("JWT_SECRET still has the development default; set it before running in release mode")
	}
	return nil
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}

// DSN returns DATABASE_URL when set, otherwise a key/value connection string
// built from the individual DB_* settings.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
