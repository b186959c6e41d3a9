package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"encomendas_backend/internal/algorithms"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`

		AllowedOrigins  []string      `yaml:"allowed_origins"` // CORS и websocket, пусто - любой
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"` // signing secret of the managed auth provider
		Issuer    string `yaml:"issuer"`     // optional, checked when set
	} `yaml:"auth"`

	Storage struct {
		Type         string        `yaml:"type"`      // local, s3, cloudflare_r2
		BasePath     string        `yaml:"base_path"` // For local storage
		BaseURL      string        `yaml:"base_url"`  // Public URL base
		Bucket       string        `yaml:"bucket"`    // For S3/R2
		Region       string        `yaml:"region"`    // For S3
		AccessKey    string        `yaml:"access_key"`
		SecretKey    string        `yaml:"secret_key"`
		Endpoint     string        `yaml:"endpoint"` // For R2 or custom S3
		UseSSL       bool          `yaml:"use_ssl"`
		PublicRead   bool          `yaml:"public_read"`
		SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`      // Max photo size in bytes
		AllowedTypes []string `yaml:"allowed_types"` // Allowed MIME types
		ImageQuality int      `yaml:"image_quality"` // Initial JPEG quality (1-100)
	} `yaml:"upload"`

	AI struct {
		Provider   string        `yaml:"provider"` // gateway, gemini
		GatewayURL string        `yaml:"gateway_url"`
		APIKey     string        `yaml:"api_key"`
		Model      string        `yaml:"model"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Twilio struct {
		AccountSID       string `yaml:"account_sid"`
		AuthToken        string `yaml:"auth_token"`
		WhatsAppFrom     string `yaml:"whatsapp_from"`
		PickupContentSID string `yaml:"pickup_content_sid"`
		BaseURL          string `yaml:"base_url"`
	} `yaml:"twilio"`

	Redis struct {
		URL         string        `yaml:"url"`
		ResidentTTL time.Duration `yaml:"resident_ttl"`
	} `yaml:"redis"`

	// пропущенные ключи берутся из DefaultPolicy, 0 отключает сигнал
	Matcher algorithms.PolicyOverrides `yaml:"matcher"`

	Workers struct {
		ConfirmationInterval time.Duration `yaml:"confirmation_interval"`
		ConfirmationBatch    int           `yaml:"confirmation_batch"`
	} `yaml:"workers"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		log.Println("loading configuration from yaml file")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("loading configuration from environment")
	cfg = *FromEnv()
	AppConfig = &cfg
}

// FromEnv builds a configuration from environment variables (CI and container mode).
func FromEnv() *Config {
	var cfg Config

	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.Storage.Type = envOr("STORAGE_TYPE", "local")
	cfg.Storage.BasePath = envOr("STORAGE_BASE_PATH", "./uploads")
	cfg.Storage.BaseURL = envOr("STORAGE_BASE_URL", "/api/v1/files")
	cfg.Storage.Bucket = envOr("STORAGE_BUCKET", "package-photos")
	cfg.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")
	cfg.Storage.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("STORAGE_SECRET_KEY")
	cfg.Storage.Region = os.Getenv("STORAGE_REGION")

	cfg.AI.Provider = envOr("AI_PROVIDER", "gateway")
	cfg.AI.GatewayURL = os.Getenv("AI_GATEWAY_URL")
	cfg.AI.APIKey = os.Getenv("AI_API_KEY")
	cfg.AI.Model = os.Getenv("AI_MODEL")

	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.WhatsAppFrom = os.Getenv("TWILIO_WHATSAPP_FROM")

	cfg.Redis.URL = os.Getenv("REDIS_URL")

	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Storage.SignedURLTTL == 0 {
		cfg.Storage.SignedURLTTL = time.Hour
	}
	if cfg.Upload.MaxSize == 0 {
		cfg.Upload.MaxSize = 15 * 1024 * 1024 // 15MB, raw phone camera photos
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if cfg.Upload.ImageQuality == 0 {
		cfg.Upload.ImageQuality = 85
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "google/gemini-2.5-flash"
	}
	if cfg.AI.GatewayURL == "" {
		cfg.AI.GatewayURL = "https://ai.gateway.lovable.dev/v1"
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60 * time.Second
	}
	if cfg.Twilio.PickupContentSID == "" {
		cfg.Twilio.PickupContentSID = "HXfd32c526e2f3c8209d014dd2c2f27120"
	}
	if cfg.Twilio.BaseURL == "" {
		cfg.Twilio.BaseURL = "https://api.twilio.com"
	}
	if cfg.Redis.ResidentTTL == 0 {
		cfg.Redis.ResidentTTL = 10 * time.Minute
	}
	if cfg.Workers.ConfirmationInterval == 0 {
		cfg.Workers.ConfirmationInterval = 5 * time.Minute
	}
	if cfg.Workers.ConfirmationBatch == 0 {
		cfg.Workers.ConfirmationBatch = 50
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
