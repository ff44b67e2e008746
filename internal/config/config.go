package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Encryption    EncryptionConfig
	Gemini        GeminiConfig
	Tavily        TavilyConfig
	YouTube       YouTubeConfig
	GA4           GA4Config
	Google        GoogleConfig
	OTP           OTPConfig
	StudyMaterial StudyMaterialConfig
	Admin         AdminConfig
	Logger        LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    int
	AllowOrigins string
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

// EncryptionConfig holds the key used to seal user-provided API keys at rest.
// Key must decode (base64) or be exactly 32 bytes.
type EncryptionConfig struct {
	Key string
}

type GeminiConfig struct {
	Model          string
	RequestTimeout time.Duration
}

type TavilyConfig struct {
	APIKey     string
	URL        string
	MaxResults int
}

type YouTubeConfig struct {
	APIKey   string
	CacheTTL time.Duration
}

type GA4Config struct {
	PropertyID      string
	CredentialsFile string
	CredentialsJSON string
	MeasurementID   string
	APISecret       string
	CacheTTL        time.Duration
}

type GoogleConfig struct {
	ClientID string
}

type OTPConfig struct {
	TTL           time.Duration
	MaxAttempts   int
	BlockDuration time.Duration
}

type StudyMaterialConfig struct {
	FreshFor time.Duration
}

type AdminConfig struct {
	InviteToken string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "20s")
	v.SetDefault("server.body_limit", 10*1024*1024)
	v.SetDefault("server.allow_origins", "*")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "interview_prep")
	v.SetDefault("mongo.timeout", "10s")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.ttl", "168h")

	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.request_timeout", "60s")

	v.SetDefault("tavily.url", "https://api.tavily.com/search")
	v.SetDefault("tavily.max_results", 3)

	v.SetDefault("youtube.cache_ttl", "24h")
	v.SetDefault("ga4.cache_ttl", "5m")

	v.SetDefault("otp.ttl", "10m")
	v.SetDefault("otp.max_attempts", 3)
	v.SetDefault("otp.block_duration", "1h")

	v.SetDefault("study_material.fresh_for", "168h")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml (if present) and overlays environment variables.
// Nested keys map to upper-case env names, e.g. mongo.uri -> MONGO_URI.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../configs")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
			AllowOrigins: v.GetString("server.allow_origins"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo.uri"),
			Database: v.GetString("mongo.database"),
			Timeout:  v.GetDuration("mongo.timeout"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey: v.GetString("jwt.secret_key"),
			TTL:       v.GetDuration("jwt.ttl"),
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("encryption.key"),
		},
		Gemini: GeminiConfig{
			Model:          v.GetString("gemini.model"),
			RequestTimeout: v.GetDuration("gemini.request_timeout"),
		},
		Tavily: TavilyConfig{
			APIKey:     v.GetString("tavily.api_key"),
			URL:        v.GetString("tavily.url"),
			MaxResults: v.GetInt("tavily.max_results"),
		},
		YouTube: YouTubeConfig{
			APIKey:   v.GetString("youtube.api_key"),
			CacheTTL: v.GetDuration("youtube.cache_ttl"),
		},
		GA4: GA4Config{
			PropertyID:      v.GetString("ga4.property_id"),
			CredentialsFile: v.GetString("ga4.credentials_file"),
			CredentialsJSON: v.GetString("ga4.credentials_json"),
			MeasurementID:   v.GetString("ga4.measurement_id"),
			APISecret:       v.GetString("ga4.api_secret"),
			CacheTTL:        v.GetDuration("ga4.cache_ttl"),
		},
		Google: GoogleConfig{
			ClientID: v.GetString("google.client_id"),
		},
		OTP: OTPConfig{
			TTL:           v.GetDuration("otp.ttl"),
			MaxAttempts:   v.GetInt("otp.max_attempts"),
			BlockDuration: v.GetDuration("otp.block_duration"),
		},
		StudyMaterial: StudyMaterialConfig{
			FreshFor: v.GetDuration("study_material.fresh_for"),
		},
		Admin: AdminConfig{
			InviteToken: v.GetString("admin.invite_token"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key is required")
	}
	if c.Encryption.Key == "" {
		return fmt.Errorf("encryption.key is required")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return fmt.Errorf("mongo.uri and mongo.database are required")
	}
	if c.OTP.MaxAttempts <= 0 {
		return fmt.Errorf("otp.max_attempts must be positive, got %d", c.OTP.MaxAttempts)
	}
	return nil
}
