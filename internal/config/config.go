package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is built once at startup and passed by injection; business logic
// never reads ambient state for secrets or TTLs.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        int    `mapstructure:"PORT"`
	MetricsPort string `mapstructure:"METRICS_PORT"`

	MongoURI  string `mapstructure:"MONGO_URI"`
	MongoDB   string `mapstructure:"MONGO_DB"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	NATSURL   string `mapstructure:"NATS_URL"`

	AccessTokenSecret  string        `mapstructure:"ACCESS_SECRET_TOKEN"`
	RefreshTokenSecret string        `mapstructure:"REFRESH_SECRET_TOKEN"`
	AccessTokenTTL     time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	// Cookie window is deliberately a separate knob from the refresh token
	// TTL; the upstream behavior keeps them different (24h vs 100d).
	RefreshCookieMaxAge time.Duration `mapstructure:"REFRESH_COOKIE_MAX_AGE"`

	VerificationTokenTTL time.Duration `mapstructure:"VERIFICATION_TOKEN_TTL"`
	ResetTokenTTL        time.Duration `mapstructure:"RESET_TOKEN_TTL"`

	FrontendURL     string `mapstructure:"FRONTEND_URL"`
	VerificationURL string `mapstructure:"VERIFICATION_URL"`

	MailProvider      string `mapstructure:"MAIL_PROVIDER"` // "smtp" or "mailersend"
	SMTPHost          string `mapstructure:"EMAIL_HOST"`
	SMTPPort          int    `mapstructure:"EMAIL_PORT"`
	SMTPUser          string `mapstructure:"EMAIL_USER"`
	SMTPPass          string `mapstructure:"EMAIL_PASS"`
	MailerSendAPIKey  string `mapstructure:"MAILERSEND_API_KEY"`
	MailFromEmail     string `mapstructure:"MAIL_FROM_EMAIL"`
	MailFromName      string `mapstructure:"MAIL_FROM_NAME"`

	// Object storage for profile images; uploads are rejected when the
	// endpoint is left empty.
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", 3500)
	viper.SetDefault("METRICS_PORT", "")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "taskvault")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("ACCESS_SECRET_TOKEN", "access-secret-key")
	viper.SetDefault("REFRESH_SECRET_TOKEN", "refresh-secret-key")
	viper.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	viper.SetDefault("REFRESH_TOKEN_TTL", 100*24*time.Hour)
	viper.SetDefault("REFRESH_COOKIE_MAX_AGE", 24*time.Hour)
	viper.SetDefault("VERIFICATION_TOKEN_TTL", 24*time.Hour)
	viper.SetDefault("RESET_TOKEN_TTL", time.Hour)
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("VERIFICATION_URL", "http://localhost:3500/verify-email")
	viper.SetDefault("MAIL_PROVIDER", "smtp")
	viper.SetDefault("EMAIL_HOST", "localhost")
	viper.SetDefault("EMAIL_PORT", 587)
	viper.SetDefault("EMAIL_USER", "")
	viper.SetDefault("EMAIL_PASS", "")
	viper.SetDefault("MAILERSEND_API_KEY", "")
	viper.SetDefault("MAIL_FROM_EMAIL", "no-reply@taskvault.app")
	viper.SetDefault("MAIL_FROM_NAME", "TaskVault")
	viper.SetDefault("MINIO_ENDPOINT", "")
	viper.SetDefault("MINIO_ACCESS_KEY", "")
	viper.SetDefault("MINIO_SECRET_KEY", "")
	viper.SetDefault("MINIO_BUCKET", "taskvault")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("SWEEP_INTERVAL", 5*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
