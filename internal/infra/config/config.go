package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	HTTPAddress string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	Issuer            string
	Audience          string

	PasswordPepper string
	HashAlgorithm  string
	BcryptCost     int
	ResetTokenTTL  time.Duration

	EmailProvider string
	EmailSender   string
	EmailAPIKey   string
	SMTPAddress   string
	SMTPUsername  string
	SMTPPassword  string
	NotifyTimeout time.Duration

	AllowedOrigins   []string
	AllowCredentials bool
	HTTPSCertFile    string
	HTTPSKeyFile     string
}

var envKeys = []string{
	"DATABASE_URL",
	"HTTP_ADDRESS",
	"REDIS_ADDRESS",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"JWT_PRIVATE_KEY_PATH",
	"JWT_PUBLIC_KEY_PATH",
	"ACCESS_TOKEN_TTL",
	"REFRESH_TOKEN_TTL",
	"JWT_ISSUER",
	"JWT_AUDIENCE",
	"PASSWORD_PEPPER",
	"HASH_ALGORITHM",
	"BCRYPT_COST",
	"RESET_TOKEN_TTL",
	"EMAIL_PROVIDER",
	"EMAIL_SENDER",
	"EMAIL_API_KEY",
	"SMTP_ADDRESS",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
	"NOTIFY_TIMEOUT",
	"ALLOWED_ORIGINS",
	"ALLOW_CREDENTIALS",
	"HTTPS_CERT_FILE",
	"HTTPS_KEY_FILE",
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("HTTP_ADDRESS", ":3000")
	viper.SetDefault("ACCESS_TOKEN_TTL", "15m")
	viper.SetDefault("REFRESH_TOKEN_TTL", "720h")
	viper.SetDefault("HASH_ALGORITHM", "bcrypt")
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("RESET_TOKEN_TTL", "1h")
	viper.SetDefault("EMAIL_PROVIDER", "log")
	viper.SetDefault("NOTIFY_TIMEOUT", "5s")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	for _, key := range []string{
		"DATABASE_URL",
		"REDIS_ADDRESS",
		"JWT_PRIVATE_KEY_PATH",
		"JWT_PUBLIC_KEY_PATH",
		"JWT_ISSUER",
		"JWT_AUDIENCE",
	} {
		if viper.GetString(key) == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	cfg := &Config{
		DatabaseURL:       viper.GetString("DATABASE_URL"),
		HTTPAddress:       viper.GetString("HTTP_ADDRESS"),
		RedisAddress:      viper.GetString("REDIS_ADDRESS"),
		RedisPassword:     viper.GetString("REDIS_PASSWORD"),
		RedisDB:           viper.GetInt("REDIS_DB"),
		JWTPrivateKeyPath: viper.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  viper.GetString("JWT_PUBLIC_KEY_PATH"),
		AccessTokenTTL:    viper.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   viper.GetDuration("REFRESH_TOKEN_TTL"),
		Issuer:            viper.GetString("JWT_ISSUER"),
		Audience:          viper.GetString("JWT_AUDIENCE"),
		PasswordPepper:    viper.GetString("PASSWORD_PEPPER"),
		HashAlgorithm:     viper.GetString("HASH_ALGORITHM"),
		BcryptCost:        viper.GetInt("BCRYPT_COST"),
		ResetTokenTTL:     viper.GetDuration("RESET_TOKEN_TTL"),
		EmailProvider:     viper.GetString("EMAIL_PROVIDER"),
		EmailSender:       viper.GetString("EMAIL_SENDER"),
		EmailAPIKey:       viper.GetString("EMAIL_API_KEY"),
		SMTPAddress:       viper.GetString("SMTP_ADDRESS"),
		SMTPUsername:      viper.GetString("SMTP_USERNAME"),
		SMTPPassword:      viper.GetString("SMTP_PASSWORD"),
		NotifyTimeout:     viper.GetDuration("NOTIFY_TIMEOUT"),
		AllowedOrigins:    viper.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials:  viper.GetBool("ALLOW_CREDENTIALS"),
		HTTPSCertFile:     viper.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:      viper.GetString("HTTPS_KEY_FILE"),
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return cfg, nil
}
