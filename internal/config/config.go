package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Env         string
	Port        string
	LogLevel    string
	CORSOrigins string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Wallet   WalletConfig
	Referral ReferralConfig
	Mail     MailConfig
	Stripe   StripeConfig

	AlertSchedule string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	Secret        string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type WalletConfig struct {
	Currency      string
	MinWithdrawal decimal.Decimal
}

type ReferralConfig struct {
	Reward   decimal.Decimal
	MinTrade decimal.Decimal
}

type MailConfig struct {
	Provider       string
	SendgridAPIKey string
	From           string
	FromName       string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the environment (after LoadEnv) into a Config.
func Load() *Config {
	LoadEnv()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("CACHE_TTL"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			RefreshSecret: v.GetString("REFRESH_SECRET"),
			AccessTTL:     v.GetDuration("ACCESS_TOKEN_TTL"),
			RefreshTTL:    v.GetDuration("REFRESH_TOKEN_TTL"),
		},
		Wallet: WalletConfig{
			Currency:      strings.ToUpper(v.GetString("WALLET_CURRENCY")),
			MinWithdrawal: decimalValue(v, "MIN_WITHDRAWAL"),
		},
		Referral: ReferralConfig{
			Reward:   decimalValue(v, "REFERRAL_REWARD"),
			MinTrade: decimalValue(v, "REFERRAL_MIN_TRADE"),
		},
		Mail: MailConfig{
			Provider:       strings.ToLower(v.GetString("MAIL_PROVIDER")),
			SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
			From:           v.GetString("MAIL_FROM"),
			FromName:       v.GetString("MAIL_FROM_NAME"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		AlertSchedule: v.GetString("ALERT_SCHEDULE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tradedesk")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 24*time.Hour)

	v.SetDefault("JWT_SECRET", "tradedesk")
	v.SetDefault("REFRESH_SECRET", "tradedesk-refresh")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)

	v.SetDefault("WALLET_CURRENCY", "NGN")
	v.SetDefault("MIN_WITHDRAWAL", "1000")
	v.SetDefault("REFERRAL_REWARD", "500")
	v.SetDefault("REFERRAL_MIN_TRADE", "5000")

	v.SetDefault("MAIL_PROVIDER", "log")
	v.SetDefault("MAIL_FROM", "no-reply@tradedesk.local")
	v.SetDefault("MAIL_FROM_NAME", "Tradedesk")

	v.SetDefault("ALERT_SCHEDULE", "@every 1m")
}

func decimalValue(v *viper.Viper, key string) decimal.Decimal {
	d, err := decimal.NewFromString(v.GetString(key))
	if err != nil {
		log.Printf("invalid decimal for %s, using 0: %v", key, err)
		return decimal.Zero
	}
	return d
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
