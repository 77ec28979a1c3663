package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	Port             string        `mapstructure:"PORT"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	AdminKey         string        `mapstructure:"ADMIN_KEY"`
	LLMBaseURL       string        `mapstructure:"LLM_BASE_URL"`
	LLMModel         string        `mapstructure:"LLM_MODEL"`
	LLMAPIKey        string        `mapstructure:"LLM_API_KEY"`
	LLMTimeout       time.Duration `mapstructure:"LLM_TIMEOUT"`
	CORSAllowed      string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	InboxCapacity    int           `mapstructure:"INBOX_CAPACITY"`
	RetentionDays    int           `mapstructure:"NOTIFICATION_RETENTION_DAYS"`
	AuditAssignments bool          `mapstructure:"AUDIT_ASSIGNMENTS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LLM_TIMEOUT", "10s")
	v.SetDefault("INBOX_CAPACITY", 100)
	v.SetDefault("NOTIFICATION_RETENTION_DAYS", 30)
	v.SetDefault("AUDIT_ASSIGNMENTS", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
