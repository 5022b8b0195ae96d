package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全部從環境或 app.env 讀入，載入後整包往下傳，不設全域單例
type Config struct {
	APIBaseURL          string `mapstructure:"POS_API_BASE_URL"`
	APIToken            string `mapstructure:"POS_API_TOKEN"`
	PollIntervalSeconds int    `mapstructure:"POS_POLL_INTERVAL_SECONDS"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	CatalogTTLSeconds   int    `mapstructure:"POS_CATALOG_TTL_SECONDS"`
	KafkaBrokers        string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic          string `mapstructure:"KAFKA_SETTLEMENT_TOPIC"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("POS_API_BASE_URL", "")
	v.SetDefault("POS_API_TOKEN", "")
	v.SetDefault("POS_POLL_INTERVAL_SECONDS", 10)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("POS_CATALOG_TTL_SECONDS", 300)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_SETTLEMENT_TOPIC", "pos.settlements")

	if err := v.ReadInConfig(); err != nil {
		// 沒有設定檔時只吃環境變數
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("POS_API_BASE_URL is required")
	}
	return &cfg, nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSeconds) * time.Second
}

// Brokers KAFKA_BROKERS 逗號分隔
func (c *Config) Brokers() []string {
	if strings.TrimSpace(c.KafkaBrokers) == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
