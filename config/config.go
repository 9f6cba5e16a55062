package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Trending TrendingConfig `mapstructure:"trending"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Otel     OtelConfig     `mapstructure:"otel"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
	// 视图上报接口的限流（每秒令牌数 / 突发量）
	ViewRateLimit int `mapstructure:"view_rate_limit"`
	ViewRateBurst int `mapstructure:"view_rate_burst"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TrendingConfig 热榜打分与收敛参数
type TrendingConfig struct {
	// EntryBoost 首次进入榜单的分数，必须大于 ViewIncrement
	EntryBoost    float64 `mapstructure:"entry_boost"`
	ViewIncrement float64 `mapstructure:"view_increment"`
	// 事件外发盒的消费参数；PollInterval 决定写后可见的收敛上界
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Workers      int           `mapstructure:"workers"`
	ClaimLimit   int           `mapstructure:"claim_limit"`
	// SnapshotTTL 帖子快照缓存 TTL
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

type FeedConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	// 广告注入的最小 feed 长度与插入位置
	AdMinItems int `mapstructure:"ad_min_items"`
	AdSlot     int `mapstructure:"ad_slot"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type OtelConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load 读取 config.yaml 并允许环境变量覆盖（FEED_ 前缀）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("FEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时退回默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.view_rate_limit", 50)
	v.SetDefault("server.view_rate_burst", 100)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file::memory:?cache=shared")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("trending.entry_boost", 2.0)
	v.SetDefault("trending.view_increment", 0.5)
	v.SetDefault("trending.poll_interval", 50*time.Millisecond)
	v.SetDefault("trending.workers", 4)
	v.SetDefault("trending.claim_limit", 128)
	v.SetDefault("trending.snapshot_ttl", 10*time.Minute)

	v.SetDefault("feed.default_limit", 20)
	v.SetDefault("feed.ad_min_items", 3)
	v.SetDefault("feed.ad_slot", 1)

	v.SetDefault("auth.jwt_secret", "dev-secret")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("otel.enabled", false)
}
