package config

import (
	"time"

	"golang-news-sentiment/pkg/common"
	"golang-news-sentiment/pkg/config"

	"github.com/spf13/viper"
)

// Pipeline holds the micro-batch pipeline policy values.
type Pipeline struct {
	Cadence             time.Duration `mapstructure:"cadence"`
	TopK                int           `mapstructure:"topk"`
	PosThreshold        float64       `mapstructure:"pos_threshold"`
	NegThreshold        float64       `mapstructure:"neg_threshold"`
	FeedChannel         string        `mapstructure:"feed_channel"`
	SummaryStream       string        `mapstructure:"summary_stream"`
	MaxConcurrentScores int           `mapstructure:"max_concurrent_scores"`
	ScoreTimeout        time.Duration `mapstructure:"score_timeout"`
}

// Scorer holds the configuration for the sentiment scorer collaborator.
type Scorer struct {
	Provider             string        `mapstructure:"provider"`
	BaseURL              string        `mapstructure:"base_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute  int           `mapstructure:"max_request_per_minute"`
	CacheExpiration      time.Duration `mapstructure:"cache_expiration"`
	CacheCleanupInterval time.Duration `mapstructure:"cache_cleanup_interval"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Pipeline Pipeline        `mapstructure:"pipeline"`
	Scorer   Scorer          `mapstructure:"scorer"`
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	// Zero is a legal threshold value, so threshold defaults go through viper
	// instead of a zero-value check after unmarshal.
	viper.SetDefault("pipeline.pos_threshold", 0.05)
	viper.SetDefault("pipeline.neg_threshold", -0.05)

	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.Cadence <= 0 {
		c.Pipeline.Cadence = 10 * time.Second
	}
	// cron's @every rounds sub-second delays up to one second; clamp so the
	// effective cadence matches the configured one.
	if c.Pipeline.Cadence < time.Second {
		c.Pipeline.Cadence = time.Second
	}
	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 3
	}
	if c.Pipeline.FeedChannel == "" {
		c.Pipeline.FeedChannel = common.RedisChannelStockNews
	}
	if c.Pipeline.SummaryStream == "" {
		c.Pipeline.SummaryStream = common.RedisStreamBatchSummary
	}
	if c.Pipeline.MaxConcurrentScores <= 0 {
		c.Pipeline.MaxConcurrentScores = 8
	}
	if c.Pipeline.ScoreTimeout <= 0 {
		c.Pipeline.ScoreTimeout = 5 * time.Second
	}
}
