package config

import (
	"errors"
	"fmt"
	"time"

	"golang-market-signal/pkg/config"
)

// Alert holds the thresholds that gate persistence and notification.
type Alert struct {
	ImpactThreshold int           `mapstructure:"impact_threshold"`
	RelevanceTopK   int           `mapstructure:"relevance_top_k"`
	MistakeLimit    int           `mapstructure:"mistake_limit"`
	NewsDelay       time.Duration `mapstructure:"news_delay"`
	SocialDelay     time.Duration `mapstructure:"social_delay"`
	VerifyDelay     time.Duration `mapstructure:"verify_delay"`
	// SummaryLanguage is the language the model writes summaries in.
	SummaryLanguage string `mapstructure:"summary_language"`
}

// Backend is one model identity in the failover sequence.
type Backend struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

// AI holds the ordered list of model backends.
type AI struct {
	Backends []Backend     `mapstructure:"backends"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// OpenAI holds the configuration for OpenAI-compatible APIs.
type OpenAI struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// OpenRouter holds the configuration for the OpenRouter API.
type OpenRouter struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Claude holds the configuration for the Anthropic messages API.
type Claude struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Version             string `mapstructure:"version"`
	MaxTokens           int    `mapstructure:"max_tokens"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// News selects and configures the news provider.
type News struct {
	Provider string `mapstructure:"provider"`
	Limit    int    `mapstructure:"limit"`
}

// AlphaVantage holds the configuration for the Alpha Vantage API.
type AlphaVantage struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// GoogleNews holds the configuration for the Google News RSS feed.
type GoogleNews struct {
	BaseURL  string `mapstructure:"base_url"`
	Language string `mapstructure:"language"`
	Region   string `mapstructure:"region"`
	// FetchContent downloads each article and extracts its readable text.
	FetchContent     bool `mapstructure:"fetch_content"`
	MaxContentLength int  `mapstructure:"max_content_length"`
}

// Twitter holds the configuration for the X/Twitter v2 API.
type Twitter struct {
	BearerToken string `mapstructure:"bearer_token"`
	BaseURL     string `mapstructure:"base_url"`
	MaxResults  int    `mapstructure:"max_results"`
}

// SocialAccount is an influencer whose posts are analysed.
type SocialAccount struct {
	ID            string `mapstructure:"id"`
	Handle        string `mapstructure:"handle"`
	DefaultSymbol string `mapstructure:"default_symbol"`
}

// Social holds the tracked social accounts.
type Social struct {
	Accounts []SocialAccount `mapstructure:"accounts"`
}

// YahooFinance holds the configuration for the price provider.
type YahooFinance struct {
	HistoryDays int           `mapstructure:"history_days"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// Instrument is a reference instrument of the market context digest.
type Instrument struct {
	Name   string `mapstructure:"name"`
	Symbol string `mapstructure:"symbol"`
}

// MarketContext lists the reference instruments.
type MarketContext struct {
	Instruments []Instrument `mapstructure:"instruments"`
}

// Watchlist selects where tracked symbols come from.
type Watchlist struct {
	Source string `mapstructure:"source"`
	File   string `mapstructure:"file"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Line holds configuration for the LINE push notifier.
type Line struct {
	ChannelAccessToken string `mapstructure:"channel_access_token"`
	To                 string `mapstructure:"to"`
	BaseURL            string `mapstructure:"base_url"`
}

// Notifier selects the messaging channel.
type Notifier struct {
	Channel  string   `mapstructure:"channel"`
	Telegram Telegram `mapstructure:"telegram"`
	Line     Line     `mapstructure:"line"`
}

// Scheduler holds cron expressions for the schedule command.
type Scheduler struct {
	NewsCron   string        `mapstructure:"news_cron"`
	SocialCron string        `mapstructure:"social_cron"`
	VerifyCron string        `mapstructure:"verify_cron"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
}

// Tracing toggles the OpenTelemetry exporter.
type Tracing struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config holds the full configuration of the signal bot.
type Config struct {
	App           config.App      `mapstructure:"app"`
	Logger        config.Logger   `mapstructure:"logger"`
	Database      config.Database `mapstructure:"database"`
	Redis         config.Redis    `mapstructure:"redis"`
	API           config.API      `mapstructure:"api"`
	Alert         Alert           `mapstructure:"alert"`
	AI            AI              `mapstructure:"ai"`
	Gemini        Gemini          `mapstructure:"gemini"`
	OpenAI        OpenAI          `mapstructure:"openai"`
	OpenRouter    OpenRouter      `mapstructure:"openrouter"`
	Claude        Claude          `mapstructure:"claude"`
	News          News            `mapstructure:"news"`
	AlphaVantage  AlphaVantage    `mapstructure:"alpha_vantage"`
	GoogleNews    GoogleNews      `mapstructure:"google_news"`
	Twitter       Twitter         `mapstructure:"twitter"`
	Social        Social          `mapstructure:"social"`
	YahooFinance  YahooFinance    `mapstructure:"yahoo_finance"`
	MarketContext MarketContext   `mapstructure:"market_context"`
	Watchlist     Watchlist       `mapstructure:"watchlist"`
	Notifier      Notifier        `mapstructure:"notifier"`
	Scheduler     Scheduler       `mapstructure:"scheduler"`
	Tracing       Tracing         `mapstructure:"tracing"`
}

// Defaults returns the default value of every known key. Listing a key here
// also makes it overridable from the environment.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":      "signal-bot",
		"app.env":       "development",
		"app.version":   "1.0.0",
		"app.time_zone": "Asia/Bangkok",

		"logger.level":    "info",
		"logger.encoding": "json",

		"database.host":              "localhost",
		"database.port":              5432,
		"database.user":              "postgres",
		"database.password":          "",
		"database.name":              "signal_bot",
		"database.ssl_mode":          "disable",
		"database.time_zone":         "UTC",
		"database.max_idle_conns":    2,
		"database.max_open_conns":    5,
		"database.conn_max_lifetime": "30m",
		"database.log_level":         "warn",

		"redis.host":      "",
		"redis.port":      6379,
		"redis.password":  "",
		"redis.db":        0,
		"redis.pool_size": 5,

		"api.host": "0.0.0.0",
		"api.port": 8080,

		"alert.impact_threshold": 5,
		"alert.relevance_top_k":  10,
		"alert.mistake_limit":    3,
		"alert.news_delay":       "15s",
		"alert.social_delay":     "2s",
		"alert.verify_delay":     "0s",
		"alert.summary_language": "English",

		"ai.timeout": "90s",

		"gemini.api_key":                "",
		"gemini.max_request_per_minute": 10,
		"gemini.max_token_per_minute":   250000,

		"openai.api_key":                "",
		"openai.base_url":               "",
		"openai.max_request_per_minute": 60,

		"openrouter.api_key":                "",
		"openrouter.base_url":               "https://openrouter.ai/api/v1",
		"openrouter.max_request_per_minute": 20,

		"claude.api_key":                "",
		"claude.base_url":               "https://api.anthropic.com",
		"claude.version":                "2023-06-01",
		"claude.max_tokens":             1024,
		"claude.max_request_per_minute": 50,

		"news.provider": "alphavantage",
		"news.limit":    20,

		"alpha_vantage.api_key":                "",
		"alpha_vantage.base_url":               "https://www.alphavantage.co",
		"alpha_vantage.max_request_per_minute": 5,

		"google_news.base_url":           "https://news.google.com/rss/search",
		"google_news.language":           "en-US",
		"google_news.region":             "US",
		"google_news.fetch_content":      false,
		"google_news.max_content_length": 2000,

		"twitter.bearer_token": "",
		"twitter.base_url":     "https://api.twitter.com",
		"twitter.max_results":  5,

		"yahoo_finance.history_days": 120,
		"yahoo_finance.cache_ttl":    "1m",

		"watchlist.source": "file",
		"watchlist.file":   "target_ticker.txt",

		"notifier.channel":                   "telegram",
		"notifier.telegram.bot_token":        "",
		"notifier.telegram.chat_id":          0,
		"notifier.line.channel_access_token": "",
		"notifier.line.to":                   "",
		"notifier.line.base_url":             "https://api.line.me",

		"scheduler.news_cron":   "0 * * * *",
		"scheduler.social_cron": "*/30 * * * *",
		"scheduler.verify_cron": "0 9 * * *",
		"scheduler.lock_ttl":    "2h",

		"tracing.enabled": false,
	}
}

// DefaultInstruments is the market context set used when none is configured.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Name: "S&P 500", Symbol: "^GSPC"},
		{Name: "Bitcoin", Symbol: "BTC-USD"},
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("database host and name are required"))
	}
	if len(c.AI.Backends) == 0 {
		errs = append(errs, errors.New("at least one ai backend is required"))
	}
	for i, b := range c.AI.Backends {
		if b.Model == "" {
			errs = append(errs, fmt.Errorf("ai.backends[%d]: model is required", i))
		}
	}
	if c.Alert.ImpactThreshold < 0 || c.Alert.ImpactThreshold > 10 {
		errs = append(errs, fmt.Errorf("alert.impact_threshold must be within 0-10, got %d", c.Alert.ImpactThreshold))
	}
	if c.Alert.RelevanceTopK <= 0 {
		errs = append(errs, errors.New("alert.relevance_top_k must be positive"))
	}
	return errors.Join(errs...)
}

// Load loads the signal bot configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	if len(cfg.MarketContext.Instruments) == 0 {
		cfg.MarketContext.Instruments = DefaultInstruments()
	}
	return &cfg, nil
}
