package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"HeadlineScreener/internal/domain"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "HEADLINE_SCREENER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	oracleModelEnv    = "ORACLE_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"

	// DefaultSystemPrompt frames every oracle query around the quoted document.
	DefaultSystemPrompt = "Use the provided document delimited by triple quotes to answer questions. " +
		"If the answer cannot be found in the document, write \"I could not find an answer.\""
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Oracle        OracleConfig       `yaml:"oracle"`
	Embeddings    EmbeddingsConfig   `yaml:"embeddings"`
	ML            MLConfig           `yaml:"ml"`
	Excerpts      ExcerptsConfig     `yaml:"excerpts"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Validation    ValidationConfig   `yaml:"validation"`
	Sites         []SiteConfig       `yaml:"sites"`
	Taxonomies    []TaxonomyConfig   `yaml:"taxonomies"`
	Output        OutputConfig       `yaml:"output"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OracleConfig defines how to contact the chat-completions API.
type OracleConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"apiKey"`
	SystemPrompt      string        `yaml:"systemPrompt"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
	MaxRetries        int           `yaml:"maxRetries"`
}

// EmbeddingsConfig picks the embedding backend used for excerpt selection.
// Provider is "openai", "ml" or empty to disable excerpt selection.
type EmbeddingsConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"apiKey"`
}

// MLConfig describes the self-hosted embedding service.
type MLConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// ExcerptsConfig bounds the text sent with each oracle query.
type ExcerptsConfig struct {
	Budget     int `yaml:"budget"`
	ChunkWords int `yaml:"chunkWords"`
	Count      int `yaml:"count"`
}

// PipelineConfig tunes a single run.
type PipelineConfig struct {
	Lookback      time.Duration `yaml:"lookback"`
	Concurrency   int           `yaml:"concurrency"`
	FetchFullText bool          `yaml:"fetchFullText"`
}

// ValidationConfig holds the fuzzy score threshold.
type ValidationConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// SiteConfig describes a single site with its scanner strategy and taxonomy.
type SiteConfig struct {
	Name     string            `yaml:"name"`
	Scanner  string            `yaml:"scanner"`
	Taxonomy string            `yaml:"taxonomy"`
	Feeds    []FeedConfig      `yaml:"feeds"`
	Options  map[string]string `yaml:"options"`
}

// FeedConfig holds one feed location: an http(s) URL or a local file path.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// TaxonomyConfig overrides or adds a taxonomy. Empty lists keep the built-in values.
type TaxonomyConfig struct {
	Name         string   `yaml:"name"`
	Questions    []string `yaml:"questions"`
	Technologies []string `yaml:"technologies"`
	Statuses     []string `yaml:"statuses"`
}

// Taxonomy converts the override into a domain value.
func (t TaxonomyConfig) Taxonomy() domain.Taxonomy {
	return domain.Taxonomy{
		Name:         t.Name,
		Questions:    t.Questions,
		Technologies: t.Technologies,
		Statuses:     t.Statuses,
	}.Clone()
}

// OutputConfig selects the file sinks. Formats accepts "csv" and "ndjson".
type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// SchedulerConfig defines when the screener should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig holds the listen address of the /metrics endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration from path, or from HEADLINE_SCREENER_CONFIG when
// path is empty, and applies environment overrides. Without a file the defaults apply.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Oracle.APIKey = v
	}

	if v := os.Getenv(oracleModelEnv); v != "" {
		c.Oracle.Model = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if c.Embeddings.APIKey == "" {
		c.Embeddings.APIKey = c.Oracle.APIKey
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Oracle.Endpoint != "" {
		base.Oracle.Endpoint = override.Oracle.Endpoint
	}
	if override.Oracle.Model != "" {
		base.Oracle.Model = override.Oracle.Model
	}
	if override.Oracle.APIKey != "" {
		base.Oracle.APIKey = override.Oracle.APIKey
	}
	if override.Oracle.SystemPrompt != "" {
		base.Oracle.SystemPrompt = override.Oracle.SystemPrompt
	}
	if override.Oracle.Timeout > 0 {
		base.Oracle.Timeout = override.Oracle.Timeout
	}
	if override.Oracle.RequestsPerMinute > 0 {
		base.Oracle.RequestsPerMinute = override.Oracle.RequestsPerMinute
	}
	if override.Oracle.MaxRetries > 0 {
		base.Oracle.MaxRetries = override.Oracle.MaxRetries
	}

	if override.Embeddings.Provider != "" {
		base.Embeddings.Provider = override.Embeddings.Provider
	}
	if override.Embeddings.APIKey != "" {
		base.Embeddings.APIKey = override.Embeddings.APIKey
	}

	if override.ML.InferenceURL != "" {
		base.ML.InferenceURL = override.ML.InferenceURL
	}
	if override.ML.APIKey != "" {
		base.ML.APIKey = override.ML.APIKey
	}

	if override.Excerpts.Budget > 0 {
		base.Excerpts.Budget = override.Excerpts.Budget
	}
	if override.Excerpts.ChunkWords > 0 {
		base.Excerpts.ChunkWords = override.Excerpts.ChunkWords
	}
	if override.Excerpts.Count > 0 {
		base.Excerpts.Count = override.Excerpts.Count
	}

	if override.Pipeline.Lookback > 0 {
		base.Pipeline.Lookback = override.Pipeline.Lookback
	}
	if override.Pipeline.Concurrency > 0 {
		base.Pipeline.Concurrency = override.Pipeline.Concurrency
	}
	if override.Pipeline.FetchFullText {
		base.Pipeline.FetchFullText = true
	}

	if override.Validation.Threshold > 0 {
		base.Validation.Threshold = override.Validation.Threshold
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}
	if len(override.Taxonomies) > 0 {
		base.Taxonomies = override.Taxonomies
	}

	if override.Output.Dir != "" {
		base.Output.Dir = override.Output.Dir
	}
	if len(override.Output.Formats) > 0 {
		base.Output.Formats = override.Output.Formats
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIBase != "" {
		base.Notifications.Telegram.APIBase = override.Notifications.Telegram.APIBase
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Metrics.Addr != "" {
		base.Metrics.Addr = override.Metrics.Addr
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Oracle: OracleConfig{
			Endpoint:          "https://api.openai.com/v1/chat/completions",
			Model:             "gpt-4o-mini",
			SystemPrompt:      DefaultSystemPrompt,
			Timeout:           60 * time.Second,
			RequestsPerMinute: 60,
			MaxRetries:        3,
		},
		Excerpts: ExcerptsConfig{Budget: 25000, ChunkWords: 200, Count: 20},
		Pipeline: PipelineConfig{
			Lookback:      7 * 24 * time.Hour,
			Concurrency:   1,
			FetchFullText: true,
		},
		Validation: ValidationConfig{Threshold: 80},
		Output:     OutputConfig{Dir: "results", Formats: []string{"csv"}},
		Scheduler:  SchedulerConfig{CronExpression: "0 6 * * 1", Timezone: defaultTimezone, location: tz},
		Metrics:    MetricsConfig{Addr: ":9090"},
	}
}
