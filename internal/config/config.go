// Package config handles configuration loading for nsenews.
// It supports YAML config files with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NSENEWS_API_PORT.
const EnvPrefix = "NSENEWS"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Sentiment engines.
const (
	EngineLexicon = "lexicon"
	EngineVader   = "vader"
)

// Config represents the complete application configuration.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"  yaml:"analysis"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Lexicon   LexiconConfig   `mapstructure:"lexicon"   yaml:"lexicon"`
	Registry  RegistryConfig  `mapstructure:"registry"  yaml:"registry"`
	Sources   []SourceConfig  `mapstructure:"sources"   yaml:"sources"`
	Fetch     FetchConfig     `mapstructure:"fetch"     yaml:"fetch"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// AnalysisConfig holds scoring and filtering settings.
type AnalysisConfig struct {
	MinArticleLength      int     `mapstructure:"min_article_length"       yaml:"min_article_length"`
	RelevanceThreshold    float64 `mapstructure:"relevance_threshold"      yaml:"relevance_threshold"`
	DaysLookback          int     `mapstructure:"days_lookback"            yaml:"days_lookback"`
	MaxArticlesPerCompany int     `mapstructure:"max_articles_per_company" yaml:"max_articles_per_company"`
	DedupThreshold        float64 `mapstructure:"dedup_threshold"          yaml:"dedup_threshold"`
	Workers               int     `mapstructure:"workers"                  yaml:"workers"`
	TopCompanies          int     `mapstructure:"top_companies"            yaml:"top_companies"`
	EnrichLimit           int     `mapstructure:"enrich_limit"             yaml:"enrich_limit"`
}

// SentimentConfig selects the polarity estimator.
type SentimentConfig struct {
	Engine string `mapstructure:"engine" yaml:"engine"` // "lexicon" or "vader"
}

// LexiconConfig lists phrases merged into the default lexicon.
type LexiconConfig struct {
	ExtraPositive []string `mapstructure:"extra_positive" yaml:"extra_positive"`
	ExtraNegative []string `mapstructure:"extra_negative" yaml:"extra_negative"`
	ExtraNeutral  []string `mapstructure:"extra_neutral"  yaml:"extra_neutral"`
}

// RegistryConfig locates the listed-company table.
type RegistryConfig struct {
	CompaniesFile string `mapstructure:"companies_file" yaml:"companies_file"`
}

// SourceConfig is one news site and its RSS feeds. An empty list means
// the built-in sources.
type SourceConfig struct {
	Name     string   `mapstructure:"name"      yaml:"name"`
	BaseURL  string   `mapstructure:"base_url"  yaml:"base_url"`
	RSSFeeds []string `mapstructure:"rss_feeds" yaml:"rss_feeds"`
}

// FetchConfig tunes the feed client.
type FetchConfig struct {
	TimeoutSec     int     `mapstructure:"timeout_sec"      yaml:"timeout_sec"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	CacheTTLSec    int     `mapstructure:"cache_ttl_sec"    yaml:"cache_ttl_sec"`
	PerSourceLimit int     `mapstructure:"per_source_limit" yaml:"per_source_limit"`
}

// Timeout returns the HTTP client timeout.
func (f FetchConfig) Timeout() time.Duration { return time.Duration(f.TimeoutSec) * time.Second }

// CacheTTL returns the feed cache lifetime; zero disables caching.
func (f FetchConfig) CacheTTL() time.Duration { return time.Duration(f.CacheTTLSec) * time.Second }

// OutputConfig holds where results are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host            string   `mapstructure:"host"             yaml:"host"`
	Port            int      `mapstructure:"port"             yaml:"port"`
	CORSOrigins     []string `mapstructure:"cors_origins"     yaml:"cors_origins"`
	RefreshSchedule string   `mapstructure:"refresh_schedule" yaml:"refresh_schedule"` // cron spec, empty disables
}

// Addr returns the listen address.
func (a APIConfig) Addr() string { return fmt.Sprintf("%s:%d", a.Host, a.Port) }

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.nsenews/config.yaml (home directory)
//  3. /etc/nsenews/config.yaml (system)
//
// A .env file in the working directory is loaded first. Environment
// variables override config file values.
// Format: NSENEWS_<SECTION>_<KEY>, e.g., NSENEWS_API_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".nsenews"))
	v.AddConfigPath("/etc/nsenews")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.min_article_length", 100)
	v.SetDefault("analysis.relevance_threshold", 0.3)
	v.SetDefault("analysis.days_lookback", 7)
	v.SetDefault("analysis.max_articles_per_company", 10)
	v.SetDefault("analysis.dedup_threshold", 0.7)
	v.SetDefault("analysis.workers", 4)
	v.SetDefault("analysis.top_companies", 50)
	v.SetDefault("analysis.enrich_limit", 50)

	v.SetDefault("sentiment.engine", EngineLexicon)

	v.SetDefault("lexicon.extra_positive", []string{})
	v.SetDefault("lexicon.extra_negative", []string{})
	v.SetDefault("lexicon.extra_neutral", []string{})

	v.SetDefault("registry.companies_file", "EQUITY_L.csv")

	v.SetDefault("fetch.timeout_sec", 30)
	v.SetDefault("fetch.requests_per_sec", 2.0)
	v.SetDefault("fetch.cache_ttl_sec", 600) // 10 minutes
	v.SetDefault("fetch.per_source_limit", 25)

	v.SetDefault("output.dir", "output")

	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8050)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.refresh_schedule", "@every 5m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	a := c.Analysis
	switch {
	case a.RelevanceThreshold < 0 || a.RelevanceThreshold > 1:
		return fmt.Errorf("%w: analysis.relevance_threshold %v outside [0,1]", ErrInvalid, a.RelevanceThreshold)
	case a.DedupThreshold < 0 || a.DedupThreshold > 1:
		return fmt.Errorf("%w: analysis.dedup_threshold %v outside [0,1]", ErrInvalid, a.DedupThreshold)
	case a.MinArticleLength <= 0:
		return fmt.Errorf("%w: analysis.min_article_length must be positive", ErrInvalid)
	case a.Workers <= 0:
		return fmt.Errorf("%w: analysis.workers must be positive", ErrInvalid)
	case a.DaysLookback < 0:
		return fmt.Errorf("%w: analysis.days_lookback must not be negative", ErrInvalid)
	}

	switch strings.ToLower(c.Sentiment.Engine) {
	case EngineLexicon, EngineVader:
	default:
		return fmt.Errorf("%w: unknown sentiment engine %q", ErrInvalid, c.Sentiment.Engine)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown logging format %q", ErrInvalid, c.Logging.Format)
	}

	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("%w: api.port %d out of range", ErrInvalid, c.API.Port)
	}
	if c.Fetch.RequestsPerSec < 0 {
		return fmt.Errorf("%w: fetch.requests_per_sec must not be negative", ErrInvalid)
	}

	for i, s := range c.Sources {
		if s.Name == "" || len(s.RSSFeeds) == 0 {
			return fmt.Errorf("%w: sources[%d] needs a name and at least one rss feed", ErrInvalid, i)
		}
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
