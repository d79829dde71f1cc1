package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Budget   BudgetConfig   `yaml:"budget" mapstructure:"budget"`
	Tiers    TiersConfig    `yaml:"tiers" mapstructure:"tiers"`
	Pricing  PricingConfig  `yaml:"pricing" mapstructure:"pricing"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	CrossVal CrossValConfig `yaml:"crossval" mapstructure:"crossval"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BudgetConfig configures the monthly spend ledger.
type BudgetConfig struct {
	MonthlyLimit float64 `yaml:"monthly_limit" mapstructure:"monthly_limit"`
	Currency     string  `yaml:"currency" mapstructure:"currency"`
}

// TierConfig holds the nominal budget and time ceiling of one tier.
type TierConfig struct {
	Budget            float64 `yaml:"budget" mapstructure:"budget"`
	MaxProcessingSecs int     `yaml:"max_processing_secs" mapstructure:"max_processing_secs"`
}

// TiersConfig configures tier resolution.
type TiersConfig struct {
	A              TierConfig `yaml:"a" mapstructure:"a"`
	B              TierConfig `yaml:"b" mapstructure:"b"`
	C              TierConfig `yaml:"c" mapstructure:"c"`
	MinBudgetFloor float64    `yaml:"min_budget_floor" mapstructure:"min_budget_floor"`
	QualifyCScore  float64    `yaml:"qualify_c_score" mapstructure:"qualify_c_score"`
}

// SourcePricing holds the cost of a paid source.
type SourcePricing struct {
	PerCall float64 `yaml:"per_call" mapstructure:"per_call"`
	Floor   float64 `yaml:"floor" mapstructure:"floor"`
}

// PricingConfig holds per-source pricing. Sources absent from the map are free.
type PricingConfig struct {
	Sources map[string]SourcePricing `yaml:"sources" mapstructure:"sources"`
}

// CompaniesHouseConfig holds Companies House API settings.
type CompaniesHouseConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// WebsiteConfig configures company website fetching.
type WebsiteConfig struct {
	UserAgent     string   `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxPages      int      `yaml:"max_pages" mapstructure:"max_pages"`
	RateLimit     float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RespectRobots bool     `yaml:"respect_robots" mapstructure:"respect_robots"`
	Paths         []string `yaml:"paths" mapstructure:"paths"`
}

// GoogleConfig holds Google Custom Search settings.
type GoogleConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	CX          string  `yaml:"cx" mapstructure:"cx"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxResults  int     `yaml:"max_results" mapstructure:"max_results"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// HunterConfig holds Hunter.io settings.
type HunterConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BreakerConfig configures the per-source circuit breaker.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// RetryConfig configures retries of transient API errors.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// SourcesConfig configures the source adapters.
type SourcesConfig struct {
	CompaniesHouse     CompaniesHouseConfig `yaml:"companies_house" mapstructure:"companies_house"`
	Website            WebsiteConfig        `yaml:"website" mapstructure:"website"`
	Google             GoogleConfig         `yaml:"google" mapstructure:"google"`
	Hunter             HunterConfig         `yaml:"hunter" mapstructure:"hunter"`
	CacheTTLMins       int                  `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	DefaultTimeoutSecs int                  `yaml:"default_timeout_secs" mapstructure:"default_timeout_secs"`
	Breaker            BreakerConfig        `yaml:"breaker" mapstructure:"breaker"`
	Retry              RetryConfig          `yaml:"retry" mapstructure:"retry"`
}

// PipelineConfig configures the enrichment stages.
type PipelineConfig struct {
	NameThreshold          float64 `yaml:"name_threshold" mapstructure:"name_threshold"`
	DedupThreshold         float64 `yaml:"dedup_threshold" mapstructure:"dedup_threshold"`
	MinAttribution         float64 `yaml:"min_attribution" mapstructure:"min_attribution"`
	PrimaryFloor           float64 `yaml:"primary_floor" mapstructure:"primary_floor"`
	HighConfidence         float64 `yaml:"high_confidence" mapstructure:"high_confidence"`
	CrossValidate          bool    `yaml:"cross_validate" mapstructure:"cross_validate"`
	BusinessNameHeuristics bool    `yaml:"business_name_heuristics" mapstructure:"business_name_heuristics"`
}

// CrossValConfig configures the cross-validation pass.
type CrossValConfig struct {
	WeightsFile        string             `yaml:"weights_file" mapstructure:"weights_file"`
	AgreementThreshold float64            `yaml:"agreement_threshold" mapstructure:"agreement_threshold"`
	Weights            map[string]float64 `yaml:"weights" mapstructure:"weights"`
	SourceTypes        map[string]string  `yaml:"source_types" mapstructure:"source_types"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	EnrichTimeout  int      `yaml:"enrich_timeout_secs" mapstructure:"enrich_timeout_secs"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "exec-enrich.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enrich_timeout_secs", 120)
	v.SetDefault("batch.max_concurrent_companies", 5)

	v.SetDefault("budget.monthly_limit", 100.0)
	v.SetDefault("budget.currency", "GBP")

	v.SetDefault("tiers.a.budget", 1.00)
	v.SetDefault("tiers.a.max_processing_secs", 90)
	v.SetDefault("tiers.b.budget", 0.40)
	v.SetDefault("tiers.b.max_processing_secs", 60)
	v.SetDefault("tiers.c.budget", 0.0)
	v.SetDefault("tiers.c.max_processing_secs", 30)
	v.SetDefault("tiers.min_budget_floor", 0.10)
	v.SetDefault("tiers.qualify_c_score", 50.0)

	v.SetDefault("pricing.sources", map[string]any{
		"email_finder":    map[string]any{"per_call": 0.10, "floor": 0.10},
		"linkedin_search": map[string]any{"per_call": 0.05, "floor": 0.25},
	})

	v.SetDefault("sources.companies_house.base_url", "https://api.company-information.service.gov.uk")
	v.SetDefault("sources.companies_house.timeout_secs", 15)
	v.SetDefault("sources.companies_house.rate_limit", 2.0)
	v.SetDefault("sources.website.user_agent", "exec-enrich/1.0 (+https://sellsadvisors.com/bot)")
	v.SetDefault("sources.website.timeout_secs", 20)
	v.SetDefault("sources.website.max_pages", 6)
	v.SetDefault("sources.website.rate_limit", 1.0)
	v.SetDefault("sources.website.respect_robots", true)
	v.SetDefault("sources.website.paths", []string{"/", "/about", "/about-us", "/team", "/our-team", "/contact", "/contact-us"})
	v.SetDefault("sources.google.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("sources.google.timeout_secs", 10)
	v.SetDefault("sources.google.max_results", 10)
	v.SetDefault("sources.google.rate_limit", 1.0)
	v.SetDefault("sources.hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("sources.hunter.timeout_secs", 10)
	v.SetDefault("sources.cache_ttl_mins", 60)
	v.SetDefault("sources.default_timeout_secs", 15)
	v.SetDefault("sources.breaker.failure_threshold", 5)
	v.SetDefault("sources.breaker.reset_timeout_secs", 60)
	v.SetDefault("sources.retry.max_attempts", 3)
	v.SetDefault("sources.retry.initial_backoff_ms", 500)
	v.SetDefault("sources.retry.max_backoff_ms", 5000)

	v.SetDefault("pipeline.name_threshold", 0.6)
	v.SetDefault("pipeline.dedup_threshold", 0.8)
	v.SetDefault("pipeline.min_attribution", 0.3)
	v.SetDefault("pipeline.primary_floor", 0.6)
	v.SetDefault("pipeline.high_confidence", 0.7)
	v.SetDefault("pipeline.cross_validate", true)
	v.SetDefault("pipeline.business_name_heuristics", true)

	v.SetDefault("crossval.agreement_threshold", 0.7)
	v.SetDefault("crossval.weights", map[string]any{
		"official_registry":     1.0,
		"company_website":       0.9,
		"professional_network":  0.8,
		"third_party_directory": 0.6,
		"social_media":          0.5,
		"generic_web":           0.3,
	})
	v.SetDefault("crossval.source_types", map[string]any{
		"companies_house": "official_registry",
		"website":         "company_website",
		"linkedin_search": "professional_network",
		"email_finder":    "third_party_directory",
		"search_engine":   "generic_web",
	})
}

// Validate checks that the fields required by mode are present and that
// numeric settings are in range. Modes: run, batch, serve, budget, stats.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run", "batch", "budget", "stats":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be one of memory, sqlite, postgres", c.Store.Driver))
	}

	if c.Batch.MaxConcurrentCompanies < 1 || c.Batch.MaxConcurrentCompanies > 50 {
		errs = append(errs, "batch.max_concurrent_companies must be between 1 and 50")
	}
	if c.Budget.MonthlyLimit < 0 {
		errs = append(errs, "budget.monthly_limit must be >= 0")
	}
	for name, v := range map[string]float64{
		"pipeline.name_threshold":      c.Pipeline.NameThreshold,
		"pipeline.dedup_threshold":     c.Pipeline.DedupThreshold,
		"pipeline.min_attribution":     c.Pipeline.MinAttribution,
		"pipeline.primary_floor":       c.Pipeline.PrimaryFloor,
		"crossval.agreement_threshold": c.CrossVal.AgreementThreshold,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, name+" must be between 0 and 1")
		}
	}
	for id, p := range c.Pricing.Sources {
		if p.PerCall < 0 || p.Floor < 0 {
			errs = append(errs, "pricing.sources."+id+" values must be >= 0")
		}
	}
	for k, w := range c.CrossVal.Weights {
		if w < 0 {
			errs = append(errs, "crossval.weights."+k+" must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
