package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cloudx-io/playerauction/core"
	"github.com/cloudx-io/playerauction/llm"
)

// Strategies a bidder may be driven by.
const (
	StrategyLLM       = "llm"
	StrategyHeuristic = "heuristic"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Auction  AuctionConfig  `mapstructure:"auction"`
	Bidding  BiddingConfig  `mapstructure:"bidding"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Store    StoreConfig    `mapstructure:"store"`
	Receipts ReceiptsConfig `mapstructure:"receipts"`
}

type AppConfig struct {
	// Seed drives the dispenser and heuristic bidders. Zero means unseeded.
	Seed uint64 `mapstructure:"seed"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type AuctionConfig struct {
	RoundLimit    int                `mapstructure:"round_limit"`
	RaiseSchedule core.RaiseSchedule `mapstructure:"raise_schedule"`
	PartyBudget   float64            `mapstructure:"party_budget"`
	Parties       []string           `mapstructure:"parties"`
}

type BiddingConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  int           `mapstructure:"retries"`
	Stagger  time.Duration `mapstructure:"stagger"`
	Strategy string        `mapstructure:"strategy"`
}

type LLMConfig struct {
	Provider          string   `mapstructure:"provider"`
	Model             string   `mapstructure:"model"`
	BaseURL           string   `mapstructure:"base_url"`
	APIKeys           []string `mapstructure:"api_keys"`
	Temperature       float64  `mapstructure:"temperature"`
	TopP              float64  `mapstructure:"top_p"`
	MaxTokens         int64    `mapstructure:"max_tokens"`
	MaxCallsPerMinute int      `mapstructure:"max_calls_per_minute"`
}

type StoreConfig struct {
	// Path of the sqlite ledger. Empty disables persistence.
	Path string `mapstructure:"path"`
}

type ReceiptsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads the YAML file at path, overlaid by AUCTION_* environment
// variables. An empty path loads defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AUCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// list values set through the environment arrive comma separated
	cfg.Auction.Parties = splitList(cfg.Auction.Parties)
	cfg.LLM.APIKeys = splitList(cfg.LLM.APIKeys)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	schedule := core.DefaultRaiseSchedule()
	bands := make([]map[string]any, 0, len(schedule.Bands))
	for _, b := range schedule.Bands {
		bands = append(bands, map[string]any{"below": b.Below, "increment": b.Increment})
	}

	v.SetDefault("app.seed", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("auction.round_limit", core.DefaultRoundLimit)
	v.SetDefault("auction.raise_schedule.bands", bands)
	v.SetDefault("auction.raise_schedule.default", schedule.Default)
	v.SetDefault("auction.party_budget", 100.0)
	v.SetDefault("auction.parties", []string{"TeamA", "TeamB", "TeamC"})
	v.SetDefault("bidding.timeout", "45s")
	v.SetDefault("bidding.retries", 2)
	v.SetDefault("bidding.stagger", "2.5s")
	v.SetDefault("bidding.strategy", StrategyHeuristic)
	v.SetDefault("llm.provider", llm.ProviderOpenAI)
	v.SetDefault("llm.model", "deepseek-ai/deepseek-v3.1")
	v.SetDefault("llm.base_url", "https://integrate.api.nvidia.com/v1")
	v.SetDefault("llm.api_keys", []string{})
	v.SetDefault("llm.temperature", 0.05)
	v.SetDefault("llm.top_p", 0.9)
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.max_calls_per_minute", 30)
	v.SetDefault("store.path", "")
	v.SetDefault("receipts.enabled", true)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate reports every problem in the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if c.Auction.RoundLimit < 1 {
		errs = append(errs, fmt.Errorf("auction.round_limit must be at least 1, got %d", c.Auction.RoundLimit))
	}
	if err := c.Auction.RaiseSchedule.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auction.raise_schedule: %w", err))
	}
	if c.Auction.PartyBudget <= 0 {
		errs = append(errs, fmt.Errorf("auction.party_budget must be positive, got %.2f", c.Auction.PartyBudget))
	}
	if len(c.Auction.Parties) < 2 {
		errs = append(errs, errors.New("auction.parties needs at least two parties"))
	}
	seen := make(map[string]bool, len(c.Auction.Parties))
	for _, p := range c.Auction.Parties {
		if seen[p] {
			errs = append(errs, fmt.Errorf("auction.parties: duplicate party %q", p))
		}
		seen[p] = true
	}

	if c.Bidding.Timeout <= 0 {
		errs = append(errs, errors.New("bidding.timeout must be positive"))
	}
	if c.Bidding.Retries < 0 {
		errs = append(errs, errors.New("bidding.retries must not be negative"))
	}
	if c.Bidding.Stagger < 0 {
		errs = append(errs, errors.New("bidding.stagger must not be negative"))
	}
	switch c.Bidding.Strategy {
	case StrategyLLM:
		if len(c.LLM.APIKeys) == 0 {
			errs = append(errs, errors.New("bidding.strategy llm requires llm.api_keys"))
		}
	case StrategyHeuristic:
	default:
		errs = append(errs, fmt.Errorf("bidding.strategy must be %q or %q, got %q", StrategyLLM, StrategyHeuristic, c.Bidding.Strategy))
	}

	switch c.LLM.Provider {
	case llm.ProviderAnthropic, llm.ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be %q or %q, got %q", llm.ProviderAnthropic, llm.ProviderOpenAI, c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, errors.New("llm.max_tokens must be positive"))
	}

	switch strings.ToLower(c.Log.Encoding) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.encoding must be console or json, got %q", c.Log.Encoding))
	}

	return errors.Join(errs...)
}

// Options maps the llm section onto client options.
func (c LLMConfig) Options() llm.Options {
	return llm.Options{
		Provider:          c.Provider,
		Model:             c.Model,
		BaseURL:           c.BaseURL,
		APIKeys:           c.APIKeys,
		Temperature:       c.Temperature,
		TopP:              c.TopP,
		MaxTokens:         c.MaxTokens,
		MaxCallsPerMinute: c.MaxCallsPerMinute,
	}
}
