package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlanConfig carries the business rules that product can tune without a
// redeploy: trial allowance, credit block size, the allowed request volumes
// and cache freshness.
type PlanConfig struct {
	TrialSearchLimit     int           `mapstructure:"trialSearchLimit"`
	LeadsPerCredit       int           `mapstructure:"leadsPerCredit"`
	MaxLeadsPerRun       int           `mapstructure:"maxLeadsPerRun"`
	AllowedVolumes       []int         `mapstructure:"allowedVolumes"`
	CacheTTL             time.Duration `mapstructure:"cacheTTL"`
	WebhookRatePerMinute int           `mapstructure:"webhookRatePerMinute"`
}

func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		TrialSearchLimit:     2,
		LeadsPerCredit:       100,
		MaxLeadsPerRun:       500,
		AllowedVolumes:       nil, // nil means "any volume in [1, MaxLeadsPerRun]"
		CacheTTL:             24 * time.Hour,
		WebhookRatePerMinute: 100,
	}
}

// PlanConfigHolder exposes the current plan rules and hot-reloads them when
// plans.yml changes on disk.
type PlanConfigHolder struct {
	current atomic.Value // holds PlanConfig
}

func NewPlanConfigHolder() (*PlanConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/evolead/config")
	v.AddConfigPath("/etc/evolead")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EVOLEAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPlanConfig()
	v.SetDefault("plans.trialSearchLimit", defaults.TrialSearchLimit)
	v.SetDefault("plans.leadsPerCredit", defaults.LeadsPerCredit)
	v.SetDefault("plans.maxLeadsPerRun", defaults.MaxLeadsPerRun)
	v.SetDefault("plans.cacheTTL", defaults.CacheTTL)
	v.SetDefault("plans.webhookRatePerMinute", defaults.WebhookRatePerMinute)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg PlanConfig
	if err := v.UnmarshalKey("plans", &cfg); err != nil {
		return nil, err
	}
	applyPlanDefaults(&cfg)
	if err := validatePlanConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlanConfig
		if err := v.UnmarshalKey("plans", &updated); err != nil {
			log.Printf("[plan-config] reload failed: %v", err)
			return
		}
		applyPlanDefaults(&updated)
		if err := validatePlanConfig(updated); err != nil {
			log.Printf("[plan-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[plan-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// Current returns the active plan rules.
func (h *PlanConfigHolder) Current() PlanConfig {
	if h == nil {
		return DefaultPlanConfig()
	}
	if cfg, ok := h.current.Load().(PlanConfig); ok {
		return cfg
	}
	return DefaultPlanConfig()
}

// NewStaticPlanConfigHolder is a test seam: a holder pinned to one config.
func NewStaticPlanConfigHolder(cfg PlanConfig) *PlanConfigHolder {
	applyPlanDefaults(&cfg)
	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func applyPlanDefaults(cfg *PlanConfig) {
	defaults := DefaultPlanConfig()
	if cfg.TrialSearchLimit == 0 {
		cfg.TrialSearchLimit = defaults.TrialSearchLimit
	}
	if cfg.LeadsPerCredit == 0 {
		cfg.LeadsPerCredit = defaults.LeadsPerCredit
	}
	if cfg.MaxLeadsPerRun == 0 {
		cfg.MaxLeadsPerRun = defaults.MaxLeadsPerRun
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.WebhookRatePerMinute == 0 {
		cfg.WebhookRatePerMinute = defaults.WebhookRatePerMinute
	}
}

func validatePlanConfig(cfg PlanConfig) error {
	if cfg.TrialSearchLimit < 1 {
		return errors.New("plan config: trialSearchLimit must be positive")
	}
	if cfg.LeadsPerCredit < 1 {
		return errors.New("plan config: leadsPerCredit must be positive")
	}
	if cfg.MaxLeadsPerRun < 1 {
		return errors.New("plan config: maxLeadsPerRun must be positive")
	}
	for _, volume := range cfg.AllowedVolumes {
		if volume < 1 || volume > cfg.MaxLeadsPerRun {
			return errors.New("plan config: allowedVolumes entries must be within [1, maxLeadsPerRun]")
		}
	}
	return nil
}
