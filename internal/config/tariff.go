package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TariffConfig is the billing tariff applied at stay close and
// subscription pricing time. Reloadable without restart so operators
// can adjust penalties during tariff changes.
type TariffConfig struct {
	SlotMinutes       int     `mapstructure:"slotMinutes"`
	PenaltyMultiplier float64 `mapstructure:"penaltyMultiplier"`
}

func DefaultTariffConfig() TariffConfig {
	return TariffConfig{
		SlotMinutes:       15,
		PenaltyMultiplier: 2.0,
	}
}

type TariffConfigHolder struct {
	current atomic.Value // holds TariffConfig
}

func NewTariffConfigHolder() (*TariffConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("tariff")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/parkline/config") // Volume-mounted config
	v.AddConfigPath("/etc/parkline")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("PARKLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultTariffConfig()
		v.SetDefault("tariff.slotMinutes", defaults.SlotMinutes)
		v.SetDefault("tariff.penaltyMultiplier", defaults.PenaltyMultiplier)
	}

	var cfg TariffConfig
	if err := v.UnmarshalKey("tariff", &cfg); err != nil {
		return nil, err
	}
	if err := validateTariffConfig(cfg); err != nil {
		return nil, err
	}

	holder := &TariffConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TariffConfig
		if err := v.UnmarshalKey("tariff", &updated); err != nil {
			log.Printf("[tariff-config] reload failed: %v", err)
			return
		}
		if err := validateTariffConfig(updated); err != nil {
			log.Printf("[tariff-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tariff-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticTariffConfigHolder wraps a fixed tariff, bypassing the file
// watcher. Used by tests and tools.
func NewStaticTariffConfigHolder(cfg TariffConfig) *TariffConfigHolder {
	holder := &TariffConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *TariffConfigHolder) Get() TariffConfig {
	return h.current.Load().(TariffConfig)
}

func validateTariffConfig(cfg TariffConfig) error {
	if cfg.SlotMinutes <= 0 {
		return errors.New("tariff.slotMinutes must be positive")
	}
	if cfg.PenaltyMultiplier < 1 {
		return errors.New("tariff.penaltyMultiplier must be at least 1")
	}
	return nil
}
