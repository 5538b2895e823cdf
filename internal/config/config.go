package config

import (
	"fmt"
	"strings"

	"github.com/billforge/billforge/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Configuration holds the engine-level defaults. Per-bill settings in
// types.BillingConfig override these on each calculation.
type Configuration struct {
	Billing BillingConfig `validate:"required"`
	Logging LoggingConfig `validate:"required"`
}

type BillingConfig struct {
	// Currency is the default base currency for bills that do not set one.
	Currency string `validate:"required,len=3"`

	// DisplayPrecision is the default number of reported fractional
	// digits. -1 means use the precision of the bill's currency.
	DisplayPrecision int32 `validate:"gte=-1,lte=12"`

	// InternalPrecision is the default pipeline precision.
	InternalPrecision int32 `validate:"gte=1,lte=12"`

	// RoundingEnabled is the default display rounding behavior.
	RoundingEnabled bool

	// ClampDiscounts is the default clamping policy. False keeps the
	// permissive behavior where discounts may drive a total negative.
	ClampDiscounts bool

	// TaxPreset optionally names a tax rule bundle applied to every bill
	// that does not choose its own.
	TaxPreset string
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billforge")

	v.SetEnvPrefix("BILLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("billing.currency", "usd")
	v.SetDefault("billing.displayprecision", -1)
	v.SetDefault("billing.internalprecision", types.DefaultInternalPrecision)
	v.SetDefault("billing.roundingenabled", true)
	v.SetDefault("billing.clampdiscounts", false)
	v.SetDefault("logging.level", string(types.LogLevelInfo))
}

func (c Configuration) Validate() error {
	return validator.New().Struct(c)
}

// DefaultBillingConfig materializes the engine defaults as a per-bill config.
func (c *Configuration) DefaultBillingConfig() types.BillingConfig {
	cfg := types.BillingConfig{
		Currency:          c.Billing.Currency,
		InternalPrecision: c.Billing.InternalPrecision,
		RoundingEnabled:   c.Billing.RoundingEnabled,
		ClampDiscounts:    c.Billing.ClampDiscounts,
		TaxPreset:         c.Billing.TaxPreset,
	}
	if c.Billing.DisplayPrecision >= 0 {
		dp := c.Billing.DisplayPrecision
		cfg.DisplayPrecision = &dp
	}
	return cfg
}

// GetDefaultConfig returns a configuration suitable for tests and for
// library callers that do not ship a config file.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Billing: BillingConfig{
			Currency:          "usd",
			DisplayPrecision:  -1,
			InternalPrecision: types.DefaultInternalPrecision,
			RoundingEnabled:   true,
			ClampDiscounts:    false,
		},
		Logging: LoggingConfig{
			Level: types.LogLevelInfo,
		},
	}
}
