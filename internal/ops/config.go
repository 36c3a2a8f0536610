package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"main/internal/audit"
	"main/internal/harness"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/strategy"

	"github.com/shopspring/decimal"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Platform PlatformConfig  `json:"platform"`
	Account  AccountConfig   `json:"account"`
	Strategy StrategyConfig  `json:"strategy"`
	Venue    VenueConfig     `json:"venue"`
	Database ledger.PGOption `json:"database"`
}

// PlatformConfig tunes the harness loop.
type PlatformConfig struct {
	AuditEnabled        *bool  `json:"auditEnabled"`
	AuditTick           int    `json:"auditTick"`
	BackoffStartSeconds int    `json:"backoffStartSeconds"`
	HeartbeatPath       string `json:"heartbeatPath"`
}

// AccountConfig describes the audited account.
type AccountConfig struct {
	Name             string            `json:"name"`
	PriceCurrency    string            `json:"priceCurrency"`
	VolumeCurrency   string            `json:"volumeCurrency"`
	Tolerances       map[string]string `json:"tolerances"`
	OrderTolerance   string            `json:"orderTolerance"`
	SkipRecentOrders int               `json:"skipRecentOrders"`
	RecordDrift      *bool             `json:"recordDrift"`
}

// StrategyConfig tunes the builtin maker.
type StrategyConfig struct {
	Spread      string `json:"spread"`
	Volume      string `json:"volume"`
	FeeRate     string `json:"feeRate"`
	TickDelayMS int    `json:"tickDelayMs"`
	MaxTicks    int    `json:"maxTicks"`
}

// VenueConfig describes the venue adapter. Only the simulated venue is wired
// as a builtin; real adapters register by name.
type VenueConfig struct {
	Name     string            `json:"name"`
	FeeRate  string            `json:"feeRate"`
	Mid      string            `json:"mid"`
	Balances map[string]string `json:"balances"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Harness  harness.Config
	Audit    audit.Config
	Account  AccountSpec
	Strategy strategy.SimpleMakerConfig
	Venue    VenueSpec
	Database ledger.PGOption
}

// AccountSpec is the resolved account identity.
type AccountSpec struct {
	Name           string
	PriceCurrency  string
	VolumeCurrency string
}

// VenueSpec is the resolved venue definition.
type VenueSpec struct {
	Name     string
	FeeRate  decimal.Decimal
	Mid      model.Money
	Balances model.Balance
}

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve validates a FileConfig and fills defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	account, err := resolveAccount(cfg.Account)
	if err != nil {
		return Loaded{}, err
	}
	auditCfg, err := resolveAudit(cfg.Account, account)
	if err != nil {
		return Loaded{}, err
	}
	strategyCfg, err := resolveStrategy(cfg.Strategy, account)
	if err != nil {
		return Loaded{}, err
	}
	venueSpec, err := resolveVenue(cfg.Venue, account)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{
		Harness:  resolvePlatform(cfg.Platform),
		Audit:    auditCfg,
		Account:  account,
		Strategy: strategyCfg,
		Venue:    venueSpec,
		Database: cfg.Database,
	}, nil
}

func resolvePlatform(cfg PlatformConfig) harness.Config {
	out := harness.Config{
		AuditEnabled:  true,
		AuditTick:     cfg.AuditTick,
		HeartbeatPath: cfg.HeartbeatPath,
	}
	if cfg.AuditEnabled != nil {
		out.AuditEnabled = *cfg.AuditEnabled
	}
	if cfg.BackoffStartSeconds > 0 {
		out.BackoffStart = time.Duration(cfg.BackoffStartSeconds) * time.Second
	}
	return out
}

func resolveAccount(cfg AccountConfig) (AccountSpec, error) {
	if cfg.Name == "" {
		return AccountSpec{}, fmt.Errorf("account name is empty")
	}
	if cfg.PriceCurrency == "" || cfg.VolumeCurrency == "" {
		return AccountSpec{}, fmt.Errorf("account currencies are empty")
	}
	return AccountSpec{
		Name:           cfg.Name,
		PriceCurrency:  cfg.PriceCurrency,
		VolumeCurrency: cfg.VolumeCurrency,
	}, nil
}

func resolveAudit(cfg AccountConfig, account AccountSpec) (audit.Config, error) {
	tolerances := make(map[string]decimal.Decimal, len(cfg.Tolerances))
	for currency, raw := range cfg.Tolerances {
		tol, err := decimal.NewFromString(raw)
		if err != nil {
			return audit.Config{}, fmt.Errorf("invalid tolerance for %s: %w", currency, err)
		}
		if tol.IsNegative() {
			return audit.Config{}, fmt.Errorf("tolerance for %s must be >= 0", currency)
		}
		tolerances[currency] = tol
	}

	orderTolerance := decimal.Zero
	if cfg.OrderTolerance != "" {
		var err error
		orderTolerance, err = decimal.NewFromString(cfg.OrderTolerance)
		if err != nil {
			return audit.Config{}, fmt.Errorf("invalid order tolerance: %w", err)
		}
	}

	recordDrift := true
	if cfg.RecordDrift != nil {
		recordDrift = *cfg.RecordDrift
	}

	return audit.Config{
		Currencies:       []string{account.PriceCurrency, account.VolumeCurrency},
		Tolerances:       tolerances,
		OrderTolerance:   orderTolerance,
		SkipRecentOrders: cfg.SkipRecentOrders,
		VolumeCurrency:   account.VolumeCurrency,
		RecordDrift:      recordDrift,
	}, nil
}

func resolveStrategy(cfg StrategyConfig, account AccountSpec) (strategy.SimpleMakerConfig, error) {
	spread, err := parseFraction(cfg.Spread, "0.002")
	if err != nil {
		return strategy.SimpleMakerConfig{}, fmt.Errorf("invalid spread: %w", err)
	}
	feeRate, err := parseFraction(cfg.FeeRate, "0")
	if err != nil {
		return strategy.SimpleMakerConfig{}, fmt.Errorf("invalid fee rate: %w", err)
	}

	if cfg.Volume == "" {
		return strategy.SimpleMakerConfig{}, fmt.Errorf("strategy volume is empty")
	}
	volume, err := model.NewMoney(cfg.Volume, account.VolumeCurrency)
	if err != nil {
		return strategy.SimpleMakerConfig{}, fmt.Errorf("invalid volume: %w", err)
	}
	if !volume.IsPositive() {
		return strategy.SimpleMakerConfig{}, fmt.Errorf("strategy volume must be > 0")
	}

	delay := 5 * time.Second
	if cfg.TickDelayMS > 0 {
		delay = time.Duration(cfg.TickDelayMS) * time.Millisecond
	}

	return strategy.SimpleMakerConfig{
		Spread:   spread,
		Volume:   volume,
		FeeRate:  feeRate,
		Delay:    delay,
		MaxTicks: cfg.MaxTicks,
	}, nil
}

func resolveVenue(cfg VenueConfig, account AccountSpec) (VenueSpec, error) {
	if cfg.Name == "" {
		return VenueSpec{}, fmt.Errorf("venue name is empty")
	}

	feeRate, err := parseFraction(cfg.FeeRate, "0")
	if err != nil {
		return VenueSpec{}, fmt.Errorf("invalid venue fee rate: %w", err)
	}

	mid := model.ZeroMoney(account.PriceCurrency)
	if cfg.Mid != "" {
		mid, err = model.NewMoney(cfg.Mid, account.PriceCurrency)
		if err != nil {
			return VenueSpec{}, fmt.Errorf("invalid venue mid: %w", err)
		}
	}

	balances := model.NewBalance()
	for currency, raw := range cfg.Balances {
		amount, err := model.NewMoney(raw, currency)
		if err != nil {
			return VenueSpec{}, fmt.Errorf("invalid balance for %s: %w", currency, err)
		}
		balances.Add(amount)
	}

	return VenueSpec{
		Name:     cfg.Name,
		FeeRate:  feeRate,
		Mid:      mid,
		Balances: balances,
	}, nil
}

func parseFraction(raw, fallback string) (decimal.Decimal, error) {
	if raw == "" {
		raw = fallback
	}
	return decimal.NewFromString(raw)
}
