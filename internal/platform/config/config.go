package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LedgerAccounts is the explicit posting map injected into the ledger service:
// one chart-of-accounts code per posting role. It replaces any lookup of
// accounts by name matching; a missing or inactive account behind one of these
// codes fails the posting with an account-not-configured error.
type LedgerAccounts struct {
	AccountsReceivable string `mapstructure:"LEDGER_ACCOUNT_AR" validate:"required"`
	AccountsPayable    string `mapstructure:"LEDGER_ACCOUNT_AP" validate:"required"`
	Revenue            string `mapstructure:"LEDGER_ACCOUNT_REVENUE" validate:"required"`
	TaxPayable         string `mapstructure:"LEDGER_ACCOUNT_TAX_PAYABLE" validate:"required"`
	TaxReceivable      string `mapstructure:"LEDGER_ACCOUNT_TAX_RECEIVABLE" validate:"required"`
	Inventory          string `mapstructure:"LEDGER_ACCOUNT_INVENTORY" validate:"required"`
	CostOfGoodsSold    string `mapstructure:"LEDGER_ACCOUNT_COGS" validate:"required"`
	Cash               string `mapstructure:"LEDGER_ACCOUNT_CASH" validate:"required"`
	InventoryGainLoss  string `mapstructure:"LEDGER_ACCOUNT_INVENTORY_GAIN_LOSS" validate:"required"`
}

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	IsProduction  bool
	BaseCurrency  string `validate:"required,len=3"`
	MigrationsDir string

	Ledger LedgerAccounts
}

// LoadConfig loads configuration from environment variables and a .env file if
// present, then validates it. A config that fails validation is a startup
// error, not something to limp along with.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("MIGRATIONS_DIR", "file://migrations")
	viper.SetDefault("LEDGER_ACCOUNT_AR", "1200")
	viper.SetDefault("LEDGER_ACCOUNT_AP", "2100")
	viper.SetDefault("LEDGER_ACCOUNT_REVENUE", "4000")
	viper.SetDefault("LEDGER_ACCOUNT_TAX_PAYABLE", "2200")
	viper.SetDefault("LEDGER_ACCOUNT_TAX_RECEIVABLE", "1400")
	viper.SetDefault("LEDGER_ACCOUNT_INVENTORY", "1300")
	viper.SetDefault("LEDGER_ACCOUNT_COGS", "5000")
	viper.SetDefault("LEDGER_ACCOUNT_CASH", "1000")
	viper.SetDefault("LEDGER_ACCOUNT_INVENTORY_GAIN_LOSS", "5900")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:   viper.GetString("PGSQL_URL"),
		IsProduction:  viper.GetBool("IS_PRODUCTION"),
		BaseCurrency:  viper.GetString("BASE_CURRENCY"),
		MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		Ledger: LedgerAccounts{
			AccountsReceivable: viper.GetString("LEDGER_ACCOUNT_AR"),
			AccountsPayable:    viper.GetString("LEDGER_ACCOUNT_AP"),
			Revenue:            viper.GetString("LEDGER_ACCOUNT_REVENUE"),
			TaxPayable:         viper.GetString("LEDGER_ACCOUNT_TAX_PAYABLE"),
			TaxReceivable:      viper.GetString("LEDGER_ACCOUNT_TAX_RECEIVABLE"),
			Inventory:          viper.GetString("LEDGER_ACCOUNT_INVENTORY"),
			CostOfGoodsSold:    viper.GetString("LEDGER_ACCOUNT_COGS"),
			Cash:               viper.GetString("LEDGER_ACCOUNT_CASH"),
			InventoryGainLoss:  viper.GetString("LEDGER_ACCOUNT_INVENTORY_GAIN_LOSS"),
		},
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validate.Struct(cfg.Ledger); err != nil {
		return nil, fmt.Errorf("invalid ledger account mapping: %w", err)
	}

	return cfg, nil
}
