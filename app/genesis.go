package app

import (
	"os"

	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/gconf"
	"github.com/volreg/volreg/x/cash"
	"github.com/volreg/volreg/x/market"
	"github.com/volreg/volreg/x/registry"
	"gopkg.in/yaml.v3"
)

// Genesis is the initial state of a marketplace. Addresses accept any
// format understood by volreg.ParseAddress, amounts use the human coin
// format, for example "0.025 ETH".
type Genesis struct {
	// Admin owns both the registry and the market configuration and may
	// issue coins.
	Admin volreg.Address `yaml:"admin" json:"admin"`
	// Currency is the ticker of all prices and payments.
	Currency string          `yaml:"currency" json:"currency"`
	Registry RegistryGenesis `yaml:"registry" json:"registry"`
	Market   MarketGenesis   `yaml:"market" json:"market"`
	Balances []Balance       `yaml:"balances" json:"balances"`
}

// RegistryGenesis is the initial token registry configuration.
type RegistryGenesis struct {
	Name        string    `yaml:"name" json:"name"`
	Symbol      string    `yaml:"symbol" json:"symbol"`
	MintPrice   coin.Coin `yaml:"mint_price" json:"mint_price"`
	BaseURI     string    `yaml:"base_uri" json:"base_uri"`
	ContractURI string    `yaml:"contract_uri" json:"contract_uri"`
}

// MarketGenesis is the initial market configuration.
type MarketGenesis struct {
	ListingPrice coin.Coin `yaml:"listing_price" json:"listing_price"`
	// Collector receives the listing fees. Defaults to the admin.
	Collector volreg.Address `yaml:"collector" json:"collector"`
}

// Balance is an initial wallet balance.
type Balance struct {
	Address volreg.Address `yaml:"address" json:"address"`
	Amount  coin.Coin      `yaml:"amount" json:"amount"`
}

// LoadGenesis reads a YAML genesis file. Environment variables referenced
// as $VAR or ${VAR} are expanded before parsing.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	var gen Genesis
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "parse genesis: %s", err)
	}
	return &gen, nil
}

// InitGenesis stores the initial configuration and balances. It fails with
// ErrState if the store was already initialized.
func (e *Engine) InitGenesis(gen Genesis) error {
	return e.mutate("init_genesis", func(db volreg.KVStore) error {
		if err := gconf.Load(db, cash.PackageName, &cash.Configuration{}); !errors.ErrNotFound.Is(err) {
			return errors.Wrap(errors.ErrState, "already initialized")
		}

		mintPrice, err := gen.Registry.MintPrice.InCurrency(gen.Currency)
		if err != nil {
			return errors.Wrap(err, "registry.mint_price")
		}
		listingPrice, err := gen.Market.ListingPrice.InCurrency(gen.Currency)
		if err != nil {
			return errors.Wrap(err, "market.listing_price")
		}

		if err := gconf.Save(db, cash.PackageName, &cash.Configuration{
			Owner:  gen.Admin,
			Ticker: gen.Currency,
		}); err != nil {
			return errors.Wrap(err, "cash configuration")
		}
		if err := e.tokens.InitConfig(db, &registry.Configuration{
			Owner:       gen.Admin,
			Market:      market.EscrowAddress,
			MintPrice:   &mintPrice,
			BaseURI:     gen.Registry.BaseURI,
			ContractURI: gen.Registry.ContractURI,
			Name:        gen.Registry.Name,
			Symbol:      gen.Registry.Symbol,
		}); err != nil {
			return err
		}
		if err := e.market.InitConfig(db, &market.Configuration{
			Owner:        gen.Admin,
			ListingPrice: &listingPrice,
			Collector:    gen.Market.Collector,
		}); err != nil {
			return err
		}

		for i, b := range gen.Balances {
			amount, err := b.Amount.InCurrency(gen.Currency)
			if err != nil {
				return errors.Wrapf(err, "balance %d", i)
			}
			if err := e.cash.IssueCoins(db, b.Address, amount); err != nil {
				return errors.Wrapf(err, "balance %d", i)
			}
		}
		return nil
	}, "admin", gen.Admin, "currency", gen.Currency)
}
