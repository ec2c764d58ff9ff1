package app

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/gconf"
	"github.com/volreg/volreg/x/cash"
)

// Balance returns the wallet balance of the address in the marketplace
// currency.
func (e *Engine) Balance(addr volreg.Address) (coin.Coin, error) {
	var balance coin.Coin
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		conf, err := cashConfig(db)
		if err != nil {
			return err
		}
		w, err := e.cash.Balance(db, addr)
		if err != nil {
			return err
		}
		balance = w.Balance(conf.Ticker)
		return nil
	})
	return balance, err
}

// Issue creates new coins in the wallet of the recipient. Only the admin
// may issue coins.
func (e *Engine) Issue(caller, to volreg.Address, amount coin.Coin) error {
	return e.mutate("issue", func(db volreg.KVStore) error {
		conf, err := cashConfig(db)
		if err != nil {
			return err
		}
		if !conf.GetOwner().Equals(caller) {
			return errors.Wrapf(errors.ErrUnauthorized, "%s cannot issue coins", caller)
		}
		issued, err := amount.InCurrency(conf.Ticker)
		if err != nil {
			return err
		}
		if !issued.IsPositive() {
			return errors.Wrapf(errors.ErrInput, "non-positive amount %s", amount)
		}
		return e.cash.IssueCoins(db, to, issued)
	}, "to", to, "amount", amount)
}

func cashConfig(db volreg.ReadOnlyKVStore) (*cash.Configuration, error) {
	var conf cash.Configuration
	if err := gconf.Load(db, cash.PackageName, &conf); err != nil {
		return nil, errors.Wrap(err, "cash configuration")
	}
	return &conf, nil
}
