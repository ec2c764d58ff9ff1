package app

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/x/market"
)

// Mint creates a token owned by the caller and returns its id.
func (e *Engine) Mint(caller volreg.Address, uriFragment string, public bool, payment coin.Coin) (uint64, error) {
	var id uint64
	err := e.mutate("mint", func(db volreg.KVStore) error {
		var err error
		id, err = e.tokens.Mint(db, caller, uriFragment, public, payment)
		return err
	}, "caller", caller, "public", public)
	if err != nil {
		return 0, err
	}
	e.metrics.minted.Inc()
	return id, nil
}

// SetPrice changes the mint price of public tokens. Admin only.
func (e *Engine) SetPrice(caller volreg.Address, price coin.Coin) error {
	return e.mutate("set_price", func(db volreg.KVStore) error {
		return e.tokens.SetPrice(db, caller, price)
	}, "caller", caller, "price", price)
}

// Price returns the mint price of public tokens.
func (e *Engine) Price() (coin.Coin, error) {
	var price coin.Coin
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		price, err = e.tokens.Price(db)
		return err
	})
	return price, err
}

// SetBaseURI changes the prefix of all token URIs. Admin only.
func (e *Engine) SetBaseURI(caller volreg.Address, uri string) error {
	return e.mutate("set_base_uri", func(db volreg.KVStore) error {
		return e.tokens.SetBaseURI(db, caller, uri)
	}, "caller", caller, "uri", uri)
}

// SetContractURI changes the collection metadata URI. Admin only.
func (e *Engine) SetContractURI(caller volreg.Address, uri string) error {
	return e.mutate("set_contract_uri", func(db volreg.KVStore) error {
		return e.tokens.SetContractURI(db, caller, uri)
	}, "caller", caller, "uri", uri)
}

// ContractURI returns the collection metadata URI.
func (e *Engine) ContractURI() (string, error) {
	return e.readString(e.tokens.ContractURI)
}

// Name returns the collection name.
func (e *Engine) Name() (string, error) {
	return e.readString(e.tokens.Name)
}

// Symbol returns the collection symbol.
func (e *Engine) Symbol() (string, error) {
	return e.readString(e.tokens.Symbol)
}

func (e *Engine) readString(fn func(volreg.ReadOnlyKVStore) (string, error)) (string, error) {
	var s string
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		s, err = fn(db)
		return err
	})
	return s, err
}

// TokenURI returns the base URI joined with the token URI fragment.
func (e *Engine) TokenURI(id uint64) (string, error) {
	var uri string
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		uri, err = e.tokens.TokenURI(db, id)
		return err
	})
	return uri, err
}

// SetVisibility changes the public flag of a token owned by the caller.
func (e *Engine) SetVisibility(caller volreg.Address, id uint64, public bool, payment coin.Coin) error {
	return e.mutate("set_visibility", func(db volreg.KVStore) error {
		return e.tokens.SetVisibility(db, caller, id, public, payment)
	}, "caller", caller, "token", id, "public", public)
}

// IsPublic returns the visibility of a token.
func (e *Engine) IsPublic(id uint64) (bool, error) {
	var public bool
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		public, err = e.tokens.IsPublic(db, id)
		return err
	})
	return public, err
}

// TransferToken moves a token owned by the caller to another account.
// Listed tokens are held in escrow and can only be moved by a sale.
func (e *Engine) TransferToken(caller, to volreg.Address, id uint64) error {
	return e.mutate("transfer", func(db volreg.KVStore) error {
		if caller.Equals(market.EscrowAddress) {
			return errors.Wrap(errors.ErrUnauthorized, "escrow cannot be used as caller")
		}
		return e.tokens.Transfer(db, caller, caller, to, id)
	}, "caller", caller, "to", to, "token", id)
}

// OwnerOf returns the current owner of a token.
func (e *Engine) OwnerOf(id uint64) (volreg.Address, error) {
	var owner volreg.Address
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		owner, err = e.tokens.OwnerOf(db, id)
		return err
	})
	return owner, err
}

// BalanceOf returns the number of tokens owned by the address.
func (e *Engine) BalanceOf(owner volreg.Address) (uint64, error) {
	var n uint64
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		n, err = e.tokens.BalanceOf(db, owner)
		return err
	})
	return n, err
}

// TokensOf returns the ids of all tokens owned by the address.
func (e *Engine) TokensOf(owner volreg.Address) ([]uint64, error) {
	var ids []uint64
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		ids, err = e.tokens.TokensOf(db, owner)
		return err
	})
	return ids, err
}

// TotalSupply returns the number of minted tokens.
func (e *Engine) TotalSupply() (uint64, error) {
	var n uint64
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		n, err = e.tokens.TotalSupply(db)
		return err
	})
	return n, err
}
