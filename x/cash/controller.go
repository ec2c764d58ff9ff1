package cash

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/orm"
)

// Controller is the functionality needed by other extensions to move funds.
type Controller interface {
	// Balance returns all coins held by the address. An unknown address
	// holds nothing.
	Balance(db volreg.ReadOnlyKVStore, addr volreg.Address) (*Set, error)

	// MoveCoins moves the given amount from src to dest.
	// If src doesn't exist, or doesn't have sufficient
	// coins, it fails with ErrPayment.
	MoveCoins(db volreg.KVStore, src, dest volreg.Address, amount coin.Coin) error

	// IssueCoins adds the given amount of coins to the destination
	// address.
	IssueCoins(db volreg.KVStore, dest volreg.Address, amount coin.Coin) error
}

// BaseController is a simple implementation of controller
// wallet must return something that supports AsSet
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Balance(db volreg.ReadOnlyKVStore, addr volreg.Address) (*Set, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet address")
	}
	var set Set
	switch err := c.bucket.One(db, addr, &set); {
	case err == nil:
		return &set, nil
	case errors.ErrNotFound.Is(err):
		return &Set{}, nil
	default:
		return nil, err
	}
}

func (c BaseController) MoveCoins(db volreg.KVStore, src, dest volreg.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInput, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.Balance(db, src)
	if err != nil {
		return err
	}
	if !sender.Contains(amount) {
		return errors.Wrapf(errors.ErrPayment, "insufficient funds: %s available, %s required",
			sender.Balance(amount.Ticker), amount)
	}
	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := c.save(db, src, sender); err != nil {
		return err
	}

	// load after the sender is saved so that moving to self is a noop
	recipient, err := c.Balance(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

func (c BaseController) IssueCoins(db volreg.KVStore, dest volreg.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := c.Balance(db, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

// save stores the wallet, removing it when it is empty.
func (c BaseController) save(db volreg.KVStore, addr volreg.Address, s *Set) error {
	if len(s.Coins) == 0 {
		if err := c.bucket.Has(db, addr); errors.ErrNotFound.Is(err) {
			return nil
		}
		return c.bucket.Delete(db, addr)
	}
	return c.bucket.Put(db, addr, s)
}
