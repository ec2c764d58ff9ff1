package cash

import (
	"sort"

	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/orm"
)

const (
	// PackageName is the configuration key of the cash extension.
	PackageName = "cash"
	// BucketName is where we store the balances
	BucketName = "cash"
)

// NewBucket returns a bucket that stores wallets under the owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Set{})
}

// Validate requires that all coins are valid, positive and sorted
// by ticker without duplicates.
func (s *Set) Validate() error {
	coins := s.GetCoins()
	for i, c := range coins {
		if c == nil {
			return errors.Wrap(errors.ErrInput, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if !c.IsPositive() {
			return errors.Wrapf(errors.ErrInput, "non-positive coin %s", c)
		}
		if i > 0 && coins[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrState, "coins not sorted")
		}
	}
	return nil
}

// Balance returns the amount held in the given currency.
func (s *Set) Balance(ticker string) coin.Coin {
	for _, c := range s.GetCoins() {
		if c.Ticker == ticker {
			return *c
		}
	}
	return coin.NewCoin(0, 0, ticker)
}

// Contains returns true if there is at least that much
// coin in the wallet.
func (s *Set) Contains(want coin.Coin) bool {
	if want.IsZero() {
		return true
	}
	return s.Balance(want.Ticker).IsGTE(want)
}

// Add modifies the set, to increase the holdings by the given amount.
// Zero balances are removed.
func (s *Set) Add(amount coin.Coin) error {
	cur := s.Balance(amount.Ticker)
	total, err := cur.Add(amount)
	if err != nil {
		return err
	}
	if !total.IsNonNegative() {
		return errors.Wrapf(errors.ErrPayment, "insufficient funds: %s available, %s required", cur, amount.Negative())
	}
	s.put(total)
	return nil
}

// Subtract modifies the set, to decrease the holdings by the given amount.
func (s *Set) Subtract(amount coin.Coin) error {
	return s.Add(amount.Negative())
}

func (s *Set) put(c coin.Coin) {
	i := sort.Search(len(s.Coins), func(i int) bool {
		return s.Coins[i].Ticker >= c.Ticker
	})
	found := i < len(s.Coins) && s.Coins[i].Ticker == c.Ticker
	switch {
	case found && c.IsZero():
		s.Coins = append(s.Coins[:i], s.Coins[i+1:]...)
	case found:
		s.Coins[i] = &c
	case c.IsZero():
	default:
		s.Coins = append(s.Coins, nil)
		copy(s.Coins[i+1:], s.Coins[i:])
		s.Coins[i] = &c
	}
}

// Validate ensures the configuration can be saved.
func (c *Configuration) Validate() error {
	var errs error
	if err := c.GetOwner().Validate(); err != nil {
		errs = errors.AppendField(errs, "Owner", err)
	}
	if !coin.IsCC(c.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", c.Ticker))
	}
	return errs
}
