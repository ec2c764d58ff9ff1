package coin

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/volreg/volreg/errors"
)

// WeiDigits is the number of decimals of the ether unit.
const WeiDigits = 18

var (
	weiPerWhole = uint256.NewInt(1000000000000000000)
	weiPerFrac  = uint256.NewInt(1000000000) // 10^18 / FracUnit
)

// FromWei converts a wei amount into a coin of the given ticker. Amounts
// with precision below a fractional unit are rejected.
func FromWei(wei *uint256.Int, ticker string) (Coin, error) {
	if wei == nil {
		return Coin{Ticker: ticker}, nil
	}
	whole, rest := new(uint256.Int), new(uint256.Int)
	whole.DivMod(wei, weiPerWhole, rest)
	if !whole.IsUint64() || whole.Uint64() > uint64(MaxInt) {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s wei", wei.Hex())
	}
	frac, dust := new(uint256.Int), new(uint256.Int)
	frac.DivMod(rest, weiPerFrac, dust)
	if !dust.IsZero() {
		return Coin{}, errors.Wrap(errors.ErrInput, "precision below fractional unit")
	}
	return NewCoin(int64(whole.Uint64()), int64(frac.Uint64()), ticker), nil
}

// ToWei returns the wei representation of a non negative coin.
func ToWei(c Coin) (*uint256.Int, error) {
	if !c.IsNonNegative() {
		return nil, errors.Wrapf(errors.ErrInput, "negative amount %s", c)
	}
	whole := new(uint256.Int).Mul(uint256.NewInt(uint64(c.Whole)), weiPerWhole)
	frac := new(uint256.Int).Mul(uint256.NewInt(uint64(c.Fractional)), weiPerFrac)
	return whole.Add(whole, frac), nil
}

// ParseEther parses a decimal ether amount, for example "10.123456", into a
// coin of the given ticker.
func ParseEther(s, ticker string) (Coin, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coin{}, errors.Wrap(errors.ErrInput, "empty amount")
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > WeiDigits {
		return Coin{}, errors.Wrapf(errors.ErrInput, "more than %d decimals", WeiDigits)
	}
	w, err := uint256.FromDecimal(whole)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "whole part %q", whole)
	}
	f := new(uint256.Int)
	if frac != "" {
		if f, err = uint256.FromDecimal(frac + strings.Repeat("0", WeiDigits-len(frac))); err != nil {
			return Coin{}, errors.Wrapf(errors.ErrInput, "decimal part %q", frac)
		}
	}
	wei := new(uint256.Int).Mul(w, weiPerWhole)
	if _, overflow := wei.AddOverflow(wei, f); overflow {
		return Coin{}, errors.ErrOverflow
	}
	return FromWei(wei, ticker)
}

// FormatEther renders the amount of a coin as a decimal ether string, always
// keeping at least one decimal place ("1.0", "10.123456").
func FormatEther(c Coin) string {
	if n, err := c.normalize(); err == nil {
		c = n
	}
	var b strings.Builder
	if c.Whole < 0 || c.Fractional < 0 {
		b.WriteByte('-')
	}
	w := c.Whole
	if w < 0 {
		w = -w
	}
	b.WriteString(uint256.NewInt(uint64(w)).Dec())
	b.WriteString(fractionString(c.Fractional, true))
	return b.String()
}
