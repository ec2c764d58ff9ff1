package registry

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/orm"
)

const (
	// PackageName is the configuration key of the registry.
	PackageName = "registry"
	// BucketName is where tokens are stored.
	BucketName = "token"
	// OwnerIndexName is the index to query tokens by owner
	OwnerIndexName = "owner"

	maxURILength  = 2048
	maxNameLength = 128
)

// NewBucket returns a bucket of tokens keyed by their sequence id, indexed
// by owner.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Token{},
		orm.WithIndex(OwnerIndexName, ownerIndex, false),
	)
}

func ownerIndex(m orm.Model) ([]byte, error) {
	t, ok := m.(*Token)
	if !ok {
		return nil, errors.Wrapf(orm.ErrInvalidIndex, "unsupported type %T", m)
	}
	return t.Owner, nil
}

// TokenKey returns the primary key of the token.
func TokenKey(id uint64) []byte {
	return orm.EncodeSequence(id)
}

// Validate ensures the token can be saved.
func (m *Token) Validate() error {
	var errs error
	if m.ID == 0 {
		errs = errors.AppendField(errs, "ID", errors.Wrap(errors.ErrInput, "required"))
	}
	if err := m.GetOwner().Validate(); err != nil {
		errs = errors.AppendField(errs, "Owner", err)
	}
	if len(m.URIFragment) > maxURILength {
		errs = errors.AppendField(errs, "URIFragment", errors.Wrap(errors.ErrInput, "too long"))
	}
	return errs
}

// Validate ensures the configuration can be saved.
func (m *Configuration) Validate() error {
	var errs error
	if err := m.GetOwner().Validate(); err != nil {
		errs = errors.AppendField(errs, "Owner", err)
	}
	if err := m.GetMarket().Validate(); err != nil {
		errs = errors.AppendField(errs, "Market", err)
	}
	errs = errors.AppendField(errs, "MintPrice", validatePrice(m.MintPrice))
	if len(m.BaseURI) > maxURILength {
		errs = errors.AppendField(errs, "BaseURI", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(m.ContractURI) > maxURILength {
		errs = errors.AppendField(errs, "ContractURI", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(m.Name) > maxNameLength {
		errs = errors.AppendField(errs, "Name", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(m.Symbol) > maxNameLength {
		errs = errors.AppendField(errs, "Symbol", errors.Wrap(errors.ErrInput, "too long"))
	}
	return errs
}

// validatePrice accepts zero and positive amounts of a valid currency.
func validatePrice(c *coin.Coin) error {
	if c == nil {
		return errors.Wrap(errors.ErrInput, "required")
	}
	if err := c.Validate(); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if !c.IsNonNegative() {
		return errors.Wrapf(errors.ErrInput, "negative price %s", c)
	}
	return nil
}

// isEscrowMove returns true if the transfer touches the market escrow.
func isEscrowMove(conf *Configuration, from, to volreg.Address) bool {
	market := conf.GetMarket()
	return market.Equals(from) || market.Equals(to)
}
