package registry

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/gconf"
	"github.com/volreg/volreg/orm"
	"github.com/volreg/volreg/x/cash"
)

// Controller implements all registry operations. Every mutating operation
// takes the caller address explicitly and must be executed inside a cache
// wrap that is discarded on failure.
type Controller struct {
	ref    volreg.Address
	tokens orm.ModelBucket
	seq    orm.Sequence
	cash   cash.Controller
}

// NewController returns a registry identified by the given reference
// address. Payments are moved using the cash controller.
func NewController(ref volreg.Address, cashCtrl cash.Controller) *Controller {
	return &Controller{
		ref:    ref,
		tokens: NewBucket(),
		seq:    orm.NewSequence(BucketName, "id"),
		cash:   cashCtrl,
	}
}

// DefaultRef is the reference address of the registry of this application.
var DefaultRef = volreg.NewCondition(PackageName, "contract", []byte("tokens")).Address()

// Ref returns the address other components use to reference this registry.
func (c *Controller) Ref() volreg.Address {
	return c.ref
}

// InitConfig stores the genesis configuration.
func (c *Controller) InitConfig(db volreg.KVStore, conf *Configuration) error {
	if err := gconf.Save(db, PackageName, conf); err != nil {
		return errors.Wrap(err, "registry configuration")
	}
	return nil
}

// Config returns the current configuration.
func (c *Controller) Config(db volreg.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, PackageName, &conf); err != nil {
		return nil, errors.Wrap(err, "registry configuration")
	}
	return &conf, nil
}

// Mint creates a new token owned by the caller and returns its id.
//
// Public tokens require a payment of exactly the mint price, private tokens
// must be minted without payment. The payment is forwarded to the admin.
func (c *Controller) Mint(db volreg.KVStore, caller volreg.Address, uriFragment string, public bool, payment coin.Coin) (uint64, error) {
	if err := caller.Validate(); err != nil {
		return 0, errors.Wrap(err, "caller")
	}
	if len(uriFragment) > maxURILength {
		return 0, errors.Field("URIFragment", errors.ErrInput, "too long")
	}
	conf, err := c.Config(db)
	if err != nil {
		return 0, err
	}

	if public {
		if !payment.Matches(*conf.MintPrice) {
			return 0, errors.Wrapf(errors.ErrPayment, "mint price is %s, got %s", conf.MintPrice, payment)
		}
	} else if !payment.IsZero() {
		return 0, errors.Wrapf(errors.ErrPayment, "private mint is free, got %s", payment)
	}
	if payment.IsPositive() {
		if err := c.cash.MoveCoins(db, caller, conf.GetOwner(), payment); err != nil {
			return 0, errors.Wrap(err, "mint payment")
		}
	}

	id, err := c.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "token id")
	}
	token := &Token{
		ID:          id,
		Owner:       caller,
		URIFragment: uriFragment,
		Public:      public,
	}
	if err := c.tokens.Put(db, TokenKey(id), token); err != nil {
		return 0, errors.Wrap(err, "save token")
	}
	return id, nil
}

// SetPrice changes the mint price. Admin only.
func (c *Controller) SetPrice(db volreg.KVStore, caller volreg.Address, price coin.Coin) error {
	var conf Configuration
	return gconf.Update(db, PackageName, caller, &conf, func() error {
		if err := validatePrice(&price); err != nil {
			return errors.Wrap(err, "mint price")
		}
		p, err := price.InCurrency(conf.MintPrice.Ticker)
		if err != nil {
			return errors.Wrap(err, "mint price")
		}
		conf.MintPrice = &p
		return nil
	})
}

// Price returns the mint price of public tokens.
func (c *Controller) Price(db volreg.ReadOnlyKVStore) (coin.Coin, error) {
	conf, err := c.Config(db)
	if err != nil {
		return coin.Coin{}, err
	}
	return *conf.MintPrice, nil
}

// SetBaseURI changes the prefix of all token URIs. Admin only.
func (c *Controller) SetBaseURI(db volreg.KVStore, caller volreg.Address, uri string) error {
	var conf Configuration
	return gconf.Update(db, PackageName, caller, &conf, func() error {
		conf.BaseURI = uri
		return nil
	})
}

// SetContractURI changes the collection metadata URI. Admin only.
func (c *Controller) SetContractURI(db volreg.KVStore, caller volreg.Address, uri string) error {
	var conf Configuration
	return gconf.Update(db, PackageName, caller, &conf, func() error {
		conf.ContractURI = uri
		return nil
	})
}

// ContractURI returns the collection metadata URI.
func (c *Controller) ContractURI(db volreg.ReadOnlyKVStore) (string, error) {
	conf, err := c.Config(db)
	if err != nil {
		return "", err
	}
	return conf.ContractURI, nil
}

// Name returns the collection name.
func (c *Controller) Name(db volreg.ReadOnlyKVStore) (string, error) {
	conf, err := c.Config(db)
	if err != nil {
		return "", err
	}
	return conf.Name, nil
}

// Symbol returns the collection symbol.
func (c *Controller) Symbol(db volreg.ReadOnlyKVStore) (string, error) {
	conf, err := c.Config(db)
	if err != nil {
		return "", err
	}
	return conf.Symbol, nil
}

// Token returns the token with the given id, or ErrNotFound.
func (c *Controller) Token(db volreg.ReadOnlyKVStore, id uint64) (*Token, error) {
	if id == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "token 0")
	}
	var t Token
	if err := c.tokens.One(db, TokenKey(id), &t); err != nil {
		return nil, errors.Wrapf(err, "token %d", id)
	}
	return &t, nil
}

// TokenURI returns the base URI joined with the token URI fragment.
func (c *Controller) TokenURI(db volreg.ReadOnlyKVStore, id uint64) (string, error) {
	t, err := c.Token(db, id)
	if err != nil {
		return "", err
	}
	conf, err := c.Config(db)
	if err != nil {
		return "", err
	}
	return conf.BaseURI + t.URIFragment, nil
}

// SetVisibility changes the public flag of a token. Only the current owner
// may call it. Any payment is accepted and forwarded to the admin.
func (c *Controller) SetVisibility(db volreg.KVStore, caller volreg.Address, id uint64, public bool, payment coin.Coin) error {
	t, err := c.Token(db, id)
	if err != nil {
		return err
	}
	if !t.GetOwner().Equals(caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s does not own token %d", caller, id)
	}
	if !payment.IsNonNegative() {
		return errors.Wrapf(errors.ErrPayment, "negative payment %s", payment)
	}
	if payment.IsPositive() {
		conf, err := c.Config(db)
		if err != nil {
			return err
		}
		if err := c.cash.MoveCoins(db, caller, conf.GetOwner(), payment); err != nil {
			return errors.Wrap(err, "visibility payment")
		}
	}
	t.Public = public
	return c.tokens.Put(db, TokenKey(id), t)
}

// IsPublic returns the visibility of a token.
func (c *Controller) IsPublic(db volreg.ReadOnlyKVStore, id uint64) (bool, error) {
	t, err := c.Token(db, id)
	if err != nil {
		return false, err
	}
	return t.Public, nil
}

// Transfer moves the token from its current owner to another address.
//
// The caller must be the owner or the configured market identity. Only the
// market identity may move a token into or out of its escrow.
func (c *Controller) Transfer(db volreg.KVStore, caller, from, to volreg.Address, id uint64) error {
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	t, err := c.Token(db, id)
	if err != nil {
		return err
	}
	if !t.GetOwner().Equals(from) {
		return errors.Wrapf(errors.ErrOwnership, "token %d is not owned by %s", id, from)
	}
	conf, err := c.Config(db)
	if err != nil {
		return err
	}
	market := conf.GetMarket()
	switch {
	case market.Equals(caller):
	case isEscrowMove(conf, from, to):
		return errors.Wrap(errors.ErrUnauthorized, "only the market can move tokens to or from escrow")
	case !caller.Equals(from):
		return errors.Wrapf(errors.ErrUnauthorized, "%s cannot move token %d", caller, id)
	}
	t.Owner = to
	return c.tokens.Put(db, TokenKey(id), t)
}

// OwnerOf returns the current owner of a token.
func (c *Controller) OwnerOf(db volreg.ReadOnlyKVStore, id uint64) (volreg.Address, error) {
	t, err := c.Token(db, id)
	if err != nil {
		return nil, err
	}
	return t.GetOwner(), nil
}

// BalanceOf returns the number of tokens owned by the address.
func (c *Controller) BalanceOf(db volreg.ReadOnlyKVStore, owner volreg.Address) (uint64, error) {
	ids, err := c.TokensOf(db, owner)
	if err != nil {
		return 0, err
	}
	return uint64(len(ids)), nil
}

// TokensOf returns the ids of all tokens owned by the address, ascending.
func (c *Controller) TokensOf(db volreg.ReadOnlyKVStore, owner volreg.Address) ([]uint64, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	var tokens []*Token
	if _, err := c.tokens.ByIndex(db, OwnerIndexName, owner, &tokens); err != nil {
		return nil, err
	}
	ids := make([]uint64, len(tokens))
	for i, t := range tokens {
		ids[i] = t.ID
	}
	return ids, nil
}

// TotalSupply returns the number of minted tokens.
func (c *Controller) TotalSupply(db volreg.ReadOnlyKVStore) (uint64, error) {
	return c.seq.Latest(db)
}
