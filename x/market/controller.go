package market

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/gconf"
	"github.com/volreg/volreg/orm"
	"github.com/volreg/volreg/x/cash"
)

// TokenRegistry is the part of a token registry the market depends on.
// Ownership is always read from the registry and never cached.
type TokenRegistry interface {
	// Ref is the address market items use to reference the registry.
	Ref() volreg.Address
	OwnerOf(db volreg.ReadOnlyKVStore, id uint64) (volreg.Address, error)
	Transfer(db volreg.KVStore, caller, from, to volreg.Address, id uint64) error
}

// Controller implements all market operations. Every mutating operation
// takes the caller address explicitly and must be executed inside a cache
// wrap that is discarded on failure.
type Controller struct {
	items      orm.ModelBucket
	seq        orm.Sequence
	sold       orm.Sequence
	cash       cash.Controller
	registries map[string]TokenRegistry
}

// NewController returns a market that can list tokens of the given
// registries.
func NewController(cashCtrl cash.Controller, registries ...TokenRegistry) *Controller {
	c := &Controller{
		items:      NewBucket(),
		seq:        orm.NewSequence(BucketName, "id"),
		sold:       orm.NewSequence(BucketName, "sold"),
		cash:       cashCtrl,
		registries: make(map[string]TokenRegistry, len(registries)),
	}
	for _, r := range registries {
		c.registries[string(r.Ref())] = r
	}
	return c
}

// InitConfig stores the genesis configuration.
func (c *Controller) InitConfig(db volreg.KVStore, conf *Configuration) error {
	if err := gconf.Save(db, PackageName, conf); err != nil {
		return errors.Wrap(err, "market configuration")
	}
	return nil
}

// Config returns the current configuration.
func (c *Controller) Config(db volreg.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, PackageName, &conf); err != nil {
		return nil, errors.Wrap(err, "market configuration")
	}
	return &conf, nil
}

func (c *Controller) registry(ref volreg.Address) (TokenRegistry, error) {
	r, ok := c.registries[string(ref)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "token registry %s", ref)
	}
	return r, nil
}

// CreateListing places the token in escrow and lists it for sale at the
// given price. The caller must own the token and pay exactly the listing
// fee, which goes to the fee collector. It returns the new item id.
func (c *Controller) CreateListing(db volreg.KVStore, caller, tokenRef volreg.Address, tokenID uint64, price, fee coin.Coin) (uint64, error) {
	if caller.Equals(EscrowAddress) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "escrow cannot list tokens")
	}
	reg, err := c.registry(tokenRef)
	if err != nil {
		return 0, err
	}
	owner, err := reg.OwnerOf(db, tokenID)
	if err != nil {
		return 0, err
	}
	if !owner.Equals(caller) {
		return 0, errors.Wrapf(errors.ErrOwnership, "token %d is owned by %s", tokenID, owner)
	}

	conf, err := c.Config(db)
	if err != nil {
		return 0, err
	}
	if err := validateItemPrice(&MarketItem{Price: &price}); err != nil {
		return 0, errors.Wrap(err, "price")
	}
	// Item prices are paid in the currency of the listing fee.
	if !price.SameType(*conf.ListingPrice) {
		return 0, errors.Wrapf(errors.ErrCurrency, "want %s, got %s", conf.ListingPrice.Ticker, price)
	}
	if !fee.Matches(*conf.ListingPrice) {
		return 0, errors.Wrapf(errors.ErrPayment, "listing price is %s, got %s", conf.ListingPrice, fee)
	}
	if fee.IsPositive() {
		if err := c.cash.MoveCoins(db, caller, conf.FeeCollector(), fee); err != nil {
			return 0, errors.Wrap(err, "listing fee")
		}
	}

	if err := reg.Transfer(db, EscrowAddress, caller, EscrowAddress, tokenID); err != nil {
		return 0, errors.Wrap(err, "escrow token")
	}

	id, err := c.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "item id")
	}
	item := &MarketItem{
		ID:       id,
		TokenRef: tokenRef,
		TokenID:  tokenID,
		Seller:   caller,
		Owner:    EscrowAddress,
		Price:    &price,
		Sold:     false,
	}
	if err := c.items.Put(db, ItemKey(id), item); err != nil {
		return 0, errors.Wrap(err, "save item")
	}
	return id, nil
}

// ExecuteSale sells the listed token to the buyer. The payment must equal
// the item price and goes to the seller. It returns the sold item id.
func (c *Controller) ExecuteSale(db volreg.KVStore, buyer, tokenRef volreg.Address, tokenID uint64, payment coin.Coin) (uint64, error) {
	reg, err := c.registry(tokenRef)
	if err != nil {
		return 0, err
	}
	if err := buyer.Validate(); err != nil {
		return 0, errors.Wrap(err, "buyer")
	}
	if buyer.Equals(EscrowAddress) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "escrow cannot buy tokens")
	}
	item, err := c.activeItem(db, tokenRef, tokenID)
	if err != nil {
		return 0, err
	}
	if !payment.SameType(*item.Price) || payment.Compare(*item.Price) != 0 {
		return 0, errors.Wrapf(errors.ErrPayment, "price is %s, got %s", item.Price, payment)
	}

	if err := reg.Transfer(db, EscrowAddress, EscrowAddress, buyer, tokenID); err != nil {
		return 0, errors.Wrap(err, "release token")
	}
	if err := c.cash.MoveCoins(db, buyer, item.GetSeller(), payment); err != nil {
		return 0, errors.Wrap(err, "sale payment")
	}

	item.Sold = true
	item.Owner = buyer
	if err := c.items.Put(db, ItemKey(item.ID), item); err != nil {
		return 0, errors.Wrap(err, "save item")
	}
	if _, err := c.sold.NextInt(db); err != nil {
		return 0, errors.Wrap(err, "items sold")
	}
	return item.ID, nil
}

func (c *Controller) activeItem(db volreg.ReadOnlyKVStore, tokenRef volreg.Address, tokenID uint64) (*MarketItem, error) {
	var items []*MarketItem
	if _, err := c.items.ByIndex(db, ActiveIndexName, activeKey(tokenRef, tokenID), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no active listing of token %d", tokenID)
	}
	return items[0], nil
}

// SetListingPrice changes the listing fee. Admin only.
func (c *Controller) SetListingPrice(db volreg.KVStore, caller volreg.Address, price coin.Coin) error {
	var conf Configuration
	return gconf.Update(db, PackageName, caller, &conf, func() error {
		if err := price.Validate(); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		if !price.IsNonNegative() {
			return errors.Wrapf(errors.ErrInput, "negative listing price %s", price)
		}
		p, err := price.InCurrency(conf.ListingPrice.Ticker)
		if err != nil {
			return errors.Wrap(err, "listing price")
		}
		conf.ListingPrice = &p
		return nil
	})
}

// ListingPrice returns the fee charged per listing.
func (c *Controller) ListingPrice(db volreg.ReadOnlyKVStore) (coin.Coin, error) {
	conf, err := c.Config(db)
	if err != nil {
		return coin.Coin{}, err
	}
	return *conf.ListingPrice, nil
}

// Item returns the item with the given id, or ErrNotFound.
func (c *Controller) Item(db volreg.ReadOnlyKVStore, id uint64) (*MarketItem, error) {
	if id == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "item 0")
	}
	var item MarketItem
	if err := c.items.One(db, ItemKey(id), &item); err != nil {
		return nil, errors.Wrapf(err, "item %d", id)
	}
	return &item, nil
}

// ActiveItems returns an iterator over all unsold items ordered by id.
// The iterator must be released.
func (c *Controller) ActiveItems(db volreg.ReadOnlyKVStore) (*ItemIterator, error) {
	it, err := c.items.IterAll(db)
	if err != nil {
		return nil, err
	}
	return &ItemIterator{it: it, accept: isActive}, nil
}

// ItemsOwnedBy returns all items whose current owner is the address,
// ordered by id.
func (c *Controller) ItemsOwnedBy(db volreg.ReadOnlyKVStore, owner volreg.Address) ([]*MarketItem, error) {
	return c.byIndex(db, OwnerIndexName, owner)
}

// ItemsListedBy returns all items created by the seller, ordered by id.
func (c *Controller) ItemsListedBy(db volreg.ReadOnlyKVStore, seller volreg.Address) ([]*MarketItem, error) {
	return c.byIndex(db, SellerIndexName, seller)
}

func (c *Controller) byIndex(db volreg.ReadOnlyKVStore, index string, addr volreg.Address) ([]*MarketItem, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, index)
	}
	var items []*MarketItem
	if _, err := c.items.ByIndex(db, index, addr, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemCount returns the number of items ever listed.
func (c *Controller) ItemCount(db volreg.ReadOnlyKVStore) (uint64, error) {
	return c.seq.Latest(db)
}

// SoldCount returns the number of items sold.
func (c *Controller) SoldCount(db volreg.ReadOnlyKVStore) (uint64, error) {
	return c.sold.Latest(db)
}

// ActiveCount returns the number of unsold items.
func (c *Controller) ActiveCount(db volreg.ReadOnlyKVStore) (uint64, error) {
	total, err := c.ItemCount(db)
	if err != nil {
		return 0, err
	}
	sold, err := c.SoldCount(db)
	if err != nil {
		return 0, err
	}
	return total - sold, nil
}
