package app

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/x/market"
)

// CreateListing escrows a token owned by the caller and lists it at the
// given price. The fee must equal the listing price.
func (e *Engine) CreateListing(caller, tokenRef volreg.Address, tokenID uint64, price, fee coin.Coin) (uint64, error) {
	var id uint64
	err := e.mutate("create_listing", func(db volreg.KVStore) error {
		var err error
		id, err = e.market.CreateListing(db, caller, tokenRef, tokenID, price, fee)
		return err
	}, "caller", caller, "token", tokenID, "price", price)
	return id, err
}

// ExecuteSale sells the listed token to the buyer.
func (e *Engine) ExecuteSale(buyer, tokenRef volreg.Address, tokenID uint64, payment coin.Coin) (uint64, error) {
	var id uint64
	err := e.mutate("execute_sale", func(db volreg.KVStore) error {
		var err error
		id, err = e.market.ExecuteSale(db, buyer, tokenRef, tokenID, payment)
		return err
	}, "buyer", buyer, "token", tokenID, "payment", payment)
	if err != nil {
		return 0, err
	}
	e.metrics.sales.Inc()
	return id, nil
}

// SetListingPrice changes the listing fee. Admin only.
func (e *Engine) SetListingPrice(caller volreg.Address, price coin.Coin) error {
	return e.mutate("set_listing_price", func(db volreg.KVStore) error {
		return e.market.SetListingPrice(db, caller, price)
	}, "caller", caller, "price", price)
}

// ListingPrice returns the listing fee.
func (e *Engine) ListingPrice() (coin.Coin, error) {
	var price coin.Coin
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		price, err = e.market.ListingPrice(db)
		return err
	})
	return price, err
}

// FetchActiveListings returns all unsold items ordered by id. The result
// is a snapshot of the committed state.
func (e *Engine) FetchActiveListings() ([]*market.MarketItem, error) {
	var items []*market.MarketItem
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		it, err := e.market.ActiveItems(db)
		if err != nil {
			return err
		}
		items, err = market.Collect(it)
		return err
	})
	return items, err
}

// FetchItemsOwnedBy returns all items whose current owner is the account,
// ordered by id.
func (e *Engine) FetchItemsOwnedBy(owner volreg.Address) ([]*market.MarketItem, error) {
	return e.readItems(func(db volreg.ReadOnlyKVStore) ([]*market.MarketItem, error) {
		return e.market.ItemsOwnedBy(db, owner)
	})
}

// ItemsListedBy returns all items created by the seller, ordered by id.
func (e *Engine) ItemsListedBy(seller volreg.Address) ([]*market.MarketItem, error) {
	return e.readItems(func(db volreg.ReadOnlyKVStore) ([]*market.MarketItem, error) {
		return e.market.ItemsListedBy(db, seller)
	})
}

func (e *Engine) readItems(fn func(volreg.ReadOnlyKVStore) ([]*market.MarketItem, error)) ([]*market.MarketItem, error) {
	var items []*market.MarketItem
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		items, err = fn(db)
		return err
	})
	return items, err
}

// Item returns the market item with the given id.
func (e *Engine) Item(id uint64) (*market.MarketItem, error) {
	var item *market.MarketItem
	err := e.query(func(db volreg.ReadOnlyKVStore) error {
		var err error
		item, err = e.market.Item(db, id)
		return err
	})
	return item, err
}
