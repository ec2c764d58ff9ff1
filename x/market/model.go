package market

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/orm"
)

const (
	// PackageName is the configuration key of the market.
	PackageName = "market"
	// BucketName is where items are stored.
	BucketName = "item"

	// ActiveIndexName finds the unsold item of a token. It is unique.
	ActiveIndexName = "active"
	// OwnerIndexName finds items by their current owner.
	OwnerIndexName = "owner"
	// SellerIndexName finds items by their seller.
	SellerIndexName = "seller"
)

// EscrowAddress holds all listed tokens.
var EscrowAddress = volreg.NewCondition(PackageName, "escrow", []byte("listings")).Address()

// NewBucket returns a bucket of market items keyed by their sequence id.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &MarketItem{},
		orm.WithIndex(ActiveIndexName, activeIndex, true),
		orm.WithIndex(OwnerIndexName, ownerIndex, false),
		orm.WithIndex(SellerIndexName, sellerIndex, false),
	)
}

func asItem(m orm.Model) (*MarketItem, error) {
	item, ok := m.(*MarketItem)
	if !ok {
		return nil, errors.Wrapf(orm.ErrInvalidIndex, "unsupported type %T", m)
	}
	return item, nil
}

// activeIndex keys unsold items by token reference and token id.
func activeIndex(m orm.Model) ([]byte, error) {
	item, err := asItem(m)
	if err != nil || item.Sold {
		return nil, err
	}
	return activeKey(item.TokenRef, item.TokenID), nil
}

func activeKey(tokenRef volreg.Address, tokenID uint64) []byte {
	return append(append([]byte{}, tokenRef...), orm.EncodeSequence(tokenID)...)
}

func ownerIndex(m orm.Model) ([]byte, error) {
	item, err := asItem(m)
	if err != nil {
		return nil, err
	}
	return item.Owner, nil
}

func sellerIndex(m orm.Model) ([]byte, error) {
	item, err := asItem(m)
	if err != nil {
		return nil, err
	}
	return item.Seller, nil
}

// ItemKey returns the primary key of the item.
func ItemKey(id uint64) []byte {
	return orm.EncodeSequence(id)
}

// Validate ensures the item can be saved.
func (m *MarketItem) Validate() error {
	var errs error
	if m.ID == 0 {
		errs = errors.AppendField(errs, "ID", errors.Wrap(errors.ErrInput, "required"))
	}
	if err := volreg.Address(m.TokenRef).Validate(); err != nil {
		errs = errors.AppendField(errs, "TokenRef", err)
	}
	if m.TokenID == 0 {
		errs = errors.AppendField(errs, "TokenID", errors.Wrap(errors.ErrInput, "required"))
	}
	if err := m.GetSeller().Validate(); err != nil {
		errs = errors.AppendField(errs, "Seller", err)
	}
	if err := m.GetOwner().Validate(); err != nil {
		errs = errors.AppendField(errs, "Owner", err)
	}
	errs = errors.AppendField(errs, "Price", validateItemPrice(m))
	return errs
}

func validateItemPrice(m *MarketItem) error {
	if m.Price == nil {
		return errors.Wrap(errors.ErrInput, "required")
	}
	if err := m.Price.Validate(); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if !m.Price.IsPositive() {
		return errors.Wrapf(errors.ErrInput, "price must be positive, got %s", m.Price)
	}
	return nil
}

// Validate ensures the configuration can be saved.
func (m *Configuration) Validate() error {
	var errs error
	if err := m.GetOwner().Validate(); err != nil {
		errs = errors.AppendField(errs, "Owner", err)
	}
	if len(m.Collector) != 0 {
		if err := volreg.Address(m.Collector).Validate(); err != nil {
			errs = errors.AppendField(errs, "Collector", err)
		}
	}
	switch {
	case m.ListingPrice == nil:
		errs = errors.AppendField(errs, "ListingPrice", errors.Wrap(errors.ErrInput, "required"))
	case m.ListingPrice.Validate() != nil:
		errs = errors.AppendField(errs, "ListingPrice", errors.Wrap(errors.ErrInput, m.ListingPrice.Validate().Error()))
	case !m.ListingPrice.IsNonNegative():
		errs = errors.AppendField(errs, "ListingPrice", errors.Wrap(errors.ErrInput, "negative"))
	}
	return errs
}
