package market

import (
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/orm"
)

// ItemIterator lazily produces market items in ascending id order.
type ItemIterator struct {
	it     orm.ModelIterator
	accept func(*MarketItem) bool
}

func isActive(item *MarketItem) bool {
	return !item.Sold
}

// Next returns the next matching item, or ErrIteratorDone.
func (i *ItemIterator) Next() (*MarketItem, error) {
	for {
		var item MarketItem
		if _, err := i.it.LoadNext(&item); err != nil {
			return nil, err
		}
		if i.accept == nil || i.accept(&item) {
			return &item, nil
		}
	}
}

// Release releases the iterator.
func (i *ItemIterator) Release() {
	i.it.Release()
}

// Collect consumes and releases the iterator, returning all items.
func Collect(it *ItemIterator) ([]*MarketItem, error) {
	defer it.Release()

	var items []*MarketItem
	for {
		switch item, err := it.Next(); {
		case err == nil:
			items = append(items, item)
		case errors.ErrIteratorDone.Is(err):
			return items, nil
		default:
			return nil, err
		}
	}
}
