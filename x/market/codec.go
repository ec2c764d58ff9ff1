package market

import (
	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
)

// The wire format of the models in this file is declared in codec.proto.

// MarketItem is a listing of a registry token at a fixed price.
type MarketItem struct {
	ID uint64 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	// TokenRef is the address of the registry holding the token.
	TokenRef []byte `protobuf:"bytes,2,opt,name=token_ref,json=tokenRef,proto3" json:"token_ref,omitempty"`
	TokenID  uint64 `protobuf:"varint,3,opt,name=token_id,json=tokenId,proto3" json:"token_id,omitempty"`
	Seller   []byte `protobuf:"bytes,4,opt,name=seller,proto3" json:"seller,omitempty"`
	// Owner is the escrow while the item is listed, and the buyer once sold.
	Owner []byte     `protobuf:"bytes,5,opt,name=owner,proto3" json:"owner,omitempty"`
	Price *coin.Coin `protobuf:"bytes,6,opt,name=price,proto3" json:"price,omitempty"`
	Sold  bool       `protobuf:"varint,7,opt,name=sold,proto3" json:"sold,omitempty"`
}

func (m *MarketItem) Reset()         { *m = MarketItem{} }
func (m *MarketItem) String() string { return proto.CompactTextString(m) }
func (*MarketItem) ProtoMessage()    {}

// GetSeller returns the address that listed the item.
func (m *MarketItem) GetSeller() volreg.Address {
	if m != nil {
		return volreg.Address(m.Seller)
	}
	return nil
}

// GetOwner returns the current owner of the item.
func (m *MarketItem) GetOwner() volreg.Address {
	if m != nil {
		return volreg.Address(m.Owner)
	}
	return nil
}

// Configuration is the admin mutable listing fee setup.
type Configuration struct {
	Owner        []byte     `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	ListingPrice *coin.Coin `protobuf:"bytes,2,opt,name=listing_price,json=listingPrice,proto3" json:"listing_price,omitempty"`
	// Collector receives listing fees. Owner is used when empty.
	Collector []byte `protobuf:"bytes,3,opt,name=collector,proto3" json:"collector,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

// GetOwner returns the admin address.
func (m *Configuration) GetOwner() volreg.Address {
	if m != nil {
		return volreg.Address(m.Owner)
	}
	return nil
}

// FeeCollector returns the address that receives listing fees.
func (m *Configuration) FeeCollector() volreg.Address {
	if len(m.Collector) != 0 {
		return volreg.Address(m.Collector)
	}
	return m.GetOwner()
}
