package registry

import (
	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
)

// The wire format of the models in this file is declared in codec.proto.

// Token is a unique registered asset with exactly one owner.
type Token struct {
	// ID is assigned on mint, starts at 1 and is never reused.
	ID uint64 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	// Owner is the address of the current holder.
	Owner []byte `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
	// URIFragment is appended to the base URI. It cannot be changed after mint.
	URIFragment string `protobuf:"bytes,3,opt,name=uri_fragment,json=uriFragment,proto3" json:"uri_fragment,omitempty"`
	// Public tokens are visible on the marketplace.
	Public bool `protobuf:"varint,4,opt,name=public,proto3" json:"public,omitempty"`
}

func (m *Token) Reset()         { *m = Token{} }
func (m *Token) String() string { return proto.CompactTextString(m) }
func (*Token) ProtoMessage()    {}

// GetOwner returns the owner address.
func (m *Token) GetOwner() volreg.Address {
	if m != nil {
		return volreg.Address(m.Owner)
	}
	return nil
}

// Configuration is the registry wide, admin mutable state.
type Configuration struct {
	// Owner is the admin, fixed at genesis.
	Owner []byte `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	// Market is the identity allowed to move tokens on behalf of their
	// owners, and the holder of escrowed tokens.
	Market      []byte     `protobuf:"bytes,2,opt,name=market,proto3" json:"market,omitempty"`
	MintPrice   *coin.Coin `protobuf:"bytes,3,opt,name=mint_price,json=mintPrice,proto3" json:"mint_price,omitempty"`
	BaseURI     string     `protobuf:"bytes,4,opt,name=base_uri,json=baseUri,proto3" json:"base_uri,omitempty"`
	ContractURI string     `protobuf:"bytes,5,opt,name=contract_uri,json=contractUri,proto3" json:"contract_uri,omitempty"`
	Name        string     `protobuf:"bytes,6,opt,name=name,proto3" json:"name,omitempty"`
	Symbol      string     `protobuf:"bytes,7,opt,name=symbol,proto3" json:"symbol,omitempty"`
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

// GetMarket returns the market identity.
func (m *Configuration) GetMarket() volreg.Address {
	if m != nil {
		return volreg.Address(m.Market)
	}
	return nil
}
