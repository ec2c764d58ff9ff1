package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
)

// The wire format of the models in this file is declared in codec.proto.

// Set may contain Coin of many different currencies.
// It handles adding and subtracting sets of currencies.
type Set struct {
	Coins []*coin.Coin `protobuf:"bytes,1,rep,name=coins,proto3" json:"coins,omitempty"`
}

func (m *Set) Reset()         { *m = Set{} }
func (m *Set) String() string { return proto.CompactTextString(m) }
func (*Set) ProtoMessage()    {}

func (m *Set) GetCoins() []*coin.Coin {
	if m != nil {
		return m.Coins
	}
	return nil
}

// Configuration of the cash extension.
type Configuration struct {
	// Owner may issue new coins.
	Owner []byte `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	// Ticker is the currency all marketplace payments are made in.
	Ticker string `protobuf:"bytes,2,opt,name=ticker,proto3" json:"ticker,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

func (m *Configuration) GetOwner() volreg.Address {
	if m != nil {
		return volreg.Address(m.Owner)
	}
	return nil
}
