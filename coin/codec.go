package coin

import (
	"github.com/gogo/protobuf/proto"
)

// The wire format of the models in this file is declared in codec.proto.

// Coin can hold any amount between -1 billion and +1 billion at steps of
// 10^-9. It is a fixed-point decimal representation and uses integers to
// avoid rounding errors.
type Coin struct {
	// Whole coins, -10^15 < integer < 10^15
	Whole int64 `protobuf:"varint,1,opt,name=whole,proto3" json:"whole,omitempty"`
	// Billionth of coins. 0 <= abs(fractional) < 10^9
	// If fractional != 0, must have same sign as integer
	Fractional int64 `protobuf:"varint,2,opt,name=fractional,proto3" json:"fractional,omitempty"`
	// Ticker is 3-4 upper-case letters and
	// all Coins of the same currency can be combined
	Ticker string `protobuf:"bytes,3,opt,name=ticker,proto3" json:"ticker,omitempty"`
}

func (m *Coin) Reset()      { *m = Coin{} }
func (*Coin) ProtoMessage() {}

var _ proto.Message = (*Coin)(nil)
