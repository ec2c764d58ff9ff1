package orm

import (
	"github.com/gogo/protobuf/proto"
)

// The wire format of the models in this file is declared in codec.proto.

// MultiRef contains a list of references to pks, sorted ascending.
type MultiRef struct {
	Refs [][]byte `protobuf:"bytes,1,rep,name=refs,proto3" json:"refs,omitempty"`
}

func (m *MultiRef) Reset()         { *m = MultiRef{} }
func (m *MultiRef) String() string { return proto.CompactTextString(m) }
func (*MultiRef) ProtoMessage()    {}

func (m *MultiRef) GetRefs() [][]byte {
	if m != nil {
		return m.Refs
	}
	return nil
}
