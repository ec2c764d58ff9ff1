package orm

import (
	"encoding/binary"

	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
)

// Sequence maintains a counter, and generates a
// series of keys. Each key is greater than the last,
// both NextInt() as well as bytes.Compare() on NextVal().
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter. Sequence is using following pattern
// to construct a key:
//    _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal increments the sequence and returns its state as 8 bytes.
func (s *Sequence) NextVal(db volreg.KVStore) ([]byte, error) {
	_, bz, err := s.increment(db)
	return bz, err
}

// NextInt increments the sequence and returns its state as int.
func (s *Sequence) NextInt(db volreg.KVStore) (uint64, error) {
	val, _, err := s.increment(db)
	return val, err
}

// Latest returns the recently returned value of the sequence. This method does
// not modify the sequence state. Zero means no value was ever returned.
func (s *Sequence) Latest(db volreg.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, err
	}
	return DecodeSequence(raw)
}

func (s *Sequence) increment(db volreg.KVStore) (uint64, []byte, error) {
	val, err := s.Latest(db)
	if err != nil {
		return 0, nil, err
	}
	val++
	raw := EncodeSequence(val)
	if err := db.Set(s.id, raw); err != nil {
		return 0, nil, err
	}
	return val, raw, nil
}

// DecodeSequence converts an 8 byte big endian key into its value. A nil
// key decodes to zero.
func DecodeSequence(bz []byte) (uint64, error) {
	if bz == nil {
		return 0, nil
	}
	if err := ValidateSequence(bz); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(bz), nil
}

// EncodeSequence returns the 8 byte big endian representation of val.
// Encoded values sort the same way as the numbers.
func EncodeSequence(val uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, val)
	return bz
}

// ValidateSequence returns an error if this is not an 8-byte
// sequence value
func ValidateSequence(id []byte) error {
	if len(id) == 0 {
		return errors.Wrap(errors.ErrInput, "sequence missing")
	}
	if len(id) != 8 {
		return errors.Wrap(errors.ErrInput, "sequence is invalid length (expect 8 bytes)")
	}
	return nil
}
