package gconf

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/store"
	"github.com/volreg/volreg/volregtest"
	"github.com/volreg/volreg/volregtest/assert"
)

type testConfig struct {
	Owner []byte     `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	Fee   *coin.Coin `protobuf:"bytes,2,opt,name=fee,proto3" json:"fee,omitempty"`
	Label string     `protobuf:"bytes,3,opt,name=label,proto3" json:"label,omitempty"`
}

func (m *testConfig) Reset()         { *m = testConfig{} }
func (m *testConfig) String() string { return proto.CompactTextString(m) }
func (*testConfig) ProtoMessage()    {}

func (m *testConfig) GetOwner() volreg.Address { return volreg.Address(m.Owner) }

func (m *testConfig) Validate() error {
	if err := volreg.Address(m.Owner).Validate(); err != nil {
		return errors.Field("Owner", err, "invalid owner")
	}
	if m.Fee != nil {
		if err := m.Fee.Validate(); err != nil {
			return errors.Field("Fee", err, "invalid fee")
		}
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	owner := volregtest.NewAddress()

	cases := map[string]struct {
		Conf        *testConfig
		WantSaveErr *errors.Error
	}{
		"full": {
			Conf: &testConfig{Owner: owner, Fee: coin.NewCoinp(2, 0, "ETH"), Label: "market"},
		},
		"nil coin": {
			Conf: &testConfig{Owner: owner},
		},
		"invalid owner cannot be saved": {
			Conf:        &testConfig{Owner: []byte("short")},
			WantSaveErr: errors.ErrInput,
		},
		"invalid coin cannot be saved": {
			Conf:        &testConfig{Owner: owner, Fee: &coin.Coin{Whole: 1}},
			WantSaveErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			err := Save(db, "test", tc.Conf)
			if tc.WantSaveErr != nil {
				assert.IsErr(t, tc.WantSaveErr, err)
				return
			}
			assert.Nil(t, err)

			var got testConfig
			assert.Nil(t, Load(db, "test", &got))
			assert.Equal(t, tc.Conf, &got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	var got testConfig
	err := Load(store.MemStore(), "nothing", &got)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestUpdate(t *testing.T) {
	owner := volregtest.NewAddress()
	db := store.MemStore()
	assert.Nil(t, Save(db, "test", &testConfig{Owner: owner, Label: "before"}))

	t.Run("stranger is rejected", func(t *testing.T) {
		var conf testConfig
		err := Update(db, "test", volregtest.NewAddress(), &conf, func() error {
			conf.Label = "hijacked"
			return nil
		})
		assert.IsErr(t, errors.ErrUnauthorized, err)
	})

	t.Run("failing change is not saved", func(t *testing.T) {
		var conf testConfig
		err := Update(db, "test", owner, &conf, func() error {
			conf.Label = "broken"
			return errors.ErrInput
		})
		assert.IsErr(t, errors.ErrInput, err)
	})

	t.Run("invalid result is not saved", func(t *testing.T) {
		var conf testConfig
		err := Update(db, "test", owner, &conf, func() error {
			conf.Fee = &coin.Coin{Whole: 3}
			return nil
		})
		assert.IsErr(t, errors.ErrCurrency, err)
	})

	var stored testConfig
	assert.Nil(t, Load(db, "test", &stored))
	assert.Equal(t, "before", stored.Label)

	var conf testConfig
	assert.Nil(t, Update(db, "test", owner, &conf, func() error {
		conf.Label = "after"
		return nil
	}))
	assert.Nil(t, Load(db, "test", &stored))
	assert.Equal(t, "after", stored.Label)
}
