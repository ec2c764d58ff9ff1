package volreg_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexademical address printing", t, func() {
		addr := volreg.NewCondition("sigs", "ed25519", []byte("ABCD123456LHB")).Address()

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
		So(len(addr), ShouldEqual, volreg.AddressLength)
	})

	Convey("test hexademical condition printing", t, func() {
		cond := volreg.NewCondition("market", "escrow", []byte("listings"))

		So(cond.String(), ShouldEqual, fmt.Sprintf("market/escrow/%X", []byte("listings")))
		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", []byte(cond)))
	})

	Convey("nil address has a readable form", t, func() {
		var addr volreg.Address
		So(addr.String(), ShouldEqual, "(nil)")
	})
}

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond    volreg.Condition
		wantExt string
		wantTyp string
		wantErr *errors.Error
	}{
		"valid": {
			cond:    volreg.NewCondition("market", "escrow", []byte{1, 2}),
			wantExt: "market",
			wantTyp: "escrow",
		},
		"data with a newline": {
			cond:    volreg.NewCondition("sigs", "ed25519", []byte("a\nb")),
			wantExt: "sigs",
			wantTyp: "ed25519",
		},
		"too short extension": {
			cond:    volreg.NewCondition("ab", "escrow", []byte{1}),
			wantErr: errors.ErrInput,
		},
		"missing data": {
			cond:    volreg.Condition("market/escrow/"),
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ext, typ, _, err := tc.cond.Parse()
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				require.True(t, tc.wantErr.Is(tc.cond.Validate()))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantTyp, typ)
			assert.NoError(t, tc.cond.Validate())
		})
	}
}

func TestParseAddress(t *testing.T) {
	cond := volreg.NewCondition("foo", "bar", []byte("conditiondata"))
	addr := cond.Address()

	cases := map[string]struct {
		enc      string
		wantErr  *errors.Error
		wantAddr volreg.Address
	}{
		"default decoding": {
			enc:      addr.String(),
			wantAddr: addr,
		},
		"hex decoding": {
			enc:      "hex:" + addr.String(),
			wantAddr: addr,
		},
		"cond decoding": {
			enc:      "cond:foo/bar/636f6e646974696f6e64617461",
			wantAddr: addr,
		},
		"bech32 decoding": {
			enc:      "bech32:" + addr.Bech32(),
			wantAddr: addr,
		},
		"bech32 without prefix": {
			enc:      addr.Bech32(),
			wantAddr: addr,
		},
		"invalid condition format": {
			enc:     "cond:foo/636f6e646974696f6e64617461",
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			enc:     "cond:foo/bar/zzzzz",
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			enc:     "foobar:xxx",
			wantErr: errors.ErrType,
		},
		"wrong length": {
			enc:     "ABCD",
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := volreg.ParseAddress(tc.enc)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAddr, got)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := volreg.NewCondition("foo", "bar", []byte("x")).Address()

	raw, err := json.Marshal(struct{ Owner volreg.Address }{addr})
	require.NoError(t, err)

	var got struct{ Owner volreg.Address }
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, addr, got.Owner)
}
