package coin

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volreg/volreg/errors"
)

func TestParseEther(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    Coin
		wantErr *errors.Error
	}{
		"whole":       {raw: "1", want: NewCoin(1, 0, "ETH")},
		"listing fee": {raw: "0.025", want: NewCoin(0, 25000000, "ETH")},
		"sale price":  {raw: "10.123456", want: NewCoin(10, 123456000, "ETH")},
		"leading dot": {raw: ".5", want: NewCoin(0, 500000000, "ETH")},
		"wei dust":    {raw: "1.000000000000000001", wantErr: errors.ErrInput},
		"too many":    {raw: "1.0000000000000000001", wantErr: errors.ErrInput},
		"negative":    {raw: "-1", wantErr: errors.ErrInput},
		"empty":       {raw: "", wantErr: errors.ErrInput},
		"huge":        {raw: "1000000000000000", wantErr: errors.ErrOverflow},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseEther(tc.raw, "ETH")
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "10.123456", FormatEther(NewCoin(10, 123456000, "ETH")))
	assert.Equal(t, "1.0", FormatEther(NewCoin(1, 0, "ETH")))
	assert.Equal(t, "0.0", FormatEther(Coin{}))
	assert.Equal(t, "-0.5", FormatEther(NewCoin(0, -500000000, "ETH")))
}

func TestWeiRoundTrip(t *testing.T) {
	c := NewCoin(10, 123456000, "ETH")
	wei, err := ToWei(c)
	require.NoError(t, err)
	assert.Equal(t, "10123456000000000000", wei.Dec())

	back, err := FromWei(wei, "ETH")
	require.NoError(t, err)
	assert.Equal(t, c, back)

	_, err = ToWei(c.Negative())
	assert.True(t, errors.ErrInput.Is(err))

	_, err = FromWei(uint256.NewInt(1), "ETH")
	assert.True(t, errors.ErrInput.Is(err))
}
