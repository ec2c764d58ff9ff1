package app

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/coin"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/store/iavl"
	"github.com/volreg/volreg/volregtest"
	"github.com/volreg/volreg/volregtest/assert"
	"github.com/volreg/volreg/x/market"
)

func eth(whole, frac int64) coin.Coin {
	return coin.NewCoin(whole, frac, "ETH")
}

type fixture struct {
	*Engine
	t     testing.TB
	reg   *prometheus.Registry
	logs  *bytes.Buffer
	admin volreg.Address
}

func testGenesis(admin volreg.Address) Genesis {
	return Genesis{
		Admin:    admin,
		Currency: "ETH",
		Registry: RegistryGenesis{
			Name:        "VolReg NFT",
			Symbol:      "VRG",
			MintPrice:   eth(1, 0),
			BaseURI:     "ipfs://",
			ContractURI: "ipfs://contract.json",
		},
		Market: MarketGenesis{
			ListingPrice: eth(2, 0),
		},
	}
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		reg:   prometheus.NewRegistry(),
		logs:  &bytes.Buffer{},
		admin: volregtest.NewAddress(),
	}
	e, err := NewEngine(Config{
		Store:      iavl.NewMemCommitStore(),
		Logger:     log.NewTMLogger(log.NewSyncWriter(f.logs)),
		Registerer: f.reg,
	})
	require.NoError(t, err)
	require.NoError(t, e.InitGenesis(testGenesis(f.admin)))
	f.Engine = e
	return f
}

// account returns a new address holding the given amount.
func (f *fixture) account(amount coin.Coin) volreg.Address {
	f.t.Helper()
	addr := volregtest.NewAddress()
	if amount.IsPositive() {
		require.NoError(f.t, f.Issue(f.admin, addr, amount))
	}
	return addr
}

func (f *fixture) balance(addr volreg.Address) coin.Coin {
	f.t.Helper()
	b, err := f.Balance(addr)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) owner(id uint64) volreg.Address {
	f.t.Helper()
	owner, err := f.OwnerOf(id)
	require.NoError(f.t, err)
	return owner
}

func TestScenarioMintListSell(t *testing.T) {
	f := newFixture(t)
	price, err := coin.ParseEther("10.123456", "ETH")
	require.NoError(t, err)

	seller := f.account(eth(3, 0))
	buyer := f.account(price)

	id, err := f.Mint(seller, "1.json", true, eth(1, 0))
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.Equal(t, seller, f.owner(id))
	supply, err := f.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(1), supply)

	itemID, err := f.CreateListing(seller, f.RegistryRef(), id, price, eth(2, 0))
	require.NoError(t, err)
	require.Equal(t, uint64(1), itemID)
	require.Equal(t, f.EscrowAddress(), f.owner(id))

	active, err := f.FetchActiveListings()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.False(t, active[0].Sold)
	require.Equal(t, seller, active[0].GetSeller())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.activeListings))

	sold, err := f.ExecuteSale(buyer, f.RegistryRef(), id, price)
	require.NoError(t, err)
	require.Equal(t, itemID, sold)
	require.Equal(t, buyer, f.owner(id))

	owned, err := f.FetchItemsOwnedBy(buyer)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.True(t, owned[0].Sold)
	require.Equal(t, "10.123456", coin.FormatEther(*owned[0].Price))

	active, err = f.FetchActiveListings()
	require.NoError(t, err)
	require.Empty(t, active)

	require.Equal(t, price, f.balance(seller))
	require.Equal(t, eth(0, 0), f.balance(buyer))
	// mint price and listing fee
	require.Equal(t, eth(3, 0), f.balance(f.admin))

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.minted))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.sales))
	require.Equal(t, 0.0, testutil.ToFloat64(f.metrics.activeListings))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.operations.WithLabelValues("execute_sale", "ok")))
	require.Contains(t, f.logs.String(), "op=execute_sale")
}

func TestScenarioRelistEscrowedToken(t *testing.T) {
	f := newFixture(t)
	seller := f.account(eth(5, 0))

	id, err := f.Mint(seller, "1.json", true, eth(1, 0))
	require.NoError(t, err)
	_, err = f.CreateListing(seller, f.RegistryRef(), id, eth(1, 0), eth(2, 0))
	require.NoError(t, err)

	before := f.LastCommit()
	_, err = f.CreateListing(seller, f.RegistryRef(), id, eth(1, 0), eth(2, 0))
	assert.IsErr(t, errors.ErrOwnership, err)

	require.Equal(t, before, f.LastCommit())
	require.Equal(t, eth(2, 0), f.balance(seller))
	active, err := f.FetchActiveListings()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.operations.WithLabelValues("create_listing", "ownership")))
}

func TestExecuteSaleWrongPayment(t *testing.T) {
	f := newFixture(t)
	seller := f.account(eth(2, 0))
	buyer := f.account(eth(10, 0))

	id, err := f.Mint(seller, "1.json", false, coin.Coin{})
	require.NoError(t, err)
	itemID, err := f.CreateListing(seller, f.RegistryRef(), id, eth(5, 0), eth(2, 0))
	require.NoError(t, err)

	for _, payment := range []coin.Coin{eth(4, 999999999), eth(5, 1), eth(0, 0)} {
		_, err := f.ExecuteSale(buyer, f.RegistryRef(), id, payment)
		assert.IsErr(t, errors.ErrPayment, err)
	}

	require.Equal(t, f.EscrowAddress(), f.owner(id))
	item, err := f.Item(itemID)
	require.NoError(t, err)
	require.False(t, item.Sold)
	require.Equal(t, eth(10, 0), f.balance(buyer))
	require.Equal(t, eth(0, 0), f.balance(seller))
}

func TestListingRequirements(t *testing.T) {
	f := newFixture(t)
	seller := f.account(eth(10, 0))
	id, err := f.Mint(seller, "1.json", false, coin.Coin{})
	require.NoError(t, err)

	cases := map[string]struct {
		caller   volreg.Address
		tokenRef volreg.Address
		price    coin.Coin
		fee      coin.Coin
		wantErr  *errors.Error
	}{
		"not the owner": {
			caller:   f.account(eth(2, 0)),
			tokenRef: f.RegistryRef(),
			price:    eth(1, 0),
			fee:      eth(2, 0),
			wantErr:  errors.ErrOwnership,
		},
		"not the owner at zero price": {
			caller:   f.account(eth(2, 0)),
			tokenRef: f.RegistryRef(),
			price:    eth(0, 0),
			fee:      eth(2, 0),
			wantErr:  errors.ErrOwnership,
		},
		"not the owner in another currency": {
			caller:   f.account(eth(2, 0)),
			tokenRef: f.RegistryRef(),
			price:    coin.NewCoin(1, 0, "BTC"),
			fee:      eth(2, 0),
			wantErr:  errors.ErrOwnership,
		},
		"fee mismatch": {
			caller:   seller,
			tokenRef: f.RegistryRef(),
			price:    eth(1, 0),
			fee:      eth(1, 0),
			wantErr:  errors.ErrPayment,
		},
		"zero price": {
			caller:   seller,
			tokenRef: f.RegistryRef(),
			price:    eth(0, 0),
			fee:      eth(2, 0),
			wantErr:  errors.ErrInput,
		},
		"price in another currency": {
			caller:   seller,
			tokenRef: f.RegistryRef(),
			price:    coin.NewCoin(1, 0, "IOV"),
			fee:      eth(2, 0),
			wantErr:  errors.ErrCurrency,
		},
		"unknown registry": {
			caller:   seller,
			tokenRef: volregtest.NewAddress(),
			price:    eth(1, 0),
			fee:      eth(2, 0),
			wantErr:  errors.ErrNotFound,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			before := f.LastCommit()
			_, err := f.CreateListing(tc.caller, tc.tokenRef, id, tc.price, tc.fee)
			assert.IsErr(t, tc.wantErr, err)
			require.Equal(t, before, f.LastCommit())
			require.Equal(t, seller, f.owner(id))
		})
	}
	require.Equal(t, eth(10, 0), f.balance(seller))
}

func TestAdminOperations(t *testing.T) {
	f := newFixture(t)
	stranger := volregtest.NewAddress()

	assert.IsErr(t, errors.ErrUnauthorized, f.SetPrice(stranger, eth(2, 0)))
	assert.IsErr(t, errors.ErrUnauthorized, f.SetListingPrice(stranger, eth(1, 0)))
	assert.IsErr(t, errors.ErrUnauthorized, f.SetPrice(stranger, coin.NewCoin(5, 0, "BTC")))
	assert.IsErr(t, errors.ErrUnauthorized, f.SetListingPrice(stranger, coin.NewCoin(5, 0, "BTC")))
	assert.IsErr(t, errors.ErrUnauthorized, f.SetBaseURI(stranger, "https://evil/"))
	assert.IsErr(t, errors.ErrUnauthorized, f.SetContractURI(stranger, "https://evil"))
	assert.IsErr(t, errors.ErrUnauthorized, f.Issue(stranger, stranger, eth(1, 0)))
	assert.IsErr(t, errors.ErrCurrency, f.SetPrice(f.admin, coin.NewCoin(2, 0, "IOV")))
	assert.IsErr(t, errors.ErrCurrency, f.SetListingPrice(f.admin, coin.NewCoin(2, 0, "IOV")))
	assert.IsErr(t, errors.ErrInput, f.SetListingPrice(f.admin, eth(-1, 0)))

	require.NoError(t, f.SetPrice(f.admin, eth(0, 500000000)))
	require.NoError(t, f.SetListingPrice(f.admin, eth(0, 25000000)))
	require.NoError(t, f.SetBaseURI(f.admin, "https://meta/"))
	require.NoError(t, f.SetContractURI(f.admin, "https://meta/contract.json"))

	price, err := f.Price()
	require.NoError(t, err)
	require.Equal(t, eth(0, 500000000), price)
	listing, err := f.ListingPrice()
	require.NoError(t, err)
	require.Equal(t, eth(0, 25000000), listing)
	uri, err := f.ContractURI()
	require.NoError(t, err)
	require.Equal(t, "https://meta/contract.json", uri)
	name, err := f.Name()
	require.NoError(t, err)
	require.Equal(t, "VolReg NFT", name)
	symbol, err := f.Symbol()
	require.NoError(t, err)
	require.Equal(t, "VRG", symbol)

	owner := f.account(eth(0, 500000000))
	id, err := f.Mint(owner, "7.json", true, eth(0, 500000000))
	require.NoError(t, err)
	tokenURI, err := f.TokenURI(id)
	require.NoError(t, err)
	require.Equal(t, "https://meta/7.json", tokenURI)
}

func TestVisibility(t *testing.T) {
	f := newFixture(t)
	owner := f.account(eth(1, 0))
	id, err := f.Mint(owner, "1.json", false, coin.Coin{})
	require.NoError(t, err)

	public, err := f.IsPublic(id)
	require.NoError(t, err)
	require.False(t, public)

	assert.IsErr(t, errors.ErrUnauthorized, f.SetVisibility(volregtest.NewAddress(), id, true, coin.Coin{}))
	require.NoError(t, f.SetVisibility(owner, id, true, eth(0, 100000000)))

	public, err = f.IsPublic(id)
	require.NoError(t, err)
	require.True(t, public)
	require.Equal(t, eth(0, 100000000), f.balance(f.admin))

	_, err = f.IsPublic(id + 1)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestTransferToken(t *testing.T) {
	f := newFixture(t)
	alice := f.account(eth(2, 0))
	bob := volregtest.NewAddress()
	id, err := f.Mint(alice, "1.json", false, coin.Coin{})
	require.NoError(t, err)

	assert.IsErr(t, errors.ErrOwnership, f.TransferToken(bob, bob, id))
	assert.IsErr(t, errors.ErrUnauthorized, f.TransferToken(f.EscrowAddress(), bob, id))
	assert.IsErr(t, errors.ErrUnauthorized, f.TransferToken(alice, f.EscrowAddress(), id))
	assert.IsErr(t, errors.ErrNotFound, f.TransferToken(alice, bob, id+1))

	require.NoError(t, f.TransferToken(alice, bob, id))
	require.Equal(t, bob, f.owner(id))
	n, err := f.BalanceOf(bob)
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
	ids, err := f.TokensOf(alice)
	require.NoError(t, err)
	require.Empty(t, ids)

	// a listed token can only leave escrow through a sale
	bobFunds := f.account(eth(2, 0))
	require.NoError(t, f.TransferToken(bob, bobFunds, id))
	_, err = f.CreateListing(bobFunds, f.RegistryRef(), id, eth(1, 0), eth(2, 0))
	require.NoError(t, err)
	assert.IsErr(t, errors.ErrOwnership, f.TransferToken(bobFunds, alice, id))
}

func TestResellAfterSale(t *testing.T) {
	f := newFixture(t)
	seller := f.account(eth(2, 0))
	buyer := f.account(eth(3, 0))

	id, err := f.Mint(seller, "1.json", false, coin.Coin{})
	require.NoError(t, err)
	first, err := f.CreateListing(seller, f.RegistryRef(), id, eth(1, 0), eth(2, 0))
	require.NoError(t, err)
	_, err = f.ExecuteSale(buyer, f.RegistryRef(), id, eth(1, 0))
	require.NoError(t, err)

	second, err := f.CreateListing(buyer, f.RegistryRef(), id, eth(4, 0), eth(2, 0))
	require.NoError(t, err)
	require.Equal(t, first+1, second)

	listed, err := f.ItemsListedBy(seller)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, first, listed[0].ID)

	active, err := f.FetchActiveListings()
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, second, active[0].ID)

	// the escrow holds the relisted token
	escrowed, err := f.FetchItemsOwnedBy(market.EscrowAddress)
	require.NoError(t, err)
	require.Len(t, escrowed, 1)
	require.Equal(t, second, escrowed[0].ID)
}

func TestMintPayments(t *testing.T) {
	f := newFixture(t)
	minter := f.account(eth(5, 0))

	_, err := f.Mint(minter, "x.json", true, eth(0, 999999999))
	assert.IsErr(t, errors.ErrPayment, err)
	_, err = f.Mint(minter, "x.json", true, eth(2, 0))
	assert.IsErr(t, errors.ErrPayment, err)
	_, err = f.Mint(minter, "x.json", false, eth(1, 0))
	assert.IsErr(t, errors.ErrPayment, err)

	supply, err := f.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(0), supply)
	require.Equal(t, eth(5, 0), f.balance(minter))
	require.Equal(t, 0.0, testutil.ToFloat64(f.metrics.minted))
}

func TestConcurrentMints(t *testing.T) {
	f := newFixture(t)
	const workers = 8
	const perWorker = 5

	owners := make([]volreg.Address, workers)
	for i := range owners {
		owners[i] = volregtest.NewAddress()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint64]bool)
	)
	for _, owner := range owners {
		wg.Add(1)
		go func(owner volreg.Address) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := f.Mint(owner, fmt.Sprintf("%d.json", i), false, coin.Coin{})
				if err != nil {
					t.Errorf("mint: %s", err)
					return
				}
				mu.Lock()
				seen[id] = true
				mu.Unlock()
				if _, err := f.FetchActiveListings(); err != nil {
					t.Errorf("read: %s", err)
				}
			}
		}(owner)
	}
	wg.Wait()

	supply, err := f.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(workers*perWorker), supply)
	require.Len(t, seen, workers*perWorker)
	for id := uint64(1); id <= supply; id++ {
		require.True(t, seen[id], "missing id %d", id)
	}
	for _, owner := range owners {
		n, err := f.BalanceOf(owner)
		require.NoError(t, err)
		require.Equal(t, uint64(perWorker), n)
	}
}

func TestGenesisOnce(t *testing.T) {
	f := newFixture(t)
	assert.IsErr(t, errors.ErrState, f.InitGenesis(testGenesis(f.admin)))
}

func TestInvalidGenesis(t *testing.T) {
	admin := volregtest.NewAddress()

	cases := map[string]struct {
		mutate  func(*Genesis)
		wantErr *errors.Error
	}{
		"mint price currency": {
			mutate:  func(g *Genesis) { g.Registry.MintPrice = coin.NewCoin(1, 0, "IOV") },
			wantErr: errors.ErrCurrency,
		},
		"balance currency": {
			mutate: func(g *Genesis) {
				g.Balances = []Balance{{Address: volregtest.NewAddress(), Amount: coin.NewCoin(1, 0, "IOV")}}
			},
			wantErr: errors.ErrCurrency,
		},
		"missing admin": {
			mutate:  func(g *Genesis) { g.Admin = nil },
			wantErr: errors.ErrInput,
		},
		"invalid ticker": {
			mutate: func(g *Genesis) {
				g.Currency = "eth"
				g.Registry.MintPrice = coin.Coin{}
				g.Market.ListingPrice = coin.Coin{}
			},
			wantErr: errors.ErrCurrency,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e, err := NewEngine(Config{Store: iavl.NewMemCommitStore()})
			require.NoError(t, err)
			gen := testGenesis(admin)
			tc.mutate(&gen)
			assert.IsErr(t, tc.wantErr, e.InitGenesis(gen))
			require.Equal(t, int64(0), e.LastCommit().Version)
		})
	}
}

func TestGenesisZeroPrices(t *testing.T) {
	e, err := NewEngine(Config{Store: iavl.NewMemCommitStore()})
	require.NoError(t, err)
	gen := testGenesis(volregtest.NewAddress())
	gen.Registry.MintPrice = coin.Coin{}
	gen.Market.ListingPrice = coin.Coin{}
	require.NoError(t, e.InitGenesis(gen))

	price, err := e.ListingPrice()
	require.NoError(t, err)
	require.Equal(t, eth(0, 0), price)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	admin := volregtest.NewAddress()
	owner := volregtest.NewAddress()

	db, err := iavl.NewCommitStore(dir, "volreg")
	require.NoError(t, err)
	e, err := NewEngine(Config{Store: db})
	require.NoError(t, err)
	require.NoError(t, e.InitGenesis(testGenesis(admin)))
	id, err := e.Mint(owner, "1.json", false, coin.Coin{})
	require.NoError(t, err)
	last := e.LastCommit()
	require.Equal(t, int64(2), last.Version)
	require.NoError(t, db.Close())

	db, err = iavl.NewCommitStore(dir, "volreg")
	require.NoError(t, err)
	defer db.Close()
	e, err = NewEngine(Config{Store: db})
	require.NoError(t, err)
	require.Equal(t, last, e.LastCommit())

	got, err := e.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, owner, got)
	name, err := e.Name()
	require.NoError(t, err)
	require.Equal(t, "VolReg NFT", name)
}

func TestPanicRecovery(t *testing.T) {
	f := newFixture(t)
	before := f.LastCommit()

	err := f.mutate("explode", func(db volreg.KVStore) error {
		if err := db.Set([]byte("garbage"), []byte("value")); err != nil {
			return err
		}
		panic("boom")
	})
	assert.IsErr(t, errors.ErrPanic, err)
	require.Equal(t, before, f.LastCommit())
	require.True(t, strings.Contains(err.Error(), "boom"))

	err = f.query(func(db volreg.ReadOnlyKVStore) error {
		val, err := db.Get([]byte("garbage"))
		require.Nil(t, val)
		return err
	})
	require.NoError(t, err)
}

func TestNewEngineRequiresStore(t *testing.T) {
	_, err := NewEngine(Config{})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestMetricsRegisteredOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewEngine(Config{Store: iavl.NewMemCommitStore(), Registerer: reg})
	require.NoError(t, err)
	_, err = NewEngine(Config{Store: iavl.NewMemCommitStore(), Registerer: reg})
	assert.IsErr(t, errors.ErrState, err)
}
