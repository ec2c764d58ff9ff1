package app

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/x/cash"
	"github.com/volreg/volreg/x/market"
	"github.com/volreg/volreg/x/registry"
)

// Config holds the dependencies of an Engine.
type Config struct {
	// Store is required. Its latest version must already be loaded.
	Store volreg.CommitKVStore
	// Logger defaults to volreg.DefaultLogger.
	Logger log.Logger
	// Registerer receives the engine metrics. When nil the metrics are
	// kept in a private registry.
	Registerer prometheus.Registerer
}

// Engine serializes all marketplace operations over a commit store.
type Engine struct {
	mu      sync.RWMutex
	store   volreg.CommitKVStore
	logger  log.Logger
	metrics *Metrics
	last    volreg.CommitID

	cash   cash.BaseController
	tokens *registry.Controller
	market *market.Controller
}

// NewEngine returns an engine operating on the latest version of the
// configured store.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.Wrap(errors.ErrInput, "store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = volreg.DefaultLogger
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}
	metrics, err := NewMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}
	last, err := cfg.Store.LatestVersion()
	if err != nil {
		return nil, errors.Wrap(err, "latest version")
	}

	cashCtrl := cash.NewController(cash.NewBucket())
	tokens := registry.NewController(registry.DefaultRef, cashCtrl)
	e := &Engine{
		store:   cfg.Store,
		logger:  cfg.Logger.With("module", "engine"),
		metrics: metrics,
		last:    last,
		cash:    cashCtrl,
		tokens:  tokens,
		market:  market.NewController(cashCtrl, tokens),
	}
	if err := e.query(e.refreshGauges); err != nil {
		return nil, err
	}
	return e, nil
}

// LastCommit returns the version and hash of the last committed state.
func (e *Engine) LastCommit() volreg.CommitID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// RegistryRef is the token reference of the registry used in listings.
func (e *Engine) RegistryRef() volreg.Address {
	return e.tokens.Ref()
}

// EscrowAddress is where listed tokens are held.
func (e *Engine) EscrowAddress() volreg.Address {
	return market.EscrowAddress
}

// mutate runs fn in a cache wrap of the committed state and commits the
// result only if fn succeeded. Log key values are attached to the commit
// message.
func (e *Engine) mutate(op string, fn func(db volreg.KVStore) error, keyvals ...interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	timer := prometheus.NewTimer(e.metrics.duration.WithLabelValues(op))
	defer timer.ObserveDuration()

	cache := e.store.CacheWrap()
	if err := run(cache, fn); err != nil {
		cache.Discard()
		e.metrics.observe(op, err)
		e.logger.Debug("operation rejected", append([]interface{}{"op", op, "err", err}, keyvals...)...)
		return err
	}

	id, err := e.commit(cache)
	if err != nil {
		e.metrics.observe(op, err)
		e.logger.Error("commit failed", "op", op, "err", err)
		return err
	}
	e.last = id
	e.metrics.observe(op, nil)
	e.logger.Info("committed", append([]interface{}{"op", op, "version", id.Version}, keyvals...)...)

	state := e.store.CacheWrap()
	defer state.Discard()
	if err := e.refreshGauges(state); err != nil {
		e.logger.Error("cannot refresh gauges", "err", err)
	}
	return nil
}

// query runs fn against the committed state.
func (e *Engine) query(fn func(db volreg.ReadOnlyKVStore) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cache := e.store.CacheWrap()
	defer cache.Discard()
	return run(cache, func(db volreg.KVStore) error { return fn(db) })
}

// refreshGauges sets the gauges that mirror state, after start or a commit.
func (e *Engine) refreshGauges(db volreg.ReadOnlyKVStore) error {
	n, err := e.market.ActiveCount(db)
	if err != nil {
		return err
	}
	e.metrics.activeListings.Set(float64(n))
	return nil
}
