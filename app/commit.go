package app

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
)

// commit writes the cache wrap into the store and persists a new version.
// When either step fails the store is reloaded from its latest version so
// no partial write survives.
func (e *Engine) commit(cache volreg.KVCacheWrap) (volreg.CommitID, error) {
	if err := cache.Write(); err != nil {
		return volreg.CommitID{}, e.rollback(errors.Wrap(err, "write cache"))
	}
	id, err := e.store.Commit()
	if err != nil {
		return volreg.CommitID{}, e.rollback(errors.Wrap(err, "commit"))
	}
	return id, nil
}

func (e *Engine) rollback(cause error) error {
	if err := e.store.LoadLatestVersion(); err != nil {
		return errors.Append(cause, errors.Wrap(err, "rollback"))
	}
	return cause
}
