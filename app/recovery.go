package app

import (
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
)

// run calls fn and turns a panic into an ErrPanic error, so that the
// caller can discard the cache wrap as for any other failure.
func run(db volreg.KVStore, fn func(db volreg.KVStore) error) (err error) {
	defer errors.Recover(&err)
	return fn(db)
}
