package gconf

import (
	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
)

// ReadStore is a subset of volreg.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of volreg.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Configuration is a protobuf message that validates itself before it is
// written.
type Configuration interface {
	proto.Message
	Validate() error
}

// OwnedConfig is a configuration that can only be changed by its owner.
type OwnedConfig interface {
	Configuration
	GetOwner() volreg.Address
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save will Validate the object, before writing it to a special "configuration"
// singleton for that package name.
func Save(db Store, pkg string, src Configuration) error {
	key := key(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := proto.Marshal(src)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "marshal: key %q: %s", key, err)
	}
	return db.Set(key, raw)
}

// Load reads the configuration singleton of the given package into dst.
// ErrNotFound is returned if the configuration was never saved.
func Load(db ReadStore, pkg string, dst Configuration) error {
	key := key(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := proto.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "unmarshal: key %q: %s", key, err)
	}
	return nil
}

// Update loads the configuration of the given package, ensures that the
// caller is its owner, applies the change and saves the result. Nothing is
// written if any step fails.
func Update(db Store, pkg string, caller volreg.Address, conf OwnedConfig, change func() error) error {
	if err := Load(db, pkg, conf); err != nil {
		return errors.Wrap(err, "load current configuration")
	}
	owner := conf.GetOwner()
	if owner == nil {
		return errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
	}
	if !owner.Equals(caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the %s admin", caller, pkg)
	}
	if err := change(); err != nil {
		return err
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrap(err, "cannot save updated config")
	}
	return nil
}
