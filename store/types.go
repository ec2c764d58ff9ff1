package store

import "github.com/volreg/volreg"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = volreg.ReadOnlyKVStore
	SetDeleter       = volreg.SetDeleter
	KVStore          = volreg.KVStore
	Batch            = volreg.Batch
	Iterator         = volreg.Iterator
	CacheableKVStore = volreg.CacheableKVStore
	KVCacheWrap      = volreg.KVCacheWrap
	CommitKVStore    = volreg.CommitKVStore
	CommitID         = volreg.CommitID
)
