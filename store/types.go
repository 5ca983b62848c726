package store

import "github.com/iov-one/custodia"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = custodia.ReadOnlyKVStore
type KVStore = custodia.KVStore
type Iterator = custodia.Iterator
type Batch = custodia.Batch
type CacheableKVStore = custodia.CacheableKVStore
type KVCacheWrap = custodia.KVCacheWrap
type CommitKVStore = custodia.CommitKVStore
type CommitID = custodia.CommitID
