package core

import "errors"

// ErrKeyNotFound is returned by KVStore.Get for an absent key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is a string-keyed blob store. It is the only persistence primitive
// the domain layer knows about; backends live under storage/kv.
type KVStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
