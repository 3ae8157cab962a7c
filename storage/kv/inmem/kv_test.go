package inmemkv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novalearn/novalearn/core"
)

func TestStore(t *testing.T) {
	store := New()

	_, err := store.Get("missing")
	assert.Equal(t, core.ErrKeyNotFound, err)

	assert.NoError(t, store.Set("k", []byte("v1")))
	got, err := store.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// overwrite
	assert.NoError(t, store.Set("k", []byte("v2")))
	got, _ = store.Get("k")
	assert.Equal(t, []byte("v2"), got)

	assert.NoError(t, store.Delete("k"))
	_, err = store.Get("k")
	assert.Equal(t, core.ErrKeyNotFound, err)

	// deleting a missing key is not an error
	assert.NoError(t, store.Delete("missing"))
}

func TestStore_valueIsolation(t *testing.T) {
	store := New()

	value := []byte("original")
	_ = store.Set("k", value)
	value[0] = 'X'

	got, _ := store.Get("k")
	assert.Equal(t, "original", string(got), "stored value must be a copy")

	got[0] = 'Y'
	again, _ := store.Get("k")
	assert.Equal(t, "original", string(again), "returned value must be a copy")
}
