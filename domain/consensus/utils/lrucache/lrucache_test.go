package lrucache

import (
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

func TestLRUCacheEvictsOverCapacity(t *testing.T) {
	cache := New(2)
	for i := byte(0); i < 3; i++ {
		cache.Add(externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{i}), i)
	}
	if len(cache.cache) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(cache.cache))
	}

	key := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{9})
	cache.Add(key, "value")
	value, ok := cache.Get(key)
	if !ok || value.(string) != "value" {
		t.Fatalf("expected the last added entry to be present")
	}
	cache.Remove(key)
	if cache.Has(key) {
		t.Fatalf("removed entry is still present")
	}
}
