package merkle

import (
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

func hashOf(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestRoot(t *testing.T) {
	if !Root(nil).Equal(externalapi.NewZeroHash()) {
		t.Fatalf("empty root is not the zero hash")
	}

	single := hashOf(1)
	if !Root([]*externalapi.DomainHash{single}).Equal(single) {
		t.Fatalf("single leaf root is not the leaf itself")
	}

	pair := Root([]*externalapi.DomainHash{hashOf(1), hashOf(2)})
	if !pair.Equal(hashMerkleBranches(hashOf(1), hashOf(2))) {
		t.Fatalf("two leaf root mismatch")
	}

	three := Root([]*externalapi.DomainHash{hashOf(1), hashOf(2), hashOf(3)})
	expected := hashMerkleBranches(pair, hashMerkleBranches(hashOf(3), hashOf(3)))
	if !three.Equal(expected) {
		t.Fatalf("three leaf root mismatch. Want: %s, got: %s", expected, three)
	}

	swapped := Root([]*externalapi.DomainHash{hashOf(2), hashOf(1), hashOf(3)})
	if swapped.Equal(three) {
		t.Fatalf("root does not depend on leaf order")
	}
}
