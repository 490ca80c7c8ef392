package deposittree

import (
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

func leaf(b byte) externalapi.DomainHash {
	var leafBytes [externalapi.DomainHashSize]byte
	leafBytes[0] = b
	leafBytes[31] = b
	return *externalapi.NewDomainHashFromByteArray(&leafBytes)
}

func TestComputeRootEmpty(t *testing.T) {
	for _, depth := range []uint{0, 1, 4, DepositContractTreeDepth} {
		root, err := ComputeRoot(nil, depth)
		if err != nil {
			t.Fatalf("ComputeRoot: %+v", err)
		}
		zeroHash, err := ZeroHash(depth)
		if err != nil {
			t.Fatalf("ZeroHash: %+v", err)
		}
		if !root.Equal(zeroHash) {
			t.Fatalf("depth %d: expected the zero root %s, got %s", depth, zeroHash, root)
		}
	}
	zeroLeaf, err := ZeroHash(0)
	if err != nil {
		t.Fatalf("ZeroHash: %+v", err)
	}
	if !zeroLeaf.Equal(externalapi.NewZeroHash()) {
		t.Fatalf("the zero leaf is not the all-zero digest")
	}
}

func TestComputeRootMatchesFullTree(t *testing.T) {
	// A partially filled tree equals the full tree padded with zero leaves
	leaves := []externalapi.DomainHash{leaf(1), leaf(2), leaf(3)}
	padded := append(append([]externalapi.DomainHash(nil), leaves...),
		make([]externalapi.DomainHash, 5)...)

	root, err := ComputeRoot(leaves, 3)
	if err != nil {
		t.Fatalf("ComputeRoot: %+v", err)
	}
	paddedRoot, err := ComputeRoot(padded, 3)
	if err != nil {
		t.Fatalf("ComputeRoot: %+v", err)
	}
	if !root.Equal(paddedRoot) {
		t.Fatalf("expected %s, got %s", paddedRoot, root)
	}

	left := hashPair(hashPair(&padded[0], &padded[1]), hashPair(&padded[2], &padded[3]))
	right := hashPair(hashPair(&padded[4], &padded[5]), hashPair(&padded[6], &padded[7]))
	if !root.Equal(hashPair(left, right)) {
		t.Fatalf("root %s does not match the pairwise hashing of the leaves", root)
	}

	_, err = ComputeRoot(make([]externalapi.DomainHash, 9), 3)
	if !errors.Is(err, ErrTooManyLeaves) {
		t.Fatalf("expected ErrTooManyLeaves, got %+v", err)
	}
}

func TestProofs(t *testing.T) {
	const depth = 5
	leaves := make([]externalapi.DomainHash, 11)
	for i := range leaves {
		leaves[i] = leaf(byte(i + 1))
	}
	tree, err := New(leaves, depth)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	root := tree.RootWithLength()
	if !root.Equal(MixInLength(tree.Root(), 11)) {
		t.Fatalf("RootWithLength does not mix in the leaf count")
	}

	for index := range leaves {
		proof, err := tree.Proof(uint64(index))
		if err != nil {
			t.Fatalf("Proof: %+v", err)
		}
		if len(proof) != depth+1 {
			t.Fatalf("expected %d proof entries, got %d", depth+1, len(proof))
		}
		if !VerifyProof(&leaves[index], proof, depth, uint64(index), root) {
			t.Fatalf("the proof of leaf %d does not verify", index)
		}
		if index > 0 && VerifyProof(&leaves[index], proof, depth, uint64(index-1), root) {
			t.Fatalf("the proof of leaf %d verifies at index %d", index, index-1)
		}
		if VerifyProof(&leaves[index], proof[:depth], depth, uint64(index), root) {
			t.Fatalf("a truncated proof verifies")
		}
	}

	// The same leaves under a different count give a different root
	shorter, err := New(leaves[:10], depth)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	proof, err := shorter.Proof(3)
	if err != nil {
		t.Fatalf("Proof: %+v", err)
	}
	if VerifyProof(&leaves[3], proof, depth, 3, root) {
		t.Fatalf("a proof against 10 leaves verifies against the root of 11 leaves")
	}

	_, err = tree.Proof(11)
	if !errors.Is(err, ErrLeafIndexOutOfRange) {
		t.Fatalf("expected ErrLeafIndexOutOfRange, got %+v", err)
	}
}

func TestVerifyProofDetectsEveryBitFlip(t *testing.T) {
	const depth = 4
	leaves := []externalapi.DomainHash{leaf(1), leaf(2), leaf(3)}
	tree, err := New(leaves, depth)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	proof, err := tree.Proof(2)
	if err != nil {
		t.Fatalf("Proof: %+v", err)
	}
	root := tree.RootWithLength()

	for entry := range proof {
		for bit := 0; bit < externalapi.DomainHashSize*8; bit += 37 {
			corrupted := proof.Clone()
			entryBytes := corrupted[entry].ByteArray()
			entryBytes[bit/8] ^= 1 << (bit % 8)
			corrupted[entry] = *externalapi.NewDomainHashFromByteArray(entryBytes)

			if VerifyProof(&leaves[2], corrupted, depth, 2, root) {
				t.Fatalf("flipping bit %d of proof entry %d went undetected", bit, entry)
			}
		}
	}
}

func TestNewProof(t *testing.T) {
	_, err := NewProof(make([]externalapi.DomainHash, 4), 4)
	if !errors.Is(err, ruleerrors.ErrInvalidProofLength) {
		t.Fatalf("expected ErrInvalidProofLength, got %+v", err)
	}
	kind, _ := ruleerrors.KindOf(err)
	if kind != ruleerrors.KindStructural {
		t.Fatalf("expected a structural error, got %s", kind)
	}

	proof, err := NewProof(make([]externalapi.DomainHash, 5), 4)
	if err != nil {
		t.Fatalf("NewProof: %+v", err)
	}
	emptyProof, err := EmptyProof(4)
	if err != nil {
		t.Fatalf("EmptyProof: %+v", err)
	}
	if !proof.Equal(emptyProof) {
		t.Fatalf("expected an all-zero proof")
	}
}

func TestDepthAboveMaximum(t *testing.T) {
	for _, depth := range []uint{MaxDepth + 1, ^uint(0)} {
		_, err := ZeroHash(depth)
		if !errors.Is(err, ErrInvalidTreeDepth) {
			t.Errorf("ZeroHash(%d): expected ErrInvalidTreeDepth, got %v", depth, err)
		}
		_, err = New(nil, depth)
		if !errors.Is(err, ErrInvalidTreeDepth) {
			t.Errorf("New(%d): expected ErrInvalidTreeDepth, got %v", depth, err)
		}
		_, err = NewProof(nil, depth)
		if !errors.Is(err, ErrInvalidTreeDepth) {
			t.Errorf("NewProof(%d): expected ErrInvalidTreeDepth, got %v", depth, err)
		}
		_, err = EmptyProof(depth)
		if !errors.Is(err, ErrInvalidTreeDepth) {
			t.Errorf("EmptyProof(%d): expected ErrInvalidTreeDepth, got %v", depth, err)
		}
		if VerifyProof(externalapi.NewZeroHash(), nil, depth, 0, externalapi.NewZeroHash()) {
			t.Errorf("VerifyProof(%d): an empty proof verified", depth)
		}
	}

	zeroHash, err := ZeroHash(MaxDepth)
	if err != nil || zeroHash == nil {
		t.Fatalf("ZeroHash(MaxDepth): %v", err)
	}
}
