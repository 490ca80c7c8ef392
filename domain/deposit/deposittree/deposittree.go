// Package deposittree implements the fixed-depth binary merkle tree that
// commits to the ordered list of deposits.
//
// A tree of depth D always has 2^D leaves. Leaves that were not added are
// the all-zero digest, and every subtree made of such leaves hashes to the
// zero digest of its level, so a tree over a handful of leaves is as cheap
// to build as a tree over its non-empty prefix.
//
// The root a deposit is proven against mixes the number of leaves into the
// tree root, which makes trees over different deposit counts distinct even
// when their leaves agree. Accordingly a proof carries D+1 entries: D
// siblings and the leaf count.
package deposittree

import (
	"encoding/binary"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// DepositContractTreeDepth is the depth of the tree the deposit contract
// maintains
const DepositContractTreeDepth = 32

// MaxDepth is the largest supported tree depth
const MaxDepth = 63

// ErrTooManyLeaves is returned when more leaves are given than a tree of
// the requested depth holds
var ErrTooManyLeaves = errors.New("too many leaves")

// ErrInvalidTreeDepth is returned for a tree depth above MaxDepth
var ErrInvalidTreeDepth = errors.New("invalid tree depth")

// ErrLeafIndexOutOfRange is returned when a proof is requested for a leaf
// the tree does not have
var ErrLeafIndexOutOfRange = errors.New("leaf index out of range")

// zeroHashes[k] is the root of a subtree of height k whose leaves are all
// the zero digest
var zeroHashes = func() []externalapi.DomainHash {
	zero := make([]externalapi.DomainHash, MaxDepth+1)
	for level := 1; level <= MaxDepth; level++ {
		zero[level] = *hashPair(&zero[level-1], &zero[level-1])
	}
	return zero
}()

// ZeroHash returns the root of a subtree of the given height made only of
// placeholder leaves
func ZeroHash(height uint) (*externalapi.DomainHash, error) {
	err := checkDepth(height)
	if err != nil {
		return nil, err
	}
	zeroHash := zeroHashes[height]
	return &zeroHash, nil
}

func checkDepth(depth uint) error {
	if depth > MaxDepth {
		return errors.Wrapf(ErrInvalidTreeDepth, "tree depth %d is above the maximum %d", depth, MaxDepth)
	}
	return nil
}

func hashPair(left, right *externalapi.DomainHash) *externalapi.DomainHash {
	w := hashes.NewDepositTreeHashWriter()
	w.InfallibleWrite(left.ByteSlice())
	w.InfallibleWrite(right.ByteSlice())
	return w.Finalize()
}

// LengthDigest returns the proof entry that encodes a leaf count: the count
// as a little endian uint64, zero padded to a digest
func LengthDigest(leafCount uint64) *externalapi.DomainHash {
	var lengthBytes [externalapi.DomainHashSize]byte
	binary.LittleEndian.PutUint64(lengthBytes[:8], leafCount)
	return externalapi.NewDomainHashFromByteArray(&lengthBytes)
}

// MixInLength returns the root that commits to both a tree root and the
// number of leaves it was built from
func MixInLength(treeRoot *externalapi.DomainHash, leafCount uint64) *externalapi.DomainHash {
	return hashPair(treeRoot, LengthDigest(leafCount))
}

// Tree is a fixed-depth merkle tree. Only the non-placeholder part of each
// level is stored.
type Tree struct {
	depth  uint
	layers [][]externalapi.DomainHash
}

// New builds a tree of the given depth over leaves
func New(leaves []externalapi.DomainHash, depth uint) (*Tree, error) {
	err := checkDepth(depth)
	if err != nil {
		return nil, err
	}
	if uint64(len(leaves)) > uint64(1)<<depth {
		return nil, errors.Wrapf(ErrTooManyLeaves, "%d leaves do not fit in a tree of depth %d",
			len(leaves), depth)
	}

	layers := make([][]externalapi.DomainHash, depth+1)
	layers[0] = append([]externalapi.DomainHash(nil), leaves...)
	for level := uint(0); level < depth; level++ {
		layer := layers[level]
		next := make([]externalapi.DomainHash, (len(layer)+1)/2)
		for i := range next {
			left := &layer[2*i]
			right := &zeroHashes[level]
			if 2*i+1 < len(layer) {
				right = &layer[2*i+1]
			}
			next[i] = *hashPair(left, right)
		}
		layers[level+1] = next
	}
	return &Tree{depth: depth, layers: layers}, nil
}

// Depth returns the depth of the tree
func (t *Tree) Depth() uint {
	return t.depth
}

// LeafCount returns the number of leaves the tree was built from
func (t *Tree) LeafCount() uint64 {
	return uint64(len(t.layers[0]))
}

// Root returns the root of the tree itself
func (t *Tree) Root() *externalapi.DomainHash {
	top := t.layers[t.depth]
	if len(top) == 0 {
		zeroHash := zeroHashes[t.depth]
		return &zeroHash
	}
	root := top[0]
	return &root
}

// RootWithLength returns the root that proofs of this tree are verified
// against: the tree root mixed with the leaf count
func (t *Tree) RootWithLength() *externalapi.DomainHash {
	return MixInLength(t.Root(), t.LeafCount())
}

// Proof returns the inclusion proof of the leaf at index
func (t *Tree) Proof(index uint64) (Proof, error) {
	if index >= t.LeafCount() {
		return nil, errors.Wrapf(ErrLeafIndexOutOfRange, "leaf %d of a tree with %d leaves",
			index, t.LeafCount())
	}

	proof := make(Proof, 0, t.depth+1)
	for level := uint(0); level < t.depth; level++ {
		siblingIndex := (index >> level) ^ 1
		layer := t.layers[level]
		if siblingIndex < uint64(len(layer)) {
			proof = append(proof, layer[siblingIndex])
		} else {
			proof = append(proof, zeroHashes[level])
		}
	}
	proof = append(proof, *LengthDigest(t.LeafCount()))
	return proof, nil
}

// ComputeRoot returns the root of the tree of the given depth over leaves.
// Zero leaves give ZeroHash(depth).
func ComputeRoot(leaves []externalapi.DomainHash, depth uint) (*externalapi.DomainHash, error) {
	tree, err := New(leaves, depth)
	if err != nil {
		return nil, err
	}
	return tree.Root(), nil
}

// Proof is a merkle inclusion proof: the sibling of every level from the
// leaf upwards, followed by the leaf count digest
type Proof []externalapi.DomainHash

// NewProof checks that entries form a proof for a tree of the given depth
// and returns it
func NewProof(entries []externalapi.DomainHash, depth uint) (Proof, error) {
	err := checkDepth(depth)
	if err != nil {
		return nil, err
	}
	if uint(len(entries)) != depth+1 {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidProofLength, "a proof for a tree of depth %d "+
			"has %d entries, got %d", depth, depth+1, len(entries))
	}
	return append(Proof(nil), entries...), nil
}

// EmptyProof returns the placeholder proof for a tree of the given depth:
// depth+1 zero digests
func EmptyProof(depth uint) (Proof, error) {
	err := checkDepth(depth)
	if err != nil {
		return nil, err
	}
	return make(Proof, depth+1), nil
}

// Clone returns a clone of the proof
func (p Proof) Clone() Proof {
	if p == nil {
		return nil
	}
	return append(Proof(nil), p...)
}

// Equal returns whether p equals other
func (p Proof) Equal(other Proof) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// VerifyProof returns whether proof shows that leaf is the leaf at index of
// a tree of the given depth whose length-mixed root is root. Bit k of index
// tells whether the level k sibling is hashed before the running digest. A
// proof of the wrong length does not verify.
func VerifyProof(leaf *externalapi.DomainHash, proof Proof, depth uint, index uint64,
	root *externalapi.DomainHash) bool {

	if depth > MaxDepth || uint(len(proof)) != depth+1 {
		return false
	}

	value := leaf
	for level := uint(0); level <= depth; level++ {
		if (index>>level)&1 == 1 {
			value = hashPair(&proof[level], value)
		} else {
			value = hashPair(value, &proof[level])
		}
	}
	return value.Equal(root)
}
