package deposit

import (
	"sync"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/deposit/deposittree"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidDepositCount is returned for a deposit count of zero or one
	// above the number of accumulated deposits
	ErrInvalidDepositCount = errors.New("invalid deposit count")

	// ErrInvalidDepositIndex is returned for a deposit index outside of the
	// requested deposit count
	ErrInvalidDepositIndex = errors.New("invalid deposit index")

	// ErrDepositRootMismatch is returned when a root built from the
	// accumulated deposits differs from a root reported by the deposit
	// contract, which means the accumulated deposits are corrupted
	ErrDepositRootMismatch = errors.New("deposit root mismatch")
)

// Accumulator keeps the ordered list of deposits seen so far and serves
// deposits with proofs against the tree of any prefix of that list
type Accumulator struct {
	lock  sync.RWMutex
	depth uint
	data  []DepositData
}

// NewAccumulator returns an empty accumulator for trees of the given depth
func NewAccumulator(depth uint) *Accumulator {
	return &Accumulator{depth: depth}
}

// Add appends deposit data in deposit order
func (a *Accumulator) Add(data *DepositData) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.data = append(a.data, *data)
	log.Debugf("Accumulated deposit #%d (%s)", len(a.data)-1, data)
}

// Count returns the number of accumulated deposits
func (a *Accumulator) Count() uint64 {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return uint64(len(a.data))
}

// Root returns the length-mixed root of the tree over the first count
// deposits
func (a *Accumulator) Root(count uint64) (*externalapi.DomainHash, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	tree, err := a.treeAt(count)
	if err != nil {
		return nil, err
	}
	return tree.RootWithLength(), nil
}

// DepositAt returns the deposit at index with its proof against the tree
// over the first count deposits, along with that tree's root
func (a *Accumulator) DepositAt(count, index uint64) (*Deposit, *externalapi.DomainHash, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	if index >= count {
		return nil, nil, errors.Wrapf(ErrInvalidDepositIndex, "deposit index %d is not below the "+
			"deposit count %d", index, count)
	}
	tree, err := a.treeAt(count)
	if err != nil {
		return nil, nil, err
	}
	proof, err := tree.Proof(index)
	if err != nil {
		return nil, nil, err
	}
	return &Deposit{Proof: proof, Data: a.data[index]}, tree.RootWithLength(), nil
}

// VerifyRoot checks the root of the tree over the first count deposits
// against a root obtained elsewhere
func (a *Accumulator) VerifyRoot(count uint64, expectedRoot *externalapi.DomainHash) error {
	root, err := a.Root(count)
	if err != nil {
		return err
	}
	if !root.Equal(expectedRoot) {
		return errors.Wrapf(ErrDepositRootMismatch, "the first %d deposits have root %s, expected %s",
			count, root, expectedRoot)
	}
	return nil
}

func (a *Accumulator) treeAt(count uint64) (*deposittree.Tree, error) {
	if count == 0 || count > uint64(len(a.data)) {
		return nil, errors.Wrapf(ErrInvalidDepositCount, "deposit count %d with %d deposits accumulated",
			count, len(a.data))
	}

	leaves := make([]externalapi.DomainHash, count)
	for i := range leaves {
		leaves[i] = *a.data[i].LeafDigest()
	}
	return deposittree.New(leaves, a.depth)
}
