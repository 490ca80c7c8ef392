package chaintraversalmanager

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// chainTraversalManager exposes methods for traversing blocks along their
// parent links. Every stored block sits exactly one number above its
// parent, so walking to a given block number takes a known number of steps.
type chainTraversalManager struct {
	databaseContext  model.DBReader
	blockHeaderStore model.BlockHeaderStore
}

// New instantiates a new ChainTraversalManager
func New(databaseContext model.DBReader, blockHeaderStore model.BlockHeaderStore) model.ChainTraversalManager {
	return &chainTraversalManager{
		databaseContext:  databaseContext,
		blockHeaderStore: blockHeaderStore,
	}
}

// Ancestor returns the ancestor of blockHash at the given block number.
// A block is its own ancestor at its own number.
func (ctm *chainTraversalManager) Ancestor(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	blockNumber uint64) (*externalapi.DomainHash, error) {

	header, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	if blockNumber > header.Number {
		return nil, errors.Errorf("block %s at number %d has no ancestor at number %d",
			blockHash, header.Number, blockNumber)
	}

	current := blockHash
	for header.Number > blockNumber {
		current = &header.ParentHash
		header, err = ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// IsAncestorOf returns whether ancestorHash is blockHash or one of its ancestors
func (ctm *chainTraversalManager) IsAncestorOf(stagingArea *model.StagingArea,
	ancestorHash, blockHash *externalapi.DomainHash) (bool, error) {

	ancestorHeader, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, ancestorHash)
	if err != nil {
		return false, err
	}
	blockHeader, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return false, err
	}
	if ancestorHeader.Number > blockHeader.Number {
		return false, nil
	}

	candidate, err := ctm.Ancestor(stagingArea, blockHash, ancestorHeader.Number)
	if err != nil {
		return false, err
	}
	return candidate.Equal(ancestorHash), nil
}

// LowestCommonAncestor returns the highest block that is an ancestor of
// both blockHashA and blockHashB
func (ctm *chainTraversalManager) LowestCommonAncestor(stagingArea *model.StagingArea,
	blockHashA, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	headerA, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, blockHashA)
	if err != nil {
		return nil, err
	}
	headerB, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, blockHashB)
	if err != nil {
		return nil, err
	}

	// Bring both sides to the same number, then walk them down together
	number := headerA.Number
	if headerB.Number < number {
		number = headerB.Number
	}
	currentA, err := ctm.Ancestor(stagingArea, blockHashA, number)
	if err != nil {
		return nil, err
	}
	currentB, err := ctm.Ancestor(stagingArea, blockHashB, number)
	if err != nil {
		return nil, err
	}

	for !currentA.Equal(currentB) {
		if number == 0 {
			return nil, errors.Errorf("blocks %s and %s have no common ancestor", blockHashA, blockHashB)
		}
		headerA, err = ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, currentA)
		if err != nil {
			return nil, err
		}
		headerB, err = ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, currentB)
		if err != nil {
			return nil, err
		}
		currentA = &headerA.ParentHash
		currentB = &headerB.ParentHash
		number--
	}
	return currentA, nil
}

// PathFrom returns the blocks leading from ancestorHash up to blockHash,
// ordered upwards. ancestorHash itself is excluded and blockHash included.
func (ctm *chainTraversalManager) PathFrom(stagingArea *model.StagingArea,
	ancestorHash, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	ancestorHeader, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, ancestorHash)
	if err != nil {
		return nil, err
	}
	blockHeader, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	if ancestorHeader.Number > blockHeader.Number {
		return nil, errors.Errorf("%s is above %s", ancestorHash, blockHash)
	}

	path := make([]*externalapi.DomainHash, blockHeader.Number-ancestorHeader.Number)
	current := blockHash
	for i := len(path) - 1; i >= 0; i-- {
		path[i] = current
		header, err := ctm.blockHeaderStore.BlockHeader(ctm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		current = &header.ParentHash
	}
	if !current.Equal(ancestorHash) {
		return nil, errors.Errorf("%s is not an ancestor of %s", ancestorHash, blockHash)
	}
	return path, nil
}
