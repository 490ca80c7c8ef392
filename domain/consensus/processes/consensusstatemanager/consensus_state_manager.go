package consensusstatemanager

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

// consensusStateManager manages the node's consensus state: the canonical
// chain and the account state at its head. The state of any other stored
// block is reconstructed from the head state and the per-block account diffs.
type consensusStateManager struct {
	databaseContext model.DBReader

	chainTraversalManager model.ChainTraversalManager

	blockStore          model.BlockStore
	blockHeaderStore    model.BlockHeaderStore
	blockInfoStore      model.BlockInfoStore
	accountStore        model.AccountStore
	accountDiffStore    model.AccountDiffStore
	canonicalChainStore model.CanonicalChainStore
	multisetStore       model.MultisetStore
	receiptStore        model.ReceiptStore
}

// New instantiates a new ConsensusStateManager
func New(
	databaseContext model.DBReader,

	chainTraversalManager model.ChainTraversalManager,

	blockStore model.BlockStore,
	blockHeaderStore model.BlockHeaderStore,
	blockInfoStore model.BlockInfoStore,
	accountStore model.AccountStore,
	accountDiffStore model.AccountDiffStore,
	canonicalChainStore model.CanonicalChainStore,
	multisetStore model.MultisetStore,
	receiptStore model.ReceiptStore) model.ConsensusStateManager {

	return &consensusStateManager{
		databaseContext: databaseContext,

		chainTraversalManager: chainTraversalManager,

		blockStore:          blockStore,
		blockHeaderStore:    blockHeaderStore,
		blockInfoStore:      blockInfoStore,
		accountStore:        accountStore,
		accountDiffStore:    accountDiffStore,
		canonicalChainStore: canonicalChainStore,
		multisetStore:       multisetStore,
		receiptStore:        receiptStore,
	}
}

// Head returns the hash and header of the canonical head
func (csm *consensusStateManager) Head(stagingArea *model.StagingArea) (
	*externalapi.DomainHash, *externalapi.DomainBlockHeader, error) {

	headHash, _, err := csm.canonicalChainStore.Head(csm.databaseContext, stagingArea)
	if err != nil {
		return nil, nil, err
	}
	headHeader, err := csm.blockHeaderStore.BlockHeader(csm.databaseContext, stagingArea, headHash)
	if err != nil {
		return nil, nil, err
	}
	return headHash, headHeader, nil
}
