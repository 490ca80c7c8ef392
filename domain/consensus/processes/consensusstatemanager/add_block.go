package consensusstatemanager

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

// AddBlock runs fork choice for a block whose data and block info are
// already staged. The block becomes the head only if its total difficulty
// is strictly higher than the head's, so a tie keeps the current head.
// On a head change the account store, the canonical chain and the status
// of every affected block are staged; the returned changes are then
// non-empty.
func (csm *consensusStateManager) AddBlock(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.CanonicalChainChanges, error) {

	headHash, _, err := csm.canonicalChainStore.Head(csm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	headInfo, err := csm.blockInfoStore.BlockInfo(csm.databaseContext, stagingArea, headHash)
	if err != nil {
		return nil, err
	}
	blockInfo, err := csm.blockInfoStore.BlockInfo(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	if blockInfo.TotalDifficulty.Cmp(headInfo.TotalDifficulty) <= 0 {
		log.Debugf("Block %s (total difficulty %s) does not beat head %s (total difficulty %s)",
			blockHash, blockInfo.TotalDifficulty, headHash, headInfo.TotalDifficulty)
		return &externalapi.CanonicalChainChanges{}, nil
	}

	chainChanges, err := csm.calculateCanonicalChainChanges(stagingArea, headHash, blockHash)
	if err != nil {
		return nil, err
	}

	err = csm.moveHead(stagingArea, chainChanges)
	if err != nil {
		return nil, err
	}

	if len(chainChanges.Removed) > 0 {
		log.Infof("Reorganized the canonical chain to %s: removed %d blocks and added %d",
			blockHash, len(chainChanges.Removed), len(chainChanges.Added))
	}
	return chainChanges, nil
}

func (csm *consensusStateManager) calculateCanonicalChainChanges(stagingArea *model.StagingArea,
	oldHeadHash, newHeadHash *externalapi.DomainHash) (*externalapi.CanonicalChainChanges, error) {

	commonAncestor, err := csm.chainTraversalManager.LowestCommonAncestor(stagingArea, oldHeadHash, newHeadHash)
	if err != nil {
		return nil, err
	}

	removedUpwards, err := csm.chainTraversalManager.PathFrom(stagingArea, commonAncestor, oldHeadHash)
	if err != nil {
		return nil, err
	}
	// Removed is ordered from the old head downwards
	removed := make([]*externalapi.DomainHash, len(removedUpwards))
	for i, hash := range removedUpwards {
		removed[len(removedUpwards)-1-i] = hash
	}

	added, err := csm.chainTraversalManager.PathFrom(stagingArea, commonAncestor, newHeadHash)
	if err != nil {
		return nil, err
	}

	return &externalapi.CanonicalChainChanges{
		Added:   added,
		Removed: removed,
	}, nil
}

// moveHead reverts the diffs of the removed blocks and applies the diffs of
// the added ones to the account store
func (csm *consensusStateManager) moveHead(stagingArea *model.StagingArea,
	chainChanges *externalapi.CanonicalChainChanges) error {

	for _, removedHash := range chainChanges.Removed {
		accountDiff, err := csm.accountDiffStore.AccountDiff(csm.databaseContext, stagingArea, removedHash)
		if err != nil {
			return err
		}
		csm.accountStore.StageAccountDiff(stagingArea, reverseAccountDiff(accountDiff))
		err = csm.stageBlockStatus(stagingArea, removedHash, externalapi.StatusSideChain)
		if err != nil {
			return err
		}
	}

	for _, addedHash := range chainChanges.Added {
		accountDiff, err := csm.accountDiffStore.AccountDiff(csm.databaseContext, stagingArea, addedHash)
		if err != nil {
			return err
		}
		csm.accountStore.StageAccountDiff(stagingArea, accountDiff)
		err = csm.stageBlockStatus(stagingArea, addedHash, externalapi.StatusCanonical)
		if err != nil {
			return err
		}
	}

	return csm.canonicalChainStore.Stage(csm.databaseContext, stagingArea, chainChanges)
}

func (csm *consensusStateManager) stageBlockStatus(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, status externalapi.BlockStatus) error {

	blockInfo, err := csm.blockInfoStore.BlockInfo(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	blockInfo.Status = status
	csm.blockInfoStore.Stage(stagingArea, blockHash, blockInfo)
	return nil
}

func reverseAccountDiff(accountDiff model.AccountDiff) model.AccountDiff {
	reversed := make(model.AccountDiff, len(accountDiff))
	for address, change := range accountDiff {
		reversed[address] = &model.AccountChange{
			Before: change.After,
			After:  change.Before,
		}
	}
	return reversed
}
