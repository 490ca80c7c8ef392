package blockprocessor

import (
	"fmt"
	"math/big"

	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/multiset"
	"github.com/blockforge/forkd/domain/consensus/utils/staging"
	"github.com/blockforge/forkd/infrastructure/logger"
	"github.com/pkg/errors"
)

// ImportBlock validates the given block, executes it on top of its parent
// and stores it, moving the canonical head if the block's chain is now the
// heaviest. Everything the import changes is staged and committed in a
// single database transaction, so a rejected block leaves the database
// untouched.
func (bp *blockProcessor) ImportBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ImportBlock")
	defer onEnd()

	if block == nil || block.Header == nil {
		return nil, errors.Wrapf(ruleerrors.ErrMissingHeader, "can not import a block without a header")
	}

	stagingArea := model.NewStagingArea()
	blockHash := consensushashing.BlockHash(block)

	result, err := bp.importBlock(stagingArea, blockHash, block)
	if err != nil {
		log.Debugf("Rejected block %s: %s", blockHash, err)
		return nil, err
	}
	if result.Status == externalapi.ImportAlreadyKnown {
		return result, nil
	}

	err = staging.CommitAllChanges(bp.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	bp.blockLogger.LogBlock(block)
	log.Debugf("%s", logger.NewLogClosure(func() string {
		return fmt.Sprintf("Block %s (number %d) imported. Canonical: %t. Added to the canonical chain: %d. "+
			"Removed: %d", blockHash, block.Header.Number, result.IsCanonical,
			len(result.ChainChanges.Added), len(result.ChainChanges.Removed))
	}))
	return result, nil
}

func (bp *blockProcessor) importBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error) {

	alreadyKnown, err := bp.blockInfoStore.HasBlockInfo(bp.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	if alreadyKnown {
		return bp.alreadyKnownResult(stagingArea, blockHash)
	}

	err = bp.blockValidator.ValidateBlockInIsolation(block)
	if err != nil {
		return nil, err
	}
	err = bp.blockValidator.ValidateBlockInContext(stagingArea, block)
	if err != nil {
		return nil, err
	}

	header := block.Header
	parentState, err := bp.consensusStateManager.StateAt(stagingArea, &header.ParentHash)
	if err != nil {
		return nil, err
	}
	executionResult, err := bp.stateProcessor.ApplyBlock(parentState, block)
	if err != nil {
		return nil, err
	}

	ms, err := bp.multisetStore.Get(bp.databaseContext, stagingArea, &header.ParentHash)
	if err != nil {
		return nil, err
	}
	multiset.ApplyAccountDiff(ms, executionResult.AccountDiff)

	err = bp.blockValidator.ValidateBlockCommitments(block, executionResult, ms.Hash())
	if err != nil {
		return nil, err
	}

	err = bp.stageBlock(stagingArea, blockHash, block, executionResult, ms)
	if err != nil {
		return nil, err
	}

	chainChanges, err := bp.consensusStateManager.AddBlock(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	isHeadChanged := len(chainChanges.Added) > 0
	return &externalapi.BlockInsertionResult{
		Hash:          blockHash,
		Status:        externalapi.ImportAccepted,
		IsCanonical:   isHeadChanged,
		IsHeadChanged: isHeadChanged,
		ChainChanges:  chainChanges,
	}, nil
}

// stageBlock stages everything known about a valid block. It enters as a
// side chain block; fork choice promotes it afterwards if it wins.
func (bp *blockProcessor) stageBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock, executionResult *model.BlockExecutionResult, ms model.Multiset) error {

	parentInfo, err := bp.blockInfoStore.BlockInfo(bp.databaseContext, stagingArea, &block.Header.ParentHash)
	if err != nil {
		return err
	}
	totalDifficulty := new(big.Int).Add(parentInfo.TotalDifficulty, block.Header.Difficulty)

	bp.blockHeaderStore.Stage(stagingArea, blockHash, block.Header)
	bp.blockStore.Stage(stagingArea, blockHash, block)
	bp.accountDiffStore.Stage(stagingArea, blockHash, executionResult.AccountDiff)
	bp.receiptStore.Stage(stagingArea, blockHash, executionResult.Receipts)
	bp.multisetStore.Stage(stagingArea, blockHash, ms)
	bp.blockInfoStore.Stage(stagingArea, blockHash, &externalapi.BlockInfo{
		Exists:          true,
		Number:          block.Header.Number,
		TotalDifficulty: totalDifficulty,
		Status:          externalapi.StatusSideChain,
	})
	return nil
}

func (bp *blockProcessor) alreadyKnownResult(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.BlockInsertionResult, error) {

	blockInfo, err := bp.blockInfoStore.BlockInfo(bp.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	log.Debugf("Block %s is already known with status %s", blockHash, blockInfo.Status)
	return &externalapi.BlockInsertionResult{
		Hash:          blockHash,
		Status:        externalapi.ImportAlreadyKnown,
		IsCanonical:   blockInfo.Status == externalapi.StatusCanonical,
		IsHeadChanged: false,
		ChainChanges:  &externalapi.CanonicalChainChanges{},
	}, nil
}
