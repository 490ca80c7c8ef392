package blockprocessor

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/processes/blockprocessor/blocklogger"
)

// blockProcessor is responsible for importing blocks: validating them,
// executing them on top of their parent, and running fork choice
type blockProcessor struct {
	databaseContext model.DBManager
	blockLogger     *blocklogger.BlockLogger

	consensusStateManager model.ConsensusStateManager
	blockValidator        model.BlockValidator
	stateProcessor        model.StateProcessor

	blockStore       model.BlockStore
	blockHeaderStore model.BlockHeaderStore
	blockInfoStore   model.BlockInfoStore
	accountDiffStore model.AccountDiffStore
	multisetStore    model.MultisetStore
	receiptStore     model.ReceiptStore
}

// New instantiates a new BlockProcessor
func New(
	databaseContext model.DBManager,

	consensusStateManager model.ConsensusStateManager,
	blockValidator model.BlockValidator,
	stateProcessor model.StateProcessor,

	blockStore model.BlockStore,
	blockHeaderStore model.BlockHeaderStore,
	blockInfoStore model.BlockInfoStore,
	accountDiffStore model.AccountDiffStore,
	multisetStore model.MultisetStore,
	receiptStore model.ReceiptStore) model.BlockProcessor {

	return &blockProcessor{
		databaseContext: databaseContext,
		blockLogger:     blocklogger.New(),

		consensusStateManager: consensusStateManager,
		blockValidator:        blockValidator,
		stateProcessor:        stateProcessor,

		blockStore:       blockStore,
		blockHeaderStore: blockHeaderStore,
		blockInfoStore:   blockInfoStore,
		accountDiffStore: accountDiffStore,
		multisetStore:    multisetStore,
		receiptStore:     receiptStore,
	}
}
