package blockvalidator

import (
	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid. The rule set
// every check applies is resolved from the fork table by the number
// the checked header declares.
type blockValidator struct {
	forkTable *chainconfig.ForkTable
	skipPoW   bool

	databaseContext model.DBReader

	blockStore       model.BlockStore
	blockHeaderStore model.BlockHeaderStore
	blockInfoStore   model.BlockInfoStore
}

// New instantiates a new BlockValidator
func New(forkTable *chainconfig.ForkTable,
	skipPoW bool,
	databaseContext model.DBReader,

	blockStore model.BlockStore,
	blockHeaderStore model.BlockHeaderStore,
	blockInfoStore model.BlockInfoStore,
) model.BlockValidator {

	return &blockValidator{
		forkTable: forkTable,
		skipPoW:   skipPoW,

		databaseContext: databaseContext,

		blockStore:       blockStore,
		blockHeaderStore: blockHeaderStore,
		blockInfoStore:   blockInfoStore,
	}
}

func (v *blockValidator) rulesFor(blockNumber uint64) *chainconfig.RuleSet {
	return v.forkTable.RuleFor(blockNumber).Rules
}
