package blockbuilder

import (
	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/merkle"
	"github.com/blockforge/forkd/domain/consensus/utils/multiset"
	"github.com/blockforge/forkd/infrastructure/logger"
)

// blockInterval is the number of seconds between a built block and its parent
const blockInterval = 10

type blockBuilder struct {
	forkTable       *chainconfig.ForkTable
	databaseContext model.DBReader

	consensusStateManager model.ConsensusStateManager
	stateProcessor        model.StateProcessor

	blockHeaderStore model.BlockHeaderStore
	multisetStore    model.MultisetStore
}

// New creates a new instance of a BlockBuilder
func New(
	forkTable *chainconfig.ForkTable,
	databaseContext model.DBReader,

	consensusStateManager model.ConsensusStateManager,
	stateProcessor model.StateProcessor,

	blockHeaderStore model.BlockHeaderStore,
	multisetStore model.MultisetStore,
) model.BlockBuilder {

	return &blockBuilder{
		forkTable:       forkTable,
		databaseContext: databaseContext,

		consensusStateManager: consensusStateManager,
		stateProcessor:        stateProcessor,

		blockHeaderStore: blockHeaderStore,
		multisetStore:    multisetStore,
	}
}

// BuildBlock builds a block on top of parentHash with the given
// transactions and ommers. Every header field is filled in so that the
// block passes validation, except for the proof of work.
func (bb *blockBuilder) BuildBlock(parentHash *externalapi.DomainHash, coinbase externalapi.DomainAddress,
	transactions []*externalapi.DomainTransaction, ommers []*externalapi.DomainBlockHeader) (*externalapi.DomainBlock, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildBlock")
	defer onEnd()

	stagingArea := model.NewStagingArea()

	header, err := bb.buildHeader(stagingArea, parentHash, coinbase, transactions, ommers)
	if err != nil {
		return nil, err
	}
	block := &externalapi.DomainBlock{
		Header:       header,
		Transactions: transactions,
		Ommers:       ommers,
	}

	err = bb.fillExecutionCommitments(stagingArea, block)
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (bb *blockBuilder) buildHeader(stagingArea *model.StagingArea, parentHash *externalapi.DomainHash,
	coinbase externalapi.DomainAddress, transactions []*externalapi.DomainTransaction,
	ommers []*externalapi.DomainBlockHeader) (*externalapi.DomainBlockHeader, error) {

	parentHeader, err := bb.blockHeaderStore.BlockHeader(bb.databaseContext, stagingArea, parentHash)
	if err != nil {
		return nil, err
	}

	number := parentHeader.Number + 1
	rules := bb.forkTable.RuleFor(number).Rules
	timestamp := parentHeader.Timestamp + blockInterval
	difficulty := rules.CalcDifficulty(&chainconfig.DifficultyInput{
		ParentDifficulty: parentHeader.Difficulty,
		ParentTimestamp:  parentHeader.Timestamp,
		ParentHasOmmers:  !parentHeader.OmmersHash.Equal(consensushashing.EmptyOmmersHash),
		Number:           number,
		Timestamp:        timestamp,
	}, rules.MinimumDifficulty)

	var extraData []byte
	if rules.DAOFork != nil && rules.DAOFork.RequiresExtraData(number) {
		extraData = append([]byte(nil), rules.DAOFork.ExtraData...)
	}

	return &externalapi.DomainBlockHeader{
		ParentHash:      *parentHash,
		OmmersHash:      *consensushashing.OmmersHash(ommers),
		Coinbase:        coinbase,
		TransactionRoot: *merkle.CalculateTransactionRoot(transactions),
		Difficulty:      difficulty,
		Number:          number,
		GasLimit:        parentHeader.GasLimit,
		Timestamp:       timestamp,
		ExtraData:       extraData,
	}, nil
}

// fillExecutionCommitments executes the block on top of its parent and
// commits to the outcome in its header
func (bb *blockBuilder) fillExecutionCommitments(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	header := block.Header
	parentState, err := bb.consensusStateManager.StateAt(stagingArea, &header.ParentHash)
	if err != nil {
		return err
	}
	result, err := bb.stateProcessor.ApplyBlock(parentState, block)
	if err != nil {
		return err
	}

	ms, err := bb.multisetStore.Get(bb.databaseContext, stagingArea, &header.ParentHash)
	if err != nil {
		return err
	}
	multiset.ApplyAccountDiff(ms, result.AccountDiff)

	header.StateRoot = *ms.Hash()
	header.ReceiptRoot = *result.ReceiptRoot
	header.Bloom = result.Bloom
	header.GasUsed = result.GasUsed

	log.Debugf("Built block %d on top of %s with %d transactions and %d ommers",
		header.Number, &header.ParentHash, len(block.Transactions), len(block.Ommers))
	return nil
}
