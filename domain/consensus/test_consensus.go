package consensus

import (
	"math/rand"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/mining"
)

// TestConsensus wraps a Consensus with helpers that build, seal and import
// blocks on top of any stored block
type TestConsensus interface {
	Consensus

	// BuildBlock builds a valid child of parentHash. Unless the consensus
	// skips proof of work the block is sealed as well.
	BuildBlock(parentHash *externalapi.DomainHash, coinbase externalapi.DomainAddress,
		transactions []*externalapi.DomainTransaction, ommers []*externalapi.DomainBlockHeader) (*externalapi.DomainBlock, error)

	// AddBlock builds a child of parentHash and imports it
	AddBlock(parentHash *externalapi.DomainHash, coinbase externalapi.DomainAddress,
		transactions []*externalapi.DomainTransaction) (*externalapi.DomainHash, *externalapi.BlockInsertionResult, error)

	DatabaseContext() model.DBManager
	Params() *chainconfig.Params
}

type testConsensus struct {
	*consensus
	config   *Config
	database model.DBManager
	rd       *rand.Rand
}

func (tc *testConsensus) BuildBlock(parentHash *externalapi.DomainHash, coinbase externalapi.DomainAddress,
	transactions []*externalapi.DomainTransaction, ommers []*externalapi.DomainBlockHeader) (*externalapi.DomainBlock, error) {

	// Require write lock because BuildBlock stages temporary data
	tc.lock.Lock()
	defer tc.lock.Unlock()

	block, err := tc.blockBuilder.BuildBlock(parentHash, coinbase, transactions, ommers)
	if err != nil {
		return nil, err
	}
	if !tc.config.SkipProofOfWork {
		mining.SolveBlock(block, tc.random())
	}
	return block, nil
}

func (tc *testConsensus) AddBlock(parentHash *externalapi.DomainHash, coinbase externalapi.DomainAddress,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainHash, *externalapi.BlockInsertionResult, error) {

	block, err := tc.BuildBlock(parentHash, coinbase, transactions, nil)
	if err != nil {
		return nil, nil, err
	}

	blockInsertionResult, err := tc.ImportBlock(block)
	if err != nil {
		return nil, nil, err
	}
	return consensushashing.BlockHash(block), blockInsertionResult, nil
}

func (tc *testConsensus) DatabaseContext() model.DBManager {
	return tc.database
}

func (tc *testConsensus) Params() *chainconfig.Params {
	return &tc.config.Params
}

func (tc *testConsensus) random() *rand.Rand {
	if tc.rd == nil {
		tc.rd = rand.New(rand.NewSource(0))
	}
	return tc.rd
}
