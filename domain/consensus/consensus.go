package consensus

import (
	"sync"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ErrBlockNotFound is returned when a requested block is not stored
var ErrBlockNotFound = errors.New("block not found")

// Consensus imports blocks into a single chain and answers queries about it.
// Every method is safe for concurrent use; imports are serialized.
type Consensus interface {
	ImportBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error)

	GetHead() (*externalapi.DomainHash, *externalapi.DomainBlockHeader, error)
	GetCanonicalBlockByNumber(number uint64) (*externalapi.DomainBlock, error)
	GetCanonicalHashByNumber(number uint64) (*externalapi.DomainHash, bool, error)
	GetRuleForBlockNumber(number uint64) *chainconfig.ForkRule

	GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
	GetBlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error)
	GetReceipts(blockHash *externalapi.DomainHash) ([]*externalapi.DomainReceipt, error)
	GetStateRoot(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error)

	GetAccount(address externalapi.DomainAddress) (*externalapi.Account, bool, error)
	GetAccountAt(blockHash *externalapi.DomainHash, address externalapi.DomainAddress) (*externalapi.Account, bool, error)
	GetAccounts() (map[externalapi.DomainAddress]*externalapi.Account, error)

	VerifyState(expected map[externalapi.DomainAddress]*externalapi.Account) error
	VerifyStateAt(blockHash *externalapi.DomainHash, expected map[externalapi.DomainAddress]*externalapi.Account) error
}

type consensus struct {
	lock            *sync.Mutex
	forkTable       *chainconfig.ForkTable
	databaseContext model.DBManager

	blockProcessor        model.BlockProcessor
	blockBuilder          model.BlockBuilder
	blockValidator        model.BlockValidator
	consensusStateManager model.ConsensusStateManager
	chainTraversalManager model.ChainTraversalManager
	stateProcessor        model.StateProcessor
	stateVerifier         model.StateVerifier

	blockStore          model.BlockStore
	blockHeaderStore    model.BlockHeaderStore
	blockInfoStore      model.BlockInfoStore
	accountStore        model.AccountStore
	accountDiffStore    model.AccountDiffStore
	canonicalChainStore model.CanonicalChainStore
	multisetStore       model.MultisetStore
	receiptStore        model.ReceiptStore
}

// ImportBlock validates the given block and, if valid, applies it to the
// chain. A block that is already stored is reported as such and changes
// nothing.
func (s *consensus) ImportBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.blockProcessor.ImportBlock(block)
}

// GetHead returns the hash and header of the canonical head
func (s *consensus) GetHead() (*externalapi.DomainHash, *externalapi.DomainBlockHeader, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.consensusStateManager.Head(model.NewStagingArea())
}

// GetCanonicalHashByNumber returns the hash of the canonical block at the
// given number, and whether the canonical chain reaches that number
func (s *consensus) GetCanonicalHashByNumber(number uint64) (*externalapi.DomainHash, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.canonicalChainStore.GetHashByIndex(s.databaseContext, model.NewStagingArea(), number)
}

func (s *consensus) GetCanonicalBlockByNumber(number uint64) (*externalapi.DomainBlock, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	blockHash, found, err := s.canonicalChainStore.GetHashByIndex(s.databaseContext, stagingArea, number)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrapf(ErrBlockNotFound, "the canonical chain has no block number %d", number)
	}
	return s.blockStore.Block(s.databaseContext, stagingArea, blockHash)
}

// GetRuleForBlockNumber returns the fork rule that applies to the given
// block number
func (s *consensus) GetRuleForBlockNumber(number uint64) *chainconfig.ForkRule {
	return s.forkTable.RuleFor(number)
}

func (s *consensus) GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	err := s.checkBlockExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return s.blockStore.Block(s.databaseContext, stagingArea, blockHash)
}

func (s *consensus) GetBlockHeader(blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	err := s.checkBlockExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return s.blockHeaderStore.BlockHeader(s.databaseContext, stagingArea, blockHash)
}

// GetBlockInfo returns the chain metadata of the given block. Exists is
// false for a block that is not stored.
func (s *consensus) GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	exists, err := s.blockInfoStore.HasBlockInfo(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &externalapi.BlockInfo{Exists: false}, nil
	}
	return s.blockInfoStore.BlockInfo(s.databaseContext, stagingArea, blockHash)
}

func (s *consensus) GetReceipts(blockHash *externalapi.DomainHash) ([]*externalapi.DomainReceipt, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	err := s.checkBlockExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return s.receiptStore.Receipts(s.databaseContext, stagingArea, blockHash)
}

// GetStateRoot returns the state commitment of the state right after the
// given block
func (s *consensus) GetStateRoot(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	err := s.checkBlockExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	ms, err := s.multisetStore.Get(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return ms.Hash(), nil
}

// GetAccount returns the account at address in the canonical head state
func (s *consensus) GetAccount(address externalapi.DomainAddress) (*externalapi.Account, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.accountStore.Account(s.databaseContext, model.NewStagingArea(), address)
}

// GetAccountAt returns the account at address in the state right after the
// given block, which does not have to be canonical
func (s *consensus) GetAccountAt(blockHash *externalapi.DomainHash,
	address externalapi.DomainAddress) (*externalapi.Account, bool, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	state, err := s.stateAt(stagingArea, blockHash)
	if err != nil {
		return nil, false, err
	}
	return state.Account(address)
}

// GetAccounts returns every account in the canonical head state
func (s *consensus) GetAccounts() (map[externalapi.DomainAddress]*externalapi.Account, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.accountStore.Accounts(s.databaseContext, model.NewStagingArea())
}

// VerifyState compares the canonical head state against the expected accounts
func (s *consensus) VerifyState(expected map[externalapi.DomainAddress]*externalapi.Account) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	headHash, _, err := s.canonicalChainStore.Head(s.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	state, err := s.stateAt(stagingArea, headHash)
	if err != nil {
		return err
	}
	return s.stateVerifier.VerifyState(expected, state)
}

// VerifyStateAt compares the state right after the given block against the
// expected accounts
func (s *consensus) VerifyStateAt(blockHash *externalapi.DomainHash,
	expected map[externalapi.DomainAddress]*externalapi.Account) error {

	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()
	state, err := s.stateAt(stagingArea, blockHash)
	if err != nil {
		return err
	}
	return s.stateVerifier.VerifyState(expected, state)
}

func (s *consensus) stateAt(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (model.AccountReader, error) {
	err := s.checkBlockExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return s.consensusStateManager.StateAt(stagingArea, blockHash)
}

func (s *consensus) checkBlockExists(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	exists, err := s.blockInfoStore.HasBlockInfo(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(ErrBlockNotFound, "block %s does not exist", blockHash)
	}
	return nil
}
