package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// AccountReader gives read access to an account state
type AccountReader interface {
	Account(address externalapi.DomainAddress) (*externalapi.Account, bool, error)
}

// BlockExecutionResult is everything executing a block produces
type BlockExecutionResult struct {
	AccountDiff AccountDiff
	Receipts    []*externalapi.DomainReceipt
	GasUsed     uint64
	Bloom       externalapi.Bloom
	ReceiptRoot *externalapi.DomainHash
}

// StateProcessor executes blocks on top of the state of their parent
type StateProcessor interface {
	ApplyBlock(parentState AccountReader, block *externalapi.DomainBlock) (*BlockExecutionResult, error)
}
