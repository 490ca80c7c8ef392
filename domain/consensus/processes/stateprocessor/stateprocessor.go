package stateprocessor

import (
	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
)

// stateProcessor executes blocks. Instruction execution is modeled, not
// interpreted: a transaction either transfers value, creates a contract
// whose code is the transaction data, or writes one storage slot of the
// contract it calls.
type stateProcessor struct {
	forkTable *chainconfig.ForkTable
}

// New instantiates a new StateProcessor
func New(forkTable *chainconfig.ForkTable) model.StateProcessor {
	return &stateProcessor{
		forkTable: forkTable,
	}
}
