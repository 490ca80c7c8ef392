package blockvalidator

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// ValidateBlockCommitments checks the header fields that commit to the
// outcome of executing the block
func (v *blockValidator) ValidateBlockCommitments(block *externalapi.DomainBlock, result *model.BlockExecutionResult,
	stateRoot *externalapi.DomainHash) error {

	header := block.Header
	if header.GasUsed != result.GasUsed {
		return errors.Wrapf(ruleerrors.ErrInvalidGasUsed, "block %d declares %d gas used, executing it "+
			"used %d", header.Number, header.GasUsed, result.GasUsed)
	}

	if !header.ReceiptRoot.Equal(result.ReceiptRoot) {
		return errors.Wrapf(ruleerrors.ErrBadReceiptRoot, "block %d declares receipt root %s, "+
			"its receipts have root %s", header.Number, &header.ReceiptRoot, result.ReceiptRoot)
	}

	if header.Bloom != result.Bloom {
		return errors.Wrapf(ruleerrors.ErrBadLogsBloom, "block %d logs bloom does not match the "+
			"logs its transactions emitted", header.Number)
	}

	if !header.StateRoot.Equal(stateRoot) {
		return errors.Wrapf(ruleerrors.ErrBadStateRoot, "block %d declares state root %s, "+
			"executing it results in %s", header.Number, &header.StateRoot, stateRoot)
	}

	log.Tracef("Block %d commitments match its execution", header.Number)
	return nil
}
