package blockvalidator

import (
	"math"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/merkle"
	"github.com/pkg/errors"
)

// ValidateBlockInIsolation validates the structure of a block without
// looking at any other block
func (v *blockValidator) ValidateBlockInIsolation(block *externalapi.DomainBlock) error {
	header := block.Header
	rules := v.rulesFor(header.Number)

	err := v.validateHeaderInIsolation(header, rules)
	if err != nil {
		return err
	}

	err = v.checkOmmersHash(block)
	if err != nil {
		return err
	}

	return v.checkTransactionRoot(block)
}

func (v *blockValidator) validateHeaderInIsolation(header *externalapi.DomainBlockHeader, rules *chainconfig.RuleSet) error {
	if header.Difficulty == nil || header.Difficulty.Sign() <= 0 {
		return errors.Wrapf(ruleerrors.ErrMissingDifficulty, "block %d has difficulty %v",
			header.Number, header.Difficulty)
	}

	if header.GasUsed > header.GasLimit {
		return errors.Wrapf(ruleerrors.ErrGasUsedExceedsGasLimit, "block %d uses %d gas, more than "+
			"its gas limit %d", header.Number, header.GasUsed, header.GasLimit)
	}

	if header.GasLimit > math.MaxInt64 {
		return errors.Wrapf(ruleerrors.ErrGasLimitTooHigh, "block %d has gas limit %d, the maximum is %d",
			header.Number, header.GasLimit, uint64(math.MaxInt64))
	}

	if len(header.ExtraData) > rules.MaxExtraDataSize {
		return errors.Wrapf(ruleerrors.ErrExtraDataTooLong, "block %d has %d bytes of extra data, "+
			"the maximum under %s is %d", header.Number, len(header.ExtraData), rules.Name, rules.MaxExtraDataSize)
	}

	return nil
}

func (v *blockValidator) checkOmmersHash(block *externalapi.DomainBlock) error {
	ommersHash := consensushashing.OmmersHash(block.Ommers)
	if !block.Header.OmmersHash.Equal(ommersHash) {
		return errors.Wrapf(ruleerrors.ErrBadOmmersHash, "block %d ommers hash %s is not the "+
			"commitment to its %d ommers, %s", block.Header.Number, &block.Header.OmmersHash,
			len(block.Ommers), ommersHash)
	}
	return nil
}

func (v *blockValidator) checkTransactionRoot(block *externalapi.DomainBlock) error {
	transactionRoot := merkle.CalculateTransactionRoot(block.Transactions)
	if !block.Header.TransactionRoot.Equal(transactionRoot) {
		return errors.Wrapf(ruleerrors.ErrBadTransactionRoot, "block %d transaction root %s is not the "+
			"commitment to its %d transactions, %s", block.Header.Number, &block.Header.TransactionRoot,
			len(block.Transactions), transactionRoot)
	}
	return nil
}
