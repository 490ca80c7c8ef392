package stateprocessor

import (
	"math/big"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/bloom"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/merkle"
	"github.com/blockforge/forkd/infrastructure/logger"
)

// ApplyBlock executes block on top of parentState, which it never mutates.
// A transaction that fails validation fails the whole block; a transaction
// that reverts during execution is recorded with a failed receipt.
func (sp *stateProcessor) ApplyBlock(parentState model.AccountReader, block *externalapi.DomainBlock) (
	*model.BlockExecutionResult, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ApplyBlock")
	defer onEnd()

	header := block.Header
	rules := sp.forkTable.RuleFor(header.Number).Rules
	state := newAccountState(parentState)

	if rules.DAOFork != nil && header.Number == rules.DAOFork.Block {
		err := applyDAOFork(state, rules.DAOFork)
		if err != nil {
			return nil, err
		}
	}

	gasPool := header.GasLimit
	cumulativeGasUsed := uint64(0)
	receipts := make([]*externalapi.DomainReceipt, 0, len(block.Transactions))
	for i, tx := range block.Transactions {
		receipt, err := sp.applyTransaction(state, header, rules, tx, &gasPool)
		if err != nil {
			return nil, ruleerrors.NewErrInvalidTransaction(i, consensushashing.TransactionID(tx), err)
		}
		cumulativeGasUsed += receipt.GasUsed
		receipt.CumulativeGasUsed = cumulativeGasUsed
		receipts = append(receipts, receipt)
	}

	err := applyRewards(state, block, rules)
	if err != nil {
		return nil, err
	}

	log.Debugf("Executed block %d: %d transactions used %d gas", header.Number,
		len(block.Transactions), cumulativeGasUsed)

	return &model.BlockExecutionResult{
		AccountDiff: state.diff(),
		Receipts:    receipts,
		GasUsed:     cumulativeGasUsed,
		Bloom:       bloom.ReceiptsBloom(receipts),
		ReceiptRoot: merkle.CalculateReceiptRoot(receipts),
	}, nil
}

// applyDAOFork moves the whole balance of every drain-list account to the
// refund address
func applyDAOFork(state *accountState, dao *chainconfig.DAOForkConfig) error {
	refund, err := state.account(dao.RefundAddress)
	if err != nil {
		return err
	}
	for _, address := range dao.DrainList {
		drained, err := state.account(address)
		if err != nil {
			return err
		}
		refund.Balance.Add(refund.Balance, drained.Balance)
		drained.Balance.SetInt64(0)
	}
	return nil
}

func applyRewards(state *accountState, block *externalapi.DomainBlock, rules *chainconfig.RuleSet) error {
	ommerNumbers := make([]uint64, len(block.Ommers))
	for i, ommer := range block.Ommers {
		ommerNumbers[i] = ommer.Number
	}
	coinbaseReward, ommerRewards := rules.Rewards(block.Header.Number, ommerNumbers)

	err := credit(state, block.Header.Coinbase, coinbaseReward)
	if err != nil {
		return err
	}
	for i, ommer := range block.Ommers {
		err := credit(state, ommer.Coinbase, ommerRewards[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func credit(state *accountState, address externalapi.DomainAddress, amount *big.Int) error {
	account, err := state.account(address)
	if err != nil {
		return err
	}
	account.Balance.Add(account.Balance, amount)
	return nil
}
