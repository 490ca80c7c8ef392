package stateprocessor

import (
	"math"
	"math/big"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/bloom"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/txsigning"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// storageWriteDataSize is the size of the call data that writes a storage
// slot: a 32 byte key followed by a 32 byte value
const storageWriteDataSize = 64

func (sp *stateProcessor) applyTransaction(state *accountState, header *externalapi.DomainBlockHeader,
	rules *chainconfig.RuleSet, tx *externalapi.DomainTransaction, gasPool *uint64) (*externalapi.DomainReceipt, error) {

	if tx.GasLimit > *gasPool {
		return nil, errors.Wrapf(ruleerrors.ErrBlockGasLimitReached, "transaction gas limit %d is "+
			"more than the %d gas left in the block", tx.GasLimit, *gasPool)
	}

	err := txsigning.Verify(tx)
	if err != nil {
		return nil, err
	}

	sender := txsigning.Sender(tx)
	senderAccount, err := state.account(sender)
	if err != nil {
		return nil, err
	}
	if tx.Nonce != senderAccount.Nonce {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidNonce, "expected %d, got %d", senderAccount.Nonce, tx.Nonce)
	}

	value := bigOrZero(tx.Value)
	gasPrice := bigOrZero(tx.GasPrice)
	if value.Sign() < 0 || gasPrice.Sign() < 0 {
		return nil, errors.Wrapf(ruleerrors.ErrNegativeValue, "value %s, gas price %s", value, gasPrice)
	}

	intrinsicGas := rules.Gas.IntrinsicGas(tx)
	if tx.GasLimit < intrinsicGas {
		return nil, errors.Wrapf(ruleerrors.ErrIntrinsicGas, "gas limit %d is below the intrinsic gas %d",
			tx.GasLimit, intrinsicGas)
	}

	upfrontGasCost := new(big.Int).Mul(new(big.Int).SetUint64(tx.GasLimit), gasPrice)
	totalCost := new(big.Int).Add(upfrontGasCost, value)
	if senderAccount.Balance.Cmp(totalCost) < 0 {
		return nil, errors.Wrapf(ruleerrors.ErrInsufficientFunds, "%s has %s, the transaction costs up to %s",
			sender, senderAccount.Balance, totalCost)
	}

	if senderAccount.Nonce == math.MaxUint64 {
		return nil, errors.Wrapf(ruleerrors.ErrNonceOverflow, "%s has reached the maximum nonce", sender)
	}

	*gasPool -= tx.GasLimit
	senderAccount.Balance.Sub(senderAccount.Balance, upfrontGasCost)
	senderAccount.Nonce++

	outcome, err := sp.execute(state, rules, tx, sender, value, tx.GasLimit-intrinsicGas)
	if err != nil {
		return nil, err
	}

	gasUsed := tx.GasLimit - outcome.gasLeft
	refund := new(big.Int).Mul(new(big.Int).SetUint64(outcome.gasLeft), gasPrice)
	senderAccount.Balance.Add(senderAccount.Balance, refund)
	*gasPool += outcome.gasLeft

	fee := new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), gasPrice)
	err = credit(state, header.Coinbase, fee)
	if err != nil {
		return nil, err
	}

	return &externalapi.DomainReceipt{
		Status:  outcome.status,
		GasUsed: gasUsed,
		Bloom:   bloom.LogsBloom(outcome.logs),
		Logs:    outcome.logs,
	}, nil
}

type executionOutcome struct {
	status  externalapi.ReceiptStatus
	gasLeft uint64
	logs    []*externalapi.Log
}

// reverted consumes all remaining gas and leaves no effect besides the
// upfront payment and the nonce increment
func reverted() *executionOutcome {
	return &executionOutcome{status: externalapi.ReceiptStatusFailed, logs: []*externalapi.Log{}}
}

func succeeded(gasLeft uint64, logs ...*externalapi.Log) *executionOutcome {
	if logs == nil {
		logs = []*externalapi.Log{}
	}
	return &executionOutcome{status: externalapi.ReceiptStatusSuccessful, gasLeft: gasLeft, logs: logs}
}

func (sp *stateProcessor) execute(state *accountState, rules *chainconfig.RuleSet, tx *externalapi.DomainTransaction,
	sender externalapi.DomainAddress, value *big.Int, gas uint64) (*executionOutcome, error) {

	if tx.IsContractCreation() {
		return sp.create(state, rules, tx, sender, value, gas)
	}
	return sp.call(state, rules, tx, sender, value, gas)
}

func (sp *stateProcessor) create(state *accountState, rules *chainconfig.RuleSet, tx *externalapi.DomainTransaction,
	sender externalapi.DomainAddress, value *big.Int, gas uint64) (*executionOutcome, error) {

	address := consensushashing.ContractAddress(sender, tx.Nonce)
	contract, err := state.account(address)
	if err != nil {
		return nil, err
	}
	if len(contract.Code) != 0 || contract.Nonce != 0 {
		log.Debugf("Contract creation by %s collides with existing account %s", sender, address)
		return reverted(), nil
	}

	codeDepositCost := uint64(len(tx.Data)) * rules.Gas.CreateDataGasPerByte
	if codeDepositCost > gas {
		if rules.CodeDepositFailureReverts {
			return reverted(), nil
		}
		// The contract is still created, only without code
		err := transfer(state, sender, address, value)
		if err != nil {
			return nil, err
		}
		return succeeded(gas), nil
	}

	err = transfer(state, sender, address, value)
	if err != nil {
		return nil, err
	}
	contract.Code = append([]byte(nil), tx.Data...)
	return succeeded(gas - codeDepositCost), nil
}

func (sp *stateProcessor) call(state *accountState, rules *chainconfig.RuleSet, tx *externalapi.DomainTransaction,
	sender externalapi.DomainAddress, value *big.Int, gas uint64) (*executionOutcome, error) {

	to := *tx.To
	recipient, err := state.account(to)
	if err != nil {
		return nil, err
	}
	if len(recipient.Code) == 0 {
		err := transfer(state, sender, to, value)
		if err != nil {
			return nil, err
		}
		return succeeded(gas), nil
	}

	cost := rules.Gas.CallGas
	writesStorage := len(tx.Data) >= storageWriteDataSize
	if writesStorage {
		cost += rules.Gas.StorageWriteGas
	}
	if cost > gas {
		return reverted(), nil
	}

	err = transfer(state, sender, to, value)
	if err != nil {
		return nil, err
	}
	if !writesStorage {
		return succeeded(gas - cost), nil
	}

	var key, slotValue uint256.Int
	key.SetBytes(tx.Data[:32])
	slotValue.SetBytes(tx.Data[32:storageWriteDataSize])
	if slotValue.IsZero() {
		delete(recipient.Storage, key)
	} else {
		recipient.Storage[key] = slotValue
	}

	keyBytes := key.Bytes32()
	return succeeded(gas-cost, &externalapi.Log{
		Address: to,
		Topics:  []*externalapi.DomainHash{externalapi.NewDomainHashFromByteArray(&keyBytes)},
		Data:    append([]byte(nil), tx.Data...),
	}), nil
}

func transfer(state *accountState, from, to externalapi.DomainAddress, value *big.Int) error {
	if value.Sign() == 0 {
		return nil
	}
	fromAccount, err := state.account(from)
	if err != nil {
		return err
	}
	toAccount, err := state.account(to)
	if err != nil {
		return err
	}
	fromAccount.Balance.Sub(fromAccount.Balance, value)
	toAccount.Balance.Add(toAccount.Balance, value)
	return nil
}

func bigOrZero(value *big.Int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	return value
}
