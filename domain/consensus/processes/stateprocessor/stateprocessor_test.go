package stateprocessor

import (
	"math/big"
	"testing"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/bloom"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/txsigning"
	"github.com/davecgh/go-spew/spew"
	"github.com/holiman/uint256"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

type mapReader map[externalapi.DomainAddress]*externalapi.Account

func (m mapReader) Account(address externalapi.DomainAddress) (*externalapi.Account, bool, error) {
	account, ok := m[address]
	if !ok {
		return nil, false, nil
	}
	return account.Clone(), true, nil
}

var coinbase = externalapi.DomainAddress{0xcb}

type fixture struct {
	t       *testing.T
	keyPair *secp256k1.SchnorrKeyPair
	sender  externalapi.DomainAddress
	parent  mapReader
}

func newFixture(t *testing.T, senderBalance *big.Int) *fixture {
	privateKeyBytes := make([]byte, 32)
	privateKeyBytes[31] = 42
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKeyBytes)
	if err != nil {
		t.Fatalf("DeserializeSchnorrPrivateKeyFromSlice: %+v", err)
	}
	sender, err := txsigning.AddressOfKeyPair(keyPair)
	if err != nil {
		t.Fatalf("AddressOfKeyPair: %+v", err)
	}
	senderAccount := externalapi.NewAccount()
	senderAccount.Balance.Set(senderBalance)
	return &fixture{t: t, keyPair: keyPair, sender: sender, parent: mapReader{sender: senderAccount}}
}

func (f *fixture) tx(nonce uint64, to *externalapi.DomainAddress, value int64, gasLimit uint64,
	data []byte) *externalapi.DomainTransaction {

	tx := &externalapi.DomainTransaction{
		Nonce:    nonce,
		GasPrice: big.NewInt(2),
		GasLimit: gasLimit,
		To:       to,
		Value:    big.NewInt(value),
		Data:     data,
	}
	err := txsigning.Sign(tx, f.keyPair)
	if err != nil {
		f.t.Fatalf("Sign: %+v", err)
	}
	return tx
}

func block(number uint64, txs ...*externalapi.DomainTransaction) *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Number:     number,
			GasLimit:   1000000,
			Coinbase:   coinbase,
			Difficulty: big.NewInt(1),
		},
		Transactions: txs,
		Ommers:       []*externalapi.DomainBlockHeader{},
	}
}

func singleRuleSet(t *testing.T, rules *chainconfig.RuleSet) model.StateProcessor {
	forkTable, err := chainconfig.NewForkTableFromActivations(chainconfig.Activation{Block: 0, Rules: rules})
	if err != nil {
		t.Fatalf("NewForkTableFromActivations: %+v", err)
	}
	return New(forkTable)
}

func TestApplyBlockTransfer(t *testing.T) {
	f := newFixture(t, chainconfig.Ether)
	bob := externalapi.DomainAddress{0xb0}
	sp := singleRuleSet(t, chainconfig.Homestead())

	result, err := sp.ApplyBlock(f.parent, block(1, f.tx(0, &bob, 100, 21000, nil)))
	if err != nil {
		t.Fatalf("ApplyBlock: %+v", err)
	}

	if result.GasUsed != 21000 || len(result.Receipts) != 1 {
		t.Fatalf("unexpected result: %s", spew.Sdump(result))
	}
	receipt := result.Receipts[0]
	if receipt.Status != externalapi.ReceiptStatusSuccessful || receipt.CumulativeGasUsed != 21000 {
		t.Fatalf("unexpected receipt: %s", spew.Sdump(receipt))
	}

	expectedSender := new(big.Int).Sub(chainconfig.Ether, big.NewInt(100+21000*2))
	if result.AccountDiff[f.sender].After.Balance.Cmp(expectedSender) != 0 ||
		result.AccountDiff[f.sender].After.Nonce != 1 {
		t.Fatalf("unexpected sender change: %s", spew.Sdump(result.AccountDiff[f.sender]))
	}
	if result.AccountDiff[bob].Before != nil || result.AccountDiff[bob].After.Balance.Int64() != 100 {
		t.Fatalf("unexpected recipient change: %s", spew.Sdump(result.AccountDiff[bob]))
	}
	expectedCoinbase := new(big.Int).Mul(big.NewInt(5), chainconfig.Ether)
	expectedCoinbase.Add(expectedCoinbase, big.NewInt(21000*2))
	if result.AccountDiff[coinbase].After.Balance.Cmp(expectedCoinbase) != 0 {
		t.Fatalf("expected coinbase balance %s, got %s", expectedCoinbase,
			result.AccountDiff[coinbase].After.Balance)
	}
	if f.parent[f.sender].Nonce != 0 || f.parent[f.sender].Balance.Cmp(chainconfig.Ether) != 0 {
		t.Fatalf("ApplyBlock mutated the parent state")
	}
}

func TestApplyBlockInvalidTransactionFailsBlock(t *testing.T) {
	f := newFixture(t, chainconfig.Ether)
	bob := externalapi.DomainAddress{0xb0}
	sp := singleRuleSet(t, chainconfig.Homestead())

	tests := []struct {
		name     string
		txs      []*externalapi.DomainTransaction
		index    int
		sentinel error
	}{
		{
			name:     "nonce too high",
			txs:      []*externalapi.DomainTransaction{f.tx(1, &bob, 1, 21000, nil)},
			index:    0,
			sentinel: ruleerrors.ErrInvalidNonce,
		},
		{
			name: "nonce replay after a valid transaction",
			txs: []*externalapi.DomainTransaction{
				f.tx(0, &bob, 1, 21000, nil),
				f.tx(0, &bob, 1, 21000, nil),
			},
			index:    1,
			sentinel: ruleerrors.ErrInvalidNonce,
		},
		{
			name:     "below intrinsic gas",
			txs:      []*externalapi.DomainTransaction{f.tx(0, &bob, 1, 20999, nil)},
			sentinel: ruleerrors.ErrIntrinsicGas,
		},
		{
			name:     "insufficient funds",
			txs:      []*externalapi.DomainTransaction{f.tx(0, &bob, 0, 21000, nil)},
			sentinel: ruleerrors.ErrInsufficientFunds,
		},
		{
			name:     "above block gas limit",
			txs:      []*externalapi.DomainTransaction{f.tx(0, &bob, 1, 1000001, nil)},
			sentinel: ruleerrors.ErrBlockGasLimitReached,
		},
	}
	// Spending the whole balance on value leaves nothing for gas
	tests[3].txs[0].Value = new(big.Int).Set(chainconfig.Ether)
	err := txsigning.Sign(tests[3].txs[0], f.keyPair)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}

	for _, test := range tests {
		_, err := sp.ApplyBlock(f.parent, block(1, test.txs...))
		if !errors.Is(err, test.sentinel) {
			t.Fatalf("%s: expected %v, got %+v", test.name, test.sentinel, err)
		}
		kind, ok := ruleerrors.KindOf(err)
		if !ok || kind != ruleerrors.KindTransactionValidation {
			t.Fatalf("%s: expected a transaction validation error, got %s", test.name, kind)
		}
		var invalidTx ruleerrors.ErrInvalidTransaction
		if !errors.As(err, &invalidTx) || invalidTx.Index != test.index {
			t.Fatalf("%s: expected transaction #%d to be blamed, got %+v", test.name, test.index, err)
		}
	}

	tampered := f.tx(0, &bob, 1, 21000, nil)
	tampered.Value = big.NewInt(2)
	_, err = sp.ApplyBlock(f.parent, block(1, tampered))
	if !errors.Is(err, ruleerrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %+v", err)
	}
}

func TestApplyBlockContractStorage(t *testing.T) {
	f := newFixture(t, chainconfig.Ether)
	sp := singleRuleSet(t, chainconfig.Homestead())
	contract := consensushashing.ContractAddress(f.sender, 0)

	data := make([]byte, 64)
	data[31] = 1
	data[63] = 42
	// 21000 + 62 zero bytes * 4 + 2 non-zero bytes * 68, then call and storage write
	callGas := uint64(21000 + 62*4 + 2*68 + 40 + 20000)

	result, err := sp.ApplyBlock(f.parent, block(1,
		f.tx(0, nil, 0, 100000, []byte{0x60, 0x60, 0x60, 0x40}),
		f.tx(1, &contract, 0, callGas, data),
		f.tx(2, &contract, 0, callGas-1, data),
	))
	if err != nil {
		t.Fatalf("ApplyBlock: %+v", err)
	}

	createReceipt, callReceipt, revertedReceipt := result.Receipts[0], result.Receipts[1], result.Receipts[2]
	if createReceipt.Status != externalapi.ReceiptStatusSuccessful || createReceipt.GasUsed != 53000+4*68+4*200 {
		t.Fatalf("unexpected create receipt: %s", spew.Sdump(createReceipt))
	}
	if callReceipt.Status != externalapi.ReceiptStatusSuccessful || callReceipt.GasUsed != callGas {
		t.Fatalf("unexpected call receipt: %s", spew.Sdump(callReceipt))
	}
	if len(callReceipt.Logs) != 1 || callReceipt.Logs[0].Address != contract {
		t.Fatalf("expected one log from the contract, got %s", spew.Sdump(callReceipt.Logs))
	}
	if !bloom.Test(&callReceipt.Bloom, contract[:]) || !bloom.Test(&result.Bloom, contract[:]) {
		t.Fatalf("expected the contract address in the receipt and block blooms")
	}
	if revertedReceipt.Status != externalapi.ReceiptStatusFailed || revertedReceipt.GasUsed != callGas-1 {
		t.Fatalf("unexpected reverted receipt: %s", spew.Sdump(revertedReceipt))
	}
	if result.GasUsed != revertedReceipt.CumulativeGasUsed {
		t.Fatalf("block gas used %d differs from the last cumulative gas used %d",
			result.GasUsed, revertedReceipt.CumulativeGasUsed)
	}

	contractAccount := result.AccountDiff[contract].After
	if string(contractAccount.Code) != "\x60\x60\x60\x40" {
		t.Fatalf("unexpected contract code %x", contractAccount.Code)
	}
	slotValue := contractAccount.Storage[*uint256.NewInt(1)]
	if !slotValue.Eq(uint256.NewInt(42)) {
		t.Fatalf("expected storage slot 1 to hold 42, got %s", slotValue.Hex())
	}
	if result.AccountDiff[f.sender].After.Nonce != 3 {
		t.Fatalf("expected the reverted transaction to still bump the nonce")
	}
}

func TestApplyBlockCodeDepositFailure(t *testing.T) {
	tests := []struct {
		name           string
		rules          *chainconfig.RuleSet
		intrinsicGas   uint64
		expectedStatus externalapi.ReceiptStatus
		contractExists bool
	}{
		{"frontier creates without code", chainconfig.Frontier(), 21000 + 4*68, externalapi.ReceiptStatusSuccessful, true},
		{"homestead reverts", chainconfig.Homestead(), 53000 + 4*68, externalapi.ReceiptStatusFailed, false},
	}

	for _, test := range tests {
		f := newFixture(t, chainconfig.Ether)
		sp := singleRuleSet(t, test.rules)
		contract := consensushashing.ContractAddress(f.sender, 0)

		result, err := sp.ApplyBlock(f.parent, block(1, f.tx(0, nil, 5, test.intrinsicGas+10, []byte{1, 2, 3, 4})))
		if err != nil {
			t.Fatalf("%s: ApplyBlock: %+v", test.name, err)
		}
		if result.Receipts[0].Status != test.expectedStatus {
			t.Fatalf("%s: expected status %s, got %s", test.name, test.expectedStatus, result.Receipts[0].Status)
		}
		change, exists := result.AccountDiff[contract]
		if exists != test.contractExists {
			t.Fatalf("%s: expected contract existence %t, got %t", test.name, test.contractExists, exists)
		}
		if exists && (len(change.After.Code) != 0 || change.After.Balance.Int64() != 5) {
			t.Fatalf("%s: unexpected contract %s", test.name, spew.Sdump(change.After))
		}
	}
}

func TestApplyBlockDAOFork(t *testing.T) {
	drained := externalapi.DomainAddress{0xda}
	refund := externalapi.DomainAddress{0xbf}
	rules := chainconfig.Homestead().WithDAOFork(2, []externalapi.DomainAddress{drained}, refund)
	sp := singleRuleSet(t, rules)

	drainedAccount := externalapi.NewAccount()
	drainedAccount.Balance.SetInt64(50)
	parent := mapReader{drained: drainedAccount}

	result, err := sp.ApplyBlock(parent, block(1))
	if err != nil {
		t.Fatalf("ApplyBlock: %+v", err)
	}
	if _, ok := result.AccountDiff[refund]; ok {
		t.Fatalf("expected no balance move before the fork block")
	}

	result, err = sp.ApplyBlock(parent, block(2))
	if err != nil {
		t.Fatalf("ApplyBlock: %+v", err)
	}
	if result.AccountDiff[drained].After.Balance.Sign() != 0 {
		t.Fatalf("expected the drained account to be emptied")
	}
	if result.AccountDiff[refund].After.Balance.Int64() != 50 {
		t.Fatalf("expected the refund address to receive 50, got %s",
			result.AccountDiff[refund].After.Balance)
	}
}
