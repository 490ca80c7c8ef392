package consensus_test

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/merkle"
	"github.com/blockforge/forkd/domain/consensus/utils/mining"
	"github.com/blockforge/forkd/domain/consensus/utils/testutils"
	"github.com/blockforge/forkd/domain/consensus/utils/txsigning"
	"github.com/blockforge/forkd/domain/prefixmanager"
	"github.com/blockforge/forkd/infrastructure/db/database"
	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

var (
	coinbaseA = externalapi.DomainAddress{0xc1}
	coinbaseB = externalapi.DomainAddress{0xc2}
	bob       = externalapi.DomainAddress{0xb0}
)

type funder struct {
	keyPair *secp256k1.SchnorrKeyPair
	address externalapi.DomainAddress
}

func newFunder(t *testing.T) *funder {
	privateKeyBytes := make([]byte, 32)
	privateKeyBytes[31] = 7
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKeyBytes)
	if err != nil {
		t.Fatalf("DeserializeSchnorrPrivateKeyFromSlice: %+v", err)
	}
	address, err := txsigning.AddressOfKeyPair(keyPair)
	if err != nil {
		t.Fatalf("AddressOfKeyPair: %+v", err)
	}
	return &funder{keyPair: keyPair, address: address}
}

func (f *funder) transfer(t *testing.T, nonce uint64, to externalapi.DomainAddress, value int64) *externalapi.DomainTransaction {
	tx := &externalapi.DomainTransaction{
		Nonce:    nonce,
		GasPrice: big.NewInt(2),
		GasLimit: 21000,
		To:       &to,
		Value:    big.NewInt(value),
	}
	err := txsigning.Sign(tx, f.keyPair)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	return tx
}

// simnetWithFunder returns simnet params whose genesis funds the funder
// with a single ether
func simnetWithFunder(f *funder) *consensus.Config {
	funderAccount := externalapi.NewAccount()
	funderAccount.Balance.Set(chainconfig.Ether)
	genesis := chainconfig.NewGenesis(chainconfig.SimnetParams.Genesis.Header,
		map[externalapi.DomainAddress]*externalapi.Account{f.address: funderAccount})
	return &consensus.Config{Params: *chainconfig.SimnetParams.WithGenesis(genesis)}
}

func newTestConsensus(t *testing.T, config *consensus.Config, testName string) (consensus.TestConsensus, func(bool)) {
	tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, testName)
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	return tc, teardown
}

func headNumber(t *testing.T, tc consensus.TestConsensus) (*externalapi.DomainHash, uint64) {
	headHash, headHeader, err := tc.GetHead()
	if err != nil {
		t.Fatalf("GetHead: %+v", err)
	}
	return headHash, headHeader.Number
}

func TestImportEmptyBlocks(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		tc, teardown := newTestConsensus(t, consensusConfig, "TestImportEmptyBlocks")
		defer teardown(false)

		parentHash := consensusConfig.GenesisHash
		blockHashes := make([]*externalapi.DomainHash, 0, 3)
		for i := 0; i < 3; i++ {
			blockHash, result, err := tc.AddBlock(parentHash, coinbaseA, nil)
			if err != nil {
				t.Fatalf("AddBlock %d: %+v", i+1, err)
			}
			if result.Status != externalapi.ImportAccepted || !result.IsCanonical || !result.IsHeadChanged {
				t.Fatalf("unexpected insertion result for block %d: %s", i+1, spew.Sdump(result))
			}
			blockHashes = append(blockHashes, blockHash)
			parentHash = blockHash
		}

		headHash, number := headNumber(t, tc)
		if number != 3 || !headHash.Equal(blockHashes[2]) {
			t.Fatalf("expected head %s at number 3, got %s at number %d", blockHashes[2], headHash, number)
		}

		block2, err := tc.GetCanonicalBlockByNumber(2)
		if err != nil {
			t.Fatalf("GetCanonicalBlockByNumber: %+v", err)
		}
		if !consensushashing.BlockHash(block2).Equal(blockHashes[1]) {
			t.Fatalf("expected canonical block 2 to be %s, got %s", blockHashes[1],
				consensushashing.BlockHash(block2))
		}

		_, err = tc.GetCanonicalBlockByNumber(4)
		if !errors.Is(err, consensus.ErrBlockNotFound) {
			t.Fatalf("expected ErrBlockNotFound past the head, got %+v", err)
		}
	})
}

func TestImportGasUsedExceedsGasLimit(t *testing.T) {
	tc, teardown := newTestConsensus(t, &consensus.Config{Params: chainconfig.SimnetParams},
		"TestImportGasUsedExceedsGasLimit")
	defer teardown(false)

	block, err := tc.BuildBlock(tc.Params().GenesisHash, coinbaseA, nil, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	block.Header.GasUsed = block.Header.GasLimit + 1
	mining.SolveBlock(block, rand.New(rand.NewSource(0)))

	_, err = tc.ImportBlock(block)
	if !errors.Is(err, ruleerrors.ErrGasUsedExceedsGasLimit) {
		t.Fatalf("expected ErrGasUsedExceedsGasLimit, got %+v", err)
	}
	kind, ok := ruleerrors.KindOf(err)
	if !ok || kind != ruleerrors.KindStructural {
		t.Fatalf("expected a structural error, got kind %s", kind)
	}

	headHash, number := headNumber(t, tc)
	if number != 0 || !headHash.Equal(tc.Params().GenesisHash) {
		t.Fatalf("the rejected block moved the head to %s", headHash)
	}
	info, err := tc.GetBlockInfo(consensushashing.BlockHash(block))
	if err != nil {
		t.Fatalf("GetBlockInfo: %+v", err)
	}
	if info.Exists {
		t.Fatalf("the rejected block was stored")
	}
	accounts, err := tc.GetAccounts()
	if err != nil {
		t.Fatalf("GetAccounts: %+v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("the rejected block changed the state: %s", spew.Sdump(accounts))
	}
}

func TestImportBlockTwice(t *testing.T) {
	tc, teardown := newTestConsensus(t, &consensus.Config{Params: chainconfig.SimnetParams}, "TestImportBlockTwice")
	defer teardown(false)

	block, err := tc.BuildBlock(tc.Params().GenesisHash, coinbaseA, nil, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	_, err = tc.ImportBlock(block)
	if err != nil {
		t.Fatalf("ImportBlock: %+v", err)
	}
	stateRoot, err := tc.GetStateRoot(consensushashing.BlockHash(block))
	if err != nil {
		t.Fatalf("GetStateRoot: %+v", err)
	}

	result, err := tc.ImportBlock(block)
	if err != nil {
		t.Fatalf("importing a known block failed: %+v", err)
	}
	if result.Status != externalapi.ImportAlreadyKnown || result.IsHeadChanged {
		t.Fatalf("unexpected insertion result: %s", spew.Sdump(result))
	}

	stateRootAfter, err := tc.GetStateRoot(consensushashing.BlockHash(block))
	if err != nil {
		t.Fatalf("GetStateRoot: %+v", err)
	}
	if !stateRoot.Equal(stateRootAfter) {
		t.Fatalf("the state root changed from %s to %s", stateRoot, stateRootAfter)
	}
	coinbaseAccount, _, err := tc.GetAccount(coinbaseA)
	if err != nil {
		t.Fatalf("GetAccount: %+v", err)
	}
	reward := tc.GetRuleForBlockNumber(1).Rules.BlockReward
	if coinbaseAccount.Balance.Cmp(reward) != 0 {
		t.Fatalf("expected the coinbase to be rewarded once with %s, got %s", reward, coinbaseAccount.Balance)
	}
}

func TestImportTransactions(t *testing.T) {
	f := newFunder(t)
	tc, teardown := newTestConsensus(t, simnetWithFunder(f), "TestImportTransactions")
	defer teardown(false)

	txs := []*externalapi.DomainTransaction{f.transfer(t, 0, bob, 100), f.transfer(t, 1, bob, 50)}
	blockHash, _, err := tc.AddBlock(tc.Params().GenesisHash, coinbaseA, txs)
	if err != nil {
		t.Fatalf("AddBlock: %+v", err)
	}

	receipts, err := tc.GetReceipts(blockHash)
	if err != nil {
		t.Fatalf("GetReceipts: %+v", err)
	}
	if len(receipts) != 2 || receipts[1].CumulativeGasUsed != 42000 {
		t.Fatalf("unexpected receipts: %s", spew.Sdump(receipts))
	}

	funderAccount := externalapi.NewAccount()
	funderAccount.Balance.Sub(chainconfig.Ether, big.NewInt(150+42000*2))
	funderAccount.Nonce = 2
	bobAccount := externalapi.NewAccount()
	bobAccount.Balance.SetInt64(150)
	coinbaseAccount := externalapi.NewAccount()
	coinbaseAccount.Balance.Add(tc.GetRuleForBlockNumber(1).Rules.BlockReward, big.NewInt(42000*2))

	err = tc.VerifyState(map[externalapi.DomainAddress]*externalapi.Account{
		f.address: funderAccount,
		bob:       bobAccount,
		coinbaseA: coinbaseAccount,
	})
	if err != nil {
		t.Fatalf("VerifyState: %+v", err)
	}

	bobAccount.Balance.SetInt64(151)
	err = tc.VerifyState(map[externalapi.DomainAddress]*externalapi.Account{bob: bobAccount})
	var mismatch ruleerrors.ErrStateMismatch
	if !errors.As(err, &mismatch) || len(mismatch.Mismatches) != 1 || mismatch.Mismatches[0].Field != "balance" {
		t.Fatalf("expected a single balance mismatch, got %+v", err)
	}
}

func TestImportInvalidTransactionIsAtomic(t *testing.T) {
	f := newFunder(t)
	tc, teardown := newTestConsensus(t, simnetWithFunder(f), "TestImportInvalidTransactionIsAtomic")
	defer teardown(false)

	block, err := tc.BuildBlock(tc.Params().GenesisHash, coinbaseA,
		[]*externalapi.DomainTransaction{f.transfer(t, 0, bob, 100)}, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}

	// The second transaction reuses the first one's nonce
	block.Transactions = append(block.Transactions, f.transfer(t, 0, bob, 100))
	block.Header.TransactionRoot = *merkle.CalculateTransactionRoot(block.Transactions)
	mining.SolveBlock(block, rand.New(rand.NewSource(0)))

	_, err = tc.ImportBlock(block)
	if !errors.Is(err, ruleerrors.ErrInvalidNonce) {
		t.Fatalf("expected ErrInvalidNonce, got %+v", err)
	}
	var invalidTx ruleerrors.ErrInvalidTransaction
	if !errors.As(err, &invalidTx) || invalidTx.Index != 1 {
		t.Fatalf("expected the transaction at index 1 to be blamed, got %+v", err)
	}

	_, number := headNumber(t, tc)
	if number != 0 {
		t.Fatalf("the rejected block moved the head to number %d", number)
	}
	_, found, err := tc.GetAccount(bob)
	if err != nil {
		t.Fatalf("GetAccount: %+v", err)
	}
	if found {
		t.Fatalf("the valid transaction of the rejected block was applied")
	}
	funderAccount, _, err := tc.GetAccount(f.address)
	if err != nil {
		t.Fatalf("GetAccount: %+v", err)
	}
	if funderAccount.Nonce != 0 || funderAccount.Balance.Cmp(chainconfig.Ether) != 0 {
		t.Fatalf("the rejected block changed the sender: %s", spew.Sdump(funderAccount))
	}
}

func TestImportBadStateRootLeavesDatabaseUntouched(t *testing.T) {
	f := newFunder(t)
	tc, teardown := newTestConsensus(t, simnetWithFunder(f), "TestImportBadStateRootLeavesDatabaseUntouched")
	defer teardown(false)

	accepted, err := tc.BuildBlock(tc.Params().GenesisHash, coinbaseA,
		[]*externalapi.DomainTransaction{f.transfer(t, 0, bob, 100)}, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	_, err = tc.ImportBlock(accepted)
	if err != nil {
		t.Fatalf("ImportBlock: %+v", err)
	}

	// Executes cleanly and only then fails its state commitment
	block, err := tc.BuildBlock(consensushashing.BlockHash(accepted), coinbaseA,
		[]*externalapi.DomainTransaction{f.transfer(t, 1, bob, 100)}, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	block.Header.StateRoot = *fakeHash(0xee)
	mining.SolveBlock(block, rand.New(rand.NewSource(0)))

	before := prefixSnapshot(t, tc.DatabaseContext())
	_, err = tc.ImportBlock(block)
	if !errors.Is(err, ruleerrors.ErrBadStateRoot) {
		t.Fatalf("expected ErrBadStateRoot, got %+v", err)
	}
	after := prefixSnapshot(t, tc.DatabaseContext())

	if len(before) != len(after) {
		t.Fatalf("the rejected block changed the key count from %d to %d", len(before), len(after))
	}
	for key, value := range before {
		afterValue, ok := after[key]
		if !ok {
			t.Fatalf("the rejected block deleted key %x", key)
		}
		if afterValue != value {
			t.Fatalf("the rejected block changed the value of key %x", key)
		}
	}
}

// prefixSnapshot copies every key and value stored under the default prefix.
func prefixSnapshot(t *testing.T, db model.DBReader) map[string]string {
	cursor, err := db.Cursor(database.MakeBucket(prefixmanager.DefaultPrefix().Serialize()))
	if err != nil {
		t.Fatalf("Cursor: %+v", err)
	}
	defer cursor.Close()

	snapshot := make(map[string]string)
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %+v", err)
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("Value: %+v", err)
		}
		snapshot[string(key.Bytes())] = string(value)
	}
	if len(snapshot) == 0 {
		t.Fatalf("found no keys under the default prefix")
	}
	return snapshot
}

func TestImportUnknownParent(t *testing.T) {
	tc, teardown := newTestConsensus(t, &consensus.Config{Params: chainconfig.SimnetParams}, "TestImportUnknownParent")
	defer teardown(false)

	block, err := tc.BuildBlock(tc.Params().GenesisHash, coinbaseA, nil, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	block.Header.ParentHash = *fakeHash(0x01)
	mining.SolveBlock(block, rand.New(rand.NewSource(0)))

	_, err = tc.ImportBlock(block)
	if !errors.Is(err, ruleerrors.ErrMissingParent) {
		t.Fatalf("expected ErrMissingParent, got %+v", err)
	}
	kind, _ := ruleerrors.KindOf(err)
	if kind != ruleerrors.KindLinkage {
		t.Fatalf("expected a linkage error, got kind %s", kind)
	}

	_, err = tc.ImportBlock(&externalapi.DomainBlock{})
	if !errors.Is(err, ruleerrors.ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %+v", err)
	}
}

func TestReorgByTotalDifficulty(t *testing.T) {
	f := newFunder(t)
	tc, teardown := newTestConsensus(t, simnetWithFunder(f), "TestReorgByTotalDifficulty")
	defer teardown(false)
	genesisHash := tc.Params().GenesisHash

	a1, _, err := tc.AddBlock(genesisHash, coinbaseA, []*externalapi.DomainTransaction{f.transfer(t, 0, bob, 100)})
	if err != nil {
		t.Fatalf("AddBlock a1: %+v", err)
	}

	b1, result, err := tc.AddBlock(genesisHash, coinbaseB, nil)
	if err != nil {
		t.Fatalf("AddBlock b1: %+v", err)
	}
	if result.IsCanonical || result.IsHeadChanged {
		t.Fatalf("a block with equal total difficulty took over the head: %s", spew.Sdump(result))
	}
	headHash, _ := headNumber(t, tc)
	if !headHash.Equal(a1) {
		t.Fatalf("expected head %s, got %s", a1, headHash)
	}

	b2, result, err := tc.AddBlock(b1, coinbaseB, nil)
	if err != nil {
		t.Fatalf("AddBlock b2: %+v", err)
	}
	if !result.IsCanonical || !result.IsHeadChanged {
		t.Fatalf("the heavier chain did not take over the head: %s", spew.Sdump(result))
	}
	changes := result.ChainChanges
	if len(changes.Removed) != 1 || !changes.Removed[0].Equal(a1) ||
		len(changes.Added) != 2 || !changes.Added[0].Equal(b1) || !changes.Added[1].Equal(b2) {
		t.Fatalf("unexpected chain changes: %s", spew.Sdump(changes))
	}

	canonical1, found, err := tc.GetCanonicalHashByNumber(1)
	if err != nil || !found || !canonical1.Equal(b1) {
		t.Fatalf("expected canonical block 1 to be %s, got %s (found: %t, err: %+v)", b1, canonical1, found, err)
	}
	info, err := tc.GetBlockInfo(a1)
	if err != nil {
		t.Fatalf("GetBlockInfo: %+v", err)
	}
	if info.Status != externalapi.StatusSideChain {
		t.Fatalf("expected a1 to be on a side chain, got %s", info.Status)
	}

	_, found, err = tc.GetAccount(bob)
	if err != nil {
		t.Fatalf("GetAccount: %+v", err)
	}
	if found {
		t.Fatalf("the transfer of the reorged-out block is still in the head state")
	}
	bobAtA1, found, err := tc.GetAccountAt(a1, bob)
	if err != nil {
		t.Fatalf("GetAccountAt: %+v", err)
	}
	if !found || bobAtA1.Balance.Int64() != 100 {
		t.Fatalf("expected bob to hold 100 after a1, got %s", spew.Sdump(bobAtA1))
	}

	// The transfer can be mined again on the new chain
	b3, _, err := tc.AddBlock(b2, coinbaseB, []*externalapi.DomainTransaction{f.transfer(t, 0, bob, 100)})
	if err != nil {
		t.Fatalf("AddBlock b3: %+v", err)
	}
	headHash, number := headNumber(t, tc)
	if number != 3 || !headHash.Equal(b3) {
		t.Fatalf("expected head %s at number 3, got %s at number %d", b3, headHash, number)
	}
}

func TestOmmers(t *testing.T) {
	tc, teardown := newTestConsensus(t, &consensus.Config{Params: chainconfig.SimnetParams}, "TestOmmers")
	defer teardown(false)
	genesisHash := tc.Params().GenesisHash

	ommer, err := tc.BuildBlock(genesisHash, coinbaseB, nil, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}

	parentHash := genesisHash
	for i := 0; i < 2; i++ {
		parentHash, _, err = tc.AddBlock(parentHash, coinbaseA, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
	}

	block3, err := tc.BuildBlock(parentHash, coinbaseA, nil, []*externalapi.DomainBlockHeader{ommer.Header})
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	_, err = tc.ImportBlock(block3)
	if err != nil {
		t.Fatalf("ImportBlock: %+v", err)
	}

	// The ommer at number 1 is included at number 3, so it earns 6/8 of the reward
	blockReward := tc.GetRuleForBlockNumber(3).Rules.BlockReward
	expectedOmmerReward := new(big.Int).Div(new(big.Int).Mul(blockReward, big.NewInt(6)), big.NewInt(8))
	expectedCoinbaseReward := new(big.Int).Mul(blockReward, big.NewInt(3))
	expectedCoinbaseReward.Add(expectedCoinbaseReward, new(big.Int).Div(blockReward, big.NewInt(32)))

	ommerCoinbase := externalapi.NewAccount()
	ommerCoinbase.Balance.Set(expectedOmmerReward)
	includingCoinbase := externalapi.NewAccount()
	includingCoinbase.Balance.Set(expectedCoinbaseReward)
	err = tc.VerifyState(map[externalapi.DomainAddress]*externalapi.Account{
		coinbaseA: includingCoinbase,
		coinbaseB: ommerCoinbase,
	})
	if err != nil {
		t.Fatalf("VerifyState: %+v", err)
	}

	block4, err := tc.BuildBlock(consensushashing.BlockHash(block3), coinbaseA, nil,
		[]*externalapi.DomainBlockHeader{ommer.Header})
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	_, err = tc.ImportBlock(block4)
	if !errors.Is(err, ruleerrors.ErrOmmerAlreadyIncluded) {
		t.Fatalf("expected ErrOmmerAlreadyIncluded, got %+v", err)
	}

	block4, err = tc.BuildBlock(consensushashing.BlockHash(block3), coinbaseA, nil,
		[]*externalapi.DomainBlockHeader{block3.Header})
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	_, err = tc.ImportBlock(block4)
	if !errors.Is(err, ruleerrors.ErrOmmerIsAncestor) {
		t.Fatalf("expected ErrOmmerIsAncestor, got %+v", err)
	}
}

func TestDAOFork(t *testing.T) {
	tc, teardown := newTestConsensus(t, &consensus.Config{Params: chainconfig.TestnetEarlyForkParams}, "TestDAOFork")
	defer teardown(false)

	if name := tc.GetRuleForBlockNumber(4).Rules.Name; name != "Frontier" {
		t.Fatalf("expected Frontier rules at block 4, got %s", name)
	}
	if name := tc.GetRuleForBlockNumber(5).Rules.Name; name != "Homestead" {
		t.Fatalf("expected Homestead rules at block 5, got %s", name)
	}

	blockHashes := []*externalapi.DomainHash{tc.Params().GenesisHash}
	for number := 1; number <= 8; number++ {
		blockHash, _, err := tc.AddBlock(blockHashes[len(blockHashes)-1], coinbaseA, nil)
		if err != nil {
			t.Fatalf("AddBlock %d: %+v", number, err)
		}
		blockHashes = append(blockHashes, blockHash)
	}

	drainBalance := new(big.Int).Mul(big.NewInt(1000), chainconfig.Ether)
	drainBefore, _, err := tc.GetAccountAt(blockHashes[7], chainconfig.TestnetDAODrainAddress)
	if err != nil {
		t.Fatalf("GetAccountAt: %+v", err)
	}
	if drainBefore.Balance.Cmp(drainBalance) != 0 {
		t.Fatalf("expected the drain account to hold %s before the fork, got %s", drainBalance, drainBefore.Balance)
	}

	refund := externalapi.NewAccount()
	refund.Balance.Set(drainBalance)
	err = tc.VerifyState(map[externalapi.DomainAddress]*externalapi.Account{
		chainconfig.TestnetDAODrainAddress:  externalapi.NewAccount(),
		chainconfig.TestnetDAORefundAddress: refund,
	})
	if err != nil {
		t.Fatalf("VerifyState after the DAO fork: %+v", err)
	}

	header8, err := tc.GetBlockHeader(blockHashes[8])
	if err != nil {
		t.Fatalf("GetBlockHeader: %+v", err)
	}
	if string(header8.ExtraData) != "dao-hard-fork" {
		t.Fatalf("expected the fork block to carry the DAO marker, got %q", header8.ExtraData)
	}

	block9, err := tc.BuildBlock(blockHashes[8], coinbaseA, nil, nil)
	if err != nil {
		t.Fatalf("BuildBlock: %+v", err)
	}
	block9.Header.ExtraData = nil
	mining.SolveBlock(block9, rand.New(rand.NewSource(0)))
	_, err = tc.ImportBlock(block9)
	if !errors.Is(err, ruleerrors.ErrBadDAOExtraData) {
		t.Fatalf("expected ErrBadDAOExtraData, got %+v", err)
	}
}

func TestQueriesOnUnknownBlock(t *testing.T) {
	tc, teardown := newTestConsensus(t, &consensus.Config{Params: chainconfig.SimnetParams}, "TestQueriesOnUnknownBlock")
	defer teardown(false)

	unknown := fakeHash(0xff)
	_, err := tc.GetBlock(unknown)
	if !errors.Is(err, consensus.ErrBlockNotFound) {
		t.Fatalf("GetBlock: expected ErrBlockNotFound, got %+v", err)
	}
	_, err = tc.GetReceipts(unknown)
	if !errors.Is(err, consensus.ErrBlockNotFound) {
		t.Fatalf("GetReceipts: expected ErrBlockNotFound, got %+v", err)
	}
	_, _, err = tc.GetAccountAt(unknown, bob)
	if !errors.Is(err, consensus.ErrBlockNotFound) {
		t.Fatalf("GetAccountAt: expected ErrBlockNotFound, got %+v", err)
	}
	err = tc.VerifyStateAt(unknown, nil)
	if !errors.Is(err, consensus.ErrBlockNotFound) {
		t.Fatalf("VerifyStateAt: expected ErrBlockNotFound, got %+v", err)
	}
	_, found, err := tc.GetCanonicalHashByNumber(1)
	if err != nil || found {
		t.Fatalf("expected no canonical block 1, got found: %t, err: %+v", found, err)
	}
}

func fakeHash(firstByte byte) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	hashBytes[0] = firstByte
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}
