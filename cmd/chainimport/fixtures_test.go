package main

import (
	"io/ioutil"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const genesisFixture = `{
	"coinbase": "0x00000000000000000000000000000000000000c1",
	"difficulty": "0x1",
	"gasLimit": 8000000,
	"timestamp": 1000,
	"extraData": "0x666f726b64",
	"accounts": {
		"0x00000000000000000000000000000000000000a1": {
			"balance": "1000000000000000000",
			"nonce": 3,
			"code": "0x6000",
			"storage": {"0x01": "0x2a", "0x02": "0x0"}
		}
	}
}`

func writeFixture(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	err := ioutil.WriteFile(path, []byte(content), 0600)
	if err != nil {
		t.Fatalf("WriteFile: %+v", err)
	}
	return path
}

func fixtureAddress(b byte) externalapi.DomainAddress {
	var address externalapi.DomainAddress
	address[len(address)-1] = b
	return address
}

func TestLoadGenesis(t *testing.T) {
	genesis, err := loadGenesis(writeFixture(t, "genesis.json", genesisFixture))
	if err != nil {
		t.Fatalf("loadGenesis: %+v", err)
	}

	header := genesis.Header
	if header.Difficulty.Cmp(big.NewInt(1)) != 0 || header.GasLimit != 8000000 || header.Timestamp != 1000 {
		t.Fatalf("unexpected genesis header: %+v", header)
	}
	if header.Coinbase != fixtureAddress(0xc1) {
		t.Fatalf("unexpected coinbase %x", header.Coinbase)
	}
	if string(header.ExtraData) != "forkd" {
		t.Fatalf("unexpected extra data %q", header.ExtraData)
	}

	account, ok := genesis.Accounts[fixtureAddress(0xa1)]
	if !ok {
		t.Fatalf("the genesis account is missing")
	}
	if account.Balance.Cmp(chainconfig.Ether) != 0 || account.Nonce != 3 {
		t.Fatalf("unexpected account %+v", account)
	}
	if len(account.Storage) != 1 || account.Storage[*uint256.NewInt(1)] != *uint256.NewInt(42) {
		t.Fatalf("unexpected storage %v", account.Storage)
	}

	params := chainconfig.SimnetParams.WithGenesis(genesis)
	err = chainconfig.ValidateGenesis(params.Genesis)
	if err != nil {
		t.Fatalf("the loaded genesis does not validate: %+v", err)
	}

	tc, teardown, err := consensus.NewFactory().NewTestConsensus(&consensus.Config{Params: *params}, "TestLoadGenesis")
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	defer teardown(false)

	err = tc.VerifyState(genesis.Accounts)
	if err != nil {
		t.Fatalf("VerifyState: %+v", err)
	}
}

func TestLoadExpectedStateMismatch(t *testing.T) {
	params := chainconfig.SimnetParams.WithGenesis(mustLoadGenesis(t))
	tc, teardown, err := consensus.NewFactory().NewTestConsensus(&consensus.Config{Params: *params}, "TestLoadExpectedStateMismatch")
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	defer teardown(false)

	expected, err := loadExpectedState(writeFixture(t, "expected.json", `{
		"0x00000000000000000000000000000000000000a1": {"balance": "0x1", "nonce": 3, "code": "0x6000", "storage": {"0x01": "42"}}
	}`))
	if err != nil {
		t.Fatalf("loadExpectedState: %+v", err)
	}

	err = tc.VerifyState(expected)
	var mismatch ruleerrors.ErrStateMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrStateMismatch, got %v", err)
	}
}

func mustLoadGenesis(t *testing.T) *externalapi.Genesis {
	genesis, err := loadGenesis(writeFixture(t, "genesis.json", genesisFixture))
	if err != nil {
		t.Fatalf("loadGenesis: %+v", err)
	}
	return genesis
}

func TestFixtureErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: `{"difficulty": "1", "mixHash": "0x00"}`},
		{name: "negative difficulty", content: `{"difficulty": "-1"}`},
		{name: "bad address", content: `{"difficulty": "1", "accounts": {"0x12": {}}}`},
		{name: "bad code", content: `{"difficulty": "1", "accounts": {"0x00000000000000000000000000000000000000a1": {"code": "0xzz"}}}`},
		{name: "oversized storage", content: `{"difficulty": "1", "accounts": {"0x00000000000000000000000000000000000000a1": ` +
			`{"storage": {"0x1": "0x10000000000000000000000000000000000000000000000000000000000000000"}}}}`},
	}

	for _, test := range tests {
		_, err := loadGenesis(writeFixture(t, "genesis.json", test.content))
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}
