package consensus_test

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/prefixmanager"
	"github.com/blockforge/forkd/infrastructure/db/database/ldb"
)

func TestNewConsensus(t *testing.T) {
	f := consensus.NewFactory()

	config := &consensus.Config{Params: chainconfig.DevnetParams}
	tmpDir, err := ioutil.TempDir("", "TestNewConsensus")
	if err != nil {
		t.Fatalf("error in ioutil.TempDir: %+v", err)
	}
	defer os.RemoveAll(tmpDir)

	db, err := ldb.NewLevelDB(tmpDir, 8)
	if err != nil {
		t.Fatalf("error in NewLevelDB: %+v", err)
	}
	defer db.Close()

	c, err := f.NewConsensus(config, db, prefixmanager.DefaultPrefix())
	if err != nil {
		t.Fatalf("error in NewConsensus: %+v", err)
	}
	headHash, headHeader, err := c.GetHead()
	if err != nil {
		t.Fatalf("GetHead: %+v", err)
	}
	if !headHash.Equal(config.GenesisHash) || headHeader.Number != 0 {
		t.Fatalf("expected the genesis %s as head, got %s", config.GenesisHash, headHash)
	}

	// Reopening with the same genesis finds the existing chain
	_, err = f.NewConsensus(config, db, prefixmanager.DefaultPrefix())
	if err != nil {
		t.Fatalf("error reopening the consensus: %+v", err)
	}

	// A different genesis under the same prefix is rejected
	_, err = f.NewConsensus(&consensus.Config{Params: chainconfig.SimnetParams}, db, prefixmanager.DefaultPrefix())
	if !chainconfig.IsConfigurationError(err) {
		t.Fatalf("expected a configuration error for a mismatching genesis, got %+v", err)
	}

	// ...but is accepted under another prefix
	otherPrefix := prefixmanager.DefaultPrefix().Flip()
	simnet, err := f.NewConsensus(&consensus.Config{Params: chainconfig.SimnetParams}, db, otherPrefix)
	if err != nil {
		t.Fatalf("error in NewConsensus under %s: %+v", otherPrefix, err)
	}
	simnetHead, _, err := simnet.GetHead()
	if err != nil {
		t.Fatalf("GetHead: %+v", err)
	}
	if !simnetHead.Equal(chainconfig.SimnetParams.GenesisHash) {
		t.Fatalf("expected the simnet genesis %s as head, got %s", chainconfig.SimnetParams.GenesisHash, simnetHead)
	}
}

func TestNewConsensusBadConfig(t *testing.T) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	defer db.Close()

	badGenesis := chainconfig.SimnetParams.Genesis.Header.Clone()
	badGenesis.Number = 3
	wrongGenesisHash := chainconfig.SimnetParams
	wrongGenesisHash.GenesisHash = fakeHash(0x01)

	tests := []struct {
		name   string
		config *consensus.Config
	}{
		{name: "missing config", config: nil},
		{name: "missing fork table", config: &consensus.Config{Params: *chainconfig.SimnetParams.WithForkTable(nil)}},
		{name: "bad genesis", config: &consensus.Config{Params: *chainconfig.SimnetParams.WithGenesis(
			&externalapi.Genesis{Header: badGenesis})}},
		{name: "wrong genesis hash", config: &consensus.Config{Params: wrongGenesisHash}},
	}

	for _, test := range tests {
		_, err := consensus.NewFactory().NewConsensus(test.config, db, prefixmanager.DefaultPrefix())
		if !chainconfig.IsConfigurationError(err) {
			t.Errorf("%s: expected a configuration error, got %+v", test.name, err)
		}
	}
}
