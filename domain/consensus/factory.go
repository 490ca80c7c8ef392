package consensus

import (
	"io/ioutil"
	"os"
	"sync"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/datastructures/accountdiffstore"
	"github.com/blockforge/forkd/domain/consensus/datastructures/accountstore"
	"github.com/blockforge/forkd/domain/consensus/datastructures/blockheaderstore"
	"github.com/blockforge/forkd/domain/consensus/datastructures/blockinfostore"
	"github.com/blockforge/forkd/domain/consensus/datastructures/blockstore"
	"github.com/blockforge/forkd/domain/consensus/datastructures/canonicalchainstore"
	"github.com/blockforge/forkd/domain/consensus/datastructures/multisetstore"
	"github.com/blockforge/forkd/domain/consensus/datastructures/receiptstore"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/processes/blockbuilder"
	"github.com/blockforge/forkd/domain/consensus/processes/blockprocessor"
	"github.com/blockforge/forkd/domain/consensus/processes/blockvalidator"
	"github.com/blockforge/forkd/domain/consensus/processes/chaintraversalmanager"
	"github.com/blockforge/forkd/domain/consensus/processes/consensusstatemanager"
	"github.com/blockforge/forkd/domain/consensus/processes/stateprocessor"
	"github.com/blockforge/forkd/domain/consensus/processes/stateverifier"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/staging"
	"github.com/blockforge/forkd/domain/prefixmanager"
	"github.com/blockforge/forkd/infrastructure/db/database"
	"github.com/blockforge/forkd/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

const (
	defaultCacheSize   = 200
	testDBCacheSizeMiB = 8
	testDataDirPrefix  = "forkd-test-"
)

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config, db database.Database, dbPrefix *prefixmanager.Prefix) (Consensus, error)
	NewTestConsensus(config *Config, testName string) (tc TestConsensus, teardown func(keepDataDir bool), err error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus over the data under dbPrefix.
// A database without a chain is seeded with the configured genesis; a
// database with a chain must have been created with the same genesis.
// Malformed configuration fails with chainconfig.ErrConfiguration.
func (f *factory) NewConsensus(config *Config, db database.Database, dbPrefix *prefixmanager.Prefix) (Consensus, error) {
	err := validateConfig(config)
	if err != nil {
		return nil, err
	}

	prefixBucket := database.MakeBucket(dbPrefix.Serialize())

	// Data Structures
	blockStore := blockstore.New(prefixBucket, defaultCacheSize)
	blockHeaderStore, err := blockheaderstore.New(db, prefixBucket, defaultCacheSize)
	if err != nil {
		return nil, err
	}
	blockInfoStore := blockinfostore.New(prefixBucket, defaultCacheSize)
	accountStore := accountstore.New(prefixBucket)
	accountDiffStore := accountdiffstore.New(prefixBucket, defaultCacheSize)
	canonicalChainStore := canonicalchainstore.New(prefixBucket, defaultCacheSize)
	multisetStore := multisetstore.New(prefixBucket, defaultCacheSize)
	receiptStore := receiptstore.New(prefixBucket, defaultCacheSize)

	// Processes
	chainTraversalManager := chaintraversalmanager.New(
		db,
		blockHeaderStore)
	consensusStateManager := consensusstatemanager.New(
		db,
		chainTraversalManager,
		blockStore,
		blockHeaderStore,
		blockInfoStore,
		accountStore,
		accountDiffStore,
		canonicalChainStore,
		multisetStore,
		receiptStore)
	blockValidator := blockvalidator.New(
		config.ForkTable,
		config.SkipProofOfWork,
		db,
		blockStore,
		blockHeaderStore,
		blockInfoStore)
	stateProcessor := stateprocessor.New(config.ForkTable)
	stateVerifier := stateverifier.New()
	blockProcessor := blockprocessor.New(
		db,
		consensusStateManager,
		blockValidator,
		stateProcessor,
		blockStore,
		blockHeaderStore,
		blockInfoStore,
		accountDiffStore,
		multisetStore,
		receiptStore)
	blockBuilder := blockbuilder.New(
		config.ForkTable,
		db,
		consensusStateManager,
		stateProcessor,
		blockHeaderStore,
		multisetStore)

	c := &consensus{
		lock:            &sync.Mutex{},
		forkTable:       config.ForkTable,
		databaseContext: db,

		blockProcessor:        blockProcessor,
		blockBuilder:          blockBuilder,
		blockValidator:        blockValidator,
		consensusStateManager: consensusStateManager,
		chainTraversalManager: chainTraversalManager,
		stateProcessor:        stateProcessor,
		stateVerifier:         stateVerifier,

		blockStore:          blockStore,
		blockHeaderStore:    blockHeaderStore,
		blockInfoStore:      blockInfoStore,
		accountStore:        accountStore,
		accountDiffStore:    accountDiffStore,
		canonicalChainStore: canonicalChainStore,
		multisetStore:       multisetStore,
		receiptStore:        receiptStore,
	}

	stagingArea := model.NewStagingArea()
	err = consensusStateManager.InitializeGenesis(stagingArea, config.Genesis)
	if err != nil {
		return nil, err
	}
	err = staging.CommitAllChanges(db, stagingArea)
	if err != nil {
		return nil, err
	}

	log.Infof("Consensus for network %s is ready with %d fork rules", config.Name, len(config.ForkTable.Rules()))
	return c, nil
}

func validateConfig(config *Config) error {
	if config == nil {
		return errors.Wrapf(chainconfig.ErrConfiguration, "missing consensus config")
	}
	if config.ForkTable == nil {
		return errors.Wrapf(chainconfig.ErrConfiguration, "network %s has no fork table", config.Name)
	}
	err := chainconfig.ValidateGenesis(config.Genesis)
	if err != nil {
		return err
	}
	if config.GenesisHash != nil {
		genesisHash := consensushashing.HeaderHash(config.Genesis.Header)
		if !genesisHash.Equal(config.GenesisHash) {
			return errors.Wrapf(chainconfig.ErrConfiguration, "network %s declares genesis hash %s, "+
				"but its genesis header hashes to %s", config.Name, config.GenesisHash, genesisHash)
		}
	}
	return nil
}

// NewTestConsensus instantiates a consensus over a fresh leveldb in a
// temporary directory. teardown closes the database and, unless told to
// keep it, deletes the directory.
func (f *factory) NewTestConsensus(config *Config, testName string) (
	tc TestConsensus, teardown func(keepDataDir bool), err error) {

	dataDir, err := ioutil.TempDir("", testDataDirPrefix+testName)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	db, err := ldb.NewLevelDB(dataDir, testDBCacheSizeMiB)
	if err != nil {
		return nil, nil, err
	}

	consensusAsInterface, err := f.NewConsensus(config, db, prefixmanager.DefaultPrefix())
	if err != nil {
		db.Close()
		os.RemoveAll(dataDir)
		return nil, nil, err
	}

	tstConsensus := &testConsensus{
		consensus: consensusAsInterface.(*consensus),
		config:    config,
		database:  db,
	}
	teardown = func(keepDataDir bool) {
		err := db.Close()
		if err != nil {
			log.Errorf("Error closing the test database: %+v", err)
		}
		if !keepDataDir {
			err := os.RemoveAll(dataDir)
			if err != nil {
				log.Errorf("Error removing data directory for test consensus: %s", err)
			}
		}
	}
	return tstConsensus, teardown, nil
}
