package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blockforge/forkd/domain/consensus"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/prefixmanager"
	"github.com/blockforge/forkd/infrastructure/db/database"
	"github.com/blockforge/forkd/infrastructure/db/database/ldb"
	"github.com/blockforge/forkd/infrastructure/logger"
	"github.com/blockforge/forkd/infrastructure/os/signal"
	"github.com/blockforge/forkd/util/panics"
	"github.com/blockforge/forkd/util/profiling"
	"github.com/blockforge/forkd/version"
	"github.com/pkg/errors"
)

const databaseCacheSizeMiB = 256

func main() {
	defer panics.HandlePanic(log, "MAIN", nil)
	interrupt := signal.InterruptListener()

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	logger.InitLog(filepath.Join(cfg.LogDir, defaultLogFilename), filepath.Join(cfg.LogDir, defaultErrLogFilename))
	err = logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting log levels: %s\n", err)
		os.Exit(1)
	}

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	err = run(cfg, interrupt)
	if err != nil {
		panics.Exit(log, fmt.Sprintf("%+v", err))
	}
	logger.BackendLog.Close()
}

func openDatabase(cfg *configFlags) (database.Database, error) {
	if cfg.InMemory {
		log.Infof("Importing into an in-memory database")
		return ldb.NewInMemoryLevelDB()
	}
	log.Infof("Loading database from '%s'", cfg.DataDir)
	return ldb.NewLevelDB(cfg.DataDir, databaseCacheSizeMiB)
}

func run(cfg *configFlags, interrupt <-chan struct{}) error {
	params := cfg.NetParams()
	if cfg.Genesis != "" {
		genesis, err := loadGenesis(cfg.Genesis)
		if err != nil {
			return err
		}
		params = params.WithGenesis(genesis)
		log.Infof("Using the genesis in %s (%s)", cfg.Genesis, params.GenesisHash)
	}

	var expected map[externalapi.DomainAddress]*externalapi.Account
	if cfg.ExpectedState != "" {
		var err error
		expected, err = loadExpectedState(cfg.ExpectedState)
		if err != nil {
			return err
		}
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	activePrefix, importPrefix, err := selectPrefix(db, cfg.Reset)
	if err != nil {
		return err
	}

	c, err := consensus.NewFactory().NewConsensus(&consensus.Config{
		Params:          *params,
		SkipProofOfWork: cfg.SkipPoW,
	}, db, importPrefix)
	if err != nil {
		return err
	}

	file, err := os.Open(cfg.InFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	log.Infof("Importing blocks from %s", cfg.InFile)
	results, err := newBlockImporter(c, interrupt, cfg.Progress).Import(file)
	if results != nil {
		log.Infof("Processed %d blocks: %d accepted, %d already known, %d rejected, %d malformed",
			results.blocksProcessed, results.accepted, results.alreadyKnown, results.rejected, results.malformed)
	}
	if err != nil {
		return err
	}

	headHash, head, err := c.GetHead()
	if err != nil {
		return err
	}
	log.Infof("Canonical head is %s at height %d", headHash, head.Number)

	if expected != nil {
		err = c.VerifyState(expected)
		if err != nil {
			return err
		}
		log.Infof("The head state matches %s", cfg.ExpectedState)
	}

	if cfg.Reset {
		return promotePrefix(db, activePrefix, importPrefix)
	}
	return nil
}

// selectPrefix returns the active prefix and the prefix to import under. A
// reset imports under the flipped prefix so the stored chain survives until
// the import succeeds.
func selectPrefix(db database.Database, reset bool) (activePrefix, importPrefix *prefixmanager.Prefix, err error) {
	activePrefix, err = prefixmanager.ActivePrefixOrDefault(db)
	if err != nil {
		return nil, nil, err
	}
	if !reset {
		return activePrefix, activePrefix, nil
	}

	// Leftovers of an earlier reset that did not finish
	err = prefixmanager.DeleteInactivePrefix(db)
	if err != nil {
		return nil, nil, err
	}
	importPrefix = activePrefix.Flip()
	err = prefixmanager.DeletePrefix(db, importPrefix)
	if err != nil {
		return nil, nil, err
	}
	err = prefixmanager.SetPrefixAsInactive(db, importPrefix)
	if err != nil {
		return nil, nil, err
	}
	return activePrefix, importPrefix, nil
}

func promotePrefix(db database.Database, oldPrefix, newPrefix *prefixmanager.Prefix) error {
	err := prefixmanager.SetPrefixAsActive(db, newPrefix)
	if err != nil {
		return err
	}
	err = prefixmanager.SetPrefixAsInactive(db, oldPrefix)
	if err != nil {
		return err
	}
	return prefixmanager.DeleteInactivePrefix(db)
}
