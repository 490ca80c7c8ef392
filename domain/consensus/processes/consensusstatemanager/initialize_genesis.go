package consensusstatemanager

import (
	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/multiset"
	"github.com/pkg/errors"
)

// InitializeGenesis stages the genesis block and its accounts as the whole
// canonical chain. On a database that already holds a chain it only checks
// that the chain starts with the same genesis.
func (csm *consensusStateManager) InitializeGenesis(stagingArea *model.StagingArea, genesis *externalapi.Genesis) error {
	err := chainconfig.ValidateGenesis(genesis)
	if err != nil {
		return err
	}
	genesisHash := consensushashing.HeaderHash(genesis.Header)

	hasHead, err := csm.canonicalChainStore.HasHead(csm.databaseContext, stagingArea)
	if err != nil {
		return err
	}
	if hasHead {
		storedGenesisHash, _, err := csm.canonicalChainStore.GetHashByIndex(csm.databaseContext, stagingArea, 0)
		if err != nil {
			return err
		}
		if !storedGenesisHash.Equal(genesisHash) {
			return errors.Wrapf(chainconfig.ErrConfiguration, "the database holds a chain with genesis %s, "+
				"but the configured genesis is %s", storedGenesisHash, genesisHash)
		}
		log.Debugf("Found an existing chain with genesis %s", genesisHash)
		return nil
	}

	genesisDiff := make(model.AccountDiff, len(genesis.Accounts))
	for address, account := range genesis.Accounts {
		genesisDiff[address] = &model.AccountChange{After: account.Clone()}
	}

	csm.blockHeaderStore.Stage(stagingArea, genesisHash, genesis.Header)
	csm.blockStore.Stage(stagingArea, genesisHash, genesis.Block())
	csm.accountDiffStore.Stage(stagingArea, genesisHash, genesisDiff)
	csm.receiptStore.Stage(stagingArea, genesisHash, []*externalapi.DomainReceipt{})
	csm.multisetStore.Stage(stagingArea, genesisHash, multiset.FromAccounts(genesis.Accounts))
	csm.blockInfoStore.Stage(stagingArea, genesisHash, &externalapi.BlockInfo{
		Exists:          true,
		Number:          0,
		TotalDifficulty: genesis.Header.Difficulty,
		Status:          externalapi.StatusCanonical,
	})
	csm.accountStore.StageAccountDiff(stagingArea, genesisDiff)

	log.Infof("Initializing a new chain with genesis %s and %d accounts", genesisHash, len(genesis.Accounts))
	return csm.canonicalChainStore.Stage(csm.databaseContext, stagingArea, &externalapi.CanonicalChainChanges{
		Added:   []*externalapi.DomainHash{genesisHash},
		Removed: []*externalapi.DomainHash{},
	})
}
