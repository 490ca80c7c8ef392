package accountdiffstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type accountDiffStagingShard struct {
	store *accountDiffStore
	toAdd map[externalapi.DomainHash]model.AccountDiff
}

func (ads *accountDiffStore) stagingShard(stagingArea *model.StagingArea) *accountDiffStagingShard {
	return stagingArea.GetOrCreateShard(ads.shardID, func() model.StagingShard {
		return &accountDiffStagingShard{
			store: ads,
			toAdd: make(map[externalapi.DomainHash]model.AccountDiff),
		}
	}).(*accountDiffStagingShard)
}

func (adss *accountDiffStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, accountDiff := range adss.toAdd {
		hashCopy := hash
		err := dbTx.Put(adss.store.hashAsKey(&hashCopy), serialization.EncodeAccountDiff(accountDiff))
		if err != nil {
			return err
		}
		adss.store.cache.Add(&hashCopy, accountDiff)
	}

	return nil
}

func (adss *accountDiffStagingShard) isStaged() bool {
	return len(adss.toAdd) != 0
}
