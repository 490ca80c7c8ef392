package multisetstore

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type multisetStagingShard struct {
	store *multisetStore
	toAdd map[externalapi.DomainHash]model.Multiset
}

func (ms *multisetStore) stagingShard(stagingArea *model.StagingArea) *multisetStagingShard {
	return stagingArea.GetOrCreateShard(ms.shardID, func() model.StagingShard {
		return &multisetStagingShard{
			store: ms,
			toAdd: make(map[externalapi.DomainHash]model.Multiset),
		}
	}).(*multisetStagingShard)
}

func (mss *multisetStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, multiset := range mss.toAdd {
		hashCopy := hash
		err := dbTx.Put(mss.store.hashAsKey(&hashCopy), multiset.Serialize())
		if err != nil {
			return err
		}
		mss.store.cache.Add(&hashCopy, multiset)
	}

	return nil
}

func (mss *multisetStagingShard) isStaged() bool {
	return len(mss.toAdd) != 0
}
