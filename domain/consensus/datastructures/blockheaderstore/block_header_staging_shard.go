package blockheaderstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type blockHeaderStagingShard struct {
	store *blockHeaderStore
	toAdd map[externalapi.DomainHash]*externalapi.DomainBlockHeader
}

func (bhs *blockHeaderStore) stagingShard(stagingArea *model.StagingArea) *blockHeaderStagingShard {
	return stagingArea.GetOrCreateShard(bhs.shardID, func() model.StagingShard {
		return &blockHeaderStagingShard{
			store: bhs,
			toAdd: make(map[externalapi.DomainHash]*externalapi.DomainBlockHeader),
		}
	}).(*blockHeaderStagingShard)
}

func (bhss *blockHeaderStagingShard) Commit(dbTx model.DBTransaction) error {
	if !bhss.isStaged() {
		return nil
	}

	for hash, header := range bhss.toAdd {
		hashCopy := hash
		err := dbTx.Put(bhss.store.hashAsKey(&hashCopy), serialization.EncodeHeader(header))
		if err != nil {
			return err
		}
		bhss.store.cache.Add(&hashCopy, header)
	}

	return bhss.commitCount(dbTx)
}

func (bhss *blockHeaderStagingShard) commitCount(dbTx model.DBTransaction) error {
	count := bhss.store.count(bhss)
	err := dbTx.Put(bhss.store.countKey, serialization.EncodeChainIndex(count))
	if err != nil {
		return err
	}
	bhss.store.countCached = count
	return nil
}

func (bhss *blockHeaderStagingShard) isStaged() bool {
	return len(bhss.toAdd) != 0
}
