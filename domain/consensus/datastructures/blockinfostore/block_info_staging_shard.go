package blockinfostore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type blockInfoStagingShard struct {
	store *blockInfoStore
	toAdd map[externalapi.DomainHash]*externalapi.BlockInfo
}

func (bis *blockInfoStore) stagingShard(stagingArea *model.StagingArea) *blockInfoStagingShard {
	return stagingArea.GetOrCreateShard(bis.shardID, func() model.StagingShard {
		return &blockInfoStagingShard{
			store: bis,
			toAdd: make(map[externalapi.DomainHash]*externalapi.BlockInfo),
		}
	}).(*blockInfoStagingShard)
}

func (biss *blockInfoStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, blockInfo := range biss.toAdd {
		hashCopy := hash
		err := dbTx.Put(biss.store.hashAsKey(&hashCopy), serialization.EncodeBlockInfo(blockInfo))
		if err != nil {
			return err
		}
		biss.store.cache.Add(&hashCopy, blockInfo)
	}

	return nil
}

func (biss *blockInfoStagingShard) isStaged() bool {
	return len(biss.toAdd) != 0
}
