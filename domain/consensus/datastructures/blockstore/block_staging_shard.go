package blockstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type blockStagingShard struct {
	store *blockStore
	toAdd map[externalapi.DomainHash]*externalapi.DomainBlock
}

func (bs *blockStore) stagingShard(stagingArea *model.StagingArea) *blockStagingShard {
	return stagingArea.GetOrCreateShard(bs.shardID, func() model.StagingShard {
		return &blockStagingShard{
			store: bs,
			toAdd: make(map[externalapi.DomainHash]*externalapi.DomainBlock),
		}
	}).(*blockStagingShard)
}

func (bss *blockStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, block := range bss.toAdd {
		hashCopy := hash
		err := dbTx.Put(bss.store.hashAsKey(&hashCopy), serialization.EncodeBlock(block))
		if err != nil {
			return err
		}
		bss.store.cache.Add(&hashCopy, block)
	}

	return nil
}

func (bss *blockStagingShard) isStaged() bool {
	return len(bss.toAdd) != 0
}
