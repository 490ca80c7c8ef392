package receiptstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type receiptStagingShard struct {
	store *receiptStore
	toAdd map[externalapi.DomainHash][]*externalapi.DomainReceipt
}

func (rs *receiptStore) stagingShard(stagingArea *model.StagingArea) *receiptStagingShard {
	return stagingArea.GetOrCreateShard(rs.shardID, func() model.StagingShard {
		return &receiptStagingShard{
			store: rs,
			toAdd: make(map[externalapi.DomainHash][]*externalapi.DomainReceipt),
		}
	}).(*receiptStagingShard)
}

func (rss *receiptStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, receipts := range rss.toAdd {
		hashCopy := hash
		err := dbTx.Put(rss.store.hashAsKey(&hashCopy), serialization.EncodeReceipts(receipts))
		if err != nil {
			return err
		}
		rss.store.cache.Add(&hashCopy, receipts)
	}

	return nil
}

func (rss *receiptStagingShard) isStaged() bool {
	return len(rss.toAdd) != 0
}
