package accountstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type accountStagingShard struct {
	store    *accountStore
	toAdd    map[externalapi.DomainAddress]*externalapi.Account
	toDelete map[externalapi.DomainAddress]struct{}
}

func (as *accountStore) stagingShard(stagingArea *model.StagingArea) *accountStagingShard {
	return stagingArea.GetOrCreateShard(as.shardID, func() model.StagingShard {
		return &accountStagingShard{
			store:    as,
			toAdd:    make(map[externalapi.DomainAddress]*externalapi.Account),
			toDelete: make(map[externalapi.DomainAddress]struct{}),
		}
	}).(*accountStagingShard)
}

func (ass *accountStagingShard) Commit(dbTx model.DBTransaction) error {
	for address := range ass.toDelete {
		err := dbTx.Delete(ass.store.addressAsKey(address))
		if err != nil {
			return err
		}
	}

	for address, account := range ass.toAdd {
		err := dbTx.Put(ass.store.addressAsKey(address), serialization.EncodeAccount(account))
		if err != nil {
			return err
		}
	}

	return nil
}

func (ass *accountStagingShard) isStaged() bool {
	return len(ass.toAdd) != 0 || len(ass.toDelete) != 0
}
