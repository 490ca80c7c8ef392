package canonicalchainstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

type canonicalChainStagingShard struct {
	store          *canonicalChainStore
	addedByHash    map[externalapi.DomainHash]uint64
	removedByHash  map[externalapi.DomainHash]struct{}
	addedByIndex   map[uint64]*externalapi.DomainHash
	removedByIndex map[uint64]struct{}
	highestIndex   *uint64
}

func (ccs *canonicalChainStore) stagingShard(stagingArea *model.StagingArea) *canonicalChainStagingShard {
	return stagingArea.GetOrCreateShard(ccs.shardID, func() model.StagingShard {
		return &canonicalChainStagingShard{
			store:          ccs,
			addedByHash:    make(map[externalapi.DomainHash]uint64),
			removedByHash:  make(map[externalapi.DomainHash]struct{}),
			addedByIndex:   make(map[uint64]*externalapi.DomainHash),
			removedByIndex: make(map[uint64]struct{}),
		}
	}).(*canonicalChainStagingShard)
}

func (ccss *canonicalChainStagingShard) Commit(dbTx model.DBTransaction) error {
	if !ccss.isStaged() {
		return nil
	}

	for hash := range ccss.removedByHash {
		hashCopy := hash
		err := dbTx.Delete(ccss.store.hashAsKey(&hashCopy))
		if err != nil {
			return err
		}
		ccss.store.cacheByHash.Remove(&hashCopy)
	}

	for index := range ccss.removedByIndex {
		err := dbTx.Delete(ccss.store.indexAsKey(index))
		if err != nil {
			return err
		}
	}

	for hash, index := range ccss.addedByHash {
		hashCopy := hash
		err := dbTx.Put(ccss.store.hashAsKey(&hashCopy), serialization.EncodeChainIndex(index))
		if err != nil {
			return err
		}

		err = dbTx.Put(ccss.store.indexAsKey(index), serialization.EncodeHash(&hashCopy))
		if err != nil {
			return err
		}

		ccss.store.cacheByHash.Add(&hashCopy, index)
	}

	if ccss.highestIndex != nil {
		err := dbTx.Put(ccss.store.highestChainBlockIndexKey, serialization.EncodeChainIndex(*ccss.highestIndex))
		if err != nil {
			return err
		}
		highestIndex := *ccss.highestIndex
		ccss.store.cacheHighestChainBlockIndex = &highestIndex
	}

	return nil
}

func (ccss *canonicalChainStagingShard) isStaged() bool {
	return len(ccss.addedByHash) != 0 ||
		len(ccss.removedByHash) != 0 ||
		len(ccss.addedByIndex) != 0 ||
		len(ccss.removedByIndex) != 0
}
