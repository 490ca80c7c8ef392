package blockinfostore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/lrucache"
	"github.com/blockforge/forkd/infrastructure/db/database"
)

var bucketName = []byte("block-infos")

// blockInfoStore keeps the height, total difficulty and canonical status of
// every stored block. Status is restaged whenever a reorg moves a block on
// or off the canonical chain.
type blockInfoStore struct {
	shardID model.StagingShardID
	cache   *lrucache.LRUCache
	bucket  *database.Bucket
}

// New instantiates a new BlockInfoStore
func New(prefixBucket *database.Bucket, cacheSize int) model.BlockInfoStore {
	return &blockInfoStore{
		shardID: model.NewStagingShardID(),
		cache:   lrucache.New(cacheSize),
		bucket:  prefixBucket.Bucket(bucketName),
	}
}

// Stage stages the given blockInfo for the given blockHash
func (bis *blockInfoStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	blockInfo *externalapi.BlockInfo) {

	stagingShard := bis.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = blockInfo.Clone()
}

func (bis *blockInfoStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bis.stagingShard(stagingArea).isStaged()
}

// BlockInfo gets the BlockInfo associated with the given blockHash
func (bis *blockInfoStore) BlockInfo(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error) {

	stagingShard := bis.stagingShard(stagingArea)

	if blockInfo, ok := stagingShard.toAdd[*blockHash]; ok {
		return blockInfo.Clone(), nil
	}

	if blockInfo, ok := bis.cache.Get(blockHash); ok {
		return blockInfo.(*externalapi.BlockInfo).Clone(), nil
	}

	blockInfoBytes, err := dbContext.Get(bis.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	blockInfo, err := serialization.DecodeBlockInfo(blockInfoBytes)
	if err != nil {
		return nil, err
	}
	bis.cache.Add(blockHash, blockInfo)
	return blockInfo.Clone(), nil
}

// HasBlockInfo returns whether the block info of a given block exists in the store.
func (bis *blockInfoStore) HasBlockInfo(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	stagingShard := bis.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}

	if bis.cache.Has(blockHash) {
		return true, nil
	}

	return dbContext.Has(bis.hashAsKey(blockHash))
}

func (bis *blockInfoStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return bis.bucket.Key(hash.ByteSlice())
}
