package blockheaderstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/lrucache"
	"github.com/blockforge/forkd/infrastructure/db/database"
)

var bucketName = []byte("block-headers")
var countKeyName = []byte("block-headers-count")

// blockHeaderStore represents a store of block headers
type blockHeaderStore struct {
	shardID     model.StagingShardID
	cache       *lrucache.LRUCache
	countCached uint64
	bucket      *database.Bucket
	countKey    *database.Key
}

// New instantiates a new BlockHeaderStore
func New(dbContext model.DBReader, prefixBucket *database.Bucket, cacheSize int) (model.BlockHeaderStore, error) {
	blockHeaderStore := &blockHeaderStore{
		shardID:  model.NewStagingShardID(),
		cache:    lrucache.New(cacheSize),
		bucket:   prefixBucket.Bucket(bucketName),
		countKey: prefixBucket.Key(countKeyName),
	}

	err := blockHeaderStore.initializeCount(dbContext)
	if err != nil {
		return nil, err
	}

	return blockHeaderStore, nil
}

func (bhs *blockHeaderStore) initializeCount(dbContext model.DBReader) error {
	count := uint64(0)
	hasCountBytes, err := dbContext.Has(bhs.countKey)
	if err != nil {
		return err
	}
	if hasCountBytes {
		countBytes, err := dbContext.Get(bhs.countKey)
		if err != nil {
			return err
		}
		count, err = serialization.DecodeChainIndex(countBytes)
		if err != nil {
			return err
		}
	}
	bhs.countCached = count
	return nil
}

// Stage stages the given block header for the given blockHash
func (bhs *blockHeaderStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	blockHeader *externalapi.DomainBlockHeader) {

	stagingShard := bhs.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = blockHeader.Clone()
}

func (bhs *blockHeaderStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bhs.stagingShard(stagingArea).isStaged()
}

// BlockHeader gets the block header associated with the given blockHash
func (bhs *blockHeaderStore) BlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {

	stagingShard := bhs.stagingShard(stagingArea)

	if header, ok := stagingShard.toAdd[*blockHash]; ok {
		return header.Clone(), nil
	}

	if header, ok := bhs.cache.Get(blockHash); ok {
		return header.(*externalapi.DomainBlockHeader).Clone(), nil
	}

	headerBytes, err := dbContext.Get(bhs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	header, err := serialization.DecodeHeader(headerBytes)
	if err != nil {
		return nil, err
	}
	bhs.cache.Add(blockHash, header)
	return header.Clone(), nil
}

// HasBlockHeader returns whether a block header with a given hash exists in the store.
func (bhs *blockHeaderStore) HasBlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	stagingShard := bhs.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}

	if bhs.cache.Has(blockHash) {
		return true, nil
	}

	return dbContext.Has(bhs.hashAsKey(blockHash))
}

// Count returns the number of stored headers, staged ones included
func (bhs *blockHeaderStore) Count(stagingArea *model.StagingArea) uint64 {
	return bhs.count(bhs.stagingShard(stagingArea))
}

func (bhs *blockHeaderStore) count(stagingShard *blockHeaderStagingShard) uint64 {
	return bhs.countCached + uint64(len(stagingShard.toAdd))
}

func (bhs *blockHeaderStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return bhs.bucket.Key(hash.ByteSlice())
}
