package multisetstore

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/lrucache"
	"github.com/blockforge/forkd/domain/consensus/utils/multiset"
	"github.com/blockforge/forkd/infrastructure/db/database"
)

var bucketName = []byte("multisets")

// multisetStore represents a store of the state multiset of every block
type multisetStore struct {
	shardID model.StagingShardID
	cache   *lrucache.LRUCache
	bucket  *database.Bucket
}

// New instantiates a new MultisetStore
func New(prefixBucket *database.Bucket, cacheSize int) model.MultisetStore {
	return &multisetStore{
		shardID: model.NewStagingShardID(),
		cache:   lrucache.New(cacheSize),
		bucket:  prefixBucket.Bucket(bucketName),
	}
}

// Stage stages the given multiset for the given blockHash
func (ms *multisetStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, multiset model.Multiset) {
	stagingShard := ms.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = multiset.Clone()
}

func (ms *multisetStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ms.stagingShard(stagingArea).isStaged()
}

// Get gets the multiset associated with the given blockHash
func (ms *multisetStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (model.Multiset, error) {

	stagingShard := ms.stagingShard(stagingArea)

	if multiset, ok := stagingShard.toAdd[*blockHash]; ok {
		return multiset.Clone(), nil
	}

	if multiset, ok := ms.cache.Get(blockHash); ok {
		return multiset.(model.Multiset).Clone(), nil
	}

	multisetBytes, err := dbContext.Get(ms.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	deserialized, err := multiset.FromBytes(multisetBytes)
	if err != nil {
		return nil, err
	}
	ms.cache.Add(blockHash, deserialized)
	return deserialized.Clone(), nil
}

func (ms *multisetStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return ms.bucket.Key(hash.ByteSlice())
}
