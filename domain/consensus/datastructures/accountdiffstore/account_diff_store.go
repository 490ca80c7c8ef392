package accountdiffstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/lrucache"
	"github.com/blockforge/forkd/infrastructure/db/database"
)

var bucketName = []byte("account-diffs")

// accountDiffStore represents a store of the account diff every block made
// relative to its parent. Reorgs and side-chain execution replay these
// diffs instead of re-executing blocks.
type accountDiffStore struct {
	shardID model.StagingShardID
	cache   *lrucache.LRUCache
	bucket  *database.Bucket
}

// New instantiates a new AccountDiffStore
func New(prefixBucket *database.Bucket, cacheSize int) model.AccountDiffStore {
	return &accountDiffStore{
		shardID: model.NewStagingShardID(),
		cache:   lrucache.New(cacheSize),
		bucket:  prefixBucket.Bucket(bucketName),
	}
}

// Stage stages the given accountDiff for the given blockHash
func (ads *accountDiffStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	accountDiff model.AccountDiff) {

	stagingShard := ads.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = accountDiff.Clone()
}

func (ads *accountDiffStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ads.stagingShard(stagingArea).isStaged()
}

// AccountDiff gets the account diff associated with the given blockHash
func (ads *accountDiffStore) AccountDiff(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (model.AccountDiff, error) {

	stagingShard := ads.stagingShard(stagingArea)

	if accountDiff, ok := stagingShard.toAdd[*blockHash]; ok {
		return accountDiff.Clone(), nil
	}

	if accountDiff, ok := ads.cache.Get(blockHash); ok {
		return accountDiff.(model.AccountDiff).Clone(), nil
	}

	accountDiffBytes, err := dbContext.Get(ads.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	accountDiff, err := serialization.DecodeAccountDiff(accountDiffBytes)
	if err != nil {
		return nil, err
	}
	ads.cache.Add(blockHash, accountDiff)
	return accountDiff.Clone(), nil
}

func (ads *accountDiffStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return ads.bucket.Key(hash.ByteSlice())
}
