package receiptstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/lrucache"
	"github.com/blockforge/forkd/infrastructure/db/database"
)

var bucketName = []byte("receipts")

type receiptStore struct {
	shardID model.StagingShardID
	cache   *lrucache.LRUCache
	bucket  *database.Bucket
}

// New instantiates a new ReceiptStore
func New(prefixBucket *database.Bucket, cacheSize int) model.ReceiptStore {
	return &receiptStore{
		shardID: model.NewStagingShardID(),
		cache:   lrucache.New(cacheSize),
		bucket:  prefixBucket.Bucket(bucketName),
	}
}

// Stage stages the receipts of the block with the given blockHash
func (rs *receiptStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	receipts []*externalapi.DomainReceipt) {

	stagingShard := rs.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = cloneReceipts(receipts)
}

func (rs *receiptStore) IsStaged(stagingArea *model.StagingArea) bool {
	return rs.stagingShard(stagingArea).isStaged()
}

// Receipts gets the receipts of the block with the given blockHash
func (rs *receiptStore) Receipts(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainReceipt, error) {

	stagingShard := rs.stagingShard(stagingArea)

	if receipts, ok := stagingShard.toAdd[*blockHash]; ok {
		return cloneReceipts(receipts), nil
	}

	if receipts, ok := rs.cache.Get(blockHash); ok {
		return cloneReceipts(receipts.([]*externalapi.DomainReceipt)), nil
	}

	receiptsBytes, err := dbContext.Get(rs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	receipts, err := serialization.DecodeReceipts(receiptsBytes)
	if err != nil {
		return nil, err
	}
	rs.cache.Add(blockHash, receipts)
	return cloneReceipts(receipts), nil
}

func (rs *receiptStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return rs.bucket.Key(hash.ByteSlice())
}

func cloneReceipts(receipts []*externalapi.DomainReceipt) []*externalapi.DomainReceipt {
	clone := make([]*externalapi.DomainReceipt, len(receipts))
	for i, receipt := range receipts {
		clone[i] = receipt.Clone()
	}
	return clone
}
