package canonicalchainstore

import (
	"encoding/binary"

	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/lrucache"
	"github.com/blockforge/forkd/infrastructure/db/database"
	"github.com/pkg/errors"
)

var bucketChainBlockHashByIndexName = []byte("canonical-hash-by-index")
var bucketChainBlockIndexByHashName = []byte("canonical-index-by-hash")
var highestChainBlockIndexKeyName = []byte("canonical-highest-index")

// canonicalChainStore maps block numbers to the canonical block at that
// number and back. Since every canonical block sits exactly one above its
// parent, the chain index of a block is its block number.
type canonicalChainStore struct {
	shardID                     model.StagingShardID
	cacheByHash                 *lrucache.LRUCache
	cacheHighestChainBlockIndex *uint64
	bucketChainBlockHashByIndex *database.Bucket
	bucketChainBlockIndexByHash *database.Bucket
	highestChainBlockIndexKey   *database.Key
}

// New instantiates a new CanonicalChainStore
func New(prefixBucket *database.Bucket, cacheSize int) model.CanonicalChainStore {
	return &canonicalChainStore{
		shardID:                     model.NewStagingShardID(),
		cacheByHash:                 lrucache.New(cacheSize),
		bucketChainBlockHashByIndex: prefixBucket.Bucket(bucketChainBlockHashByIndexName),
		bucketChainBlockIndexByHash: prefixBucket.Bucket(bucketChainBlockIndexByHashName),
		highestChainBlockIndexKey:   prefixBucket.Key(highestChainBlockIndexKeyName),
	}
}

// Stage stages the given chain changes. Removed blocks must be the current
// tip of the chain, in order from the highest down.
func (ccs *canonicalChainStore) Stage(dbContext model.DBReader, stagingArea *model.StagingArea,
	chainChanges *externalapi.CanonicalChainChanges) error {

	stagingShard := ccs.stagingShard(stagingArea)

	if stagingShard.isStaged() {
		return errors.Errorf("can't stage when there's already staged data")
	}

	highestChainBlockIndex, exists, err := ccs.highestChainBlockIndex(dbContext)
	if err != nil {
		return err
	}
	if len(chainChanges.Removed) > 0 && (!exists || uint64(len(chainChanges.Removed)) > highestChainBlockIndex+1) {
		return errors.Errorf("can't remove %d blocks from a chain of height %d",
			len(chainChanges.Removed), highestChainBlockIndex)
	}

	for _, blockHash := range chainChanges.Removed {
		index, exists, err := ccs.GetIndexByHash(dbContext, stagingArea, blockHash)
		if err != nil {
			return err
		}

		if !exists {
			return errors.Errorf("couldn't find index of %s", blockHash)
		}

		stagingShard.removedByIndex[index] = struct{}{}
		stagingShard.removedByHash[*blockHash] = struct{}{}
	}

	currentIndex := uint64(0)
	if exists {
		currentIndex = highestChainBlockIndex - uint64(len(chainChanges.Removed)) + 1
	}

	for _, blockHash := range chainChanges.Added {
		stagingShard.addedByIndex[currentIndex] = blockHash
		stagingShard.addedByHash[*blockHash] = currentIndex
		currentIndex++
	}

	if currentIndex == 0 {
		return errors.Errorf("chain changes leave the canonical chain empty")
	}
	newHighestIndex := currentIndex - 1
	stagingShard.highestIndex = &newHighestIndex

	return nil
}

func (ccs *canonicalChainStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ccs.stagingShard(stagingArea).isStaged()
}

// GetIndexByHash gets the chain index of the given block, and whether it is
// on the canonical chain at all
func (ccs *canonicalChainStore) GetIndexByHash(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (uint64, bool, error) {

	stagingShard := ccs.stagingShard(stagingArea)

	if index, ok := stagingShard.addedByHash[*blockHash]; ok {
		return index, true, nil
	}

	if _, ok := stagingShard.removedByHash[*blockHash]; ok {
		return 0, false, nil
	}

	if index, ok := ccs.cacheByHash.Get(blockHash); ok {
		return index.(uint64), true, nil
	}

	indexBytes, err := dbContext.Get(ccs.hashAsKey(blockHash))
	if database.IsNotFoundError(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	index, err := serialization.DecodeChainIndex(indexBytes)
	if err != nil {
		return 0, false, err
	}
	ccs.cacheByHash.Add(blockHash, index)
	return index, true, nil
}

// GetHashByIndex gets the canonical block at the given index
func (ccs *canonicalChainStore) GetHashByIndex(dbContext model.DBReader, stagingArea *model.StagingArea,
	index uint64) (*externalapi.DomainHash, bool, error) {

	stagingShard := ccs.stagingShard(stagingArea)

	if blockHash, ok := stagingShard.addedByIndex[index]; ok {
		return blockHash, true, nil
	}

	if _, ok := stagingShard.removedByIndex[index]; ok {
		return nil, false, nil
	}

	if stagingShard.highestIndex != nil && index > *stagingShard.highestIndex {
		return nil, false, nil
	}

	has, err := dbContext.Has(ccs.indexAsKey(index))
	if err != nil {
		return nil, false, err
	}

	if !has {
		return nil, false, nil
	}

	hashBytes, err := dbContext.Get(ccs.indexAsKey(index))
	if err != nil {
		return nil, false, err
	}

	blockHash, err := serialization.DecodeHash(hashBytes)
	if err != nil {
		return nil, false, err
	}
	return blockHash, true, nil
}

// Head returns the highest canonical block and its index
func (ccs *canonicalChainStore) Head(dbContext model.DBReader, stagingArea *model.StagingArea) (
	*externalapi.DomainHash, uint64, error) {

	stagingShard := ccs.stagingShard(stagingArea)

	highestIndex, exists := uint64(0), false
	if stagingShard.highestIndex != nil {
		highestIndex, exists = *stagingShard.highestIndex, true
	} else {
		var err error
		highestIndex, exists, err = ccs.highestChainBlockIndex(dbContext)
		if err != nil {
			return nil, 0, err
		}
	}
	if !exists {
		return nil, 0, errors.Wrapf(database.ErrNotFound, "the canonical chain is empty")
	}

	headHash, found, err := ccs.GetHashByIndex(dbContext, stagingArea, highestIndex)
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return nil, 0, errors.Errorf("missing canonical block at the highest index %d", highestIndex)
	}
	return headHash, highestIndex, nil
}

// HasHead returns whether the canonical chain has been initialized
func (ccs *canonicalChainStore) HasHead(dbContext model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	if ccs.stagingShard(stagingArea).highestIndex != nil {
		return true, nil
	}
	_, exists, err := ccs.highestChainBlockIndex(dbContext)
	return exists, err
}

func (ccs *canonicalChainStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return ccs.bucketChainBlockIndexByHash.Key(hash.ByteSlice())
}

func (ccs *canonicalChainStore) indexAsKey(index uint64) *database.Key {
	var keyBytes [8]byte
	binary.BigEndian.PutUint64(keyBytes[:], index)
	return ccs.bucketChainBlockHashByIndex.Key(keyBytes[:])
}

func (ccs *canonicalChainStore) highestChainBlockIndex(dbContext model.DBReader) (uint64, bool, error) {
	if ccs.cacheHighestChainBlockIndex != nil {
		return *ccs.cacheHighestChainBlockIndex, true, nil
	}

	has, err := dbContext.Has(ccs.highestChainBlockIndexKey)
	if err != nil {
		return 0, false, err
	}

	if !has {
		return 0, false, nil
	}

	indexBytes, err := dbContext.Get(ccs.highestChainBlockIndexKey)
	if err != nil {
		return 0, false, err
	}

	index, err := serialization.DecodeChainIndex(indexBytes)
	if err != nil {
		return 0, false, err
	}
	ccs.cacheHighestChainBlockIndex = &index
	return index, true, nil
}
