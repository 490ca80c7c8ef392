package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// CanonicalChainStore represents a store of the canonical chain: the block
// hash at every block number up to and including the head
type CanonicalChainStore interface {
	Stage(dbContext DBReader, stagingArea *StagingArea, chainChanges *externalapi.CanonicalChainChanges) error
	IsStaged(stagingArea *StagingArea) bool
	GetIndexByHash(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (uint64, bool, error)
	GetHashByIndex(dbContext DBReader, stagingArea *StagingArea, index uint64) (*externalapi.DomainHash, bool, error)
	Head(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, uint64, error)
	HasHead(dbContext DBReader, stagingArea *StagingArea) (bool, error)
}
