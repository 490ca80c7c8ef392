package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// BlockInfoStore represents a store of per-block chain metadata: height,
// total difficulty and canonical status
type BlockInfoStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, blockInfo *externalapi.BlockInfo)
	IsStaged(stagingArea *StagingArea) bool
	BlockInfo(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error)
	HasBlockInfo(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
}
