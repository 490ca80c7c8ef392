package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// AccountDiffStore represents a store of the account changes every block
// made relative to its parent
type AccountDiffStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, accountDiff AccountDiff)
	IsStaged(stagingArea *StagingArea) bool
	AccountDiff(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (AccountDiff, error)
}
