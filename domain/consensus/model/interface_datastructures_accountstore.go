package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// AccountStore represents a store of the account state at the canonical head
type AccountStore interface {
	StageAccountDiff(stagingArea *StagingArea, accountDiff AccountDiff)
	IsStaged(stagingArea *StagingArea) bool
	Account(dbContext DBReader, stagingArea *StagingArea, address externalapi.DomainAddress) (*externalapi.Account, bool, error)
	Accounts(dbContext DBReader, stagingArea *StagingArea) (map[externalapi.DomainAddress]*externalapi.Account, error)
}
