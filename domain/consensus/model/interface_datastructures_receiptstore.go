package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// ReceiptStore represents a store of the receipts produced by executing
// each block
type ReceiptStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, receipts []*externalapi.DomainReceipt)
	IsStaged(stagingArea *StagingArea) bool
	Receipts(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainReceipt, error)
}
