package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// BlockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type BlockValidator interface {
	ValidateBlockInIsolation(block *externalapi.DomainBlock) error
	ValidateBlockInContext(stagingArea *StagingArea, block *externalapi.DomainBlock) error
	ValidateHeaderAgainstParent(header, parentHeader *externalapi.DomainBlockHeader) error
	ValidateBlockCommitments(block *externalapi.DomainBlock, result *BlockExecutionResult,
		stateRoot *externalapi.DomainHash) error
}
