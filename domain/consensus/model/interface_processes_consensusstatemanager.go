package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// ConsensusStateManager manages the node's consensus state: the account
// state at the canonical head and the canonical chain itself
type ConsensusStateManager interface {
	StateAt(stagingArea *StagingArea, blockHash *externalapi.DomainHash) (AccountReader, error)
	AddBlock(stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.CanonicalChainChanges, error)
	InitializeGenesis(stagingArea *StagingArea, genesis *externalapi.Genesis) error
	Head(stagingArea *StagingArea) (*externalapi.DomainHash, *externalapi.DomainBlockHeader, error)
}
