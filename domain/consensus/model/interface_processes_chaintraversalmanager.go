package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// ChainTraversalManager exposes methods for traversing blocks along their
// parent links
type ChainTraversalManager interface {
	Ancestor(stagingArea *StagingArea, blockHash *externalapi.DomainHash, blockNumber uint64) (*externalapi.DomainHash, error)
	IsAncestorOf(stagingArea *StagingArea, ancestorHash, blockHash *externalapi.DomainHash) (bool, error)
	LowestCommonAncestor(stagingArea *StagingArea, blockHashA, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error)
	PathFrom(stagingArea *StagingArea, ancestorHash, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
}
