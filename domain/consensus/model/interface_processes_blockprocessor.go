package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// BlockProcessor is responsible for processing incoming blocks
type BlockProcessor interface {
	ImportBlock(block *externalapi.DomainBlock) (*externalapi.BlockInsertionResult, error)
}
