package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// BlockBuilder builds blocks on top of any stored block
type BlockBuilder interface {
	BuildBlock(parentHash *externalapi.DomainHash, coinbase externalapi.DomainAddress,
		transactions []*externalapi.DomainTransaction, ommers []*externalapi.DomainBlockHeader) (*externalapi.DomainBlock, error)
}
