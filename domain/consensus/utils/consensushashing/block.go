package consensushashing

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/hashes"
)

// BlockHash returns the given block's hash
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	return HeaderHash(block.Header)
}

// HeaderHash returns the given header's hash
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()
	writer.InfallibleWrite(serialization.EncodeHeader(header))
	return writer.Finalize()
}

// SealHash returns the hash of the header without its proof of work fields.
// This is the value the miner commits to.
func SealHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	unsealed := header.Clone()
	unsealed.MixHash = *externalapi.NewZeroHash()
	unsealed.Nonce = 0

	writer := hashes.NewSealHashWriter()
	writer.InfallibleWrite(serialization.EncodeHeader(unsealed))
	return writer.Finalize()
}

// OmmersHash returns the commitment to an ordered list of ommer headers
func OmmersHash(ommers []*externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := hashes.NewOmmersHashWriter()
	writer.InfallibleWrite(serialization.EncodeHeaders(ommers))
	return writer.Finalize()
}

// EmptyOmmersHash is the ommers hash of a block without ommers
var EmptyOmmersHash = OmmersHash(nil)
