package mining

import (
	"math"
	"math/rand"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/pow"
	"github.com/pkg/errors"
)

// SolveBlock increments the given block's nonce until its mix hash satisfies
// the block's difficulty, and seals the block with that mix hash
func SolveBlock(block *externalapi.DomainBlock, rd *rand.Rand) {
	SolveHeader(block.Header, rd)
}

// SolveHeader is SolveBlock for a bare header, used to seal ommers
func SolveHeader(header *externalapi.DomainBlockHeader, rd *rand.Rand) {
	sealHash := consensushashing.SealHash(header)

	for i := rd.Uint64(); i < math.MaxUint64; i++ {
		mix := pow.MixHash(sealHash, i)
		if pow.CheckMix(mix, header.Difficulty) {
			header.Nonce = i
			header.MixHash = *mix
			return
		}
	}

	panic(errors.New("went over all the nonce space and couldn't find a single one that gives a valid block"))
}
