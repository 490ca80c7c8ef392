// Package pow implements the proof of work commitment of a block header: a
// mix hash over the header's seal hash and nonce, which must fall below the
// target implied by the header's difficulty.
package pow

import (
	"math/big"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/blockforge/forkd/domain/consensus/utils/hashes"
	"github.com/blockforge/forkd/util/binaryserializer"
	"github.com/pkg/errors"
)

// two256 is 2^256, the size of the hash space
var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// MixHash returns the proof of work mix of a seal hash and a nonce
func MixHash(sealHash *externalapi.DomainHash, nonce uint64) *externalapi.DomainHash {
	writer := hashes.NewPoWHashWriter()
	writer.InfallibleWrite(sealHash.ByteSlice())
	err := binaryserializer.PutUint64(writer, nonce)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// CalculateMixHash returns the mix hash the given header should carry
func CalculateMixHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	return MixHash(consensushashing.SealHash(header), header.Nonce)
}

// Target returns the largest mix value, as an integer, that satisfies the
// given difficulty
func Target(difficulty *big.Int) *big.Int {
	return new(big.Int).Div(two256, difficulty)
}

// CheckMix returns whether mix satisfies difficulty
func CheckMix(mix *externalapi.DomainHash, difficulty *big.Int) bool {
	return hashes.ToBig(mix).Cmp(Target(difficulty)) <= 0
}

// CheckProofOfWork checks that the header's mix hash commits to its seal and
// nonce, and that the mix satisfies the header's difficulty
func CheckProofOfWork(header *externalapi.DomainBlockHeader) error {
	if header.Difficulty == nil || header.Difficulty.Sign() <= 0 {
		return errors.Wrapf(ruleerrors.ErrMissingDifficulty, "block %d has no difficulty", header.Number)
	}

	mix := CalculateMixHash(header)
	if !mix.Equal(&header.MixHash) {
		return errors.Wrapf(ruleerrors.ErrInvalidMixHash, "block %d has mix hash %s, expected %s",
			header.Number, &header.MixHash, mix)
	}
	if !CheckMix(mix, header.Difficulty) {
		return errors.Wrapf(ruleerrors.ErrInsufficientProofOfWork, "block %d mix hash %s is higher "+
			"than the target for difficulty %s", header.Number, mix, header.Difficulty)
	}
	return nil
}
