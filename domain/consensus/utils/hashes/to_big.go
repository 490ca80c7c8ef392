package hashes

import (
	"math/big"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

// ToBig converts a hash into a big.Int, treating its bytes as big endian.
func ToBig(hash *externalapi.DomainHash) *big.Int {
	return new(big.Int).SetBytes(hash.ByteSlice())
}
