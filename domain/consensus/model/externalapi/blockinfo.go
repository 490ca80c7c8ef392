package externalapi

import "math/big"

// BlockStatus tells whether a stored block is part of the canonical chain.
type BlockStatus byte

const (
	// StatusSideChain indicates a valid block that is not on the canonical chain.
	StatusSideChain BlockStatus = iota

	// StatusCanonical indicates a valid block on the canonical chain.
	StatusCanonical
)

var blockStatusStrings = map[BlockStatus]string{
	StatusSideChain: "SideChain",
	StatusCanonical: "Canonical",
}

func (bs BlockStatus) String() string {
	return blockStatusStrings[bs]
}

// BlockInfo contains information about a stored block
type BlockInfo struct {
	Exists          bool
	Number          uint64
	TotalDifficulty *big.Int
	Status          BlockStatus
}

// Clone returns a clone of BlockInfo
func (bi *BlockInfo) Clone() *BlockInfo {
	return &BlockInfo{
		Exists:          bi.Exists,
		Number:          bi.Number,
		TotalDifficulty: cloneBigInt(bi.TotalDifficulty),
		Status:          bi.Status,
	}
}
