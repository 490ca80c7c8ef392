package externalapi

import (
	"bytes"
	"math/big"
)

// DomainBlockHeader represents the header part of a block
type DomainBlockHeader struct {
	ParentHash      DomainHash
	OmmersHash      DomainHash
	Coinbase        DomainAddress
	StateRoot       DomainHash
	TransactionRoot DomainHash
	ReceiptRoot     DomainHash
	Bloom           Bloom
	Difficulty      *big.Int
	Number          uint64
	GasLimit        uint64
	GasUsed         uint64
	Timestamp       uint64
	ExtraData       []byte
	MixHash         DomainHash
	Nonce           uint64
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	var difficulty *big.Int
	if header.Difficulty != nil {
		difficulty = new(big.Int).Set(header.Difficulty)
	}
	var extraData []byte
	if header.ExtraData != nil {
		extraData = make([]byte, len(header.ExtraData))
		copy(extraData, header.ExtraData)
	}

	return &DomainBlockHeader{
		ParentHash:      header.ParentHash,
		OmmersHash:      header.OmmersHash,
		Coinbase:        header.Coinbase,
		StateRoot:       header.StateRoot,
		TransactionRoot: header.TransactionRoot,
		ReceiptRoot:     header.ReceiptRoot,
		Bloom:           header.Bloom,
		Difficulty:      difficulty,
		Number:          header.Number,
		GasLimit:        header.GasLimit,
		GasUsed:         header.GasUsed,
		Timestamp:       header.Timestamp,
		ExtraData:       extraData,
		MixHash:         header.MixHash,
		Nonce:           header.Nonce,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = &DomainBlockHeader{DomainHash{}, DomainHash{}, DomainAddress{}, DomainHash{},
	DomainHash{}, DomainHash{}, Bloom{}, &big.Int{}, 0, 0, 0, 0, []byte{}, DomainHash{}, 0}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}

	if !header.ParentHash.Equal(&other.ParentHash) {
		return false
	}

	if !header.OmmersHash.Equal(&other.OmmersHash) {
		return false
	}

	if header.Coinbase != other.Coinbase {
		return false
	}

	if !header.StateRoot.Equal(&other.StateRoot) {
		return false
	}

	if !header.TransactionRoot.Equal(&other.TransactionRoot) {
		return false
	}

	if !header.ReceiptRoot.Equal(&other.ReceiptRoot) {
		return false
	}

	if header.Bloom != other.Bloom {
		return false
	}

	if !bigIntsEqual(header.Difficulty, other.Difficulty) {
		return false
	}

	if header.Number != other.Number {
		return false
	}

	if header.GasLimit != other.GasLimit {
		return false
	}

	if header.GasUsed != other.GasUsed {
		return false
	}

	if header.Timestamp != other.Timestamp {
		return false
	}

	if !bytes.Equal(header.ExtraData, other.ExtraData) {
		return false
	}

	if !header.MixHash.Equal(&other.MixHash) {
		return false
	}

	if header.Nonce != other.Nonce {
		return false
	}

	return true
}

// CloneHeaders returns a deep clone of the given headers slice.
func CloneHeaders(headers []*DomainBlockHeader) []*DomainBlockHeader {
	clone := make([]*DomainBlockHeader, len(headers))
	for i, header := range headers {
		clone[i] = header.Clone()
	}
	return clone
}

// bigIntsEqual treats a nil big.Int as zero.
func bigIntsEqual(a, b *big.Int) bool {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b) == 0
}

func cloneBigInt(value *big.Int) *big.Int {
	if value == nil {
		return nil
	}
	return new(big.Int).Set(value)
}
