// Package bloom builds the 2048-bit logs bloom filter committed to by
// receipts and block headers. Every log address and topic sets three bits.
package bloom

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/hashes"
)

const bitsPerItem = 3

// Add sets the bits of item in bloom
func Add(bloom *externalapi.Bloom, item []byte) {
	writer := hashes.NewBloomHashWriter()
	writer.InfallibleWrite(item)
	digest := writer.Finalize().ByteArray()

	for i := 0; i < bitsPerItem; i++ {
		// The low 11 bits of each byte pair index one of the 2048 bits.
		bit := (uint(digest[2*i])<<8 | uint(digest[2*i+1])) & (externalapi.BloomSize*8 - 1)
		bloom[externalapi.BloomSize-1-bit/8] |= 1 << (bit % 8)
	}
}

// Test returns whether every bit of item is set in bloom. False positives are
// possible, false negatives are not.
func Test(bloom *externalapi.Bloom, item []byte) bool {
	var single externalapi.Bloom
	Add(&single, item)
	for i := range single {
		if bloom[i]&single[i] != single[i] {
			return false
		}
	}
	return true
}

// LogsBloom returns the bloom of the given logs' addresses and topics
func LogsBloom(logs []*externalapi.Log) externalapi.Bloom {
	var bloom externalapi.Bloom
	for _, log := range logs {
		Add(&bloom, log.Address[:])
		for _, topic := range log.Topics {
			Add(&bloom, topic.ByteSlice())
		}
	}
	return bloom
}

// ReceiptsBloom returns the union of the given receipts' blooms
func ReceiptsBloom(receipts []*externalapi.DomainReceipt) externalapi.Bloom {
	var bloom externalapi.Bloom
	for _, receipt := range receipts {
		bloom.Or(&receipt.Bloom)
	}
	return bloom
}
