package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const hashFieldHash protowire.Number = 1

const chainIndexFieldIndex protowire.Number = 1

// EncodeHash returns the stored form of a bare block hash
func EncodeHash(hash *externalapi.DomainHash) []byte {
	return appendBytesField(nil, hashFieldHash, hash.ByteSlice())
}

// DecodeHash decodes a bare block hash
func DecodeHash(hashBytes []byte) (*externalapi.DomainHash, error) {
	d := newDecoder("hash", hashBytes)
	hash := externalapi.NewZeroHash()
	err := d.hash(hashFieldHash, hash)
	if err != nil {
		return nil, err
	}
	err = d.finish()
	if err != nil {
		return nil, err
	}
	return hash, nil
}

// EncodeChainIndex returns the stored form of a canonical chain index
func EncodeChainIndex(index uint64) []byte {
	return appendVarintField(nil, chainIndexFieldIndex, index)
}

// DecodeChainIndex decodes a canonical chain index
func DecodeChainIndex(indexBytes []byte) (uint64, error) {
	d := newDecoder("chain index", indexBytes)
	index, err := d.uint64(chainIndexFieldIndex)
	if err != nil {
		return 0, err
	}
	err = d.finish()
	if err != nil {
		return 0, err
	}
	return index, nil
}
