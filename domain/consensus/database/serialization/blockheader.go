package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	headerFieldParentHash protowire.Number = iota + 1
	headerFieldOmmersHash
	headerFieldCoinbase
	headerFieldStateRoot
	headerFieldTransactionRoot
	headerFieldReceiptRoot
	headerFieldBloom
	headerFieldDifficulty
	headerFieldNumber
	headerFieldGasLimit
	headerFieldGasUsed
	headerFieldTimestamp
	headerFieldExtraData
	headerFieldMixHash
	headerFieldNonce
)

// EncodeHeader returns the canonical encoding of the given header
func EncodeHeader(header *externalapi.DomainBlockHeader) []byte {
	b := appendBytesField(nil, headerFieldParentHash, header.ParentHash.ByteSlice())
	b = appendBytesField(b, headerFieldOmmersHash, header.OmmersHash.ByteSlice())
	b = appendBytesField(b, headerFieldCoinbase, header.Coinbase[:])
	b = appendBytesField(b, headerFieldStateRoot, header.StateRoot.ByteSlice())
	b = appendBytesField(b, headerFieldTransactionRoot, header.TransactionRoot.ByteSlice())
	b = appendBytesField(b, headerFieldReceiptRoot, header.ReceiptRoot.ByteSlice())
	b = appendBytesField(b, headerFieldBloom, header.Bloom[:])
	b = appendBigIntField(b, headerFieldDifficulty, header.Difficulty)
	b = appendVarintField(b, headerFieldNumber, header.Number)
	b = appendVarintField(b, headerFieldGasLimit, header.GasLimit)
	b = appendVarintField(b, headerFieldGasUsed, header.GasUsed)
	b = appendVarintField(b, headerFieldTimestamp, header.Timestamp)
	b = appendBytesField(b, headerFieldExtraData, header.ExtraData)
	b = appendBytesField(b, headerFieldMixHash, header.MixHash.ByteSlice())
	b = appendFixed64Field(b, headerFieldNonce, header.Nonce)
	return b
}

// DecodeHeader decodes a header from its canonical encoding
func DecodeHeader(headerBytes []byte) (*externalapi.DomainBlockHeader, error) {
	d := newDecoder("block header", headerBytes)
	header := &externalapi.DomainBlockHeader{}

	err := d.hash(headerFieldParentHash, &header.ParentHash)
	if err != nil {
		return nil, err
	}
	err = d.hash(headerFieldOmmersHash, &header.OmmersHash)
	if err != nil {
		return nil, err
	}
	err = d.address(headerFieldCoinbase, &header.Coinbase)
	if err != nil {
		return nil, err
	}
	err = d.hash(headerFieldStateRoot, &header.StateRoot)
	if err != nil {
		return nil, err
	}
	err = d.hash(headerFieldTransactionRoot, &header.TransactionRoot)
	if err != nil {
		return nil, err
	}
	err = d.hash(headerFieldReceiptRoot, &header.ReceiptRoot)
	if err != nil {
		return nil, err
	}
	bloom, err := d.fixedBytes(headerFieldBloom, externalapi.BloomSize)
	if err != nil {
		return nil, err
	}
	copy(header.Bloom[:], bloom)

	header.Difficulty, err = d.bigInt(headerFieldDifficulty)
	if err != nil {
		return nil, err
	}
	header.Number, err = d.uint64(headerFieldNumber)
	if err != nil {
		return nil, err
	}
	header.GasLimit, err = d.uint64(headerFieldGasLimit)
	if err != nil {
		return nil, err
	}
	header.GasUsed, err = d.uint64(headerFieldGasUsed)
	if err != nil {
		return nil, err
	}
	header.Timestamp, err = d.uint64(headerFieldTimestamp)
	if err != nil {
		return nil, err
	}
	header.ExtraData, err = d.bytes(headerFieldExtraData)
	if err != nil {
		return nil, err
	}
	err = d.hash(headerFieldMixHash, &header.MixHash)
	if err != nil {
		return nil, err
	}
	header.Nonce, err = d.fixed64(headerFieldNonce)
	if err != nil {
		return nil, err
	}

	err = d.finish()
	if err != nil {
		return nil, err
	}
	return header, nil
}
