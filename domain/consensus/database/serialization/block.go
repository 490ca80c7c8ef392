package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	blockFieldHeader protowire.Number = iota + 1
	blockFieldTransactions
	blockFieldOmmers
)

// EncodeBlock returns the canonical encoding of the given block
func EncodeBlock(block *externalapi.DomainBlock) []byte {
	b := appendBytesField(nil, blockFieldHeader, EncodeHeader(block.Header))
	for _, tx := range block.Transactions {
		b = appendBytesField(b, blockFieldTransactions, EncodeTransaction(tx))
	}
	for _, ommer := range block.Ommers {
		b = appendBytesField(b, blockFieldOmmers, EncodeHeader(ommer))
	}
	return b
}

// DecodeBlock decodes a block from its canonical encoding
func DecodeBlock(blockBytes []byte) (*externalapi.DomainBlock, error) {
	d := newDecoder("block", blockBytes)

	headerBytes, err := d.bytes(blockFieldHeader)
	if err != nil {
		return nil, err
	}
	header, err := DecodeHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	transactions := []*externalapi.DomainTransaction{}
	for d.next(blockFieldTransactions) {
		txBytes, err := d.bytes(blockFieldTransactions)
		if err != nil {
			return nil, err
		}
		tx, err := DecodeTransaction(txBytes)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	ommers := []*externalapi.DomainBlockHeader{}
	for d.next(blockFieldOmmers) {
		ommerBytes, err := d.bytes(blockFieldOmmers)
		if err != nil {
			return nil, err
		}
		ommer, err := DecodeHeader(ommerBytes)
		if err != nil {
			return nil, err
		}
		ommers = append(ommers, ommer)
	}

	err = d.finish()
	if err != nil {
		return nil, err
	}
	return &externalapi.DomainBlock{
		Header:       header,
		Transactions: transactions,
		Ommers:       ommers,
	}, nil
}

// EncodeHeaders returns the canonical encoding of an ordered header list.
// It is the preimage of the ommers hash.
func EncodeHeaders(headers []*externalapi.DomainBlockHeader) []byte {
	var b []byte
	for _, header := range headers {
		b = appendBytesField(b, blockFieldOmmers, EncodeHeader(header))
	}
	return b
}
