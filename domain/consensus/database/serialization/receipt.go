package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	receiptFieldStatus protowire.Number = iota + 1
	receiptFieldGasUsed
	receiptFieldCumulativeGasUsed
	receiptFieldBloom
	receiptFieldLogs
)

const (
	logFieldAddress protowire.Number = iota + 1
	logFieldTopics
	logFieldData
)

const receiptsFieldReceipt protowire.Number = 1

// EncodeReceipt returns the canonical encoding of the given receipt
func EncodeReceipt(receipt *externalapi.DomainReceipt) []byte {
	b := appendVarintField(nil, receiptFieldStatus, uint64(receipt.Status))
	b = appendVarintField(b, receiptFieldGasUsed, receipt.GasUsed)
	b = appendVarintField(b, receiptFieldCumulativeGasUsed, receipt.CumulativeGasUsed)
	b = appendBytesField(b, receiptFieldBloom, receipt.Bloom[:])
	for _, log := range receipt.Logs {
		b = appendBytesField(b, receiptFieldLogs, encodeLog(log))
	}
	return b
}

func encodeLog(log *externalapi.Log) []byte {
	b := appendBytesField(nil, logFieldAddress, log.Address[:])
	for _, topic := range log.Topics {
		b = appendBytesField(b, logFieldTopics, topic.ByteSlice())
	}
	return appendBytesField(b, logFieldData, log.Data)
}

// DecodeReceipt decodes a receipt from its canonical encoding
func DecodeReceipt(receiptBytes []byte) (*externalapi.DomainReceipt, error) {
	d := newDecoder("receipt", receiptBytes)
	receipt := &externalapi.DomainReceipt{Logs: []*externalapi.Log{}}

	status, err := d.uint64(receiptFieldStatus)
	if err != nil {
		return nil, err
	}
	if status > uint64(externalapi.ReceiptStatusSuccessful) {
		return nil, d.deserializationError("unknown receipt status %d", status)
	}
	receipt.Status = externalapi.ReceiptStatus(status)

	receipt.GasUsed, err = d.uint64(receiptFieldGasUsed)
	if err != nil {
		return nil, err
	}
	receipt.CumulativeGasUsed, err = d.uint64(receiptFieldCumulativeGasUsed)
	if err != nil {
		return nil, err
	}
	bloom, err := d.fixedBytes(receiptFieldBloom, externalapi.BloomSize)
	if err != nil {
		return nil, err
	}
	copy(receipt.Bloom[:], bloom)

	for d.next(receiptFieldLogs) {
		logBytes, err := d.bytes(receiptFieldLogs)
		if err != nil {
			return nil, err
		}
		log, err := decodeLog(logBytes)
		if err != nil {
			return nil, err
		}
		receipt.Logs = append(receipt.Logs, log)
	}

	err = d.finish()
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func decodeLog(logBytes []byte) (*externalapi.Log, error) {
	d := newDecoder("log", logBytes)
	log := &externalapi.Log{Topics: []*externalapi.DomainHash{}}

	err := d.address(logFieldAddress, &log.Address)
	if err != nil {
		return nil, err
	}
	for d.next(logFieldTopics) {
		topic := &externalapi.DomainHash{}
		err := d.hash(logFieldTopics, topic)
		if err != nil {
			return nil, err
		}
		log.Topics = append(log.Topics, topic)
	}
	log.Data, err = d.bytes(logFieldData)
	if err != nil {
		return nil, err
	}

	err = d.finish()
	if err != nil {
		return nil, err
	}
	return log, nil
}

// EncodeReceipts returns the canonical encoding of a block's receipts
func EncodeReceipts(receipts []*externalapi.DomainReceipt) []byte {
	var b []byte
	for _, receipt := range receipts {
		b = appendBytesField(b, receiptsFieldReceipt, EncodeReceipt(receipt))
	}
	return b
}

// DecodeReceipts decodes a block's receipts from their canonical encoding
func DecodeReceipts(receiptsBytes []byte) ([]*externalapi.DomainReceipt, error) {
	d := newDecoder("receipts", receiptsBytes)
	receipts := []*externalapi.DomainReceipt{}
	for d.next(receiptsFieldReceipt) {
		receiptBytes, err := d.bytes(receiptsFieldReceipt)
		if err != nil {
			return nil, err
		}
		receipt, err := DecodeReceipt(receiptBytes)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	err := d.finish()
	if err != nil {
		return nil, err
	}
	return receipts, nil
}
