package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	transactionFieldNonce protowire.Number = iota + 1
	transactionFieldGasPrice
	transactionFieldGasLimit
	transactionFieldTo
	transactionFieldValue
	transactionFieldData
	transactionFieldPublicKey
	transactionFieldSignature
)

// EncodeTransaction returns the canonical encoding of the given transaction.
// A contract creation is encoded with an empty To field.
func EncodeTransaction(tx *externalapi.DomainTransaction) []byte {
	var to []byte
	if tx.To != nil {
		to = tx.To[:]
	}
	b := appendVarintField(nil, transactionFieldNonce, tx.Nonce)
	b = appendBigIntField(b, transactionFieldGasPrice, tx.GasPrice)
	b = appendVarintField(b, transactionFieldGasLimit, tx.GasLimit)
	b = appendBytesField(b, transactionFieldTo, to)
	b = appendBigIntField(b, transactionFieldValue, tx.Value)
	b = appendBytesField(b, transactionFieldData, tx.Data)
	b = appendBytesField(b, transactionFieldPublicKey, tx.PublicKey[:])
	b = appendBytesField(b, transactionFieldSignature, tx.Signature[:])
	return b
}

// DecodeTransaction decodes a transaction from its canonical encoding
func DecodeTransaction(txBytes []byte) (*externalapi.DomainTransaction, error) {
	d := newDecoder("transaction", txBytes)
	tx := &externalapi.DomainTransaction{}

	var err error
	tx.Nonce, err = d.uint64(transactionFieldNonce)
	if err != nil {
		return nil, err
	}
	tx.GasPrice, err = d.bigInt(transactionFieldGasPrice)
	if err != nil {
		return nil, err
	}
	tx.GasLimit, err = d.uint64(transactionFieldGasLimit)
	if err != nil {
		return nil, err
	}
	to, err := d.bytes(transactionFieldTo)
	if err != nil {
		return nil, err
	}
	switch len(to) {
	case 0:
		tx.To = nil
	case externalapi.DomainAddressSize:
		address, err := externalapi.NewDomainAddressFromByteSlice(to)
		if err != nil {
			return nil, d.deserializationError("recipient: %s", err)
		}
		tx.To = &address
	default:
		return nil, d.deserializationError("recipient must be empty or %d bytes but is %d",
			externalapi.DomainAddressSize, len(to))
	}
	tx.Value, err = d.bigInt(transactionFieldValue)
	if err != nil {
		return nil, err
	}
	tx.Data, err = d.bytes(transactionFieldData)
	if err != nil {
		return nil, err
	}
	publicKey, err := d.fixedBytes(transactionFieldPublicKey, externalapi.PublicKeySize)
	if err != nil {
		return nil, err
	}
	copy(tx.PublicKey[:], publicKey)
	signature, err := d.fixedBytes(transactionFieldSignature, externalapi.SignatureSize)
	if err != nil {
		return nil, err
	}
	copy(tx.Signature[:], signature)

	err = d.finish()
	if err != nil {
		return nil, err
	}
	return tx, nil
}
