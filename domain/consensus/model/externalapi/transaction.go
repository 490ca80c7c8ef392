package externalapi

import (
	"bytes"
	"math/big"
)

// PublicKeySize is the size of a serialized Schnorr public key.
const PublicKeySize = 32

// SignatureSize is the size of a serialized Schnorr signature.
const SignatureSize = 64

// DomainTransaction represents a signed account transaction. A nil To
// denotes contract creation.
type DomainTransaction struct {
	Nonce     uint64
	GasPrice  *big.Int
	GasLimit  uint64
	To        *DomainAddress
	Value     *big.Int
	Data      []byte
	PublicKey [PublicKeySize]byte
	Signature [SignatureSize]byte
}

// IsContractCreation returns whether the transaction creates a contract.
func (tx *DomainTransaction) IsContractCreation() bool {
	return tx.To == nil
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	var data []byte
	if tx.Data != nil {
		data = make([]byte, len(tx.Data))
		copy(data, tx.Data)
	}

	return &DomainTransaction{
		Nonce:     tx.Nonce,
		GasPrice:  cloneBigInt(tx.GasPrice),
		GasLimit:  tx.GasLimit,
		To:        CloneAddress(tx.To),
		Value:     cloneBigInt(tx.Value),
		Data:      data,
		PublicKey: tx.PublicKey,
		Signature: tx.Signature,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainTransaction{0, &big.Int{}, 0, &DomainAddress{}, &big.Int{}, []byte{},
	[PublicKeySize]byte{}, [SignatureSize]byte{}}

// Equal returns whether tx equals to other
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}

	if tx.Nonce != other.Nonce {
		return false
	}

	if !bigIntsEqual(tx.GasPrice, other.GasPrice) {
		return false
	}

	if tx.GasLimit != other.GasLimit {
		return false
	}

	if (tx.To == nil) != (other.To == nil) {
		return false
	}

	if tx.To != nil && *tx.To != *other.To {
		return false
	}

	if !bigIntsEqual(tx.Value, other.Value) {
		return false
	}

	if !bytes.Equal(tx.Data, other.Data) {
		return false
	}

	if tx.PublicKey != other.PublicKey {
		return false
	}

	if tx.Signature != other.Signature {
		return false
	}

	return true
}
