package consensushashing

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/utils/hashes"
	"github.com/blockforge/forkd/util/binaryserializer"
)

// TransactionID returns the identifier of a signed transaction
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionIDWriter()
	writer.InfallibleWrite(serialization.EncodeTransaction(tx))
	return writer.Finalize()
}

// TransactionSigningHash returns the hash a transaction signature is made
// over: every field of the transaction except the signature itself.
func TransactionSigningHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	unsigned := tx.Clone()
	unsigned.Signature = [externalapi.SignatureSize]byte{}

	writer := hashes.NewTransactionSigningHashWriter()
	writer.InfallibleWrite(serialization.EncodeTransaction(unsigned))
	return writer.Finalize()
}

// ReceiptHash returns the hash of a receipt, used as a receipt root leaf
func ReceiptHash(receipt *externalapi.DomainReceipt) *externalapi.DomainHash {
	writer := hashes.NewReceiptHashWriter()
	writer.InfallibleWrite(serialization.EncodeReceipt(receipt))
	return writer.Finalize()
}

// AddressFromPublicKey derives the account address controlled by a public key
func AddressFromPublicKey(publicKey [externalapi.PublicKeySize]byte) externalapi.DomainAddress {
	writer := hashes.NewAddressHashWriter()
	writer.InfallibleWrite(publicKey[:])
	return addressFromHash(writer.Finalize())
}

// ContractAddress derives the address of a contract created by sender with
// the given transaction nonce
func ContractAddress(sender externalapi.DomainAddress, nonce uint64) externalapi.DomainAddress {
	writer := hashes.NewContractAddressHashWriter()
	writer.InfallibleWrite(sender[:])
	err := binaryserializer.PutUint64(writer, nonce)
	if err != nil {
		panic(err)
	}
	return addressFromHash(writer.Finalize())
}

func addressFromHash(hash *externalapi.DomainHash) externalapi.DomainAddress {
	var address externalapi.DomainAddress
	copy(address[:], hash.ByteSlice()[externalapi.DomainHashSize-externalapi.DomainAddressSize:])
	return address
}
