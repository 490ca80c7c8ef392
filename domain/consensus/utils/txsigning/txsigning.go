// Package txsigning signs and verifies account transactions with Schnorr
// signatures over secp256k1. A transaction's sender is the address derived
// from the public key it carries.
package txsigning

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/blockforge/forkd/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// Sign fills the transaction's public key and signature using keyPair
func Sign(tx *externalapi.DomainTransaction, keyPair *secp256k1.SchnorrKeyPair) error {
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return errors.WithStack(err)
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return errors.WithStack(err)
	}
	tx.PublicKey = *serializedPublicKey

	secpHash := secp256k1.Hash(*consensushashing.TransactionSigningHash(tx).ByteArray())
	signature, err := keyPair.SchnorrSign(&secpHash)
	if err != nil {
		return errors.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signature = *signature.Serialize()
	return nil
}

// Verify checks the transaction's signature against its public key
func Verify(tx *externalapi.DomainTransaction) error {
	publicKey, err := secp256k1.DeserializeSchnorrPubKey(tx.PublicKey[:])
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidPublicKey, "%s", err)
	}
	signature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(tx.Signature[:])
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "%s", err)
	}

	secpHash := secp256k1.Hash(*consensushashing.TransactionSigningHash(tx).ByteArray())
	if !publicKey.SchnorrVerify(&secpHash, signature) {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "signature does not match public key %x",
			tx.PublicKey)
	}
	return nil
}

// Sender returns the address of the account that sends tx
func Sender(tx *externalapi.DomainTransaction) externalapi.DomainAddress {
	return consensushashing.AddressFromPublicKey(tx.PublicKey)
}

// AddressOfKeyPair returns the address controlled by keyPair
func AddressOfKeyPair(keyPair *secp256k1.SchnorrKeyPair) (externalapi.DomainAddress, error) {
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return externalapi.DomainAddress{}, errors.WithStack(err)
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return externalapi.DomainAddress{}, errors.WithStack(err)
	}
	return consensushashing.AddressFromPublicKey(*serializedPublicKey), nil
}
