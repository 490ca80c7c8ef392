package txsigning

import (
	"math/big"
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

func testKeyPair(t *testing.T) *secp256k1.SchnorrKeyPair {
	privateKeyBytes := make([]byte, 32)
	privateKeyBytes[31] = 7
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKeyBytes)
	if err != nil {
		t.Fatalf("DeserializeSchnorrPrivateKeyFromSlice: %+v", err)
	}
	return keyPair
}

func TestSignAndVerify(t *testing.T) {
	keyPair := testKeyPair(t)
	to := externalapi.DomainAddress{9}
	tx := &externalapi.DomainTransaction{
		Nonce:    3,
		GasPrice: big.NewInt(1),
		GasLimit: 21000,
		To:       &to,
		Value:    big.NewInt(100),
	}
	err := Sign(tx, keyPair)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	err = Verify(tx)
	if err != nil {
		t.Fatalf("Verify: %+v", err)
	}

	address, err := AddressOfKeyPair(keyPair)
	if err != nil {
		t.Fatalf("AddressOfKeyPair: %+v", err)
	}
	if Sender(tx) != address {
		t.Fatalf("expected sender %s, got %s", address, Sender(tx))
	}

	tampered := tx.Clone()
	tampered.Value = big.NewInt(101)
	err = Verify(tampered)
	if !errors.Is(err, ruleerrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for a tampered value, got %+v", err)
	}

	unsigned := tx.Clone()
	unsigned.Signature = [externalapi.SignatureSize]byte{}
	err = Verify(unsigned)
	if err == nil {
		t.Fatalf("expected an unsigned transaction to fail verification")
	}
	kind, _ := ruleerrors.KindOf(err)
	if kind != ruleerrors.KindTransactionValidation {
		t.Fatalf("expected kind %s, got %s", ruleerrors.KindTransactionValidation, kind)
	}
}
