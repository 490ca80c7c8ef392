package stateverifier

import (
	"math/big"
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/davecgh/go-spew/spew"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

type mapReader map[externalapi.DomainAddress]*externalapi.Account

func (m mapReader) Account(address externalapi.DomainAddress) (*externalapi.Account, bool, error) {
	account, ok := m[address]
	if !ok {
		return nil, false, nil
	}
	return account.Clone(), true, nil
}

func account(balance int64, nonce uint64, code []byte, storage map[uint64]uint64) *externalapi.Account {
	acc := externalapi.NewAccount()
	acc.Balance.SetInt64(balance)
	acc.Nonce = nonce
	acc.Code = code
	for key, value := range storage {
		acc.Storage[*uint256.NewInt(key)] = *uint256.NewInt(value)
	}
	return acc
}

func TestVerifyStateMatches(t *testing.T) {
	alice := externalapi.DomainAddress{1}
	bob := externalapi.DomainAddress{2}
	actual := mapReader{
		alice: account(10, 1, []byte{1}, map[uint64]uint64{1: 2}),
		bob:   account(5, 0, nil, nil),
	}
	expected := map[externalapi.DomainAddress]*externalapi.Account{
		alice: account(10, 1, []byte{1}, map[uint64]uint64{1: 2, 3: 0}),
		// Accounts missing from the state are compared as empty ones
		{3}: account(0, 0, nil, nil),
	}

	err := New().VerifyState(expected, actual)
	if err != nil {
		t.Fatalf("VerifyState: %+v", err)
	}
}

func TestVerifyStateCollectsEveryMismatch(t *testing.T) {
	alice := externalapi.DomainAddress{1}
	bob := externalapi.DomainAddress{2}
	actual := mapReader{
		alice: account(10, 1, []byte{1}, map[uint64]uint64{1: 2}),
	}
	expected := map[externalapi.DomainAddress]*externalapi.Account{
		alice: account(11, 2, []byte{2}, map[uint64]uint64{1: 3, 4: 4}),
		bob:   {Balance: big.NewInt(7)},
	}

	err := New().VerifyState(expected, actual)
	kind, ok := ruleerrors.KindOf(err)
	if !ok || kind != ruleerrors.KindStateMismatch {
		t.Fatalf("expected a state mismatch, got %+v", err)
	}

	var stateMismatch ruleerrors.ErrStateMismatch
	if !errors.As(err, &stateMismatch) {
		t.Fatalf("expected ErrStateMismatch in the chain, got %+v", err)
	}

	expectedFields := []struct {
		address externalapi.DomainAddress
		field   string
	}{
		{alice, "balance"},
		{alice, "nonce"},
		{alice, "code"},
		{alice, "storage[0x1]"},
		{alice, "storage[0x4]"},
		{bob, "balance"},
	}
	if len(stateMismatch.Mismatches) != len(expectedFields) {
		t.Fatalf("expected %d mismatches, got %s", len(expectedFields), spew.Sdump(stateMismatch.Mismatches))
	}
	for i, expectedField := range expectedFields {
		mismatch := stateMismatch.Mismatches[i]
		if mismatch.Address != expectedField.address || mismatch.Field != expectedField.field {
			t.Fatalf("mismatch #%d: expected %s %s, got %s", i, expectedField.address,
				expectedField.field, mismatch)
		}
	}
	if stateMismatch.Mismatches[0].Expected != "11" || stateMismatch.Mismatches[0].Actual != "10" {
		t.Fatalf("unexpected balance mismatch %s", stateMismatch.Mismatches[0])
	}
}
