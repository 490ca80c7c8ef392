package stateverifier

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/domain/consensus/ruleerrors"
	"github.com/holiman/uint256"
)

type stateVerifier struct{}

// New instantiates a new StateVerifier
func New() model.StateVerifier {
	return &stateVerifier{}
}

// VerifyState compares every expected account against the actual state and
// reports all differences at once. An account missing from the actual state
// is compared as an empty one. Accounts that are not expected are not
// looked at.
func (sv *stateVerifier) VerifyState(expected map[externalapi.DomainAddress]*externalapi.Account,
	actual model.AccountReader) error {

	var mismatches []ruleerrors.AccountMismatch
	for _, expectedAccount := range externalapi.SortedAccounts(expected) {
		actualAccount, exists, err := actual.Account(expectedAccount.Address)
		if err != nil {
			return err
		}
		if !exists {
			actualAccount = externalapi.NewAccount()
		}
		mismatches = append(mismatches,
			compareAccounts(expectedAccount.Address, normalize(expectedAccount.Account), actualAccount)...)
	}

	if len(mismatches) > 0 {
		log.Debugf("Found %d mismatches in %d expected accounts", len(mismatches), len(expected))
		return ruleerrors.NewErrStateMismatch(mismatches)
	}
	return nil
}

// normalize fills in the fields a partially specified expected account
// leaves out
func normalize(account *externalapi.Account) *externalapi.Account {
	if account == nil {
		return externalapi.NewAccount()
	}
	normalized := account.Clone()
	if normalized.Storage == nil {
		normalized.Storage = make(map[uint256.Int]uint256.Int)
	}
	return normalized
}

func compareAccounts(address externalapi.DomainAddress, expected, actual *externalapi.Account) []ruleerrors.AccountMismatch {
	var mismatches []ruleerrors.AccountMismatch
	mismatch := func(field, expectedValue, actualValue string) {
		mismatches = append(mismatches, ruleerrors.AccountMismatch{
			Address:  address,
			Field:    field,
			Expected: expectedValue,
			Actual:   actualValue,
		})
	}

	if expected.Balance.Cmp(actual.Balance) != 0 {
		mismatch("balance", expected.Balance.String(), actual.Balance.String())
	}
	if expected.Nonce != actual.Nonce {
		mismatch("nonce", fmt.Sprint(expected.Nonce), fmt.Sprint(actual.Nonce))
	}
	if hex.EncodeToString(expected.Code) != hex.EncodeToString(actual.Code) {
		mismatch("code", "0x"+hex.EncodeToString(expected.Code), "0x"+hex.EncodeToString(actual.Code))
	}

	for _, key := range storageKeys(expected, actual) {
		expectedValue := expected.Storage[key]
		actualValue := actual.Storage[key]
		if !expectedValue.Eq(&actualValue) {
			mismatch("storage["+key.Hex()+"]", expectedValue.Hex(), actualValue.Hex())
		}
	}
	return mismatches
}

// storageKeys returns the union of the storage keys of both accounts,
// ordered
func storageKeys(accounts ...*externalapi.Account) []uint256.Int {
	seen := make(map[uint256.Int]struct{})
	var keys []uint256.Int
	for _, account := range accounts {
		for key := range account.Storage {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Lt(&keys[j])
	})
	return keys
}
