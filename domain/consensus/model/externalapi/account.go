package externalapi

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/holiman/uint256"
)

// Account is the state held for a single address.
type Account struct {
	Balance *big.Int
	Nonce   uint64
	Code    []byte
	Storage map[uint256.Int]uint256.Int
}

// NewAccount returns an empty account with a zero balance.
func NewAccount() *Account {
	return &Account{
		Balance: new(big.Int),
		Storage: make(map[uint256.Int]uint256.Int),
	}
}

// StorageSlot is a single storage key/value pair.
type StorageSlot struct {
	Key   uint256.Int
	Value uint256.Int
}

// SortedStorage returns the non-zero storage slots ordered by key.
func (account *Account) SortedStorage() []StorageSlot {
	slots := make([]StorageSlot, 0, len(account.Storage))
	for key, value := range account.Storage {
		if value.IsZero() {
			continue
		}
		slots = append(slots, StorageSlot{Key: key, Value: value})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Key.Lt(&slots[j].Key)
	})
	return slots
}

// IsEmpty returns whether the account has no balance, nonce, code or storage.
func (account *Account) IsEmpty() bool {
	return account.Balance.Sign() == 0 && account.Nonce == 0 &&
		len(account.Code) == 0 && len(account.SortedStorage()) == 0
}

// Clone returns a clone of Account
func (account *Account) Clone() *Account {
	var code []byte
	if account.Code != nil {
		code = make([]byte, len(account.Code))
		copy(code, account.Code)
	}
	storage := make(map[uint256.Int]uint256.Int, len(account.Storage))
	for key, value := range account.Storage {
		storage[key] = value
	}

	balance := new(big.Int)
	if account.Balance != nil {
		balance.Set(account.Balance)
	}

	return &Account{
		Balance: balance,
		Nonce:   account.Nonce,
		Code:    code,
		Storage: storage,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = Account{&big.Int{}, 0, []byte{}, map[uint256.Int]uint256.Int{}}

// Equal returns whether account equals to other. Zero-valued storage slots
// are treated as absent.
func (account *Account) Equal(other *Account) bool {
	if account == nil || other == nil {
		return account == other
	}

	if !bigIntsEqual(account.Balance, other.Balance) {
		return false
	}

	if account.Nonce != other.Nonce {
		return false
	}

	if !bytes.Equal(account.Code, other.Code) {
		return false
	}

	return storageEqual(account.Storage, other.Storage)
}

func storageEqual(a, b map[uint256.Int]uint256.Int) bool {
	for key, value := range a {
		otherValue := b[key]
		if !value.Eq(&otherValue) {
			return false
		}
	}
	for key, value := range b {
		thisValue := a[key]
		if !value.Eq(&thisValue) {
			return false
		}
	}
	return true
}

// AccountAndAddress pairs an account with its address.
type AccountAndAddress struct {
	Address DomainAddress
	Account *Account
}

// SortedAccounts returns the accounts of the given mapping ordered by address.
func SortedAccounts(accounts map[DomainAddress]*Account) []AccountAndAddress {
	sorted := make([]AccountAndAddress, 0, len(accounts))
	for address, account := range accounts {
		sorted = append(sorted, AccountAndAddress{Address: address, Account: account})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Address.Less(sorted[j].Address)
	})
	return sorted
}
