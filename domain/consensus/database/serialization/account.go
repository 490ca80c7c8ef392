package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	accountFieldBalance protowire.Number = iota + 1
	accountFieldNonce
	accountFieldCode
	accountFieldStorage
)

const storageSlotSize = 64

// EncodeAccount returns the canonical encoding of the given account. Storage
// slots are written in ascending key order and zero-valued slots are omitted.
func EncodeAccount(account *externalapi.Account) []byte {
	b := appendBigIntField(nil, accountFieldBalance, account.Balance)
	b = appendVarintField(b, accountFieldNonce, account.Nonce)
	b = appendBytesField(b, accountFieldCode, account.Code)
	for _, slot := range account.SortedStorage() {
		var slotBytes [storageSlotSize]byte
		key := slot.Key.Bytes32()
		value := slot.Value.Bytes32()
		copy(slotBytes[:32], key[:])
		copy(slotBytes[32:], value[:])
		b = appendBytesField(b, accountFieldStorage, slotBytes[:])
	}
	return b
}

// DecodeAccount decodes an account from its canonical encoding
func DecodeAccount(accountBytes []byte) (*externalapi.Account, error) {
	d := newDecoder("account", accountBytes)
	account := externalapi.NewAccount()

	var err error
	account.Balance, err = d.bigInt(accountFieldBalance)
	if err != nil {
		return nil, err
	}
	account.Nonce, err = d.uint64(accountFieldNonce)
	if err != nil {
		return nil, err
	}
	account.Code, err = d.bytes(accountFieldCode)
	if err != nil {
		return nil, err
	}

	var previousKey *uint256.Int
	for d.next(accountFieldStorage) {
		slotBytes, err := d.fixedBytes(accountFieldStorage, storageSlotSize)
		if err != nil {
			return nil, err
		}
		key := new(uint256.Int).SetBytes(slotBytes[:32])
		value := new(uint256.Int).SetBytes(slotBytes[32:])
		if previousKey != nil && !previousKey.Lt(key) {
			return nil, d.deserializationError("storage slot %s is out of order", key.Hex())
		}
		if value.IsZero() {
			return nil, d.deserializationError("storage slot %s holds a zero value", key.Hex())
		}
		account.Storage[*key] = *value
		previousKey = key
	}

	err = d.finish()
	if err != nil {
		return nil, err
	}
	return account, nil
}

// EncodeAccountEntry returns the address followed by the account encoding.
// It is the element added to the state multiset for every account.
func EncodeAccountEntry(address externalapi.DomainAddress, account *externalapi.Account) []byte {
	accountBytes := EncodeAccount(account)
	entry := make([]byte, 0, externalapi.DomainAddressSize+len(accountBytes))
	entry = append(entry, address[:]...)
	return append(entry, accountBytes...)
}
