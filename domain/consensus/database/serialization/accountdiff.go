package serialization

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

const accountDiffFieldEntry protowire.Number = 1

const (
	accountChangeFieldAddress protowire.Number = iota + 1
	accountChangeFieldBefore
	accountChangeFieldAfter
)

// EncodeAccountDiff returns the canonical encoding of an account diff. Entries
// are ordered by address and a missing account is encoded as empty bytes.
func EncodeAccountDiff(diff model.AccountDiff) []byte {
	addresses := make(map[externalapi.DomainAddress]*externalapi.Account, len(diff))
	for address := range diff {
		addresses[address] = nil
	}

	var b []byte
	for _, entry := range externalapi.SortedAccounts(addresses) {
		change := diff[entry.Address]
		var before, after []byte
		if change.Before != nil {
			before = EncodeAccount(change.Before)
		}
		if change.After != nil {
			after = EncodeAccount(change.After)
		}
		entryBytes := appendBytesField(nil, accountChangeFieldAddress, entry.Address[:])
		entryBytes = appendBytesField(entryBytes, accountChangeFieldBefore, before)
		entryBytes = appendBytesField(entryBytes, accountChangeFieldAfter, after)
		b = appendBytesField(b, accountDiffFieldEntry, entryBytes)
	}
	return b
}

// DecodeAccountDiff decodes an account diff from its canonical encoding
func DecodeAccountDiff(diffBytes []byte) (model.AccountDiff, error) {
	d := newDecoder("account diff", diffBytes)
	diff := make(model.AccountDiff)
	for d.next(accountDiffFieldEntry) {
		entryBytes, err := d.bytes(accountDiffFieldEntry)
		if err != nil {
			return nil, err
		}
		entryDecoder := newDecoder("account change", entryBytes)
		var address externalapi.DomainAddress
		err = entryDecoder.address(accountChangeFieldAddress, &address)
		if err != nil {
			return nil, err
		}
		change := &model.AccountChange{}
		change.Before, err = entryDecoder.optionalAccount(accountChangeFieldBefore)
		if err != nil {
			return nil, err
		}
		change.After, err = entryDecoder.optionalAccount(accountChangeFieldAfter)
		if err != nil {
			return nil, err
		}
		err = entryDecoder.finish()
		if err != nil {
			return nil, err
		}
		if _, ok := diff[address]; ok {
			return nil, d.deserializationError("duplicate entry for %s", address)
		}
		diff[address] = change
	}
	err := d.finish()
	if err != nil {
		return nil, err
	}
	return diff, nil
}

func (d *decoder) optionalAccount(num protowire.Number) (*externalapi.Account, error) {
	accountBytes, err := d.bytes(num)
	if err != nil {
		return nil, err
	}
	if len(accountBytes) == 0 {
		return nil, nil
	}
	return DecodeAccount(accountBytes)
}
