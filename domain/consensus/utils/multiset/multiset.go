package multiset

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/kaspanet/go-muhash"
	"github.com/pkg/errors"
)

type multiset struct {
	ms *muhash.MuHash
}

func (m multiset) Add(data []byte) {
	m.ms.Add(data)
}

func (m multiset) Remove(data []byte) {
	m.ms.Remove(data)
}

func (m multiset) Hash() *externalapi.DomainHash {
	finalizedHash := m.ms.Finalize()
	return externalapi.NewDomainHashFromByteArray(finalizedHash.AsArray())
}

func (m multiset) Serialize() []byte {
	return m.ms.Serialize()[:]
}

func (m multiset) Clone() model.Multiset {
	return &multiset{ms: m.ms.Clone()}
}

// FromBytes deserializes the given bytes slice and returns a multiset.
func FromBytes(multisetBytes []byte) (model.Multiset, error) {
	serialized := &muhash.SerializedMuHash{}
	if len(serialized) != len(multisetBytes) {
		return nil, errors.Errorf("mutliset bytes expected to be in length of %d but got %d",
			len(serialized), len(multisetBytes))
	}
	copy(serialized[:], multisetBytes)
	ms, err := muhash.DeserializeMuHash(serialized)
	if err != nil {
		return nil, err
	}

	return &multiset{ms: ms}, nil
}

// New returns a new model.Multiset
func New() model.Multiset {
	return &multiset{ms: muhash.NewMuHash()}
}

// AddAccount adds the entry of the given account to the multiset
func AddAccount(ms model.Multiset, address externalapi.DomainAddress, account *externalapi.Account) {
	ms.Add(serialization.EncodeAccountEntry(address, account))
}

// RemoveAccount removes the entry of the given account from the multiset
func RemoveAccount(ms model.Multiset, address externalapi.DomainAddress, account *externalapi.Account) {
	ms.Remove(serialization.EncodeAccountEntry(address, account))
}

// ApplyAccountDiff moves the multiset of a parent state to the multiset of
// the state the diff leads to.
func ApplyAccountDiff(ms model.Multiset, diff model.AccountDiff) {
	for address, change := range diff {
		if change.Before != nil {
			RemoveAccount(ms, address, change.Before)
		}
		if change.After != nil {
			AddAccount(ms, address, change.After)
		}
	}
}

// FromAccounts builds the multiset of a full account state
func FromAccounts(accounts map[externalapi.DomainAddress]*externalapi.Account) model.Multiset {
	ms := New()
	for address, account := range accounts {
		AddAccount(ms, address, account)
	}
	return ms
}

// StateRoot returns the root commitment of a full account state
func StateRoot(accounts map[externalapi.DomainAddress]*externalapi.Account) *externalapi.DomainHash {
	return FromAccounts(accounts).Hash()
}
