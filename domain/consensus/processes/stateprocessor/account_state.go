package stateprocessor

import (
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

// accountState is a copy-on-write view over the parent state of a block.
// The first touch of an address records its parent version, which is what
// makes the resulting diff revertible.
type accountState struct {
	parent  model.AccountReader
	before  map[externalapi.DomainAddress]*externalapi.Account
	current map[externalapi.DomainAddress]*externalapi.Account
}

func newAccountState(parent model.AccountReader) *accountState {
	return &accountState{
		parent:  parent,
		before:  make(map[externalapi.DomainAddress]*externalapi.Account),
		current: make(map[externalapi.DomainAddress]*externalapi.Account),
	}
}

// account returns the mutable working copy of the account at address. A
// missing account is returned as an empty one.
func (s *accountState) account(address externalapi.DomainAddress) (*externalapi.Account, error) {
	if account, ok := s.current[address]; ok {
		return account, nil
	}

	account, exists, err := s.parent.Account(address)
	if err != nil {
		return nil, err
	}
	if exists {
		s.before[address] = account.Clone()
		s.current[address] = account.Clone()
	} else {
		s.before[address] = nil
		s.current[address] = externalapi.NewAccount()
	}
	return s.current[address], nil
}

// diff returns the changes made so far. Addresses that were only read, and
// accounts that never existed and are still empty, are left out.
func (s *accountState) diff() model.AccountDiff {
	diff := make(model.AccountDiff)
	for address, after := range s.current {
		before := s.before[address]
		if before == nil && after.IsEmpty() {
			continue
		}
		if before != nil && before.Equal(after) {
			continue
		}

		change := &model.AccountChange{After: after.Clone()}
		if before != nil {
			change.Before = before.Clone()
		}
		diff[address] = change
	}
	return diff
}
