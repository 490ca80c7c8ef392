package model

import "github.com/blockforge/forkd/domain/consensus/model/externalapi"

// AccountChange records the state of an address before and after a block.
// A nil Before means the account did not exist prior to the block.
type AccountChange struct {
	Before *externalapi.Account
	After  *externalapi.Account
}

// AccountDiff is the set of account changes a single block made relative
// to its parent. Applying it moves the parent state to the block state and
// reverting it moves the block state back to the parent state.
type AccountDiff map[externalapi.DomainAddress]*AccountChange

// Clone returns a deep clone of the diff
func (diff AccountDiff) Clone() AccountDiff {
	clone := make(AccountDiff, len(diff))
	for address, change := range diff {
		changeClone := &AccountChange{}
		if change.Before != nil {
			changeClone.Before = change.Before.Clone()
		}
		if change.After != nil {
			changeClone.After = change.After.Clone()
		}
		clone[address] = changeClone
	}
	return clone
}
