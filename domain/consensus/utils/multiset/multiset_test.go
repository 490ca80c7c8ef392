package multiset

import (
	"testing"

	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
)

func accountWithBalance(balance int64) *externalapi.Account {
	account := externalapi.NewAccount()
	account.Balance.SetInt64(balance)
	return account
}

func TestStateRootIsOrderIndependent(t *testing.T) {
	accounts := map[externalapi.DomainAddress]*externalapi.Account{
		{1}: accountWithBalance(10),
		{2}: accountWithBalance(20),
		{3}: accountWithBalance(30),
	}
	first := StateRoot(accounts)

	ms := New()
	AddAccount(ms, externalapi.DomainAddress{3}, accountWithBalance(30))
	AddAccount(ms, externalapi.DomainAddress{1}, accountWithBalance(10))
	AddAccount(ms, externalapi.DomainAddress{2}, accountWithBalance(20))
	if !ms.Hash().Equal(first) {
		t.Fatalf("state root depends on insertion order")
	}
	if !StateRoot(accounts).Equal(first) {
		t.Fatalf("state root is not deterministic")
	}
}

func TestApplyAccountDiffMatchesFullRecomputation(t *testing.T) {
	parentState := map[externalapi.DomainAddress]*externalapi.Account{
		{1}: accountWithBalance(10),
		{2}: accountWithBalance(20),
	}
	childState := map[externalapi.DomainAddress]*externalapi.Account{
		{1}: accountWithBalance(5),
		{2}: accountWithBalance(20),
		{3}: accountWithBalance(5),
	}
	diff := model.AccountDiff{
		{1}: {Before: accountWithBalance(10), After: accountWithBalance(5)},
		{3}: {Before: nil, After: accountWithBalance(5)},
	}

	ms := FromAccounts(parentState)
	ApplyAccountDiff(ms, diff)
	if !ms.Hash().Equal(StateRoot(childState)) {
		t.Fatalf("incremental state root differs from full recomputation")
	}

	restored, err := FromBytes(ms.Serialize())
	if err != nil {
		t.Fatalf("FromBytes: %+v", err)
	}
	if !restored.Hash().Equal(ms.Hash()) {
		t.Fatalf("serialized multiset does not restore to the same hash")
	}
}
