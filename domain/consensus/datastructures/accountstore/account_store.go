package accountstore

import (
	"github.com/blockforge/forkd/domain/consensus/database/serialization"
	"github.com/blockforge/forkd/domain/consensus/model"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/blockforge/forkd/infrastructure/db/database"
	"github.com/pkg/errors"
)

var bucketName = []byte("accounts")

// accountStore holds the account state at the canonical head. It only ever
// moves by whole account diffs, so that after every commit it equals the
// state committed to by the head's state root.
type accountStore struct {
	shardID model.StagingShardID
	bucket  *database.Bucket
}

// New instantiates a new AccountStore
func New(prefixBucket *database.Bucket) model.AccountStore {
	return &accountStore{
		shardID: model.NewStagingShardID(),
		bucket:  prefixBucket.Bucket(bucketName),
	}
}

// StageAccountDiff stages the post-state of every account the given diff
// touches. Diffs staged later in the same staging area override earlier ones.
func (as *accountStore) StageAccountDiff(stagingArea *model.StagingArea, accountDiff model.AccountDiff) {
	stagingShard := as.stagingShard(stagingArea)

	for address, change := range accountDiff {
		if change.After == nil {
			delete(stagingShard.toAdd, address)
			stagingShard.toDelete[address] = struct{}{}
			continue
		}
		delete(stagingShard.toDelete, address)
		stagingShard.toAdd[address] = change.After.Clone()
	}
}

func (as *accountStore) IsStaged(stagingArea *model.StagingArea) bool {
	return as.stagingShard(stagingArea).isStaged()
}

// Account returns the account stored for the given address and whether it exists
func (as *accountStore) Account(dbContext model.DBReader, stagingArea *model.StagingArea,
	address externalapi.DomainAddress) (*externalapi.Account, bool, error) {

	stagingShard := as.stagingShard(stagingArea)

	if account, ok := stagingShard.toAdd[address]; ok {
		return account.Clone(), true, nil
	}

	if _, ok := stagingShard.toDelete[address]; ok {
		return nil, false, nil
	}

	accountBytes, err := dbContext.Get(as.addressAsKey(address))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	account, err := serialization.DecodeAccount(accountBytes)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// Accounts returns every stored account, staged changes included
func (as *accountStore) Accounts(dbContext model.DBReader, stagingArea *model.StagingArea) (
	map[externalapi.DomainAddress]*externalapi.Account, error) {

	stagingShard := as.stagingShard(stagingArea)

	cursor, err := dbContext.Cursor(as.bucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	accounts := make(map[externalapi.DomainAddress]*externalapi.Account)
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		address, err := externalapi.NewDomainAddressFromByteSlice(key.Suffix())
		if err != nil {
			return nil, errors.Wrapf(err, "malformed account key %s", key)
		}
		if _, ok := stagingShard.toDelete[address]; ok {
			continue
		}

		accountBytes, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		account, err := serialization.DecodeAccount(append([]byte(nil), accountBytes...))
		if err != nil {
			return nil, err
		}
		accounts[address] = account
	}

	for address, account := range stagingShard.toAdd {
		accounts[address] = account.Clone()
	}

	return accounts, nil
}

func (as *accountStore) addressAsKey(address externalapi.DomainAddress) *database.Key {
	return as.bucket.Key(address[:])
}
