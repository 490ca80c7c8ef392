package model

import "github.com/blockforge/forkd/infrastructure/db/database"

// DBReader defines a proxy over domain data access
type DBReader interface {
	// Get gets the value for the given key. It returns
	// ErrNotFound if the given key does not exist.
	Get(key *database.Key) ([]byte, error)

	// Has returns true if the database does contains the
	// given key.
	Has(key *database.Key) (bool, error)

	// Cursor begins a new cursor over the given bucket.
	Cursor(bucket *database.Bucket) (database.Cursor, error)
}

// DBWriter is an interface to write to the database
type DBWriter interface {
	DBReader

	// Put sets the value for the given key. It overwrites
	// any previous value for that key.
	Put(key *database.Key, value []byte) error

	// Delete deletes the value for the given key. Will not
	// return an error if the key doesn't exist.
	Delete(key *database.Key) error
}

// DBTransaction is a proxy over domain data
// access that requires an open database transaction
type DBTransaction = database.Transaction

// DBManager defines the interface of a database that can begin
// transactions and read data.
type DBManager = database.Database
