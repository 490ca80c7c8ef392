package database_test

import (
	"bytes"
	"testing"

	"github.com/blockforge/forkd/infrastructure/db/database"
)

func TestDatabasePutGetDelete(t *testing.T) {
	testForAllDatabaseTypes(t, "TestDatabasePutGetDelete", testDatabasePutGetDelete)
}

func testDatabasePutGetDelete(t *testing.T, db database.Database, testName string) {
	key := database.MakeBucket([]byte("headers")).Key([]byte("h1"))
	value := []byte("header bytes")

	_, err := db.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("%s: Get of a missing key returned %v instead of ErrNotFound", testName, err)
	}

	err = db.Put(key, value)
	if err != nil {
		t.Fatalf("%s: Put: %+v", testName, err)
	}
	exists, err := db.Has(key)
	if err != nil {
		t.Fatalf("%s: Has: %+v", testName, err)
	}
	if !exists {
		t.Fatalf("%s: Has unexpectedly returned false", testName)
	}
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("%s: Get: %+v", testName, err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("%s: Get returned %q, want %q", testName, got, value)
	}

	err = db.Delete(key)
	if err != nil {
		t.Fatalf("%s: Delete: %+v", testName, err)
	}
	exists, err = db.Has(key)
	if err != nil {
		t.Fatalf("%s: Has: %+v", testName, err)
	}
	if exists {
		t.Fatalf("%s: key still exists after Delete", testName)
	}
}

func TestTransactionCommitAndRollback(t *testing.T) {
	testForAllDatabaseTypes(t, "TestTransactionCommitAndRollback", testTransactionCommitAndRollback)
}

func testTransactionCommitAndRollback(t *testing.T, db database.Database, testName string) {
	bucket := database.MakeBucket([]byte("accounts"))
	committedKey := bucket.Key([]byte("committed"))
	rolledBackKey := bucket.Key([]byte("rolledback"))

	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin: %+v", testName, err)
	}
	err = dbTx.Put(committedKey, []byte{1})
	if err != nil {
		t.Fatalf("%s: Put: %+v", testName, err)
	}
	// Writes are not visible until the transaction is committed
	exists, err := db.Has(committedKey)
	if err != nil {
		t.Fatalf("%s: Has: %+v", testName, err)
	}
	if exists {
		t.Fatalf("%s: uncommitted write is visible", testName)
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("%s: Commit: %+v", testName, err)
	}
	exists, err = db.Has(committedKey)
	if err != nil {
		t.Fatalf("%s: Has: %+v", testName, err)
	}
	if !exists {
		t.Fatalf("%s: committed write is missing", testName)
	}
	err = dbTx.Commit()
	if err == nil {
		t.Fatalf("%s: committing a closed transaction unexpectedly succeeded", testName)
	}

	dbTx, err = db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin: %+v", testName, err)
	}
	err = dbTx.Put(rolledBackKey, []byte{2})
	if err != nil {
		t.Fatalf("%s: Put: %+v", testName, err)
	}
	err = dbTx.Delete(committedKey)
	if err != nil {
		t.Fatalf("%s: Delete: %+v", testName, err)
	}
	err = dbTx.Rollback()
	if err != nil {
		t.Fatalf("%s: Rollback: %+v", testName, err)
	}
	err = dbTx.RollbackUnlessClosed()
	if err != nil {
		t.Fatalf("%s: RollbackUnlessClosed: %+v", testName, err)
	}
	exists, err = db.Has(rolledBackKey)
	if err != nil {
		t.Fatalf("%s: Has: %+v", testName, err)
	}
	if exists {
		t.Fatalf("%s: rolled back write is visible", testName)
	}
	exists, err = db.Has(committedKey)
	if err != nil {
		t.Fatalf("%s: Has: %+v", testName, err)
	}
	if !exists {
		t.Fatalf("%s: rolled back delete was applied", testName)
	}
}

func TestCursorIteratesBucket(t *testing.T) {
	testForAllDatabaseTypes(t, "TestCursorIteratesBucket", testCursorIteratesBucket)
}

func testCursorIteratesBucket(t *testing.T, db database.Database, testName string) {
	entries := populateDatabaseForTest(t, db, testName)
	err := db.Put(database.MakeBucket([]byte("other")).Key([]byte("key0")), []byte("x"))
	if err != nil {
		t.Fatalf("%s: Put: %+v", testName, err)
	}

	cursor, err := db.Cursor(entries[0].key.Bucket())
	if err != nil {
		t.Fatalf("%s: Cursor: %+v", testName, err)
	}
	defer cursor.Close()

	count := 0
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("%s: Key: %+v", testName, err)
		}
		if !bytes.Equal(key.Bytes(), entries[count].key.Bytes()) {
			t.Fatalf("%s: cursor key %s, want %s", testName, key, entries[count].key)
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("%s: Value: %+v", testName, err)
		}
		if !bytes.Equal(value, entries[count].value) {
			t.Fatalf("%s: cursor value %q, want %q", testName, value, entries[count].value)
		}
		count++
	}
	if count != len(entries) {
		t.Fatalf("%s: cursor visited %d entries, want %d", testName, count, len(entries))
	}
}
