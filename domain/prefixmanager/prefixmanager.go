package prefixmanager

import (
	"github.com/blockforge/forkd/infrastructure/db/database"
)

var activePrefixKey = database.MakeBucket(nil).Key([]byte("active-prefix"))
var inactivePrefixKey = database.MakeBucket(nil).Key([]byte("inactive-prefix"))

// ActivePrefix returns the current active database prefix, and whether it exists
func ActivePrefix(dataAccessor database.DataAccessor) (*Prefix, bool, error) {
	return getPrefix(dataAccessor, activePrefixKey)
}

// InactivePrefix returns the current inactive database prefix, and whether it exists
func InactivePrefix(dataAccessor database.DataAccessor) (*Prefix, bool, error) {
	return getPrefix(dataAccessor, inactivePrefixKey)
}

func getPrefix(dataAccessor database.DataAccessor, key *database.Key) (*Prefix, bool, error) {
	prefixBytes, err := dataAccessor.Get(key)
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	prefix, err := Deserialize(prefixBytes)
	if err != nil {
		return nil, false, err
	}
	return prefix, true, nil
}

// ActivePrefixOrDefault returns the active prefix. On a database without
// one, the default prefix is marked as active and returned.
func ActivePrefixOrDefault(dataAccessor database.DataAccessor) (*Prefix, error) {
	prefix, exists, err := ActivePrefix(dataAccessor)
	if err != nil {
		return nil, err
	}
	if exists {
		return prefix, nil
	}

	prefix = DefaultPrefix()
	err = SetPrefixAsActive(dataAccessor, prefix)
	if err != nil {
		return nil, err
	}
	return prefix, nil
}

// DeleteInactivePrefix deletes all data associated with the inactive database prefix, including itself.
func DeleteInactivePrefix(dataAccessor database.DataAccessor) error {
	prefix, exists, err := InactivePrefix(dataAccessor)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	err = DeletePrefix(dataAccessor, prefix)
	if err != nil {
		return err
	}

	return dataAccessor.Delete(inactivePrefixKey)
}

// DeletePrefix deletes every key under the given prefix
func DeletePrefix(dataAccessor database.DataAccessor, prefix *Prefix) error {
	log.Infof("Deleting database prefix %s", prefix)
	prefixBucket := database.MakeBucket(prefix.Serialize())
	cursor, err := dataAccessor.Cursor(prefixBucket)
	if err != nil {
		return err
	}

	defer cursor.Close()

	deleted := 0
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return err
		}

		err = dataAccessor.Delete(key)
		if err != nil {
			return err
		}
		deleted++
	}

	log.Debugf("Deleted %d keys under prefix %s", deleted, prefix)
	return nil
}

// SetPrefixAsActive sets the given prefix as the active prefix
func SetPrefixAsActive(dataAccessor database.DataAccessor, prefix *Prefix) error {
	return dataAccessor.Put(activePrefixKey, prefix.Serialize())
}

// SetPrefixAsInactive sets the given prefix as the inactive prefix
func SetPrefixAsInactive(dataAccessor database.DataAccessor, prefix *Prefix) error {
	return dataAccessor.Put(inactivePrefixKey, prefix.Serialize())
}
