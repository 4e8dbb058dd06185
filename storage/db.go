package storage

import (
	dbm "github.com/cometbft/cometbft-db"

	"github.com/wippyai/polkawasm/errors"
)

// DBBackend stores state in a cometbft-db database.
type DBBackend struct {
	db dbm.DB
}

// NewDBBackend wraps db.
func NewDBBackend(db dbm.DB) *DBBackend {
	return &DBBackend{db: db}
}

// NewMemBackend returns a backend over a fresh in-memory database.
func NewMemBackend() *DBBackend {
	return NewDBBackend(dbm.NewMemDB())
}

// DB returns the wrapped database.
func (b *DBBackend) DB() dbm.DB {
	return b.db
}

func (b *DBBackend) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errEmptyKey()
	}
	v, err := b.db.Get(key)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "get")
	}
	return v, nil
}

func (b *DBBackend) Set(key, value []byte) error {
	if len(key) == 0 {
		return errEmptyKey()
	}
	// cometbft-db rejects nil values; an empty value is still a value.
	if value == nil {
		value = []byte{}
	}
	if err := b.db.Set(key, value); err != nil {
		return errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "set")
	}
	return nil
}

func (b *DBBackend) Delete(key []byte) error {
	if len(key) == 0 {
		return errEmptyKey()
	}
	if err := b.db.Delete(key); err != nil {
		return errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "delete")
	}
	return nil
}

func (b *DBBackend) Iterate(fn func(key, value []byte) error) error {
	it, err := b.db.Iterator(nil, nil)
	if err != nil {
		return errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "iterate")
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "iterate")
	}
	return nil
}

func errEmptyKey() error {
	return errors.InvalidInput(errors.PhaseStorage, "empty storage key")
}
