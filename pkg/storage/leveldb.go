package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBBackend stores values in a LevelDB database
type LevelDBBackend struct {
	file string
	db   *leveldb.DB
}

// NewLevelDBBackend opens (or creates) the database at file, recovering it
// if the manifest is corrupted
func NewLevelDBBackend(file string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(file, &opt.Options{})
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDBBackend{file: file, db: db}, nil
}

// Close releases the database
func (l *LevelDBBackend) Close() error {
	return l.db.Close()
}

// FileName returns the on-disk path
func (l *LevelDBBackend) FileName() string {
	return l.file
}

func (l *LevelDBBackend) Get(key string) ([]byte, error) {
	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, keyError("get", key, err)
	}
	return value, nil
}

func (l *LevelDBBackend) Put(key string, value []byte) error {
	if err := l.db.Put([]byte(key), value, &opt.WriteOptions{Sync: true}); err != nil {
		return keyError("put", key, err)
	}
	return nil
}

func (l *LevelDBBackend) Delete(key string) error {
	if err := l.db.Delete([]byte(key), nil); err != nil {
		return keyError("delete", key, err)
	}
	return nil
}
