package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/AvengeMedia/dankfind/internal/catalog"
	"github.com/AvengeMedia/dankfind/internal/config"
	"github.com/AvengeMedia/dankfind/internal/errdefs"
	"github.com/AvengeMedia/dankfind/internal/query"
)

var (
	bucketName = []byte("files")
	metaBucket = []byte("meta")
	statsKey   = []byte("stats")
)

// Bolt persists the catalogue in a bbolt database, one JSON-encoded
// record per path. Records iterate in path order.
type Bolt struct {
	db *bolt.DB
}

func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreFailed, "failed to create store directory", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreFailed, "failed to open store", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreFailed, "failed to create bucket", err)
	}

	return &Bolt{db: db}, nil
}

func (s *Bolt) Upsert(f *catalog.File) (*catalog.File, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreFailed,
			fmt.Sprintf("failed to encode record for %s", f.Path), err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(f.Path), data)
	})
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreFailed,
			fmt.Sprintf("failed to store record for %s", f.Path), err)
	}
	return f, nil
}

func (s *Bolt) Each(fn func(*catalog.File) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			f, err := decodeFile(v)
			if err != nil {
				return errdefs.NewCustomError(errdefs.ErrTypeStoreFailed,
					fmt.Sprintf("corrupt record for %s", k), err)
			}
			return fn(f)
		})
	})
}

func (s *Bolt) RunQuery(q *query.Query) ([]query.Result, error) {
	cat, err := s.loadCatalog()
	if err != nil {
		return nil, err
	}
	return query.Evaluate(q, cat), nil
}

func (s *Bolt) EachMatch(q *query.Query, fn func(query.Result) error) error {
	cat, err := s.loadCatalog()
	if err != nil {
		return err
	}
	return query.EachMatch(q, cat, fn)
}

func (s *Bolt) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *Bolt) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

func (s *Bolt) SaveStats(st *config.IndexStats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeStoreFailed, "failed to encode stats", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(statsKey, data)
	})
}

func (s *Bolt) Stats() (*config.IndexStats, error) {
	var st *config.IndexStats
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get(statsKey)
		if data == nil {
			return nil
		}
		st = &config.IndexStats{}
		return json.Unmarshal(data, st)
	})
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeStoreFailed, "failed to decode stats", err)
	}
	return st, nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

func (s *Bolt) loadCatalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	err := s.Each(func(f *catalog.File) error {
		cat.Upsert(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func decodeFile(data []byte) (*catalog.File, error) {
	var f catalog.File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	return &f, nil
}
