// Copyright 2026 Datamere Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/datamere/ecosearch/core"
	"github.com/datamere/ecosearch/storage"
)

// DatasetRepository implements storage.DatasetRepository for BadgerDB.
type DatasetRepository struct {
	backend *Backend
}

var _ storage.DatasetRepository = (*DatasetRepository)(nil)

// NewDatasetRepository creates a DatasetRepository over the backend.
func NewDatasetRepository(backend *Backend) *DatasetRepository {
	return &DatasetRepository{backend: backend}
}

// Close releases repository resources. The backend itself stays open so it
// can be shared.
func (r *DatasetRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DatasetRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDataset validates and stores a dataset snapshot plus its identifier
// index entry in one transaction.
func (r *DatasetRepository) AddDataset(ctx context.Context, dataset *core.Dataset) error {
	if err := core.ValidateDataset(dataset); err != nil {
		return err
	}

	dataset.LastUpdated = time.Now().UTC()
	if dataset.IngestedAt.IsZero() {
		dataset.IngestedAt = dataset.LastUpdated
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDatasetKey(dataset.Id), storage.MarshalDataset(dataset)); err != nil {
			return err
		}
		if err := tx.Set(makeIdentifierKey(dataset.FileIdentifier), storage.MarshalID(dataset.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDataset retrieves a dataset by id.
func (r *DatasetRepository) GetDataset(ctx context.Context, id core.ID) (*core.Dataset, error) {
	var dataset *core.Dataset
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		dataset, err = readDataset(tx, makeDatasetKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return dataset, nil
}

// GetDatasetByFileIdentifier resolves the identifier index then loads the
// dataset.
func (r *DatasetRepository) GetDatasetByFileIdentifier(ctx context.Context, fileIdentifier string) (*core.Dataset, error) {
	var dataset *core.Dataset
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIdentifierKey(fileIdentifier))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		dataset, err = readDataset(tx, makeDatasetKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return dataset, nil
}

// Exists reports whether the file identifier is already indexed.
func (r *DatasetRepository) Exists(ctx context.Context, fileIdentifier string) (bool, error) {
	var exists bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeIdentifierKey(fileIdentifier))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	}, false)
	return exists, err
}

// ListFiles returns the data files recorded for a dataset.
func (r *DatasetRepository) ListFiles(ctx context.Context, id core.ID) ([]core.DataFile, error) {
	dataset, err := r.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.Files, nil
}

// ForEachDataset streams every stored dataset in key order.
func (r *DatasetRepository) ForEachDataset(ctx context.Context, fn func(*core.Dataset) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(datasetPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var dataset *core.Dataset
			err := iter.Item().Value(func(val []byte) error {
				var err error
				dataset, err = storage.UnmarshalDataset(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(dataset); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

func readDataset(tx *badger.Txn, key []byte) (*core.Dataset, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var dataset *core.Dataset
	if err := item.Value(func(val []byte) error {
		var err error
		dataset, err = storage.UnmarshalDataset(val)
		return err
	}); err != nil {
		return nil, err
	}
	return dataset, nil
}
