package storage

import (
	"context"

	"github.com/datamere/ecosearch/core"
)

// Repository provides operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DatasetRepository persists catalogue datasets with their raw metadata
// records and data-file references.
type DatasetRepository interface {
	Repository

	// AddDataset validates and stores a dataset, overwriting any previous
	// snapshot with the same id. The file-identifier index is kept in
	// step inside the same transaction.
	AddDataset(ctx context.Context, dataset *core.Dataset) error

	// GetDataset retrieves a dataset by id.
	// Returns ErrNotFound if it does not exist.
	GetDataset(ctx context.Context, id core.ID) (*core.Dataset, error)

	// GetDatasetByFileIdentifier retrieves a dataset by its catalogue
	// file identifier. Returns ErrNotFound if it does not exist.
	GetDatasetByFileIdentifier(ctx context.Context, fileIdentifier string) (*core.Dataset, error)

	// Exists reports whether a dataset with the file identifier is
	// already stored.
	Exists(ctx context.Context, fileIdentifier string) (bool, error)

	// ListFiles returns the data files recorded for a dataset.
	// Returns ErrNotFound if the dataset does not exist.
	ListFiles(ctx context.Context, id core.ID) ([]core.DataFile, error)

	// ForEachDataset streams every stored dataset to fn in key order.
	// Iteration stops at the first error fn returns.
	ForEachDataset(ctx context.Context, fn func(*core.Dataset) error) error
}
