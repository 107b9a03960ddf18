// Package storage defines the persistence contracts for catalogue datasets
// and their binary serialization. The badger subpackage provides the
// embedded production implementation.
package storage
