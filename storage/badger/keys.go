package badger

import (
	"fmt"

	"github.com/datamere/ecosearch/core"
)

// Key prefixes for the stored record types.
const (
	datasetPrefix      = "dsrec"
	datasetIdentPrefix = "dsident"
)

// makeDatasetKey generates the primary key for a dataset by id.
func makeDatasetKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", datasetPrefix, id))
}

// makeIdentifierKey generates the index key mapping a catalogue file
// identifier to the dataset id.
func makeIdentifierKey(fileIdentifier string) []byte {
	return []byte(fmt.Sprintf("%s:%s", datasetIdentPrefix, fileIdentifier))
}
