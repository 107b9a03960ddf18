package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDataset(t *testing.T) {
	valid, err := NewDataset("file-id", "A Title")
	require.NoError(t, err)
	valid.AddRawMetadata(FormatISO19115XML, "<xml/>")
	valid.AddFile(DataFile{FileName: "data.csv"})

	tests := []struct {
		name    string
		mutate  func(*Dataset)
		wantErr error
	}{
		{
			name:   "valid dataset",
			mutate: func(d *Dataset) {},
		},
		{
			name:    "empty title",
			mutate:  func(d *Dataset) { d.Title = " " },
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "empty file identifier",
			mutate:  func(d *Dataset) { d.FileIdentifier = "" },
			wantErr: ErrEmptyFileIdentifier,
		},
		{
			name:    "record with wrong owner",
			mutate:  func(d *Dataset) { d.Records[0].DatasetId = 42 },
			wantErr: ErrInvalidDataset,
		},
		{
			name:    "record with invalid format",
			mutate:  func(d *Dataset) { d.Records[0].Format = MetadataFormat(99) },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "file with wrong owner",
			mutate:  func(d *Dataset) { d.Files[0].DatasetId = 42 },
			wantErr: ErrInvalidDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataset := *valid
			dataset.Records = append([]MetadataRecord(nil), valid.Records...)
			dataset.Files = append([]DataFile(nil), valid.Files...)
			tt.mutate(&dataset)

			err := ValidateDataset(&dataset)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.ErrorIs(t, ValidateDataset(nil), ErrInvalidDataset)
}

func TestValidateVector(t *testing.T) {
	assert.NoError(t, ValidateVector(make([]float32, 384), 384))
	assert.ErrorIs(t, ValidateVector(make([]float32, 3), 384), ErrDimensionMismatch)
}
