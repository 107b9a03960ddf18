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


package core

import (
	"fmt"
	"strings"
)

// ValidateDataset validates a Dataset according to domain rules.
//
// Validation rules:
//   - FileIdentifier must not be empty
//   - Title must not be empty
//   - Every owned record and file must carry the dataset's ID
//
// NOT validated (optional catalogue fields):
//   - Abstract, Authors, Keywords, ResourceURL, PublishedDate
func ValidateDataset(dataset *Dataset) error {
	if dataset == nil {
		return fmt.Errorf("%w: dataset is nil", ErrInvalidDataset)
	}

	if strings.TrimSpace(dataset.FileIdentifier) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, ErrEmptyFileIdentifier)
	}

	if strings.TrimSpace(dataset.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, ErrEmptyTitle)
	}

	for _, record := range dataset.Records {
		if record.DatasetId != dataset.Id {
			return fmt.Errorf("%w: metadata record owned by %d, not %d",
				ErrInvalidDataset, record.DatasetId, dataset.Id)
		}
		if err := ValidateMetadataFormat(record.Format); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
	}

	for _, file := range dataset.Files {
		if file.DatasetId != dataset.Id {
			return fmt.Errorf("%w: data file owned by %d, not %d",
				ErrInvalidDataset, file.DatasetId, dataset.Id)
		}
	}

	return nil
}

// ValidateMetadataFormat validates that a MetadataFormat has a valid value.
func ValidateMetadataFormat(format MetadataFormat) error {
	switch format {
	case FormatISO19115XML, FormatJSONExpanded, FormatSchemaOrgJSONLD, FormatRDFTurtle:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidFormat, format)
}

// ValidateVector validates that a vector matches the expected dimension.
func ValidateVector(vector []float32, dimension int) error {
	if len(vector) != dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), dimension)
	}
	return nil
}
