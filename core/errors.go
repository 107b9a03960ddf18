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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDataset indicates a Dataset failed validation.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrEmptyTitle indicates the dataset title is empty.
	ErrEmptyTitle = errors.New("dataset title cannot be empty")

	// ErrEmptyFileIdentifier indicates the external catalogue identifier is empty.
	ErrEmptyFileIdentifier = errors.New("file identifier cannot be empty")

	// ErrInvalidFormat indicates an unrecognized metadata format tag.
	ErrInvalidFormat = errors.New("invalid metadata format")

	// ErrMissingTitle indicates a metadata payload without a usable title.
	// Title is the one field every format must yield.
	ErrMissingTitle = errors.New("metadata has no title")

	// ErrEmptyText indicates empty or whitespace-only text where content is required.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// collection dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
