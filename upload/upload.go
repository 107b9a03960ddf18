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


// Package upload defines the optional raw-document upload collaborator.
// The gdrive subpackage provides the Google Drive implementation.
package upload

import "context"

// Uploader pushes a raw document to external storage and returns a link it
// can later be downloaded from.
type Uploader interface {
	Upload(ctx context.Context, fileName string, content []byte) (string, error)
}
