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


// Package gdrive uploads raw documents to a Google Drive folder.
package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/datamere/ecosearch/upload"
)

// Uploader stores documents in one Drive folder via a service account.
type Uploader struct {
	service  *drive.Service
	folderID string
	log      *slog.Logger
}

var _ upload.Uploader = (*Uploader)(nil)

// NewUploader authenticates with the service-account credentials file and
// targets the given folder.
func NewUploader(ctx context.Context, credentialsFile, folderID string) (*Uploader, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("gdrive: %w", err)
	}
	return &Uploader{
		service:  service,
		folderID: folderID,
		log:      slog.Default().With("component", "gdrive"),
	}, nil
}

// Upload creates the file in the configured folder and returns its download
// link.
func (u *Uploader) Upload(ctx context.Context, fileName string, content []byte) (string, error) {
	meta := &drive.File{Name: fileName}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	created, err := u.service.Files.Create(meta).
		Media(bytes.NewReader(content)).
		Fields("id", "webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("gdrive: upload %s: %w", fileName, err)
	}

	u.log.Info("document uploaded", "file", fileName, "driveId", created.Id)
	return downloadLink(created), nil
}

// downloadLink prefers the API-provided content link; freshly created files
// sometimes omit it, in which case the uc endpoint serves the same bytes.
func downloadLink(file *drive.File) string {
	if file.WebContentLink != "" {
		return file.WebContentLink
	}
	return "https://drive.google.com/uc?export=download&id=" + file.Id
}
