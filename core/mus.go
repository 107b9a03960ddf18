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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types stored in the record store. Layouts
// are versionless: the store holds one schema generation at a time and is
// rebuilt by re-running ingestion.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// timeMUS serializes timestamps as Unix microseconds. The zero time is
// encoded as 0 so it survives a roundtrip.
type timeMUS struct{}

func (timeMUS) Marshal(v time.Time, bs []byte) int {
	var micros int64
	if !v.IsZero() {
		micros = v.UnixMicro()
	}
	return varint.Int64.Marshal(micros, bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) int {
	var micros int64
	if !v.IsZero() {
		micros = v.UnixMicro()
	}
	return varint.Int64.Size(micros)
}

// MetadataRecordMUS serializes MetadataRecord values.
var MetadataRecordMUS = metadataRecordMUS{}

type metadataRecordMUS struct{}

func (metadataRecordMUS) Marshal(v MetadataRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DatasetId, bs)
	n += varint.Int.Marshal(int(v.Format), bs[n:])
	n += ord.String.Marshal(v.RawContent, bs[n:])
	return n
}

func (metadataRecordMUS) Unmarshal(bs []byte) (v MetadataRecord, n int, err error) {
	var n1 int
	v.DatasetId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var format int
	format, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Format = MetadataFormat(format)
	v.RawContent, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (metadataRecordMUS) Size(v MetadataRecord) int {
	return IDMUS.Size(v.DatasetId) +
		varint.Int.Size(int(v.Format)) +
		ord.String.Size(v.RawContent)
}

// DataFileMUS serializes DataFile values. Extracted text is transient and is
// deliberately not part of the layout.
var DataFileMUS = dataFileMUS{}

type dataFileMUS struct{}

func (dataFileMUS) Marshal(v DataFile, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DatasetId, bs)
	n += ord.String.Marshal(v.FileName, bs[n:])
	n += ord.String.Marshal(v.StoragePath, bs[n:])
	n += ord.String.Marshal(v.DownloadURL, bs[n:])
	return n
}

func (dataFileMUS) Unmarshal(bs []byte) (v DataFile, n int, err error) {
	var n1 int
	v.DatasetId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.FileName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StoragePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DownloadURL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (dataFileMUS) Size(v DataFile) int {
	return IDMUS.Size(v.DatasetId) +
		ord.String.Size(v.FileName) +
		ord.String.Size(v.StoragePath) +
		ord.String.Size(v.DownloadURL)
}

// DatasetMUS serializes the Dataset aggregate with its owned records and files.
var DatasetMUS = datasetMUS{}

type datasetMUS struct {
	time timeMUS
}

func (s datasetMUS) Marshal(v Dataset, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.FileIdentifier, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Abstract, bs[n:])
	n += ord.String.Marshal(v.Authors, bs[n:])
	n += ord.String.Marshal(v.Keywords, bs[n:])
	n += ord.String.Marshal(v.ResourceURL, bs[n:])
	n += s.time.Marshal(v.PublishedDate, bs[n:])
	n += s.time.Marshal(v.IngestedAt, bs[n:])
	n += s.time.Marshal(v.LastUpdated, bs[n:])
	n += varint.Int.Marshal(len(v.Records), bs[n:])
	for _, record := range v.Records {
		n += MetadataRecordMUS.Marshal(record, bs[n:])
	}
	n += varint.Int.Marshal(len(v.Files), bs[n:])
	for _, file := range v.Files {
		n += DataFileMUS.Marshal(file, bs[n:])
	}
	return n
}

func (s datasetMUS) Unmarshal(bs []byte) (v Dataset, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	fields := []*string{
		&v.FileIdentifier, &v.Title, &v.Abstract,
		&v.Authors, &v.Keywords, &v.ResourceURL,
	}
	for _, field := range fields {
		*field, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	times := []*time.Time{&v.PublishedDate, &v.IngestedAt, &v.LastUpdated}
	for _, field := range times {
		*field, n1, err = s.time.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Records = make([]MetadataRecord, count)
	for i := range v.Records {
		v.Records[i], n1, err = MetadataRecordMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Files = make([]DataFile, count)
	for i := range v.Files {
		v.Files[i], n1, err = DataFileMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s datasetMUS) Size(v Dataset) int {
	size := IDMUS.Size(v.Id) +
		ord.String.Size(v.FileIdentifier) +
		ord.String.Size(v.Title) +
		ord.String.Size(v.Abstract) +
		ord.String.Size(v.Authors) +
		ord.String.Size(v.Keywords) +
		ord.String.Size(v.ResourceURL) +
		s.time.Size(v.PublishedDate) +
		s.time.Size(v.IngestedAt) +
		s.time.Size(v.LastUpdated) +
		varint.Int.Size(len(v.Records)) +
		varint.Int.Size(len(v.Files))
	for _, record := range v.Records {
		size += MetadataRecordMUS.Size(record)
	}
	for _, file := range v.Files {
		size += DataFileMUS.Size(file)
	}
	return size
}
