package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetMUS_Roundtrip(t *testing.T) {
	published := time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC)
	original := Dataset{
		Id:             IDFromContent("file-id"),
		FileIdentifier: "file-id",
		Title:          "Rainfall Survey",
		Abstract:       "Daily rainfall totals.",
		Authors:        "J. Smith from UKCEH",
		Keywords:       "rainfall, hydrology",
		ResourceURL:    "https://example.org/download",
		PublishedDate:  published,
		IngestedAt:     time.Now().UTC().Truncate(time.Microsecond),
		LastUpdated:    time.Now().UTC().Truncate(time.Microsecond),
		Records: []MetadataRecord{
			{DatasetId: IDFromContent("file-id"), Format: FormatISO19115XML, RawContent: "<xml/>"},
			{DatasetId: IDFromContent("file-id"), Format: FormatRDFTurtle, RawContent: "@prefix ."},
		},
		Files: []DataFile{
			{DatasetId: IDFromContent("file-id"), FileName: "data.csv", StoragePath: "/store/data.csv",
				DownloadURL: "https://drive.example.org/data.csv"},
		},
	}

	buf := make([]byte, DatasetMUS.Size(original))
	n := DatasetMUS.Marshal(original, buf)
	require.Equal(t, len(buf), n, "Marshal wrote a different size than Size reported")

	decoded, n, err := DatasetMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, original, decoded)
}

func TestDatasetMUS_ZeroTimes(t *testing.T) {
	original := Dataset{Id: 1, FileIdentifier: "x", Title: "t"}

	buf := make([]byte, DatasetMUS.Size(original))
	DatasetMUS.Marshal(original, buf)

	decoded, _, err := DatasetMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.True(t, decoded.PublishedDate.IsZero())
	assert.True(t, decoded.IngestedAt.IsZero())
}

func TestDataFileMUS_DropsExtractedText(t *testing.T) {
	file := DataFile{
		DatasetId:   7,
		FileName:    "doc.txt",
		StoragePath: "/p",
		DownloadURL: "https://example.org/doc.txt",
		Extracted:   "transient",
	}

	buf := make([]byte, DataFileMUS.Size(file))
	DataFileMUS.Marshal(file, buf)

	decoded, _, err := DataFileMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Empty(t, decoded.Extracted)
	assert.Equal(t, "doc.txt", decoded.FileName)
	assert.Equal(t, "https://example.org/doc.txt", decoded.DownloadURL)
}
