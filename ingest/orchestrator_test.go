package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datamere/ecosearch/ai/mock"
	"github.com/datamere/ecosearch/archive"
	"github.com/datamere/ecosearch/catalogue"
	"github.com/datamere/ecosearch/core"
	"github.com/datamere/ecosearch/index"
	"github.com/datamere/ecosearch/storage"
	badgerstore "github.com/datamere/ecosearch/storage/badger"
)

const rainfallXML = `<MD_Metadata>
  <identificationInfo><MD_DataIdentification>
    <citation><CI_Citation>
      <title><CharacterString>Rainfall Survey</CharacterString></title>
    </CI_Citation></citation>
    <abstract><CharacterString>Daily rainfall totals.</CharacterString></abstract>
  </MD_DataIdentification></identificationInfo>
</MD_Metadata>`

// fakeCatalogue is a counting test double for catalogue.Client.
type fakeCatalogue struct {
	mu sync.Mutex

	metadata    map[core.MetadataFormat][]byte
	metadataErr map[core.MetadataFormat]error
	failID      string
	bundle      []byte
	bundleErr   error
	supporting  []byte
	supportErr  error
	links       []catalogue.Link
	linksErr    error

	fetchCalls int
}

func (f *fakeCatalogue) count() {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
}

func (f *fakeCatalogue) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func (f *fakeCatalogue) FetchMetadata(_ context.Context, fileIdentifier string, format core.MetadataFormat) ([]byte, error) {
	f.count()
	if f.failID != "" && fileIdentifier == f.failID {
		return nil, errors.New("catalogue unavailable")
	}
	if err := f.metadataErr[format]; err != nil {
		return nil, err
	}
	if raw, ok := f.metadata[format]; ok {
		return raw, nil
	}
	return nil, catalogue.ErrNotFound
}

func (f *fakeCatalogue) FetchDataBundle(context.Context, string) ([]byte, error) {
	f.count()
	return f.bundle, f.bundleErr
}

func (f *fakeCatalogue) FetchSupportingBundle(context.Context, string) ([]byte, error) {
	f.count()
	return f.supporting, f.supportErr
}

func (f *fakeCatalogue) ListDirectory(context.Context, string) ([]catalogue.Link, error) {
	f.count()
	return f.links, f.linksErr
}

func (f *fakeCatalogue) Download(context.Context, string) ([]byte, error) {
	f.count()
	return nil, catalogue.ErrNotFound
}

// fakeIndex records upserts in memory.
type fakeIndex struct {
	mu        sync.Mutex
	ensured   int
	ensureErr error
	upserted  []core.EmbeddingVector
	upsertErr error
}

func (f *fakeIndex) EnsureCollection(context.Context, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured++
	return f.ensureErr
}

func (f *fakeIndex) Upsert(_ context.Context, vectors []core.EmbeddingVector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, vectors...)
	return nil
}

func (f *fakeIndex) Search(context.Context, index.Query) ([]core.VectorSearchResult, error) {
	return nil, nil
}

// fakeUploader records uploads and hands back a fixed link per file.
type fakeUploader struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, fileName string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.names = append(f.names, fileName)
	return "https://drive.example.org/" + fileName, nil
}

type harness struct {
	catalogue *fakeCatalogue
	index     *fakeIndex
	datasets  storage.DatasetRepository
	embedder  *mock.MockEmbedder
}

func newHarness(t *testing.T, cat *fakeCatalogue, mutate ...func(*Deps)) (*Orchestrator, *harness) {
	t.Helper()

	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	h := &harness{
		catalogue: cat,
		index:     &fakeIndex{},
		datasets:  repo,
		embedder:  mock.NewMockEmbedder(),
	}
	deps := Deps{
		Catalogue: cat,
		Extractor: archive.NewExtractor(),
		Embedder:  h.embedder,
		Index:     h.index,
		Datasets:  repo,
		Files:     NewDiskFileStore(t.TempDir()),
	}
	for _, m := range mutate {
		m(&deps)
	}
	return NewOrchestrator(deps), h
}

func buildBundle(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := writer.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func rainfallCatalogue(t *testing.T) *fakeCatalogue {
	return &fakeCatalogue{
		metadata: map[core.MetadataFormat][]byte{
			core.FormatISO19115XML: []byte(rainfallXML),
		},
		bundle: buildBundle(t, map[string]string{"readings.txt": "rain data"}),
	}
}

func TestIngestOne_EndToEnd(t *testing.T) {
	orchestrator, h := newHarness(t, rainfallCatalogue(t))

	result := orchestrator.IngestOne(context.Background(), "ds-x")

	require.NoError(t, result.Err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, 1, result.FileCount)
	assert.Equal(t, 1, result.VectorCount)

	dataset, err := h.datasets.GetDatasetByFileIdentifier(context.Background(), "ds-x")
	require.NoError(t, err)
	assert.Equal(t, "Rainfall Survey", dataset.Title)
	require.Len(t, dataset.Files, 1)
	assert.Equal(t, "readings.txt", dataset.Files[0].FileName)

	require.Len(t, h.index.upserted, 1)
	vector := h.index.upserted[0]
	assert.Equal(t, dataset.Id, vector.SourceId)
	assert.Equal(t, core.SourceDocumentContent, vector.SourceType)
	assert.Equal(t, "rain data", vector.TextContent)
	assert.Equal(t, "Rainfall Survey", vector.Title)
}

// Ingesting an already-stored identifier must be a no-op success with zero
// catalogue traffic.
func TestIngestOne_IdempotentSkip(t *testing.T) {
	orchestrator, h := newHarness(t, rainfallCatalogue(t))
	ctx := context.Background()

	first := orchestrator.IngestOne(ctx, "ds-x")
	require.Equal(t, StatusSucceeded, first.Status)
	callsAfterFirst := h.catalogue.calls()

	second := orchestrator.IngestOne(ctx, "ds-x")
	assert.Equal(t, StatusSkipped, second.Status)
	assert.NoError(t, second.Err)
	assert.Equal(t, callsAfterFirst, h.catalogue.calls(), "skip must perform zero fetches")

	count := 0
	require.NoError(t, h.datasets.ForEachDataset(ctx, func(*core.Dataset) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count, "exactly one dataset row after two ingestions")
}

func TestIngestOne_PrimaryMetadataFailure(t *testing.T) {
	cat := rainfallCatalogue(t)
	cat.metadataErr = map[core.MetadataFormat]error{
		core.FormatISO19115XML: errors.New("boom"),
	}
	orchestrator, h := newHarness(t, cat)

	result := orchestrator.IngestOne(context.Background(), "ds-x")

	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorIs(t, result.Err, ErrPrimaryMetadata)

	exists, err := h.datasets.Exists(context.Background(), "ds-x")
	require.NoError(t, err)
	assert.False(t, exists, "failed ingestion must not leave a record")
}

func TestIngestOne_SecondaryMetadataFailureTolerated(t *testing.T) {
	cat := rainfallCatalogue(t)
	cat.metadata[core.FormatRDFTurtle] = []byte(`<x> dct:title "Rainfall Survey" .`)
	cat.metadataErr = map[core.MetadataFormat]error{
		core.FormatJSONExpanded: errors.New("boom"),
	}
	orchestrator, h := newHarness(t, cat)

	result := orchestrator.IngestOne(context.Background(), "ds-x")
	require.Equal(t, StatusSucceeded, result.Status)

	dataset, err := h.datasets.GetDatasetByFileIdentifier(context.Background(), "ds-x")
	require.NoError(t, err)
	assert.Len(t, dataset.Records, 2, "one record per successfully fetched rendering")
}

func TestIngestOne_ListingFallback(t *testing.T) {
	cat := rainfallCatalogue(t)
	cat.bundle = nil
	cat.bundleErr = catalogue.ErrNotFound
	cat.supportErr = catalogue.ErrNotFound
	cat.links = []catalogue.Link{
		{Name: "huge.nc", URL: "https://example.org/huge.nc"},
		{Name: "notes.txt", URL: "https://example.org/notes.txt"},
	}
	orchestrator, h := newHarness(t, cat)

	result := orchestrator.IngestOne(context.Background(), "ds-x")
	require.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, 2, result.FileCount, "listing registers files without fetching content")

	require.Len(t, h.index.upserted, 1, "metadata-only datasets get a summary vector")
	assert.Equal(t, core.SourceMetadataSummary, h.index.upserted[0].SourceType)
}

func TestIngestOne_UpsertFailure(t *testing.T) {
	orchestrator, h := newHarness(t, rainfallCatalogue(t))
	h.index.upsertErr = errors.New("index down")

	result := orchestrator.IngestOne(context.Background(), "ds-x")
	assert.Equal(t, StatusFailed, result.Status)

	exists, err := h.datasets.Exists(context.Background(), "ds-x")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIngestOne_UploadsStoredFiles(t *testing.T) {
	uploader := &fakeUploader{}
	orchestrator, h := newHarness(t, rainfallCatalogue(t), func(d *Deps) {
		d.Uploader = uploader
	})

	result := orchestrator.IngestOne(context.Background(), "ds-x")
	require.NoError(t, result.Err)

	assert.Equal(t, []string{"readings.txt"}, uploader.names)

	dataset, err := h.datasets.GetDatasetByFileIdentifier(context.Background(), "ds-x")
	require.NoError(t, err)
	require.Len(t, dataset.Files, 1)
	assert.Equal(t, "https://drive.example.org/readings.txt", dataset.Files[0].DownloadURL)
	assert.NotEmpty(t, dataset.Files[0].StoragePath, "local copy is kept alongside the mirror")
}

func TestIngestOne_UploadFailureTolerated(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("quota exceeded")}
	orchestrator, h := newHarness(t, rainfallCatalogue(t), func(d *Deps) {
		d.Uploader = uploader
	})

	result := orchestrator.IngestOne(context.Background(), "ds-x")
	require.NoError(t, result.Err)
	assert.Equal(t, StatusSucceeded, result.Status)

	dataset, err := h.datasets.GetDatasetByFileIdentifier(context.Background(), "ds-x")
	require.NoError(t, err)
	require.Len(t, dataset.Files, 1)
	assert.Empty(t, dataset.Files[0].DownloadURL)
	assert.NotEmpty(t, dataset.Files[0].StoragePath)
}

func TestIngestOne_DeterministicVectorIDs(t *testing.T) {
	orchestrator, h := newHarness(t, rainfallCatalogue(t))
	ctx := context.Background()

	require.Equal(t, StatusSucceeded, orchestrator.IngestOne(ctx, "ds-x").Status)
	firstID := h.index.upserted[0].Id

	assert.Equal(t, core.VectorIDFor("ds-x", "readings.txt", 0), firstID,
		"vector id must derive from identifier, file name and chunk ordinal")
}

func TestRun_EmptyInput(t *testing.T) {
	orchestrator, _ := newHarness(t, rainfallCatalogue(t))
	runner := NewRunner(orchestrator, 2)

	results := runner.Run(context.Background(), nil)
	assert.Empty(t, results)
}

func TestRun_DeduplicatesInputs(t *testing.T) {
	orchestrator, _ := newHarness(t, rainfallCatalogue(t))
	runner := NewRunner(orchestrator, 2)

	results := runner.Run(context.Background(), []string{"ds-a", "", "ds-b", "ds-a"})

	require.Len(t, results, 2, "blank and duplicate inputs collapse away")
	for _, result := range results {
		assert.Equal(t, StatusSucceeded, result.Status, result.FileIdentifier)
	}
}

func TestRun_IsolatesFailures(t *testing.T) {
	cat := rainfallCatalogue(t)
	cat.failID = "ds-bad"
	orchestrator, _ := newHarness(t, cat)
	runner := NewRunner(orchestrator, 2)

	results := runner.Run(context.Background(), []string{"ds-good", "ds-bad"})
	require.Len(t, results, 2)

	byID := map[string]Result{}
	for _, result := range results {
		byID[result.FileIdentifier] = result
	}
	assert.Equal(t, StatusSucceeded, byID["ds-good"].Status)
	assert.Equal(t, StatusFailed, byID["ds-bad"].Status)
	assert.ErrorIs(t, byID["ds-bad"].Err, ErrPrimaryMetadata)
}

func TestRun_BootstrapFailureNonFatal(t *testing.T) {
	orchestrator, h := newHarness(t, rainfallCatalogue(t))
	h.index.ensureErr = errors.New("qdrant down")
	runner := NewRunner(orchestrator, 1)

	results := runner.Run(context.Background(), []string{"ds-x"})
	require.Len(t, results, 1)
	assert.Equal(t, StatusSucceeded, results[0].Status)
}

func TestRun_CancelledContext(t *testing.T) {
	orchestrator, _ := newHarness(t, rainfallCatalogue(t))
	runner := NewRunner(orchestrator, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runner.Run(ctx, []string{"ds-a", "ds-b"})
	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, StatusFailed, result.Status)
	}
}
