package core

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from content via hashing so that re-ingesting the same
// source produces the same identity.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// VectorIDFor derives the identity of an embedding vector from its position
// within a dataset. Retrying an ingestion overwrites the same points in the
// vector index instead of duplicating them.
func VectorIDFor(fileIdentifier, fileName string, chunk int) ID {
	return IDFromContent(fileIdentifier + "/" + fileName + "#" + strconv.Itoa(chunk))
}

// MetadataFormat identifies one of the catalogue's metadata wire formats.
type MetadataFormat int

const (
	// FormatISO19115XML is the primary structured XML format. It is mandatory
	// during ingestion; the other formats are best-effort enrichment.
	FormatISO19115XML MetadataFormat = iota + 1
	// FormatJSONExpanded is the catalogue's expanded JSON document.
	FormatJSONExpanded
	// FormatSchemaOrgJSONLD is the schema.org JSON-LD rendering.
	FormatSchemaOrgJSONLD
	// FormatRDFTurtle is the RDF Turtle rendering.
	FormatRDFTurtle
)

// MetadataFormats lists all recognized formats in ingestion priority order.
var MetadataFormats = []MetadataFormat{
	FormatISO19115XML,
	FormatJSONExpanded,
	FormatSchemaOrgJSONLD,
	FormatRDFTurtle,
}

func (f MetadataFormat) String() string {
	switch f {
	case FormatISO19115XML:
		return "iso19115-xml"
	case FormatJSONExpanded:
		return "json-expanded"
	case FormatSchemaOrgJSONLD:
		return "schema-org-jsonld"
	case FormatRDFTurtle:
		return "rdf-turtle"
	default:
		return "unknown"
	}
}

// VectorSourceType tags the provenance of an embedding vector.
type VectorSourceType int

const (
	// SourceDocumentContent marks vectors embedded from extracted document text.
	SourceDocumentContent VectorSourceType = iota + 1
	// SourceMetadataSummary marks vectors embedded from metadata display fields.
	SourceMetadataSummary
)

func (t VectorSourceType) String() string {
	switch t {
	case SourceDocumentContent:
		return "document-content"
	case SourceMetadataSummary:
		return "metadata-summary"
	default:
		return "unknown"
	}
}

// Dataset is the aggregate root for one catalogue entry. It owns the raw
// metadata snapshots retrieved for it and the data files recovered from its
// archive bundle.
type Dataset struct {
	Id             ID
	FileIdentifier string // external catalogue identifier, unique, immutable
	Title          string
	Abstract       string
	Authors        string
	Keywords       string
	ResourceURL    string
	PublishedDate  time.Time // zero when the catalogue gave no date
	IngestedAt     time.Time
	LastUpdated    time.Time
	Records        []MetadataRecord
	Files          []DataFile
}

// NewDataset creates a Dataset aggregate. The dataset identity is derived
// from the file identifier, so the same catalogue entry always maps to the
// same ID.
func NewDataset(fileIdentifier, title string) (*Dataset, error) {
	if strings.TrimSpace(fileIdentifier) == "" {
		return nil, ErrEmptyFileIdentifier
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	now := time.Now().UTC()
	return &Dataset{
		Id:             IDFromContent(fileIdentifier),
		FileIdentifier: fileIdentifier,
		Title:          title,
		IngestedAt:     now,
		LastUpdated:    now,
	}, nil
}

// AddRawMetadata attaches a raw-format snapshot to the dataset. At most one
// record per format is kept; later snapshots of a format already present are
// ignored.
func (d *Dataset) AddRawMetadata(format MetadataFormat, raw string) {
	for _, r := range d.Records {
		if r.Format == format {
			return
		}
	}
	d.Records = append(d.Records, MetadataRecord{
		DatasetId:  d.Id,
		Format:     format,
		RawContent: raw,
	})
	d.touch()
}

// AddFile attaches a recovered data file to the dataset.
func (d *Dataset) AddFile(file DataFile) {
	file.DatasetId = d.Id
	d.Files = append(d.Files, file)
	d.touch()
}

func (d *Dataset) touch() {
	d.LastUpdated = time.Now().UTC()
}

// MetadataRecord is an immutable raw-format snapshot owned by a Dataset.
type MetadataRecord struct {
	DatasetId  ID
	Format     MetadataFormat
	RawContent string
}

// DataFile is a document recovered from a dataset's archive bundle.
// Extracted text is transient: it is recomputed on re-extraction and is not
// persisted with the record.
type DataFile struct {
	DatasetId   ID
	FileName    string
	StoragePath string

	// DownloadURL is the external share link set when the raw document was
	// uploaded to remote storage. Empty when upload is disabled or failed.
	DownloadURL string

	Extracted string
}

// EmbeddingVector is one unit of the vector index. Display fields are
// denormalized from the parent Dataset at embedding time so that search can
// answer without a record-store join; they go stale if the dataset is edited
// after embedding.
type EmbeddingVector struct {
	Id             ID
	SourceId       ID
	FileIdentifier string
	SourceType     VectorSourceType
	TextContent    string
	Vector         []float32
	Title          string
	Abstract       string
	Authors        string
	Keywords       string
}

// VectorSearchResult is one hit from a similarity search. It is ephemeral:
// produced by the index, consumed by the retrieval service, never persisted.
type VectorSearchResult struct {
	SourceId       ID
	FileIdentifier string
	Text           string
	Score          float32
	Metadata       map[string]string
}

// Author is a (person, organisation) affiliation pair from structured metadata.
type Author struct {
	Name         string
	Organisation string
}

// ParsedMetadata is the canonical DTO all metadata format parsers produce.
// Downstream code is format-agnostic: every parser fills the same shape.
type ParsedMetadata struct {
	Title         string
	Abstract      string
	Authors       []Author
	Keywords      []string
	ResourceURL   string
	PublishedDate time.Time
}

// AuthorsDisplay deduplicates author pairs and flattens them to the display
// form "{name} from {organisation}" joined by " / ".
func (m *ParsedMetadata) AuthorsDisplay() string {
	seen := make(map[Author]bool, len(m.Authors))
	parts := make([]string, 0, len(m.Authors))
	for _, a := range m.Authors {
		if a.Name == "" && a.Organisation == "" {
			continue
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		switch {
		case a.Name == "":
			parts = append(parts, a.Organisation)
		case a.Organisation == "":
			parts = append(parts, a.Name)
		default:
			parts = append(parts, a.Name+" from "+a.Organisation)
		}
	}
	return strings.Join(parts, " / ")
}

// KeywordsDisplay deduplicates keywords preserving order and joins them with
// commas.
func (m *ParsedMetadata) KeywordsDisplay() string {
	seen := make(map[string]bool, len(m.Keywords))
	parts := make([]string, 0, len(m.Keywords))
	for _, k := range m.Keywords {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		parts = append(parts, k)
	}
	return strings.Join(parts, ", ")
}
