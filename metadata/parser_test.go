package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datamere/ecosearch/core"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd" xmlns:gco="http://www.isotc211.org/2005/gco">
  <gmd:identificationInfo>
    <gmd:MD_DataIdentification>
      <gmd:citation>
        <gmd:CI_Citation>
          <gmd:title><gco:CharacterString>Rainfall Survey 2019</gco:CharacterString></gmd:title>
          <gmd:date>
            <gmd:CI_Date>
              <gmd:date><gco:Date>2019-04-02</gco:Date></gmd:date>
              <gmd:dateType><gmd:CI_DateTypeCode codeListValue="publication">publication</gmd:CI_DateTypeCode></gmd:dateType>
            </gmd:CI_Date>
          </gmd:date>
          <gmd:citedResponsibleParty>
            <gmd:CI_ResponsibleParty>
              <gmd:individualName><gco:CharacterString>J. Smith</gco:CharacterString></gmd:individualName>
              <gmd:organisationName><gco:CharacterString>UKCEH</gco:CharacterString></gmd:organisationName>
              <gmd:role><gmd:CI_RoleCode codeListValue="author">author</gmd:CI_RoleCode></gmd:role>
            </gmd:CI_ResponsibleParty>
          </gmd:citedResponsibleParty>
          <gmd:citedResponsibleParty>
            <gmd:CI_ResponsibleParty>
              <gmd:organisationName><gco:CharacterString>Funding Body</gco:CharacterString></gmd:organisationName>
              <gmd:role><gmd:CI_RoleCode codeListValue="publisher">publisher</gmd:CI_RoleCode></gmd:role>
            </gmd:CI_ResponsibleParty>
          </gmd:citedResponsibleParty>
        </gmd:CI_Citation>
      </gmd:citation>
      <gmd:abstract><gco:CharacterString>Daily rainfall totals across survey sites.</gco:CharacterString></gmd:abstract>
      <gmd:topicCategory><gmd:MD_TopicCategoryCode>environment</gmd:MD_TopicCategoryCode></gmd:topicCategory>
      <gmd:descriptiveKeywords>
        <gmd:MD_Keywords>
          <gmd:keyword><gco:CharacterString>rainfall</gco:CharacterString></gmd:keyword>
          <gmd:keyword><gco:CharacterString>hydrology</gco:CharacterString></gmd:keyword>
        </gmd:MD_Keywords>
      </gmd:descriptiveKeywords>
    </gmd:MD_DataIdentification>
  </gmd:identificationInfo>
  <gmd:distributionInfo>
    <gmd:MD_Distribution>
      <gmd:transferOptions>
        <gmd:MD_DigitalTransferOptions>
          <gmd:onLine>
            <gmd:CI_OnlineResource>
              <gmd:linkage><gmd:URL>https://catalogue.example.org/docs/ds1</gmd:URL></gmd:linkage>
              <gmd:function><gmd:CI_OnLineFunctionCode codeListValue="information">information</gmd:CI_OnLineFunctionCode></gmd:function>
            </gmd:CI_OnlineResource>
          </gmd:onLine>
          <gmd:onLine>
            <gmd:CI_OnlineResource>
              <gmd:linkage><gmd:URL>https://catalogue.example.org/download/ds1</gmd:URL></gmd:linkage>
              <gmd:function><gmd:CI_OnLineFunctionCode codeListValue="download">download</gmd:CI_OnLineFunctionCode></gmd:function>
            </gmd:CI_OnlineResource>
          </gmd:onLine>
        </gmd:MD_DigitalTransferOptions>
      </gmd:transferOptions>
    </gmd:MD_Distribution>
  </gmd:distributionInfo>
</gmd:MD_Metadata>`

const sampleExpandedJSON = `{
  "title": "Rainfall Survey 2019",
  "description": "Daily rainfall totals across survey sites.",
  "responsibleParties": [
    {"individualName": "J. Smith", "organisationName": "UKCEH", "role": "author"},
    {"organisationName": "Funding Body", "role": "publisher"}
  ],
  "descriptiveKeywords": [
    {"keywords": [{"value": "rainfall"}, {"value": "hydrology"}]}
  ],
  "topicCategories": [{"value": "environment"}],
  "onlineResources": [
    {"url": "https://catalogue.example.org/docs/ds1", "function": "information"},
    {"url": "https://catalogue.example.org/download/ds1", "function": "download"}
  ],
  "datasetReferenceDate": {"publicationDate": "2019-04-02"}
}`

const sampleJSONLD = `{
  "@context": "https://schema.org",
  "@type": "Dataset",
  "name": "Rainfall Survey 2019",
  "description": "Daily rainfall totals across survey sites.",
  "creator": [
    {"@type": "Person", "name": "J. Smith", "affiliation": {"@type": "Organization", "name": "UKCEH"}}
  ],
  "keywords": ["rainfall", "hydrology"],
  "distribution": {"@type": "DataDownload", "contentUrl": "https://catalogue.example.org/download/ds1"},
  "datePublished": "2019-04-02"
}`

const sampleTurtle = `@prefix dct: <http://purl.org/dc/terms/> .
@prefix dcat: <http://www.w3.org/ns/dcat#> .

<https://catalogue.example.org/id/ds1>
    dct:title "Rainfall Survey 2019" ;
    dct:description "Daily rainfall totals across survey sites." ;
    dct:creator "J. Smith" ;
    dcat:keyword "rainfall", "hydrology" ;
    dcat:downloadURL <https://catalogue.example.org/download/ds1> ;
    dct:issued "2019-04-02" .`

// Every format describes the same dataset, so every parser has to agree on
// the title regardless of wire shape.
func TestParsers_TitleAgreesAcrossFormats(t *testing.T) {
	samples := map[core.MetadataFormat][]byte{
		core.FormatISO19115XML:     []byte(sampleXML),
		core.FormatJSONExpanded:    []byte(sampleExpandedJSON),
		core.FormatSchemaOrgJSONLD: []byte(sampleJSONLD),
		core.FormatRDFTurtle:       []byte(sampleTurtle),
	}

	for format, raw := range samples {
		t.Run(format.String(), func(t *testing.T) {
			parser, err := ParserFor(format)
			require.NoError(t, err)
			assert.Equal(t, format, parser.Format())

			meta, err := parser.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "Rainfall Survey 2019", meta.Title)
			assert.NotEmpty(t, meta.Abstract)
		})
	}
}

func TestParserFor_UnknownFormat(t *testing.T) {
	_, err := ParserFor(core.MetadataFormat(99))
	assert.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestISO19115Parser(t *testing.T) {
	meta, err := (&ISO19115Parser{}).Parse([]byte(sampleXML))
	require.NoError(t, err)

	assert.Equal(t, "Daily rainfall totals across survey sites.", meta.Abstract)
	assert.Equal(t, []core.Author{{Name: "J. Smith", Organisation: "UKCEH"}}, meta.Authors,
		"only parties in the author role become authors")
	assert.Equal(t, []string{"environment", "rainfall", "hydrology"}, meta.Keywords)
	assert.Equal(t, "https://catalogue.example.org/download/ds1", meta.ResourceURL,
		"download link wins over the information link")
	assert.Equal(t, time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC), meta.PublishedDate)
}

func TestISO19115Parser_MissingTitle(t *testing.T) {
	raw := `<MD_Metadata><identificationInfo><MD_DataIdentification>
		<abstract><CharacterString>no title here</CharacterString></abstract>
	</MD_DataIdentification></identificationInfo></MD_Metadata>`

	_, err := (&ISO19115Parser{}).Parse([]byte(raw))
	assert.ErrorIs(t, err, core.ErrMissingTitle)
}

func TestISO19115Parser_Malformed(t *testing.T) {
	_, err := (&ISO19115Parser{}).Parse([]byte("<unclosed"))
	assert.Error(t, err)
}

func TestJSONExpandedParser(t *testing.T) {
	meta, err := (&JSONExpandedParser{}).Parse([]byte(sampleExpandedJSON))
	require.NoError(t, err)

	assert.Equal(t, []core.Author{{Name: "J. Smith", Organisation: "UKCEH"}}, meta.Authors)
	assert.Equal(t, []string{"environment", "rainfall", "hydrology"}, meta.Keywords)
	assert.Equal(t, "https://catalogue.example.org/download/ds1", meta.ResourceURL)
	assert.Equal(t, time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC), meta.PublishedDate)
}

func TestJSONExpandedParser_MissingTitle(t *testing.T) {
	_, err := (&JSONExpandedParser{}).Parse([]byte(`{"description": "x"}`))
	assert.ErrorIs(t, err, core.ErrMissingTitle)
}

func TestJSONLDParser(t *testing.T) {
	meta, err := (&JSONLDParser{}).Parse([]byte(sampleJSONLD))
	require.NoError(t, err)

	assert.Equal(t, []core.Author{{Name: "J. Smith", Organisation: "UKCEH"}}, meta.Authors)
	assert.Equal(t, []string{"rainfall", "hydrology"}, meta.Keywords)
	assert.Equal(t, "https://catalogue.example.org/download/ds1", meta.ResourceURL)
}

func TestJSONLDParser_GraphShape(t *testing.T) {
	raw := `{
	  "@context": "https://schema.org",
	  "@graph": [
	    {"@id": "#creator1", "@type": "Person", "name": "A. Jones",
	     "affiliation": {"@id": "#org1"}},
	    {"@id": "#org1", "@type": "Organization", "name": "University of Leeds"},
	    {"@id": "#dataset", "@type": "Dataset", "name": "Soil Cores",
	     "description": "Archived soil cores.",
	     "creator": [{"@id": "#creator1"}],
	     "keywords": "soil, cores"}
	  ]
	}`

	meta, err := (&JSONLDParser{}).Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Soil Cores", meta.Title)
	assert.Equal(t, []core.Author{{Name: "A. Jones", Organisation: "University of Leeds"}}, meta.Authors,
		"creator reference resolved through the graph")
	assert.Equal(t, []string{"soil", "cores"}, meta.Keywords)
}

func TestJSONLDParser_MissingContext(t *testing.T) {
	_, err := (&JSONLDParser{}).Parse([]byte(`{"@type": "Dataset", "name": "x"}`))
	assert.Error(t, err)
}

func TestTurtleParser(t *testing.T) {
	meta, err := (&TurtleParser{}).Parse([]byte(sampleTurtle))
	require.NoError(t, err)

	assert.Equal(t, "Daily rainfall totals across survey sites.", meta.Abstract)
	assert.Equal(t, []core.Author{{Name: "J. Smith"}}, meta.Authors)
	assert.Equal(t, []string{"rainfall", "hydrology"}, meta.Keywords)
	assert.Equal(t, "https://catalogue.example.org/download/ds1", meta.ResourceURL)
	assert.Equal(t, time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC), meta.PublishedDate)
}

func TestTurtleParser_MissingTitle(t *testing.T) {
	_, err := (&TurtleParser{}).Parse([]byte(`<x> dct:description "no title" .`))
	assert.ErrorIs(t, err, core.ErrMissingTitle)
}
