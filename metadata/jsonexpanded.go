package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datamere/ecosearch/core"
)

// JSONExpandedParser handles the catalogue's expanded JSON rendering of a
// record. The shape mirrors the XML format with camel-cased field names.
type JSONExpandedParser struct{}

var _ Parser = (*JSONExpandedParser)(nil)

func (p *JSONExpandedParser) Format() core.MetadataFormat {
	return core.FormatJSONExpanded
}

type expandedDocument struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	ResponsibleParties []struct {
		IndividualName   string `json:"individualName"`
		OrganisationName string `json:"organisationName"`
		Role             string `json:"role"`
	} `json:"responsibleParties"`
	DescriptiveKeywords []struct {
		Keywords []struct {
			Value string `json:"value"`
		} `json:"keywords"`
	} `json:"descriptiveKeywords"`
	TopicCategories []struct {
		Value string `json:"value"`
	} `json:"topicCategories"`
	OnlineResources []struct {
		URL      string `json:"url"`
		Function string `json:"function"`
	} `json:"onlineResources"`
	DatasetReferenceDate struct {
		PublicationDate string `json:"publicationDate"`
	} `json:"datasetReferenceDate"`
}

func (p *JSONExpandedParser) Parse(raw []byte) (*core.ParsedMetadata, error) {
	var doc expandedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("json-expanded: %w", err)
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		return nil, fmt.Errorf("json-expanded: %w", core.ErrMissingTitle)
	}

	meta := &core.ParsedMetadata{
		Title:    title,
		Abstract: strings.TrimSpace(doc.Description),
	}

	for _, party := range doc.ResponsibleParties {
		if !strings.EqualFold(party.Role, "author") {
			continue
		}
		meta.Authors = append(meta.Authors, core.Author{
			Name:         strings.TrimSpace(party.IndividualName),
			Organisation: strings.TrimSpace(party.OrganisationName),
		})
	}

	for _, topic := range doc.TopicCategories {
		if v := strings.TrimSpace(topic.Value); v != "" {
			meta.Keywords = append(meta.Keywords, v)
		}
	}
	for _, group := range doc.DescriptiveKeywords {
		for _, keyword := range group.Keywords {
			if v := strings.TrimSpace(keyword.Value); v != "" {
				meta.Keywords = append(meta.Keywords, v)
			}
		}
	}

	for _, res := range doc.OnlineResources {
		switch strings.ToLower(strings.TrimSpace(res.Function)) {
		case "download", "fileaccess", "file access":
			if meta.ResourceURL == "" {
				meta.ResourceURL = strings.TrimSpace(res.URL)
			}
		}
	}

	meta.PublishedDate = parseDate(strings.TrimSpace(doc.DatasetReferenceDate.PublicationDate))

	return meta, nil
}
