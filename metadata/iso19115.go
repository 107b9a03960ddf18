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


package metadata

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/datamere/ecosearch/core"
)

// ISO19115Parser handles the primary structured XML format (ISO 19115 /
// GEMINI discovery metadata).
type ISO19115Parser struct{}

var _ Parser = (*ISO19115Parser)(nil)

// Format reports the handled wire format.
func (p *ISO19115Parser) Format() core.MetadataFormat {
	return core.FormatISO19115XML
}

// Unqualified element names below match any namespace, which keeps the
// decoder tolerant of gmd/gco prefix variations across catalogue records.
type isoDocument struct {
	Identification []isoIdentification `xml:"identificationInfo>MD_DataIdentification"`
	OnlineRes      []isoOnlineResource `xml:"distributionInfo>MD_Distribution>transferOptions>MD_DigitalTransferOptions>onLine>CI_OnlineResource"`
}

type isoIdentification struct {
	Citation        isoCitation  `xml:"citation>CI_Citation"`
	Abstract        isoString    `xml:"abstract"`
	PointOfContact  []isoParty   `xml:"pointOfContact>CI_ResponsibleParty"`
	Keywords        []isoString  `xml:"descriptiveKeywords>MD_Keywords>keyword"`
	TopicCategories []string     `xml:"topicCategory>MD_TopicCategoryCode"`
}

type isoCitation struct {
	Title   isoString  `xml:"title"`
	Dates   []isoDate  `xml:"date>CI_Date"`
	Parties []isoParty `xml:"citedResponsibleParty>CI_ResponsibleParty"`
}

type isoString struct {
	Value string `xml:"CharacterString"`
}

type isoParty struct {
	Individual   isoString `xml:"individualName"`
	Organisation isoString `xml:"organisationName"`
	Role         isoCode   `xml:"role>CI_RoleCode"`
}

type isoCode struct {
	List string `xml:"codeListValue,attr"`
	Text string `xml:",chardata"`
}

func (c isoCode) value() string {
	if c.List != "" {
		return c.List
	}
	return strings.TrimSpace(c.Text)
}

type isoDate struct {
	Date string  `xml:"date>Date"`
	Type isoCode `xml:"dateType>CI_DateTypeCode"`
}

type isoOnlineResource struct {
	Linkage  string  `xml:"linkage>URL"`
	Function isoCode `xml:"function>CI_OnLineFunctionCode"`
}

// Parse extracts the canonical DTO from an ISO 19115 record. The title is
// mandatory; every other field is tolerated missing.
func (p *ISO19115Parser) Parse(raw []byte) (*core.ParsedMetadata, error) {
	var doc isoDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("iso19115: %w", err)
	}
	if len(doc.Identification) == 0 {
		return nil, fmt.Errorf("iso19115: no identification section: %w", core.ErrMissingTitle)
	}
	ident := doc.Identification[0]

	title := strings.TrimSpace(ident.Citation.Title.Value)
	if title == "" {
		return nil, fmt.Errorf("iso19115: %w", core.ErrMissingTitle)
	}

	meta := &core.ParsedMetadata{
		Title:    title,
		Abstract: strings.TrimSpace(ident.Abstract.Value),
	}

	// Responsible parties appear both on the citation and as points of
	// contact; only those in the author role count as authors.
	parties := append(append([]isoParty(nil), ident.Citation.Parties...), ident.PointOfContact...)
	for _, party := range parties {
		if !strings.EqualFold(party.Role.value(), "author") {
			continue
		}
		meta.Authors = append(meta.Authors, core.Author{
			Name:         strings.TrimSpace(party.Individual.Value),
			Organisation: strings.TrimSpace(party.Organisation.Value),
		})
	}

	for _, topic := range ident.TopicCategories {
		if topic = strings.TrimSpace(topic); topic != "" {
			meta.Keywords = append(meta.Keywords, topic)
		}
	}
	for _, keyword := range ident.Keywords {
		if v := strings.TrimSpace(keyword.Value); v != "" {
			meta.Keywords = append(meta.Keywords, v)
		}
	}

	for _, res := range doc.OnlineRes {
		switch strings.ToLower(res.Function.value()) {
		case "download", "fileaccess", "file access":
			if meta.ResourceURL == "" {
				meta.ResourceURL = strings.TrimSpace(res.Linkage)
			}
		}
	}

	for _, date := range ident.Citation.Dates {
		if strings.EqualFold(date.Type.value(), "publication") {
			meta.PublishedDate = parseDate(strings.TrimSpace(date.Date))
			break
		}
	}

	return meta, nil
}
