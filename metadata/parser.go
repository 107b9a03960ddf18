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


// Package metadata normalizes the catalogue's four metadata wire formats
// into the canonical core.ParsedMetadata DTO.
//
// Each format has its own parser strategy selected by ParserFor. All
// strategies produce the same DTO shape so the ingestion orchestrator stays
// format-agnostic. The ISO 19115 XML format is the primary one: a parse
// failure there aborts ingestion of the dataset, while the remaining three
// are best-effort enrichment.
package metadata

import (
	"fmt"
	"time"

	"github.com/datamere/ecosearch/core"
)

// Parser converts one wire format into the canonical DTO.
type Parser interface {
	// Format reports which wire format this parser handles.
	Format() core.MetadataFormat

	// Parse normalizes raw payload bytes into the canonical DTO.
	// A payload without a usable title fails with core.ErrMissingTitle.
	Parse(raw []byte) (*core.ParsedMetadata, error)
}

// ParserFor returns the parser strategy for a format tag.
func ParserFor(format core.MetadataFormat) (Parser, error) {
	switch format {
	case core.FormatISO19115XML:
		return &ISO19115Parser{}, nil
	case core.FormatJSONExpanded:
		return &JSONExpandedParser{}, nil
	case core.FormatSchemaOrgJSONLD:
		return &JSONLDParser{}, nil
	case core.FormatRDFTurtle:
		return &TurtleParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidFormat, format)
	}
}

// parseDate accepts the date layouts the catalogue emits. Returns the zero
// time when no layout matches.
func parseDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04:05", "2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
