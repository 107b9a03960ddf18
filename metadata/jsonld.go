package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datamere/ecosearch/core"
)

// JSONLDParser handles the schema.org JSON-LD rendering. Documents come in
// two shapes: a single Dataset node, or a node graph under "@graph" where
// creators are referenced by "@id" and must be resolved against the graph.
type JSONLDParser struct{}

var _ Parser = (*JSONLDParser)(nil)

func (p *JSONLDParser) Format() core.MetadataFormat {
	return core.FormatSchemaOrgJSONLD
}

func (p *JSONLDParser) Parse(raw []byte) (*core.ParsedMetadata, error) {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("jsonld: %w", err)
	}
	if _, ok := root["@context"]; !ok {
		return nil, fmt.Errorf("jsonld: missing @context")
	}

	nodes := map[string]map[string]any{}
	dataset := root
	if graph, ok := root["@graph"].([]any); ok {
		dataset = nil
		for _, entry := range graph {
			node, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := node["@id"].(string); ok {
				nodes[id] = node
			}
			if dataset == nil && nodeType(node) == "Dataset" {
				dataset = node
			}
		}
		if dataset == nil {
			return nil, fmt.Errorf("jsonld: no Dataset node in @graph")
		}
	} else if nodeType(root) == "" {
		return nil, fmt.Errorf("jsonld: missing @type")
	}

	title := strings.TrimSpace(stringField(dataset, "name"))
	if title == "" {
		return nil, fmt.Errorf("jsonld: %w", core.ErrMissingTitle)
	}

	meta := &core.ParsedMetadata{
		Title:    title,
		Abstract: strings.TrimSpace(stringField(dataset, "description")),
	}

	for _, entry := range asList(dataset["creator"]) {
		node := resolveNode(entry, nodes)
		if node == nil {
			continue
		}
		author := core.Author{Name: strings.TrimSpace(stringField(node, "name"))}
		if affiliation := resolveNode(node["affiliation"], nodes); affiliation != nil {
			author.Organisation = strings.TrimSpace(stringField(affiliation, "name"))
		}
		if nodeType(node) == "Organization" && author.Organisation == "" {
			author.Organisation = author.Name
			author.Name = ""
		}
		if author.Name != "" || author.Organisation != "" {
			meta.Authors = append(meta.Authors, author)
		}
	}

	switch keywords := dataset["keywords"].(type) {
	case string:
		for _, keyword := range strings.Split(keywords, ",") {
			if v := strings.TrimSpace(keyword); v != "" {
				meta.Keywords = append(meta.Keywords, v)
			}
		}
	case []any:
		for _, entry := range keywords {
			var v string
			switch keyword := entry.(type) {
			case string:
				v = keyword
			case map[string]any:
				v = stringField(keyword, "name")
			}
			if v = strings.TrimSpace(v); v != "" {
				meta.Keywords = append(meta.Keywords, v)
			}
		}
	}

	for _, entry := range asList(dataset["distribution"]) {
		node := resolveNode(entry, nodes)
		if node == nil {
			continue
		}
		url := stringField(node, "contentUrl")
		if url == "" {
			url = stringField(node, "url")
		}
		if url = strings.TrimSpace(url); url != "" {
			meta.ResourceURL = url
			break
		}
	}

	meta.PublishedDate = parseDate(strings.TrimSpace(stringField(dataset, "datePublished")))

	return meta, nil
}

func nodeType(node map[string]any) string {
	switch t := node["@type"].(type) {
	case string:
		return t
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok {
				return s
			}
		}
	}
	return ""
}

func stringField(node map[string]any, key string) string {
	if v, ok := node[key].(string); ok {
		return v
	}
	return ""
}

func asList(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// resolveNode follows an "@id" reference into the graph when the entry is a
// bare reference, otherwise returns the inline node.
func resolveNode(entry any, nodes map[string]map[string]any) map[string]any {
	node, ok := entry.(map[string]any)
	if !ok {
		return nil
	}
	if id, ok := node["@id"].(string); ok && len(node) <= 2 {
		if resolved, ok := nodes[id]; ok {
			return resolved
		}
	}
	return node
}
