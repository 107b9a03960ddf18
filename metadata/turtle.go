package metadata

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/datamere/ecosearch/core"
)

// TurtleParser handles the RDF Turtle rendering with a line-oriented scan.
// The catalogue serializes one predicate per line, which makes a full RDF
// parser unnecessary for the handful of DCAT and Dublin Core terms we read.
type TurtleParser struct{}

var _ Parser = (*TurtleParser)(nil)

func (p *TurtleParser) Format() core.MetadataFormat {
	return core.FormatRDFTurtle
}

var (
	turtleLiteralRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	turtleIRIRe     = regexp.MustCompile(`<([^>]+)>`)
)

func (p *TurtleParser) Parse(raw []byte) (*core.ParsedMetadata, error) {
	meta := &core.ParsedMetadata{}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@prefix") {
			continue
		}

		switch {
		case containsPredicate(line, "dct:title"):
			if meta.Title == "" {
				meta.Title = firstLiteral(line)
			}
		case containsPredicate(line, "dct:description"):
			if meta.Abstract == "" {
				meta.Abstract = firstLiteral(line)
			}
		case containsPredicate(line, "dct:creator"), containsPredicate(line, "foaf:name"):
			for _, name := range allLiterals(line) {
				meta.Authors = append(meta.Authors, core.Author{Name: name})
			}
		case containsPredicate(line, "dcat:keyword"):
			meta.Keywords = append(meta.Keywords, allLiterals(line)...)
		case containsPredicate(line, "dcat:downloadURL"):
			if meta.ResourceURL == "" {
				if m := turtleIRIRe.FindStringSubmatch(line); m != nil {
					meta.ResourceURL = m[1]
				}
			}
		case containsPredicate(line, "dct:issued"):
			if meta.PublishedDate.IsZero() {
				meta.PublishedDate = parseDate(firstLiteral(line))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("turtle: %w", err)
	}

	if meta.Title == "" {
		return nil, fmt.Errorf("turtle: %w", core.ErrMissingTitle)
	}
	return meta, nil
}

// containsPredicate guards against matching a prefixed term inside a longer
// one, e.g. dct:title inside dct:titleAlternative.
func containsPredicate(line, predicate string) bool {
	idx := strings.Index(line, predicate)
	if idx < 0 {
		return false
	}
	rest := line[idx+len(predicate):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func firstLiteral(line string) string {
	if m := turtleLiteralRe.FindStringSubmatch(line); m != nil {
		return unescapeTurtle(m[1])
	}
	return ""
}

func allLiterals(line string) []string {
	var out []string
	for _, m := range turtleLiteralRe.FindAllStringSubmatch(line, -1) {
		if v := unescapeTurtle(m[1]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func unescapeTurtle(s string) string {
	replacer := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t")
	return strings.TrimSpace(replacer.Replace(s))
}
