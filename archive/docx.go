package archive

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoDocumentXML = errors.New("docx has no word/document.xml")

// wordDocument mirrors the fragment of WordprocessingML we read. Runs keep
// their paragraph grouping so paragraph breaks survive as newlines.
type wordDocument struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []struct {
					Content string `xml:",chardata"`
				} `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// convertDocx extracts the visible text of a DOCX payload. A DOCX file is a
// zip container; the document body lives at word/document.xml.
func convertDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("docx: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("docx: %w", err)
		}
		return parseWordXML(content)
	}
	return "", errNoDocumentXML
}

func parseWordXML(content []byte) (string, error) {
	var doc wordDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}

	var out strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			out.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				out.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}
