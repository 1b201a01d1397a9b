package normalize

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractDOCX pulls text out of the OOXML container natively: paragraphs
// become lines, table rows become one line per row with cells joined by " | "
// so the extraction heuristics can still see tabular contact blocks.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}
	defer zr.Close()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("docx container has no word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return parseDocumentXML(rc)
}

func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		lines   []string
		para    strings.Builder
		cell    strings.Builder
		row     []string
		inText  bool
		inTable int
	)

	flushPara := func() {
		text := para.String()
		para.Reset()
		if inTable > 0 {
			if cell.Len() > 0 && text != "" {
				cell.WriteString(" ")
			}
			cell.WriteString(text)
			return
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteString(" ")
			case "br", "cr":
				para.WriteString("\n")
			case "tbl":
				inTable++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flushPara()
			case "tc":
				row = append(row, strings.TrimSpace(cell.String()))
				cell.Reset()
			case "tr":
				var filled []string
				for _, c := range row {
					if c != "" {
						filled = append(filled, c)
					}
				}
				if len(filled) > 0 {
					lines = append(lines, strings.Join(filled, " | "))
				}
				row = row[:0]
			case "tbl":
				if inTable > 0 {
					inTable--
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
