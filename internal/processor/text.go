package processor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"DF-DOCGEN/internal/apperrors"
)

// ExtractText returns the visible text of the DOCX at path, one line per
// paragraph.
func ExtractText(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open docx file: %v", apperrors.ErrTemplateFormat, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrTemplateFormat, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(io.LimitReader(rc, maxExtractedBytes))
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrTemplateFormat, err)
		}
		return textFromXML(string(raw))
	}
	return "", fmt.Errorf("%w: missing %s", apperrors.ErrTemplateFormat, documentPart)
}

func textFromXML(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	var b strings.Builder
	inText, inTabStops := false, false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrTemplateFormat, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabStops = true
			case "tab":
				if !inTabStops {
					b.WriteString("\t")
				}
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabStops = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
