// Package testutil builds small DOCX fixtures for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
	documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentTail = `</w:body></w:document>`

	// SentinelName is the trailing bookmark every fixture built with
	// WithSentinel ends with.
	SentinelName = "EndOfDoc"
)

// Para wraps inner in a paragraph.
func Para(inner ...string) string {
	return "<w:p>" + strings.Join(inner, "") + "</w:p>"
}

// Run is a plain text run.
func Run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// BoldRun is a bold text run.
func BoldRun(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// Bookmark encloses inner in a bookmark named name.
func Bookmark(id int, name string, inner ...string) string {
	return fmt.Sprintf(`<w:bookmarkStart w:id="%d" w:name="%s"/>%s<w:bookmarkEnd w:id="%d"/>`,
		id, name, strings.Join(inner, ""), id)
}

// WithSentinel appends the trailing sentinel bookmark paragraph to body.
func WithSentinel(body string) string {
	return body + Para(Bookmark(999, SentinelName))
}

// IntakeBody is the "Intake" template: anchors ClientName and CaseNumber
// followed by the sentinel.
func IntakeBody() string {
	return WithSentinel(
		Para(Run("Client: "), Bookmark(0, "ClientName", BoldRun("[ClientName]"))) +
			Para(Run("Case: "), Bookmark(1, "CaseNumber", Run("[CaseNumber]"))),
	)
}

// BuildDocx returns a minimal DOCX archive whose body is body.
func BuildDocx(body string) []byte {
	return BuildDocxDocument(documentHead + body + documentTail)
}

// BuildDocxDocument returns a DOCX archive with document.xml set verbatim.
func BuildDocxDocument(documentXML string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []struct{ name, body string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/document.xml", documentXML},
	} {
		w, err := zw.Create(entry.name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(entry.body)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteDocx writes a DOCX built from body into dir/name and returns its path.
func WriteDocx(t testing.TB, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, BuildDocx(body), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return path
}
