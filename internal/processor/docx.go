package processor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"DF-DOCGEN/internal/apperrors"
)

const (
	documentPart = "word/document.xml"

	// Upper bound on the uncompressed size of a template archive.
	maxExtractedBytes = 256 << 20
)

// DocumentHandle is the capability the rendering pipeline depends on. The
// concrete format behind it stays opaque to callers.
type DocumentHandle interface {
	// Anchors lists the resolvable anchor names in document order.
	Anchors() []string
	GotoAnchor(name string) error
	ReplaceAnchorContent(value string) error
	Landscape() bool
	VisibleText() (string, error)
	Save(path string) error
	Close() error
}

// DocxProcessor is a DocumentHandle over a DOCX archive unpacked into a
// private temp directory.
type DocxProcessor struct {
	inputFile string
	tempDir   string
	entries   []string
	content   string
	anchors   []string
	cursor    string
	closed    bool
}

var _ DocumentHandle = (*DocxProcessor)(nil)

// OpenTemplate opens the DOCX at path and returns its handle together with the
// ordered anchor names (sentinel excluded). The handle must be closed by the
// caller on every path.
func OpenTemplate(path string) (*DocxProcessor, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrTemplateNotFound, path)
		}
		return nil, nil, fmt.Errorf("%w: %s: %v", apperrors.ErrTemplateNotFound, path, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", apperrors.ErrTemplateNotFound, path)
	}

	tempDir, err := os.MkdirTemp("", "docx_*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	dp := &DocxProcessor{inputFile: path, tempDir: tempDir}
	if err := dp.unzip(); err != nil {
		dp.Close()
		return nil, nil, err
	}
	if err := dp.load(); err != nil {
		dp.Close()
		return nil, nil, err
	}

	return dp, dp.Anchors(), nil
}

func (dp *DocxProcessor) unzip() error {
	reader, err := zip.OpenReader(dp.inputFile)
	if err != nil {
		return fmt.Errorf("%w: failed to open docx file: %v", apperrors.ErrTemplateFormat, err)
	}
	defer reader.Close()

	var total int64
	for _, file := range reader.File {
		n, err := dp.extractFile(file, maxExtractedBytes-total)
		if err != nil {
			return fmt.Errorf("%w: failed to extract %s: %v", apperrors.ErrTemplateFormat, file.Name, err)
		}
		total += n
		if !file.FileInfo().IsDir() {
			dp.entries = append(dp.entries, file.Name)
		}
	}
	return nil
}

func (dp *DocxProcessor) extractFile(file *zip.File, budget int64) (int64, error) {
	path := filepath.Join(dp.tempDir, filepath.FromSlash(file.Name))
	if !strings.HasPrefix(path, filepath.Clean(dp.tempDir)+string(os.PathSeparator)) {
		return 0, fmt.Errorf("illegal entry path %q", file.Name)
	}

	if file.FileInfo().IsDir() {
		return 0, os.MkdirAll(path, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	rc, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer outFile.Close()

	n, err := io.CopyN(outFile, rc, budget+1)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	if n > budget {
		return n, fmt.Errorf("archive exceeds %d bytes uncompressed", maxExtractedBytes)
	}
	return n, nil
}

func (dp *DocxProcessor) load() error {
	raw, err := os.ReadFile(filepath.Join(dp.tempDir, filepath.FromSlash(documentPart)))
	if err != nil {
		return fmt.Errorf("%w: missing %s", apperrors.ErrTemplateFormat, documentPart)
	}
	if err := checkWellFormed(raw); err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrTemplateFormat, documentPart, err)
	}
	dp.content = string(raw)
	dp.anchors = anchorNames(scanBookmarks(dp.content))
	return nil
}

func checkWellFormed(raw []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	for {
		_, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (dp *DocxProcessor) Anchors() []string {
	out := make([]string, len(dp.anchors))
	copy(out, dp.anchors)
	return out
}

// GotoAnchor moves the cursor to the named anchor.
func (dp *DocxProcessor) GotoAnchor(name string) error {
	if dp.closed {
		return errors.New("document handle is closed")
	}
	if _, ok := findBookmark(dp.content, name); !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrAnchorNotFound, name)
	}
	dp.cursor = name
	return nil
}

// ReplaceAnchorContent replaces the text enclosed by the anchor under the
// cursor, keeping the run formatting the anchor was defined in.
func (dp *DocxProcessor) ReplaceAnchorContent(value string) error {
	if dp.closed {
		return errors.New("document handle is closed")
	}
	if dp.cursor == "" {
		return fmt.Errorf("%w: cursor not positioned", apperrors.ErrAnchorNotFound)
	}
	bm, ok := findBookmark(dp.content, dp.cursor)
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrAnchorNotFound, dp.cursor)
	}
	dp.content = replaceBookmarkContent(dp.content, bm, value)
	return nil
}

func (dp *DocxProcessor) VisibleText() (string, error) {
	return textFromXML(dp.content)
}

// Save writes the current document as a DOCX archive to path.
func (dp *DocxProcessor) Save(path string) error {
	if dp.closed {
		return errors.New("document handle is closed")
	}
	documentPath := filepath.Join(dp.tempDir, filepath.FromSlash(documentPart))
	if err := os.WriteFile(documentPath, []byte(dp.content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", documentPart, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return dp.rezip(path)
}

func (dp *DocxProcessor) rezip(outputPath string) (err error) {
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := outputFile.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	zipWriter := zip.NewWriter(outputFile)
	for _, name := range dp.entries {
		if err := dp.addEntry(zipWriter, name); err != nil {
			zipWriter.Close()
			return fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}
	return zipWriter.Close()
}

func (dp *DocxProcessor) addEntry(zipWriter *zip.Writer, name string) error {
	w, err := zipWriter.Create(name)
	if err != nil {
		return err
	}
	file, err := os.Open(filepath.Join(dp.tempDir, filepath.FromSlash(name)))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(w, file)
	return err
}

// Close releases the temp directory. It is safe to call more than once.
func (dp *DocxProcessor) Close() error {
	if dp.closed {
		return nil
	}
	dp.closed = true
	return os.RemoveAll(dp.tempDir)
}

// Landscape reports whether the last section is laid out in landscape,
// either explicitly (w:orient) or by page width exceeding height.
func (dp *DocxProcessor) Landscape() bool {
	sectStart := strings.LastIndex(dp.content, "<w:sectPr")
	if sectStart == -1 {
		return false
	}
	pgSzStart := strings.Index(dp.content[sectStart:], "<w:pgSz")
	if pgSzStart == -1 {
		return false
	}
	pgSzStart += sectStart
	pgSzEnd := strings.Index(dp.content[pgSzStart:], ">")
	if pgSzEnd == -1 {
		return false
	}
	attrs := parseAttributes(dp.content[pgSzStart : pgSzStart+pgSzEnd])

	if orient, ok := attrs["w:orient"]; ok {
		return orient == "landscape"
	}
	width, werr := strconv.ParseFloat(attrs["w:w"], 64)
	height, herr := strconv.ParseFloat(attrs["w:h"], 64)
	if werr != nil || herr != nil {
		return false
	}
	return width > height
}
