package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/repository"
	"DF-DOCGEN/internal/storage"
	tu "DF-DOCGEN/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testCaseID     = "case-1"
	testTypeID     = "type-1"
	testTemplateID = "tmpl-intake"
	testBaseURL    = "http://files.test/files"
)

// copyConverter passes the filled DOCX through unchanged so tests can read
// the rendered text back.
type copyConverter struct {
	calls     int
	landscape bool
}

func (c *copyConverter) Convert(_ context.Context, docxPath string, dst io.Writer, opts ConvertOptions) error {
	c.calls++
	c.landscape = opts.Landscape
	f, err := os.Open(docxPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(dst, f)
	return err
}

type failingConverter struct{}

func (failingConverter) Convert(context.Context, string, io.Writer, ConvertOptions) error {
	return errors.New("libreoffice crashed")
}

// cancellingConverter succeeds but cancels the request on the way out.
type cancellingConverter struct {
	copyConverter
	cancel context.CancelFunc
}

func (c *cancellingConverter) Convert(ctx context.Context, docxPath string, dst io.Writer, opts ConvertOptions) error {
	err := c.copyConverter.Convert(ctx, docxPath, dst, opts)
	c.cancel()
	return err
}

type fixture struct {
	db        *gorm.DB
	store     *storage.LocalStore
	persister *Persister
	templates repository.TemplateRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := tu.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Case{ID: testCaseID, Name: "Acme v. Globex"}).Error)
	require.NoError(t, db.Create(&models.DocumentType{ID: testTypeID, Name: "Intake"}).Error)

	f := &fixture{
		db:        db,
		store:     store,
		persister: NewPersister(db),
		templates: repository.NewTemplateRepository(db),
	}
	f.addTemplate(t, testTemplateID, tu.IntakeBody(), true)
	return f
}

func (f *fixture) addTemplate(t *testing.T, id, body string, active bool) {
	t.Helper()
	objectName := storage.GenerateTemplateObjectName(id, "intake.docx")
	_, err := f.store.Put(context.Background(), objectName, bytes.NewReader(tu.BuildDocx(body)), docxContentType)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.Template{
		ID: id, Name: "Intake " + id, Filename: "intake.docx", StoragePath: objectName,
		DocumentTypeID: testTypeID, Active: active,
	}).Error)
}

func (f *fixture) generator(conv Converter, policy AnchorPolicy) *Generator {
	return NewGenerator(f.templates, f.store, conv, f.persister, GeneratorConfig{
		OutputDir:  "outputs",
		PreviewDir: "previews",
		BaseURL:    testBaseURL,
		Policy:     policy,
	}, logger.Nop())
}

func (f *fixture) documentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Document{}).Count(&n).Error)
	return n
}

// files lists regular files under dir inside the store.
func (f *fixture) files(t *testing.T, dir string) []string {
	t.Helper()
	root := filepath.Join(f.store.Root(), dir)
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			found = append(found, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return found
}

func intakePayload() []byte {
	return []byte(`{"ClientName": "Acme Corp", "CaseNumber": "CN-100"}`)
}
