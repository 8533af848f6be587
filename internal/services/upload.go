package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type UploadRequest struct {
	CaseID         string `json:"case_id"`
	DocumentTypeID string `json:"document_type_id"`
	TemplateID     string `json:"template_id"`
	FileName       string `json:"file_name"`
	Extension      string `json:"extension"`
	Content        string `json:"content"` // base64
}

func (r UploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CaseID, validation.Required),
		validation.Field(&r.DocumentTypeID, validation.Required),
		validation.Field(&r.FileName, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

type UploadResult struct {
	DocumentID   string `json:"document_id"`
	ArtifactPath string `json:"artifact_path"`
	ArtifactURL  string `json:"artifact_url"`
}

// UploadService handles documents that arrive as finished files instead of
// being generated from a template.
type UploadService struct {
	store        storage.Store
	persister    *Persister
	uploadDir    string
	documentsDir string
	baseURL      string
	log          *logger.Logger
}

// NewUploadService stages standalone uploads under uploadDir, which may be
// swept, and writes files that back a document record under documentsDir.
func NewUploadService(store storage.Store, persister *Persister, uploadDir, documentsDir, baseURL string, log *logger.Logger) *UploadService {
	return &UploadService{
		store:        store,
		persister:    persister,
		uploadDir:    uploadDir,
		documentsDir: documentsDir,
		baseURL:      baseURL,
		log:          log.With("component", "upload"),
	}
}

// StageUpload decodes base64Content and writes it under the upload
// directory. A data URI prefix is accepted.
func (s *UploadService) StageUpload(ctx context.Context, displayName, extension, base64Content string) (string, error) {
	return s.write(ctx, s.uploadDir, displayName, extension, base64Content)
}

func (s *UploadService) write(ctx context.Context, dir, displayName, extension, base64Content string) (string, error) {
	if i := strings.Index(base64Content, ";base64,"); i >= 0 && strings.HasPrefix(base64Content, "data:") {
		base64Content = base64Content[i+len(";base64,"):]
	}
	content, err := base64.StdEncoding.DecodeString(strings.TrimSpace(base64Content))
	if err != nil {
		return "", fmt.Errorf("%w: malformed base64 content: %v", apperrors.ErrUpload, err)
	}

	extension = cleanExtension(extension)
	if extension == "" {
		extension = cleanExtension(path.Ext(displayName))
	}
	if extension == "" {
		extension = "bin"
	}

	storedPath := path.Join(dir, uuid.New().String()+"."+extension)
	contentType := mime.TypeByExtension("." + extension)
	if _, err := s.store.Put(ctx, storedPath, bytes.NewReader(content), contentType); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUpload, err)
	}

	s.log.Debug("upload stored", "name", displayName, "path", storedPath, "bytes", len(content))
	return storedPath, nil
}

// Upload writes the file under the documents directory and records it in
// one call. The file is removed when the record cannot be written.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest, principalID string) (*UploadResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}

	storedPath, err := s.write(ctx, s.documentsDir, req.FileName, req.Extension, req.Content)
	if err != nil {
		return nil, err
	}

	persisted, err := s.persister.PersistGeneration(ctx, PersistInput{
		CaseID:         req.CaseID,
		DocumentTypeID: req.DocumentTypeID,
		TemplateID:     req.TemplateID,
		ArtifactPath:   storedPath,
		FileName:       req.FileName,
		CreatedBy:      principalID,
	})
	if err != nil {
		if delErr := s.store.Delete(context.Background(), storedPath); delErr != nil && !errors.Is(delErr, storage.ErrNotFound) {
			s.log.Warn("failed to delete uploaded file", "path", storedPath, "error", delErr)
		}
		return nil, err
	}

	return &UploadResult{
		DocumentID:   persisted.DocumentID,
		ArtifactPath: storedPath,
		ArtifactURL:  storage.PublicURL(s.baseURL, storedPath),
	}, nil
}

func cleanExtension(ext string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, strings.ToLower(ext))
}
