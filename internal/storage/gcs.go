package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client     *storage.Client
	bucketName string
}

var _ Store = (*GCSStore)(nil)

func NewGCSStore(ctx context.Context, bucketName, credentialsPath string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (g *GCSStore) Put(ctx context.Context, objectName string, reader io.Reader, contentType string) (*UploadResult, error) {
	objectName, err := cleanObjectName(objectName)
	if err != nil {
		return nil, err
	}
	writer := g.client.Bucket(g.bucketName).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	size, err := io.Copy(writer, reader)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to copy data to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return &UploadResult{ObjectName: objectName, Size: size}, nil
}

func (g *GCSStore) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	objectName, err := cleanObjectName(objectName)
	if err != nil {
		return nil, err
	}
	reader, err := g.client.Bucket(g.bucketName).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, objectName)
	}
	return reader, err
}

func (g *GCSStore) Delete(ctx context.Context, objectName string) error {
	objectName, err := cleanObjectName(objectName)
	if err != nil {
		return err
	}
	err = g.client.Bucket(g.bucketName).Object(objectName).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, objectName)
	}
	return err
}

func (g *GCSStore) Close() error {
	return g.client.Close()
}
