package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"DF-DOCGEN/internal/apperrors"

	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
)

const pdfContentType = "application/pdf"

type ConvertOptions struct {
	Landscape bool
}

// Converter turns a filled DOCX into the distributable output format.
type Converter interface {
	Convert(ctx context.Context, docxPath string, dst io.Writer, opts ConvertOptions) error
}

// GotenbergConverter converts through the Gotenberg LibreOffice route.
type GotenbergConverter struct {
	client  *gotenberg.Client
	timeout time.Duration
}

func NewGotenbergConverter(gotenbergURL string, timeout time.Duration) (*GotenbergConverter, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := gotenberg.NewClient(gotenbergURL, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gotenberg client: %w", err)
	}

	return &GotenbergConverter{
		client:  client,
		timeout: timeout,
	}, nil
}

// Convert makes a single attempt. A failed generation is reported to the
// caller rather than retried.
func (c *GotenbergConverter) Convert(ctx context.Context, docxPath string, dst io.Writer, opts ConvertOptions) error {
	convertCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	doc, err := document.FromPath(filepath.Base(docxPath), docxPath)
	if err != nil {
		return fmt.Errorf("%w: failed to read document: %v", apperrors.ErrRender, err)
	}

	req := gotenberg.NewLibreOfficeRequest(doc)
	if opts.Landscape {
		req.Landscape()
	}

	resp, err := c.client.Send(convertCtx, req)
	if err != nil {
		return renderFailure(convertCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: gotenberg returned %d: %s", apperrors.ErrRender, resp.StatusCode, detail)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return renderFailure(convertCtx, err)
	}
	return nil
}

func renderFailure(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: conversion timed out: %v", apperrors.ErrRender, err)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrRender, err)
}
