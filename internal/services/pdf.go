package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
)

// PDFConverter turns a complete HTML document into a PDF.
type PDFConverter interface {
	ConvertHTMLToPDF(ctx context.Context, html string) (io.ReadCloser, error)
}

// PDFService converts contracts through Gotenberg's Chromium HTML route.
type PDFService struct {
	client     *gotenberg.Client
	timeout    time.Duration
	maxRetries int
}

func NewPDFService(gotenbergURL string, timeoutStr string) (*PDFService, error) {
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
		fmt.Printf("Warning: failed to parse timeout '%s', using default 30s: %v\n", timeoutStr, err)
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	client, err := gotenberg.NewClient(gotenbergURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gotenberg client: %w", err)
	}

	return &PDFService{
		client:     client,
		timeout:    timeout,
		maxRetries: 3,
	}, nil
}

func (s *PDFService) ConvertHTMLToPDF(ctx context.Context, html string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		body, err := s.convert(ctx, html)
		if err == nil {
			return body, nil
		}

		lastErr = err
		fmt.Printf("PDF conversion attempt %d/%d failed: %v\n", attempt, s.maxRetries, err)

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return nil, fmt.Errorf("failed to convert document after %d attempts: %w", s.maxRetries, lastErr)
}

func (s *PDFService) convert(ctx context.Context, html string) (io.ReadCloser, error) {
	convertCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Gotenberg requires the entry file to be named index.html
	index, err := document.FromReader("index.html", strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to create document from reader: %w", err)
	}

	req := gotenberg.NewHTMLRequest(index)
	req.PaperSize(gotenberg.A4)
	req.Margins(gotenberg.NormalMargins)

	resp, err := s.client.Send(convertCtx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}

	// The response body must outlive convertCtx, so read it fully here.
	pdf, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return io.NopCloser(bytes.NewReader(pdf)), nil
}
