package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"time"

	"DR-CONTRACTS/internal/models"
	"DR-CONTRACTS/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	// ErrSignedURLUnsupported is returned when the store cannot sign links.
	ErrSignedURLUnsupported = errors.New("signed download links are not supported by this store")
)

const signedURLExpiry = 15 * time.Minute

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypePDF  = "application/pdf"
)

type DocumentService struct {
	db        *gorm.DB
	store     storage.ObjectStore
	templates *TemplateService
	contexts  *ContextService
	renderer  *Renderer
	pdf       PDFConverter
}

// NewDocumentService wires document generation. pdf may be nil, documents
// are then stored as HTML only.
func NewDocumentService(db *gorm.DB, store storage.ObjectStore, templates *TemplateService, contexts *ContextService, renderer *Renderer, pdf PDFConverter) *DocumentService {
	return &DocumentService{
		db:        db,
		store:     store,
		templates: templates,
		contexts:  contexts,
		renderer:  renderer,
		pdf:       pdf,
	}
}

// Generate renders a template against a contract's stored context and keeps
// the result as HTML and, when the converter succeeds, PDF.
func (s *DocumentService) Generate(ctx context.Context, templateID, contractID string) (*models.ContractDocument, error) {
	template, err := s.templates.Get(templateID)
	if err != nil {
		return nil, err
	}
	if contractID == "" {
		return nil, ErrContextNotFound
	}
	data, err := s.contexts.Load(contractID)
	if err != nil {
		return nil, err
	}

	body, err := s.renderer.Render(template.Content, data)
	if err != nil {
		return nil, err
	}
	page := documentShell(template.Name+" "+contractID, body)

	documentID := uuid.New().String()
	baseName := storage.SafeFilename(template.Name + "_" + contractID)

	htmlPath := storage.GenerateDocumentObjectName(documentID, baseName+".html")
	htmlResult, err := s.store.UploadFile(ctx, bytes.NewReader(page), htmlPath, contentTypeHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to upload contract HTML: %w", err)
	}

	document := &models.ContractDocument{
		ID:         documentID,
		TemplateID: template.ID,
		ContractID: contractID,
		Filename:   baseName + ".html",
		HTMLPath:   htmlPath,
		FileSize:   htmlResult.Size,
		Status:     models.DocumentStatusHTMLOnly,
	}

	if s.pdf != nil {
		if pdfPath, size, err := s.storePDF(ctx, documentID, baseName, page); err != nil {
			log.Printf("Warning: PDF conversion failed for document %s, keeping HTML only: %v", documentID, err)
		} else {
			document.PDFPath = pdfPath
			document.Filename = baseName + ".pdf"
			document.FileSize = size
			document.Status = models.DocumentStatusCompleted
		}
	}

	if err := s.db.Create(document).Error; err != nil {
		s.removeObjects(ctx, document)
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}
	return document, nil
}

func (s *DocumentService) storePDF(ctx context.Context, documentID, baseName string, page []byte) (string, int64, error) {
	pdf, err := s.pdf.ConvertHTMLToPDF(ctx, string(page))
	if err != nil {
		return "", 0, err
	}
	defer pdf.Close()

	pdfPath := storage.GenerateDocumentObjectName(documentID, baseName+".pdf")
	result, err := s.store.UploadFile(ctx, pdf, pdfPath, contentTypePDF)
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload contract PDF: %w", err)
	}
	return pdfPath, result.Size, nil
}

func (s *DocumentService) GetDocument(documentID string) (*models.ContractDocument, error) {
	var document models.ContractDocument
	if err := s.db.First(&document, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return &document, nil
}

// GetDocumentReader opens the PDF when there is one, the HTML otherwise.
func (s *DocumentService) GetDocumentReader(ctx context.Context, documentID string) (io.ReadCloser, *models.ContractDocument, string, error) {
	document, err := s.GetDocument(documentID)
	if err != nil {
		return nil, nil, "", err
	}

	path, contentType := document.HTMLPath, contentTypeHTML
	if document.PDFPath != "" {
		path, contentType = document.PDFPath, contentTypePDF
	}

	reader, err := s.store.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, "", ErrDocumentNotFound
		}
		return nil, nil, "", fmt.Errorf("failed to read document: %w", err)
	}
	return reader, document, contentType, nil
}

// SignedURL returns a short-lived direct link to the document's PDF, or its
// HTML when no PDF was produced.
func (s *DocumentService) SignedURL(documentID string) (string, time.Duration, error) {
	signer, ok := s.store.(storage.URLSigner)
	if !ok {
		return "", 0, ErrSignedURLUnsupported
	}
	document, err := s.GetDocument(documentID)
	if err != nil {
		return "", 0, err
	}
	path := document.HTMLPath
	if document.PDFPath != "" {
		path = document.PDFPath
	}
	url, err := signer.GetSignedURL(path, signedURLExpiry)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign download link: %w", err)
	}
	return url, signedURLExpiry, nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, documentID string) error {
	document, err := s.GetDocument(documentID)
	if err != nil {
		return err
	}
	s.removeObjects(ctx, document)
	return s.db.Delete(document).Error
}

func (s *DocumentService) removeObjects(ctx context.Context, document *models.ContractDocument) {
	for _, path := range []string{document.HTMLPath, document.PDFPath} {
		if path == "" {
			continue
		}
		if err := s.store.DeleteFile(ctx, path); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			// Log error but continue with database deletion
			log.Printf("Warning: failed to delete stored file %s: %v", path, err)
		}
	}
}

// documentShell wraps sanitized contract markup in a printable page.
func documentShell(title, body string) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>@page { size: A4; } body { margin: 0; -webkit-print-color-adjust: exact; }</style>\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.Bytes()
}
