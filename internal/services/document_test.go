package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"DR-CONTRACTS/internal/models"
)

func newDocumentFixture(t *testing.T, converter PDFConverter) (*testServices, *DocumentService, *memoryStore, *models.ContractTemplate) {
	t.Helper()
	s := newTestServices(t)
	store := newMemoryStore()
	docs := NewDocumentService(s.db, store, s.templates, s.contexts, s.renderer, converter)

	tpl := createTemplate(t, s, "Contrat Location", "type-a",
		`<h1>{{contract.number}}</h1><p onclick="x()">{{currency contract.totalTTC}}</p>`)
	if _, err := s.contexts.Put("CTR-7", "org-1", []byte(sampleContextJSON)); err != nil {
		t.Fatal(err)
	}
	return s, docs, store, tpl
}

func readAll(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestGenerateWithPDF(t *testing.T) {
	converter := &fakeConverter{}
	_, docs, store, tpl := newDocumentFixture(t, converter)
	ctx := context.Background()

	doc, err := docs.Generate(ctx, tpl.ID, "CTR-7")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != models.DocumentStatusCompleted || doc.PDFPath == "" || doc.HTMLPath == "" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if !strings.HasSuffix(doc.Filename, ".pdf") || store.Len() != 2 {
		t.Fatalf("expected html and pdf objects, got filename %q and %d objects", doc.Filename, store.Len())
	}

	if !strings.Contains(converter.html, "<!DOCTYPE html>") ||
		!strings.Contains(converter.html, "<h1>CTR-7</h1>") ||
		!strings.Contains(converter.html, "1\u202f234,50\u00a0€") {
		t.Fatalf("converter received unexpected HTML:\n%s", converter.html)
	}
	if strings.Contains(converter.html, "onclick") {
		t.Fatal("document HTML must be sanitized")
	}

	r, stored, contentType, err := docs.GetDocumentReader(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if body := readAll(t, r); body != "%PDF-1.7 fake" || contentType != contentTypePDF || stored.ID != doc.ID {
		t.Fatalf("download returned %q (%s)", body, contentType)
	}
}

func TestGenerateFallsBackToHTML(t *testing.T) {
	converter := &fakeConverter{err: errConverterDown}
	_, docs, store, tpl := newDocumentFixture(t, converter)
	ctx := context.Background()

	doc, err := docs.Generate(ctx, tpl.ID, "CTR-7")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != models.DocumentStatusHTMLOnly || doc.PDFPath != "" || store.Len() != 1 {
		t.Fatalf("unexpected document %+v with %d objects", doc, store.Len())
	}

	r, _, contentType, err := docs.GetDocumentReader(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if body := readAll(t, r); !strings.Contains(body, "<h1>CTR-7</h1>") || contentType != contentTypeHTML {
		t.Fatalf("download returned %q (%s)", body, contentType)
	}
}

func TestGenerateWithoutConverter(t *testing.T) {
	_, docs, _, tpl := newDocumentFixture(t, nil)

	doc, err := docs.Generate(context.Background(), tpl.ID, "CTR-7")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != models.DocumentStatusHTMLOnly {
		t.Fatalf("status: got %q", doc.Status)
	}
}

func TestGenerateErrors(t *testing.T) {
	_, docs, _, tpl := newDocumentFixture(t, nil)
	ctx := context.Background()

	if _, err := docs.Generate(ctx, "missing", "CTR-7"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := docs.Generate(ctx, tpl.ID, ""); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("expected ErrContextNotFound, got %v", err)
	}
	if _, err := docs.Generate(ctx, tpl.ID, "CTR-404"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("expected ErrContextNotFound, got %v", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	_, docs, store, tpl := newDocumentFixture(t, &fakeConverter{})
	ctx := context.Background()

	doc, err := docs.Generate(ctx, tpl.ID, "CTR-7")
	if err != nil {
		t.Fatal(err)
	}
	if err := docs.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected stored objects to be removed, %d left", store.Len())
	}
	if _, err := docs.GetDocument(doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if _, _, _, err := docs.GetDocumentReader(ctx, doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentShellEscapesTitle(t *testing.T) {
	page := string(documentShell(`Robe "Aurore" <b>`, "<p>x</p>"))
	if !strings.Contains(page, "<title>Robe &#34;Aurore&#34; &lt;b&gt;</title>") {
		t.Fatalf("title not escaped:\n%s", page)
	}
	if !strings.Contains(page, "<body>\n<p>x</p>\n</body>") {
		t.Fatalf("body not embedded:\n%s", page)
	}
}

type signingStore struct {
	*memoryStore
	signed string
}

func (s *signingStore) GetSignedURL(objectName string, expiry time.Duration) (string, error) {
	s.signed = objectName
	return "https://storage.example/" + objectName + "?ttl=" + expiry.String(), nil
}

func TestSignedURL(t *testing.T) {
	s, docs, _, tpl := newDocumentFixture(t, &fakeConverter{})
	ctx := context.Background()

	doc, err := docs.Generate(ctx, tpl.ID, "CTR-7")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := docs.SignedURL(doc.ID); !errors.Is(err, ErrSignedURLUnsupported) {
		t.Fatalf("memory store cannot sign, got %v", err)
	}

	store := &signingStore{memoryStore: newMemoryStore()}
	signing := NewDocumentService(s.db, store, s.templates, s.contexts, s.renderer, nil)
	url, expiry, err := signing.SignedURL(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if store.signed != doc.PDFPath || expiry != 15*time.Minute || !strings.HasPrefix(url, "https://storage.example/documents/") {
		t.Fatalf("signed %q as %q (%s)", store.signed, url, expiry)
	}
	if _, _, err := signing.SignedURL("missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
