package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"DR-CONTRACTS/internal"
	"DR-CONTRACTS/internal/engine"
	"DR-CONTRACTS/internal/starters"
	"DR-CONTRACTS/internal/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := internal.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testServices struct {
	db        *gorm.DB
	renderer  *Renderer
	contexts  *ContextService
	templates *TemplateService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db := setupTestDB(t)
	catalog, err := starters.Load()
	if err != nil {
		t.Fatal(err)
	}
	renderer := NewRenderer(engine.DefaultLimits(), 16)
	contexts := NewContextService(db)
	return &testServices{
		db:        db,
		renderer:  renderer,
		contexts:  contexts,
		templates: NewTemplateService(db, renderer, contexts, catalog),
	}
}

// memoryStore is an in-memory storage.ObjectStore.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memoryStore) UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = data
	m.types[objectName] = contentType
	return &storage.UploadResult{ObjectName: objectName, Size: int64(len(data))}, nil
}

func (m *memoryStore) ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectName]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) DeleteFile(ctx context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectName]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(m.objects, objectName)
	return nil
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// fakeConverter returns a fixed PDF body or an error.
type fakeConverter struct {
	err   error
	calls int
	html  string
}

func (f *fakeConverter) ConvertHTMLToPDF(ctx context.Context, html string) (io.ReadCloser, error) {
	f.calls++
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader("%PDF-1.7 fake")), nil
}

var errConverterDown = errors.New("gotenberg unavailable")

const sampleContextJSON = `{
	"client": {"fullName": "Jeanne <b>Petit</b>", "email": "jeanne@example.fr"},
	"org": {"name": "Maison Rose", "city": "Paris"},
	"contract": {"number": "CTR-7", "totalTTC": 1234.5, "totalHT": 1028.75, "totalDeposit": 300, "startDate": "2025-06-15T00:00:00Z"},
	"dresses": [
		{"id": "d1", "name": "A", "pricePerDay": 10, "quantity": 1, "days": 1, "subtotal": 10},
		{"id": "d2", "name": "B", "pricePerDay": 20, "quantity": 1, "days": 1, "subtotal": 20}
	]
}`
