package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type UploadResult struct {
	ObjectName string `json:"object_name"`
	PublicURL  string `json:"public_url"`
	Size       int64  `json:"size"`
}

// ObjectStore is where generated contract files are kept. GCSClient and
// LocalStore implement it.
type ObjectStore interface {
	UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error)
	ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, objectName string) error
	Close() error
}

// URLSigner is implemented by stores that can hand out direct download links.
type URLSigner interface {
	GetSignedURL(objectName string, expiry time.Duration) (string, error)
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilename reduces a display name to something usable in object paths.
func SafeFilename(name string) string {
	name = unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "contrat"
	}
	return name
}

func GenerateDocumentObjectName(documentID, filename string) string {
	timestamp := time.Now().Unix()
	return fmt.Sprintf("documents/%s/%d_%s", documentID, timestamp, SafeFilename(filename))
}
