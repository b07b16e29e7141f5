// Package records manages health record uploads: prescriptions and lab
// results stored as files with per-owner metadata.
package records

import (
	"strings"
	"time"
)

// Category classifies a health record.
type Category string

const (
	CategoryPrescription Category = "prescription"
	CategoryLabResult    Category = "lab_result"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryPrescription || c == CategoryLabResult
}

// Record is the metadata row for one uploaded file. The file body lives in
// object storage under StorageKey.
type Record struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Category    Category  `json:"category"`
	Name        string    `json:"name"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// maxUploadBytes caps a single upload at 10 MiB.
const maxUploadBytes = 10 << 20

// sanitizeFileName strips path separators so the original name is safe to
// embed in a storage key.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		name = "upload"
	}
	return name
}
