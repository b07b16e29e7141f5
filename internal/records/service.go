package records

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/careloop/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("careloop.internal.records")

// Upload carries a validated multipart upload into the service.
type Upload struct {
	Name        string
	Category    Category
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// Service stores record files and their metadata. The owner always comes from
// the authenticated identity, never from the form.
type Service struct {
	repo   Repository
	store  *ObjectStore
	logger *logging.Logger
}

// NewService constructs a records service.
func NewService(repo Repository, store *ObjectStore, logger *logging.Logger) *Service {
	if repo == nil {
		panic("records: repository required")
	}
	if store == nil {
		panic("records: object store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, store: store, logger: logger}
}

// Save validates the upload, writes the file to object storage, then records
// the metadata.
func (s *Service) Save(ctx context.Context, ownerID string, up Upload) (*Record, error) {
	ctx, span := tracer.Start(ctx, "records.save")
	defer span.End()

	up.Name = strings.TrimSpace(up.Name)
	if up.Name == "" {
		return nil, ErrMissingName
	}
	if !up.Category.Valid() {
		return nil, ErrUnknownCategory
	}
	if up.Body == nil {
		return nil, ErrMissingFile
	}
	if up.SizeBytes > maxUploadBytes {
		return nil, ErrTooLarge
	}
	if up.ContentType == "" {
		up.ContentType = "application/octet-stream"
	}

	key, err := s.store.Put(ctx, ownerID, up.FileName, up.ContentType, up.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	rec := &Record{
		OwnerID:     ownerID,
		Category:    up.Category,
		Name:        up.Name,
		FileName:    sanitizeFileName(up.FileName),
		ContentType: up.ContentType,
		SizeBytes:   up.SizeBytes,
		StorageKey:  key,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		// The object is orphaned if this cleanup fails; the key embeds a uuid
		// so it can never be served by accident.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Error("failed to remove orphaned object", "key", key, "error", delErr)
		}
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("health record stored",
		"record_id", rec.ID, "owner_id", ownerID, "category", rec.Category, "bytes", rec.SizeBytes)
	return rec, nil
}

// List returns the owner's records, optionally narrowed to one category.
func (s *Service) List(ctx context.Context, ownerID string, category Category) ([]*Record, error) {
	if category != "" && !category.Valid() {
		return nil, ErrUnknownCategory
	}
	return s.repo.ListByOwner(ctx, ownerID, category)
}

// Open streams a record's file for its owner.
func (s *Service) Open(ctx context.Context, ownerID, id string) (*Record, io.ReadCloser, error) {
	rec, err := s.repo.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}
	body, contentType, err := s.store.Get(ctx, rec.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		rec.ContentType = contentType
	}
	return rec, body, nil
}

// Delete removes a record's metadata and its stored file.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.repo.DeleteForOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, rec.StorageKey); err != nil {
		s.logger.Error("failed to delete stored object", "key", rec.StorageKey, "error", err)
	}
	s.logger.Info("health record deleted", "record_id", id, "owner_id", ownerID)
	return nil
}
