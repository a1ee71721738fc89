package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"attachapi/internal/model"
	"attachapi/internal/repository"
	"attachapi/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("attachment not found")
	ErrReaderNil  = errors.New("reader is nil")
)

// attachmentFolder is the logical namespace for attachment objects inside the
// store; the storage adapter's configured prefix sits above it.
const attachmentFolder = "attachments"

// AttachmentListResult is the service-level DTO for paginated attachments.
type AttachmentListResult struct {
	Items []model.Attachment `json:"data"`
	Total int                `json:"total"`
}

// PresignedUpload is everything a client needs to upload a file directly to
// the object store without routing the bytes through this service.
type PresignedUpload struct {
	Key     string            `json:"key"`
	URL     string            `json:"url"`
	Fields  map[string]string `json:"fields"`
	Headers map[string]string `json:"headers"`
	Method  string            `json:"method"`
}

// AttachmentService defines the use cases for handling attachments.
type AttachmentService interface {
	// Upload streams the content to object storage, saves metadata to the DB,
	// and rolls back the stored object if the DB save fails.
	// originalFilename is used only to extract the extension; the stored key
	// is UUID + original extension.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Attachment, error)

	// List returns attachments using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*AttachmentListResult, error)

	// Get returns a single attachment by its ID.
	Get(ctx context.Context, id string) (*model.Attachment, error)

	// Delete removes an attachment by ID from both storage and repository.
	Delete(ctx context.Context, id string) error

	// URL produces an access URL for the attachment's object.
	URL(ctx context.Context, id string, opts storage.URLOptions) (string, error)

	// PresignUpload allocates a fresh key and returns direct-upload parameters.
	PresignUpload(ctx context.Context, originalFilename, method string, expiresIn time.Duration) (*PresignedUpload, error)

	// Duplicate copies an attachment's object to a new key server-side and
	// records it as a new attachment.
	Duplicate(ctx context.Context, id string) (*model.Attachment, error)

	// Purge removes every attachment object and metadata row.
	Purge(ctx context.Context) error
}

// attachmentService is a concrete implementation of AttachmentService.
type attachmentService struct {
	store storage.Storage
	repo  repository.AttachmentRepository
}

// NewAttachmentService constructs a new AttachmentService.
func NewAttachmentService(store storage.Storage, repo repository.AttachmentRepository) AttachmentService {
	return &attachmentService{store: store, repo: repo}
}

// generateKey allocates a collision-free logical key keeping the original
// file extension.
func generateKey(originalFilename string) (name, key string) {
	ext := filepath.Ext(originalFilename)
	name = uuid.New().String() + ext
	return name, attachmentFolder + "/" + name
}

func (s *attachmentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Attachment, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	genName, key := generateKey(originalFilename)

	err := s.store.Upload(ctx, key, r, storage.Options{
		"size":         size,
		"content_type": contentType,
		"metadata": map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	att := &model.Attachment{
		ID:          uuid.New().String(),
		Filename:    genName,
		Key:         key,
		Size:        size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, att)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated attachments without exposing repository types.
func (s *attachmentService) List(ctx context.Context, limit, offset int) (*AttachmentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &AttachmentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns an attachment by ID.
func (s *attachmentService) Get(ctx context.Context, id string) (*model.Attachment, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return att, nil
}

// Delete removes an attachment from storage, then deletes its record.
func (s *attachmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep the DB row so the object
	// reference is not lost.
	if err := s.store.Delete(ctx, att.Key); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// URL resolves the attachment's stored key and delegates URL generation to
// the storage adapter.
func (s *attachmentService) URL(ctx context.Context, id string, opts storage.URLOptions) (string, error) {
	att, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.URL(ctx, att.Key, opts)
}

// PresignUpload returns direct-upload parameters for a fresh key. Per-request
// upload options are deliberately not forwarded here: only the storage-level
// defaults configured on the adapter apply to presigns.
func (s *attachmentService) PresignUpload(ctx context.Context, originalFilename, method string, expiresIn time.Duration) (*PresignedUpload, error) {
	_, key := generateKey(originalFilename)

	p, err := s.store.Presign(ctx, key, storage.PresignOptions{
		Method:    method,
		ExpiresIn: expiresIn,
	})
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}
	return &PresignedUpload{
		Key:     key,
		URL:     p.URL,
		Fields:  p.Fields,
		Headers: p.Headers,
		Method:  p.Method,
	}, nil
}

// Duplicate copies the attachment's object to a new key server-side and
// records the copy as a new attachment.
func (s *attachmentService) Duplicate(ctx context.Context, id string) (*model.Attachment, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	genName, key := generateKey(src.Filename)

	// Passing the known size lets the adapter pick the copy strategy without
	// an extra HEAD call.
	err = s.store.Copy(ctx, src.Key, key, storage.Options{"size": src.Size})
	if err != nil {
		return nil, fmt.Errorf("copy in storage: %w", err)
	}

	att := &model.Attachment{
		ID:          uuid.New().String(),
		Filename:    genName,
		Key:         key,
		Size:        src.Size,
		ContentType: src.ContentType,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, att)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// Purge removes the whole attachment namespace from storage, then wipes the
// metadata rows. Partial storage failures abort the metadata wipe so no
// object loses its reference.
func (s *attachmentService) Purge(ctx context.Context) error {
	if err := s.store.DeletePrefixed(ctx, attachmentFolder); err != nil {
		return fmt.Errorf("purge storage: %w", err)
	}
	if _, err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("purge metadata: %w", err)
	}
	return nil
}
