package repository

import (
	"context"

	"attachapi/internal/model"
)

// AttachmentRepository defines data access for attachments using SQL queries
// only. No business logic here — strictly persistence operations.
type AttachmentRepository interface {
	// Create inserts a new attachment record and returns the stored row
	// (may include values set by the DB).
	Create(ctx context.Context, att *model.Attachment) (*model.Attachment, error)

	// FindByID returns an attachment by its ID.
	FindByID(ctx context.Context, id string) (*model.Attachment, error)

	// List returns a paginated list of attachments and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Attachment], error)

	// Delete removes an attachment by ID. Returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every attachment row and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}
