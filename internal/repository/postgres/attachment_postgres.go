package postgres

import (
	"context"
	"database/sql"

	"attachapi/internal/model"
	"attachapi/internal/repository"
)

// AttachmentPostgres is a PostgreSQL implementation of
// repository.AttachmentRepository. It uses database/sql with parameterized
// queries and contains no business logic.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ repository.AttachmentRepository = (*AttachmentPostgres)(nil)

// Create inserts a new attachment row and returns the stored record.
func (r *AttachmentPostgres) Create(ctx context.Context, att *model.Attachment) (*model.Attachment, error) {
	const q = `
		INSERT INTO attachments (id, filename, object_key, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, filename, object_key, size, content_type, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		att.ID,
		att.Filename,
		att.Key,
		att.Size,
		att.ContentType,
		att.CreatedAt,
	)
	var out model.Attachment
	if err := row.Scan(
		&out.ID,
		&out.Filename,
		&out.Key,
		&out.Size,
		&out.ContentType,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single attachment by its ID.
func (r *AttachmentPostgres) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	const q = `
		SELECT id, filename, object_key, size, content_type, created_at
		FROM attachments
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var a model.Attachment
	if err := row.Scan(
		&a.ID,
		&a.Filename,
		&a.Key,
		&a.Size,
		&a.ContentType,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns attachments using LIMIT/OFFSET pagination and a total count.
func (r *AttachmentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Attachment], error) {
	const qCount = `SELECT COUNT(*) FROM attachments`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, filename, object_key, size, content_type, created_at
		FROM attachments
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Attachment, 0)
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(
			&a.ID,
			&a.Filename,
			&a.Key,
			&a.Size,
			&a.ContentType,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Attachment]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes an attachment by ID. It does not return an error if the row
// does not exist.
func (r *AttachmentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM attachments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// DeleteAll removes every attachment row.
func (r *AttachmentPostgres) DeleteAll(ctx context.Context) (int64, error) {
	const q = `DELETE FROM attachments`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
