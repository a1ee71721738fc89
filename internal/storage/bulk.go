package storage

import (
	"context"
	"errors"
	"strings"
)

// maxDeleteBatch is the store's batch-delete limit.
const maxDeleteBatch = 1000

// Exists issues a HEAD-style check. A missing object maps to false, not an
// error; transport and auth failures surface.
func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	full, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := s.client.HeadObject(ctx, s.bucket, full); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, &OpError{Op: "head", Key: full, Err: err}
	}
	return true, nil
}

// DeletePrefixed removes every object under the given logical prefix. The
// listing is paginated; deletes go out in bounded batches and the scan always
// runs to completion, aggregating per-key failures into one
// PartialDeleteError at the end.
func (s *S3) DeletePrefixed(ctx context.Context, prefix string) error {
	return s.bulkDelete(ctx, s.resolvePrefix(prefix), nil)
}

// Clear removes every object under the configured prefix for which
// shouldDelete returns true. The predicate sees the listing metadata (key,
// size, last-modified) and may be impure; the engine itself takes no coupling
// to wall-clock time. Running Clear twice with the same predicate deletes
// nothing the second time.
func (s *S3) Clear(ctx context.Context, shouldDelete func(ObjectInfo) bool) error {
	return s.bulkDelete(ctx, s.resolvePrefix(""), shouldDelete)
}

// resolvePrefix builds the full listing prefix. A trailing "/" keeps sibling
// prefixes that merely share a leading substring out of the listing.
func (s *S3) resolvePrefix(prefix string) string {
	full := s.prefix
	if trimmed := strings.Trim(prefix, "/"); trimmed != "" {
		if full != "" {
			full += "/"
		}
		full += trimmed
	}
	if full != "" {
		full += "/"
	}
	return full
}

func (s *S3) bulkDelete(ctx context.Context, fullPrefix string, shouldDelete func(ObjectInfo) bool) error {
	var failed []KeyError
	batch := make([]string, 0, maxDeleteBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		failed = append(failed, s.client.DeleteObjects(ctx, s.bucket, batch)...)
		batch = batch[:0]
	}

	token := ""
	for {
		// Batch boundaries are the only safe cancellation points; an issued
		// batch always runs to completion.
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.client.ListObjects(ctx, s.bucket, fullPrefix, token)
		if err != nil {
			listErr := &OpError{Op: "list", Key: fullPrefix, Err: err}
			// Batches flushed before the listing broke may already carry
			// per-key failures; report them alongside the listing error.
			if len(failed) > 0 {
				return errors.Join(listErr, &PartialDeleteError{Failed: failed})
			}
			return listErr
		}
		for _, obj := range page.Objects {
			if shouldDelete != nil && !shouldDelete(obj) {
				continue
			}
			batch = append(batch, obj.Key)
			if len(batch) == maxDeleteBatch {
				flush()
			}
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}
	flush()

	if len(failed) > 0 {
		return &PartialDeleteError{Failed: failed}
	}
	return nil
}
