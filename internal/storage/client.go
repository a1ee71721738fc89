package storage

import (
	"context"
	"io"
	"net/url"
	"time"
)

// ObjectClient is the capability surface the adapter needs from an
// object-store wire client. Implementations own authentication, retries, and
// multipart session management; the adapter only decides which call to make
// and with what options. Substituting a client-side-encryption-capable
// implementation requires no adapter changes.
type ObjectClient interface {
	// PutObject uploads the body in a single request. A negative size means
	// the length is unknown and the client chunks on the wire as it must.
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, opts Options) error
	// MultipartUpload uploads the body in parts assembled server-side.
	// threads <= 0 means the client's default part concurrency.
	MultipartUpload(ctx context.Context, bucket, key string, body io.Reader, size int64, opts Options, threads int) error
	// CopyObject duplicates an object server-side in a single request.
	CopyObject(ctx context.Context, bucket, srcKey, dstKey string, opts Options) error
	// MultipartCopy duplicates an object server-side in parts.
	MultipartCopy(ctx context.Context, bucket, srcKey, dstKey string, opts Options, threads int) error
	// GetObject returns the object's content. Missing objects yield ErrNotFound.
	GetObject(ctx context.Context, bucket, key string, opts Options) (io.ReadCloser, error)
	// HeadObject returns the object's metadata, or ErrNotFound.
	HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	// DeleteObject removes one object. Missing objects are not an error.
	DeleteObject(ctx context.Context, bucket, key string) error
	// DeleteObjects removes a batch of up to 1000 keys and returns the keys
	// that failed, each with its own cause.
	DeleteObjects(ctx context.Context, bucket string, keys []string) []KeyError
	// ListObjects returns one bounded page of keys under the prefix. token is
	// the NextToken from the previous page, or "" for the first page.
	ListObjects(ctx context.Context, bucket, prefix, token string) (ListPage, error)
	// PresignedURL produces a signed URL for the given HTTP method.
	PresignedURL(ctx context.Context, bucket, key, method string, expires time.Duration, params url.Values) (string, error)
	// PresignedPost produces a POST-policy upload URL and its form fields.
	PresignedPost(ctx context.Context, bucket, key string, expires time.Duration, opts Options) (string, map[string]string, error)
	// PublicURL constructs the unsigned object URL. Local, no network call.
	PublicURL(bucket, key string) string
}

// ListPage is one bounded page of a prefix listing. An empty NextToken means
// the listing is complete.
type ListPage struct {
	Objects   []ObjectInfo
	NextToken string
}
