// Package storage implements a bucket-scoped object storage adapter on top of
// an S3-compatible backend. The adapter owns key namespacing, option merging,
// URL generation, transfer strategy selection, and prefix-wide bulk
// operations; the wire protocol itself is delegated to an ObjectClient.
package storage

import (
	"context"
	"io"
	"net/url"
	"time"
)

// Options is a string-keyed option set forwarded to the object store client.
// Recognized keys include "acl", "content_type", "cache_control",
// "content_disposition", "content_encoding", "content_language",
// "storage_class", "metadata" (map[string]string), "size" (int64),
// "thread_count" (int), and the encryption keys "sse", "sse_kms_key_id",
// "sse_customer_key". Unrecognized keys are ignored by the client.
type Options map[string]any

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// URLOptions control how an access URL is generated for a stored object.
type URLOptions struct {
	// Host overrides the store endpoint with a CDN/proxy base URL. It must
	// end with "/"; the resolved key is appended percent-encoded and the
	// result is never signed.
	Host string
	// Public overrides the configured default visibility for this call.
	Public *bool
	// Signed forces a signed URL even when the object is public.
	Signed bool
	// ExpiresIn bounds a signed URL's validity. Zero means the client default.
	ExpiresIn time.Duration
	// Query holds extra query parameters (e.g. response header overrides)
	// forwarded verbatim to the signing call.
	Query url.Values
}

// PresignOptions control direct-upload parameter generation.
type PresignOptions struct {
	// Method selects the upload style: "put" (default) or "post".
	Method string
	// ExpiresIn bounds the presign validity. Zero means the client default.
	ExpiresIn time.Duration
	// Options are merged over the configured upload defaults; per-call values
	// win on conflicts.
	Options Options
}

// Presign holds everything a client needs to upload directly to the store.
// Fields is empty for PUT-style presigns, Headers is empty for POST-style.
type Presign struct {
	URL     string            `json:"url"`
	Fields  map[string]string `json:"fields"`
	Headers map[string]string `json:"headers"`
	Method  string            `json:"method"`
}

// Storage is the facade exposed to the rest of the application. All keys are
// logical: the adapter resolves them against its configured prefix.
// Implementations hold no mutable state after construction and are safe for
// concurrent use.
type Storage interface {
	// Upload streams the reader's content to the store under the given key.
	Upload(ctx context.Context, key string, r io.Reader, opts Options) error
	// Download returns the object's full content.
	Download(ctx context.Context, key string, opts Options) ([]byte, error)
	// Open returns the object's content as a stream. The caller closes it.
	Open(ctx context.Context, key string, opts Options) (io.ReadCloser, error)
	// Copy duplicates an already stored object under a new key server-side.
	Copy(ctx context.Context, srcKey, dstKey string, opts Options) error
	// Exists reports whether the key is present. A missing object is not an
	// error; only transport/auth failures are.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes a single object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefixed removes every object under the given logical prefix.
	DeletePrefixed(ctx context.Context, prefix string) error
	// Clear removes every object under the configured prefix for which
	// shouldDelete returns true.
	Clear(ctx context.Context, shouldDelete func(ObjectInfo) bool) error
	// URL produces an access URL for the object: CDN-hosted, externally
	// signed, public, or store-signed depending on configuration.
	URL(ctx context.Context, key string, opts URLOptions) (string, error)
	// Presign produces parameters for a direct client-to-store upload.
	Presign(ctx context.Context, key string, opts PresignOptions) (*Presign, error)
}
