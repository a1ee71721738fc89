package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Default multipart thresholds. Uploads and copies cross into multipart mode
// independently; copies tolerate much larger single-request transfers because
// they never move the payload through the caller.
const (
	DefaultUploadThreshold int64 = 15 << 20
	DefaultCopyThreshold   int64 = 150 << 20
)

// S3Config configures one Storage instance. All fields are copied at
// construction; the instance never observes later mutation.
type S3Config struct {
	// Bucket is the store namespace. Required.
	Bucket string
	// Prefix namespaces all logical keys. Normalized once at construction.
	Prefix string
	// Public selects unsigned URLs by default for this instance.
	Public bool
	// UploadOptions are merged into every write, copy, and presign call.
	UploadOptions Options
	// Encryption holds canonical "sse*" parameters propagated per operation
	// with the naming convention the target operation expects.
	Encryption Options
	// UploadThreshold and CopyThreshold bound single-request transfers.
	// Zero or negative values select the defaults.
	UploadThreshold int64
	CopyThreshold   int64
	// Signer, when set, replaces the store's signing for URL generation.
	Signer Signer
	// Host is a CDN/proxy base URL used instead of the store endpoint for
	// URL generation. Must end with "/".
	Host string
	// Client is the object-store wire client. Required. A
	// client-side-encryption-capable client drops in unchanged.
	Client ObjectClient
}

// S3 is the storage facade over an S3-semantics object store. It is immutable
// after construction and safe for concurrent use; a process may hold several
// differently configured instances over the same client.
type S3 struct {
	client          ObjectClient
	bucket          string
	prefix          string
	public          bool
	defaults        Options
	encryption      Options
	uploadThreshold int64
	copyThreshold   int64
	signer          Signer
	host            string
}

var _ Storage = (*S3)(nil)

// NewS3 validates cfg and returns a ready facade. Invalid configuration fails
// fast with ConfigError; no partially constructed instance is ever returned.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, &ConfigError{Reason: "bucket is required"}
	}
	if cfg.Client == nil {
		return nil, &ConfigError{Reason: "object store client is required"}
	}
	if cfg.Host != "" && !strings.HasSuffix(cfg.Host, "/") {
		return nil, &ConfigError{Reason: fmt.Sprintf("host %q must end with a path separator", cfg.Host)}
	}
	uploadThreshold := cfg.UploadThreshold
	if uploadThreshold <= 0 {
		uploadThreshold = DefaultUploadThreshold
	}
	copyThreshold := cfg.CopyThreshold
	if copyThreshold <= 0 {
		copyThreshold = DefaultCopyThreshold
	}
	return &S3{
		client:          cfg.Client,
		bucket:          cfg.Bucket,
		prefix:          strings.Trim(cfg.Prefix, "/"),
		public:          cfg.Public,
		defaults:        Merge(cfg.UploadOptions),
		encryption:      Merge(cfg.Encryption),
		uploadThreshold: uploadThreshold,
		copyThreshold:   copyThreshold,
		signer:          cfg.Signer,
		host:            cfg.Host,
	}, nil
}

// resolve maps a logical key to its fully qualified store key. Pure; distinct
// logical keys never collide under a fixed prefix.
func (s *S3) resolve(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	if s.prefix == "" {
		return key, nil
	}
	return s.prefix + "/" + key, nil
}

// Upload streams r to the store under key, choosing simple or multipart
// transfer from the payload size and the configured upload threshold.
func (s *S3) Upload(ctx context.Context, key string, r io.Reader, opts Options) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	merged := Merge(s.defaults, translateEncryption(s.encryption, false), opts)
	size := sourceSize(r, merged)
	p := plan(size, s.uploadThreshold, merged)
	if p.mode == transferMultipart {
		err = s.client.MultipartUpload(ctx, s.bucket, full, r, size, merged, p.threads)
	} else {
		err = s.client.PutObject(ctx, s.bucket, full, r, size, merged)
	}
	if err != nil {
		return &OpError{Op: "upload", Key: full, Err: err}
	}
	return nil
}

// Copy duplicates a stored object server-side. The copy threshold governs the
// multipart decision, not the upload one; when the caller does not supply the
// source size it is looked up with a HEAD call.
func (s *S3) Copy(ctx context.Context, srcKey, dstKey string, opts Options) error {
	src, err := s.resolve(srcKey)
	if err != nil {
		return err
	}
	dst, err := s.resolve(dstKey)
	if err != nil {
		return err
	}
	merged := Merge(s.defaults, translateEncryption(s.encryption, false), opts)
	size, ok := merged.int64Val("size")
	if !ok {
		info, herr := s.client.HeadObject(ctx, s.bucket, src)
		if herr != nil {
			return &OpError{Op: "copy", Key: src, Err: herr}
		}
		size = info.Size
	}
	p := plan(size, s.copyThreshold, merged)
	if p.mode == transferMultipart {
		err = s.client.MultipartCopy(ctx, s.bucket, src, dst, merged, p.threads)
	} else {
		err = s.client.CopyObject(ctx, s.bucket, src, dst, merged)
	}
	if err != nil {
		return &OpError{Op: "copy", Key: dst, Err: err}
	}
	return nil
}

// Download returns the object's full content.
func (s *S3) Download(ctx context.Context, key string, opts Options) ([]byte, error) {
	rc, err := s.Open(ctx, key, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &OpError{Op: "download", Key: key, Err: err}
	}
	return data, nil
}

// Open returns the object's content as a stream. Download-side options carry
// only encryption parameters and per-call overrides; upload defaults such as
// ACLs do not apply to reads.
func (s *S3) Open(ctx context.Context, key string, opts Options) (io.ReadCloser, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	merged := Merge(translateEncryption(s.encryption, false), opts)
	rc, err := s.client.GetObject(ctx, s.bucket, full, merged)
	if err != nil {
		return nil, &OpError{Op: "open", Key: full, Err: err}
	}
	return rc, nil
}

// Delete removes a single object. Idempotent: a missing key is not an error.
func (s *S3) Delete(ctx context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := s.client.DeleteObject(ctx, s.bucket, full); err != nil && !errors.Is(err, ErrNotFound) {
		return &OpError{Op: "delete", Key: full, Err: err}
	}
	return nil
}

// sourceSize determines the payload size ahead of the transfer decision
// without consuming the stream. Returns -1 when the size cannot be known;
// unknown-length payloads stay in simple mode and the client chunks them on
// the wire as it must.
func sourceSize(r io.Reader, opts Options) int64 {
	if n, ok := opts.int64Val("size"); ok {
		return n
	}
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len())
	case interface{ Size() int64 }:
		return v.Size()
	}
	if sk, ok := r.(io.Seeker); ok {
		cur, err := sk.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		end, err := sk.Seek(0, io.SeekEnd)
		if err != nil {
			return -1
		}
		if _, err := sk.Seek(cur, io.SeekStart); err != nil {
			return -1
		}
		return end - cur
	}
	return -1
}
