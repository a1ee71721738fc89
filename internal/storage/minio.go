package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// MinIOConfig holds connection settings for an S3-compatible endpoint
// (MinIO, AWS S3, etc.).
type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Region     string
	UseSSL     bool
	Accelerate bool
}

// listPageSize bounds one listing page.
const listPageSize = 1000

// defaultPresignExpiry applies when the caller does not bound a signed URL.
const defaultPresignExpiry = 15 * time.Minute

// minioClient implements ObjectClient using an S3-compatible backend.
// It is safe for concurrent use by multiple goroutines.
type minioClient struct {
	c *minio.Client
}

// NewMinIOClient creates the object-store wire client the adapter delegates to.
func NewMinIOClient(cfg MinIOConfig) (ObjectClient, error) {
	if cfg.Endpoint == "" {
		return nil, &ConfigError{Reason: "endpoint is required"}
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, &ConfigError{Reason: "credentials are required"}
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	if cfg.Accelerate {
		cli.SetS3TransferAccelerate("s3-accelerate.amazonaws.com")
	}
	return &minioClient{c: cli}, nil
}

func (m *minioClient) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, opts Options) error {
	po, err := putOptions(opts)
	if err != nil {
		return err
	}
	// Unknown-length streams must go through the chunked path regardless of
	// the adapter's plan.
	po.DisableMultipart = size >= 0
	_, err = m.c.PutObject(ctx, bucket, key, body, size, po)
	return err
}

func (m *minioClient) MultipartUpload(ctx context.Context, bucket, key string, body io.Reader, size int64, opts Options, threads int) error {
	po, err := putOptions(opts)
	if err != nil {
		return err
	}
	po.DisableMultipart = false
	if threads > 0 {
		po.NumThreads = uint(threads)
	}
	if n, ok := opts.int64Val("part_size"); ok && n > 0 {
		po.PartSize = uint64(n)
	}
	_, err = m.c.PutObject(ctx, bucket, key, body, size, po)
	return err
}

func (m *minioClient) CopyObject(ctx context.Context, bucket, srcKey, dstKey string, opts Options) error {
	dst, err := copyDest(bucket, dstKey, opts)
	if err != nil {
		return err
	}
	_, err = m.c.CopyObject(ctx, dst, minio.CopySrcOptions{Bucket: bucket, Object: srcKey})
	return err
}

func (m *minioClient) MultipartCopy(ctx context.Context, bucket, srcKey, dstKey string, opts Options, threads int) error {
	dst, err := copyDest(bucket, dstKey, opts)
	if err != nil {
		return err
	}
	// ComposeObject drives a server-side multipart copy; part concurrency is
	// managed by the backend, so threads is unused here.
	_, err = m.c.ComposeObject(ctx, dst, minio.CopySrcOptions{Bucket: bucket, Object: srcKey})
	return err
}

func (m *minioClient) GetObject(ctx context.Context, bucket, key string, opts Options) (io.ReadCloser, error) {
	sse, err := serverSideEncryption(opts)
	if err != nil {
		return nil, err
	}
	obj, err := m.c.GetObject(ctx, bucket, key, minio.GetObjectOptions{ServerSideEncryption: sse})
	if err != nil {
		return nil, err
	}
	// GetObject defers most errors to the first read; surface missing
	// objects eagerly so callers get ErrNotFound instead of a broken stream.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, mapNotFound(err)
	}
	return obj, nil
}

func (m *minioClient) HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	info, err := m.c.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, mapNotFound(err)
	}
	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
		Metadata:     info.UserMetadata,
	}, nil
}

func (m *minioClient) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := m.c.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func (m *minioClient) DeleteObjects(ctx context.Context, bucket string, keys []string) []KeyError {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objectsCh <- minio.ObjectInfo{Key: k}
	}
	close(objectsCh)

	var failed []KeyError
	for rerr := range m.c.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed = append(failed, KeyError{Key: rerr.ObjectName, Err: rerr.Err})
	}
	return failed
}

func (m *minioClient) ListObjects(ctx context.Context, bucket, prefix, token string) (ListPage, error) {
	// The underlying listing streams across continuation pages on its own;
	// cancelling the sub-context after one page's worth of keys re-imposes
	// token pagination on top of it.
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := m.c.ListObjects(listCtx, bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		Recursive:  true,
		StartAfter: token,
		MaxKeys:    listPageSize,
	})

	page := ListPage{}
	for obj := range ch {
		if obj.Err != nil {
			return ListPage{}, obj.Err
		}
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
		if len(page.Objects) == listPageSize {
			page.NextToken = obj.Key
			break
		}
	}
	return page, nil
}

func (m *minioClient) PresignedURL(ctx context.Context, bucket, key, method string, expires time.Duration, params url.Values) (string, error) {
	if expires <= 0 {
		expires = defaultPresignExpiry
	}
	var u *url.URL
	var err error
	switch method {
	case http.MethodPut:
		u, err = m.c.PresignedPutObject(ctx, bucket, key, expires)
	default:
		u, err = m.c.PresignedGetObject(ctx, bucket, key, expires, params)
	}
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioClient) PresignedPost(ctx context.Context, bucket, key string, expires time.Duration, opts Options) (string, map[string]string, error) {
	if expires <= 0 {
		expires = defaultPresignExpiry
	}
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(bucket); err != nil {
		return "", nil, err
	}
	if err := policy.SetKey(key); err != nil {
		return "", nil, err
	}
	if err := policy.SetExpires(time.Now().UTC().Add(expires)); err != nil {
		return "", nil, err
	}
	if ct := opts.str("content_type"); ct != "" {
		if err := policy.SetContentType(ct); err != nil {
			return "", nil, err
		}
	}
	sse, err := postEncryption(opts)
	if err != nil {
		return "", nil, err
	}
	if sse != nil {
		policy.SetEncryption(sse)
	}
	u, fields, err := m.c.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return "", nil, err
	}
	return u.String(), fields, nil
}

func (m *minioClient) PublicURL(bucket, key string) string {
	u := m.c.EndpointURL()
	return u.Scheme + "://" + u.Host + "/" + bucket + "/" + s3utils.EncodePath(key)
}

// putOptions maps adapter options onto the client's upload options.
func putOptions(opts Options) (minio.PutObjectOptions, error) {
	sse, err := serverSideEncryption(opts)
	if err != nil {
		return minio.PutObjectOptions{}, err
	}
	po := minio.PutObjectOptions{
		ContentType:          opts.str("content_type"),
		CacheControl:         opts.str("cache_control"),
		ContentDisposition:   opts.str("content_disposition"),
		ContentEncoding:      opts.str("content_encoding"),
		ContentLanguage:      opts.str("content_language"),
		StorageClass:         opts.str("storage_class"),
		UserMetadata:         opts.strMap("metadata"),
		ServerSideEncryption: sse,
	}
	if acl := opts.str("acl"); acl != "" {
		// x-amz-acl passes through as a canned ACL header, not object metadata.
		if po.UserMetadata == nil {
			po.UserMetadata = map[string]string{}
		}
		po.UserMetadata["x-amz-acl"] = acl
	}
	return po, nil
}

func copyDest(bucket, key string, opts Options) (minio.CopyDestOptions, error) {
	sse, err := serverSideEncryption(opts)
	if err != nil {
		return minio.CopyDestOptions{}, err
	}
	dst := minio.CopyDestOptions{
		Bucket:       bucket,
		Object:       key,
		UserMetadata: opts.strMap("metadata"),
		Encryption:   sse,
	}
	if len(dst.UserMetadata) > 0 {
		dst.ReplaceMetadata = true
	}
	return dst, nil
}

// serverSideEncryption builds SSE material from canonical "sse*" options.
// Invalid material (a malformed customer key, a bad KMS key id) is an error,
// never a silent fallback to plaintext.
func serverSideEncryption(opts Options) (encrypt.ServerSide, error) {
	switch opts.str("sse") {
	case "S3", "AES256":
		return encrypt.NewSSE(), nil
	case "KMS", "aws:kms":
		sse, err := encrypt.NewSSEKMS(opts.str("sse_kms_key_id"), nil)
		if err != nil {
			return nil, fmt.Errorf("sse-kms: %w", err)
		}
		return sse, nil
	case "C":
		sse, err := encrypt.NewSSEC([]byte(opts.str("sse_customer_key")))
		if err != nil {
			return nil, fmt.Errorf("sse-c: %w", err)
		}
		return sse, nil
	}
	return nil, nil
}

// postEncryption is serverSideEncryption for POST-policy presigns, which use
// the "server_side_encryption*" key convention.
func postEncryption(opts Options) (encrypt.ServerSide, error) {
	switch opts.str("server_side_encryption") {
	case "S3", "AES256":
		return encrypt.NewSSE(), nil
	case "KMS", "aws:kms":
		sse, err := encrypt.NewSSEKMS(opts.str("server_side_encryption_kms_key_id"), nil)
		if err != nil {
			return nil, fmt.Errorf("sse-kms: %w", err)
		}
		return sse, nil
	}
	return nil, nil
}

// mapNotFound converts the store's missing-object responses into ErrNotFound
// so callers can branch without knowing the wire client.
func mapNotFound(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}
