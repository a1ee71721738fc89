package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestS3_URL(t *testing.T) {
	ctx := context.Background()

	t.Run("public config returns unsigned URL", func(t *testing.T) {
		s, _ := newTestStorage(t, func(c *S3Config) { c.Public = true; c.Prefix = "store" })
		u, err := s.URL(ctx, "k", URLOptions{})
		require.NoError(t, err)
		assert.Equal(t, "https://test-bucket.s3.example.com/store/k", u)
		assert.NotContains(t, u, "X-Amz-Signature")
	})

	t.Run("private config returns signed URL", func(t *testing.T) {
		s, _ := newTestStorage(t, nil)
		u, err := s.URL(ctx, "k", URLOptions{ExpiresIn: time.Hour})
		require.NoError(t, err)
		assert.Contains(t, u, "X-Amz-Signature")
		assert.Contains(t, u, "X-Amz-Expires=3600")
	})

	t.Run("per-call public override", func(t *testing.T) {
		s, _ := newTestStorage(t, nil)
		u, err := s.URL(ctx, "k", URLOptions{Public: boolPtr(true)})
		require.NoError(t, err)
		assert.NotContains(t, u, "X-Amz-Signature")
	})

	t.Run("signed forces signing for public objects", func(t *testing.T) {
		s, _ := newTestStorage(t, func(c *S3Config) { c.Public = true })
		u, err := s.URL(ctx, "k", URLOptions{Signed: true})
		require.NoError(t, err)
		assert.Contains(t, u, "X-Amz-Signature")
	})

	t.Run("host replaces the store endpoint exactly", func(t *testing.T) {
		s, _ := newTestStorage(t, func(c *S3Config) { c.Public = true })
		u, err := s.URL(ctx, "k", URLOptions{Host: "https://cdn.example.com/assets/"})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/assets/k", u)
	})

	t.Run("host includes the resolved prefix", func(t *testing.T) {
		s, _ := newTestStorage(t, func(c *S3Config) {
			c.Prefix = "store"
			c.Host = "https://cdn.example.com/"
		})
		u, err := s.URL(ctx, "my file.txt", URLOptions{})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/store/my%20file.txt", u)
	})

	t.Run("host without trailing separator fails", func(t *testing.T) {
		s, _ := newTestStorage(t, nil)
		_, err := s.URL(ctx, "k", URLOptions{Host: "https://cdn.example.com/assets"})
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("external signer result returned verbatim", func(t *testing.T) {
		var sawURL string
		s, _ := newTestStorage(t, func(c *S3Config) {
			c.Signer = SignerFunc(func(rawURL string, opts URLOptions) (string, error) {
				sawURL = rawURL
				return rawURL + "?sig=custom", nil
			})
		})
		u, err := s.URL(ctx, "k", URLOptions{})
		require.NoError(t, err)
		assert.Equal(t, "https://test-bucket.s3.example.com/k", sawURL)
		assert.Equal(t, "https://test-bucket.s3.example.com/k?sig=custom", u)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		s, _ := newTestStorage(t, nil)
		_, err := s.URL(ctx, "", URLOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestS3_Presign(t *testing.T) {
	ctx := context.Background()

	t.Run("put style returns headers and no fields", func(t *testing.T) {
		s, _ := newTestStorage(t, func(c *S3Config) {
			c.UploadOptions = Options{"acl": "private", "cache_control": "max-age=300"}
			c.Encryption = Options{"sse": "KMS", "sse_kms_key_id": "key-1"}
		})
		p, err := s.Presign(ctx, "k", PresignOptions{Options: Options{"content_type": "image/png"}})
		require.NoError(t, err)

		assert.Equal(t, "put", p.Method)
		assert.Empty(t, p.Fields)
		assert.Contains(t, p.URL, "method=PUT")
		assert.Equal(t, "image/png", p.Headers["Content-Type"])
		assert.Equal(t, "max-age=300", p.Headers["Cache-Control"])
		assert.Equal(t, "private", p.Headers["x-amz-acl"])
		assert.Equal(t, "aws:kms", p.Headers["x-amz-server-side-encryption"])
		assert.Equal(t, "key-1", p.Headers["x-amz-server-side-encryption-aws-kms-key-id"])
	})

	t.Run("post style returns fields and no headers", func(t *testing.T) {
		s, client := newTestStorage(t, func(c *S3Config) {
			c.Encryption = Options{"sse": "S3"}
		})
		p, err := s.Presign(ctx, "k", PresignOptions{Method: "post"})
		require.NoError(t, err)

		assert.Equal(t, "post", p.Method)
		assert.Empty(t, p.Headers)
		assert.Equal(t, "k", p.Fields["key"])

		// Encryption keys reach the client in the POST naming convention.
		assert.Equal(t, "S3", client.presignOpts.str("server_side_encryption"))
		assert.NotContains(t, client.presignOpts, "sse")
	})

	t.Run("per-call options override presign defaults", func(t *testing.T) {
		s, _ := newTestStorage(t, func(c *S3Config) {
			c.UploadOptions = Options{"content_type": "application/octet-stream"}
		})
		p, err := s.Presign(ctx, "k", PresignOptions{Options: Options{"content_type": "text/csv"}})
		require.NoError(t, err)
		assert.Equal(t, "text/csv", p.Headers["Content-Type"])
	})

	t.Run("unsupported method fails", func(t *testing.T) {
		s, _ := newTestStorage(t, nil)
		_, err := s.Presign(ctx, "k", PresignOptions{Method: "delete"})
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestEncodePath(t *testing.T) {
	assert.Equal(t, "a/b/c", encodePath("a/b/c"))
	assert.Equal(t, "store/my%20file.txt", encodePath("store/my file.txt"))
	assert.True(t, strings.Contains(encodePath("a/b+c"), "/"))
}
