package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Signer produces a signed URL from a base object URL. It is a capability:
// anything that can sign qualifies, the adapter never interprets the result.
type Signer interface {
	Sign(rawURL string, opts URLOptions) (string, error)
}

// SignerFunc adapts a plain function to the Signer interface.
type SignerFunc func(rawURL string, opts URLOptions) (string, error)

func (f SignerFunc) Sign(rawURL string, opts URLOptions) (string, error) { return f(rawURL, opts) }

// URL produces an access URL for the object. Decision order: explicit host
// (CDN/proxy, never signed), external signer, public unsigned URL, signed URL
// from the store client. Per-call Public/Signed overrides beat the configured
// default visibility.
func (s *S3) URL(ctx context.Context, key string, opts URLOptions) (string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	host := opts.Host
	if host == "" {
		host = s.host
	}
	if host != "" {
		if !strings.HasSuffix(host, "/") {
			return "", &ConfigError{Reason: fmt.Sprintf("host %q must end with a path separator", host)}
		}
		return host + encodePath(full), nil
	}

	if s.signer != nil {
		return s.signer.Sign(s.client.PublicURL(s.bucket, full), opts)
	}

	public := s.public
	if opts.Public != nil {
		public = *opts.Public
	}
	if public && !opts.Signed {
		return s.client.PublicURL(s.bucket, full), nil
	}

	signed, err := s.client.PresignedURL(ctx, s.bucket, full, http.MethodGet, opts.ExpiresIn, opts.Query)
	if err != nil {
		return "", &OpError{Op: "sign url", Key: full, Err: err}
	}
	return signed, nil
}

// Presign produces direct-upload parameters. Only the configured upload
// defaults and encryption parameters apply here besides opts.Options;
// encryption keys are translated to the naming convention of the chosen
// method before they reach the client.
func (s *S3) Presign(ctx context.Context, key string, opts PresignOptions) (*Presign, error) {
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	method := strings.ToLower(opts.Method)
	if method == "" {
		method = "put"
	}

	switch method {
	case "put":
		merged := Merge(s.defaults, translateEncryption(s.encryption, false), translateEncryption(opts.Options, false))
		signed, err := s.client.PresignedURL(ctx, s.bucket, full, http.MethodPut, opts.ExpiresIn, nil)
		if err != nil {
			return nil, &OpError{Op: "presign", Key: full, Err: err}
		}
		return &Presign{
			URL:     signed,
			Fields:  map[string]string{},
			Headers: presignHeaders(merged),
			Method:  "put",
		}, nil
	case "post":
		merged := Merge(s.defaults, translateEncryption(s.encryption, true), translateEncryption(opts.Options, true))
		postURL, fields, err := s.client.PresignedPost(ctx, s.bucket, full, opts.ExpiresIn, merged)
		if err != nil {
			return nil, &OpError{Op: "presign", Key: full, Err: err}
		}
		if fields == nil {
			fields = map[string]string{}
		}
		return &Presign{
			URL:     postURL,
			Fields:  fields,
			Headers: map[string]string{},
			Method:  "post",
		}, nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unsupported presign method %q", opts.Method)}
	}
}

// presignHeaders converts upload options into the headers a client must send
// alongside a PUT-style presigned upload for the store to accept it.
func presignHeaders(opts Options) map[string]string {
	h := map[string]string{}
	if v := opts.str("content_type"); v != "" {
		h["Content-Type"] = v
	}
	if v := opts.str("cache_control"); v != "" {
		h["Cache-Control"] = v
	}
	if v := opts.str("content_disposition"); v != "" {
		h["Content-Disposition"] = v
	}
	if v := opts.str("content_encoding"); v != "" {
		h["Content-Encoding"] = v
	}
	if v := opts.str("acl"); v != "" {
		h["x-amz-acl"] = v
	}
	switch opts.str("sse") {
	case "S3":
		h["x-amz-server-side-encryption"] = "AES256"
	case "KMS":
		h["x-amz-server-side-encryption"] = "aws:kms"
		if id := opts.str("sse_kms_key_id"); id != "" {
			h["x-amz-server-side-encryption-aws-kms-key-id"] = id
		}
	}
	return h
}

// encodePath percent-encodes a store key per path-segment rules, preserving
// the "/" separators.
func encodePath(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
