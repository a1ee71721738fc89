package mocks

import (
	"context"
	"io"

	"attachapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, r io.Reader, opts storage.Options) error {
	args := m.Called(ctx, key, r, opts)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string, opts storage.Options) ([]byte, error) {
	args := m.Called(ctx, key, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) Open(ctx context.Context, key string, opts storage.Options) (io.ReadCloser, error) {
	args := m.Called(ctx, key, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Copy(ctx context.Context, srcKey, dstKey string, opts storage.Options) error {
	args := m.Called(ctx, srcKey, dstKey, opts)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) DeletePrefixed(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *MockStorage) Clear(ctx context.Context, shouldDelete func(storage.ObjectInfo) bool) error {
	args := m.Called(ctx, shouldDelete)
	return args.Error(0)
}

func (m *MockStorage) URL(ctx context.Context, key string, opts storage.URLOptions) (string, error) {
	args := m.Called(ctx, key, opts)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Presign(ctx context.Context, key string, opts storage.PresignOptions) (*storage.Presign, error) {
	args := m.Called(ctx, key, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Presign), args.Error(1)
}
