package mocks

import (
	"context"
	"io"
	"time"

	"attachapi/internal/model"
	"attachapi/internal/service"
	"attachapi/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Attachment, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) List(ctx context.Context, limit, offset int) (*service.AttachmentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttachmentListResult), args.Error(1)
}

func (m *MockAttachmentService) Get(ctx context.Context, id string) (*model.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttachmentService) URL(ctx context.Context, id string, opts storage.URLOptions) (string, error) {
	args := m.Called(ctx, id, opts)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentService) PresignUpload(ctx context.Context, originalFilename, method string, expiresIn time.Duration) (*service.PresignedUpload, error) {
	args := m.Called(ctx, originalFilename, method, expiresIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PresignedUpload), args.Error(1)
}

func (m *MockAttachmentService) Duplicate(ctx context.Context, id string) (*model.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Purge(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
