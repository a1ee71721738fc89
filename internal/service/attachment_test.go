package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"attachapi/internal/model"
	repoMocks "attachapi/internal/repository/mocks"
	"attachapi/internal/storage"
	storeMocks "attachapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAttachmentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		originalFilename string
		contentType      string
		size             int64
		setupMocks       func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockAttachmentRepository) io.Reader
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			originalFilename: "test.txt",
			contentType:      "text/plain",
			size:             11,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockAttachmentRepository) io.Reader {
				r := strings.NewReader("hello world")
				mStore.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "attachments/") && strings.HasSuffix(key, ".txt")
				}), r, storage.Options{
					"size":         int64(11),
					"content_type": "text/plain",
					"metadata":     map[string]string{"original-filename": "test.txt"},
				}).Return(nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(att *model.Attachment) bool {
					return att.Filename != "" && strings.HasPrefix(att.Key, "attachments/")
				})).Return(&model.Attachment{ID: "gen-id"}, nil)

				return r
			},
			wantErr: nil,
		},
		{
			name:             "validation error - nil reader",
			originalFilename: "test.txt",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockAttachmentRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:             "storage error",
			originalFilename: "test.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockAttachmentRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Upload", ctx, mock.Anything, r, mock.Anything).
					Return(errors.New("storage fail"))
				return r
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:             "repository error with successful rollback",
			originalFilename: "test.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockAttachmentRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Upload", ctx, mock.Anything, r, mock.Anything).Return(nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "repository error with failed rollback",
			originalFilename: "test.txt",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockAttachmentRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Upload", ctx, mock.Anything, r, mock.Anything).Return(nil)
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockAttachmentRepository)
			svc := NewAttachmentService(mStore, mRepo)

			r := tt.setupMocks(mStore, mRepo)

			att, err := svc.Upload(ctx, r, tt.originalFilename, tt.contentType, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, att)
			} else if tt.wantErrMsg != "" {
				assert.ErrorContains(t, err, tt.wantErrMsg)
				assert.Nil(t, att)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, att)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestAttachmentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Attachment{ID: "id-1", Key: "attachments/a.txt"}, nil)

		att, err := svc.Get(ctx, "id-1")
		assert.NoError(t, err)
		assert.Equal(t, "id-1", att.ID)
	})

	t.Run("not found translated", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, err := svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewAttachmentService(new(storeMocks.MockStorage), new(repoMocks.MockAttachmentRepository))
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestAttachmentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("storage then repository", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Attachment{ID: "id-1", Key: "attachments/a.txt"}, nil)
		mStore.On("Delete", ctx, "attachments/a.txt").Return(nil)
		mRepo.On("Delete", ctx, "id-1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "id-1"))
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("storage failure keeps the row", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Attachment{ID: "id-1", Key: "attachments/a.txt"}, nil)
		mStore.On("Delete", ctx, "attachments/a.txt").Return(errors.New("boom"))

		err := svc.Delete(ctx, "id-1")
		assert.ErrorContains(t, err, "delete storage")
		mRepo.AssertNotCalled(t, "Delete", ctx, "id-1")
	})
}

func TestAttachmentService_URL(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockAttachmentRepository)
	svc := NewAttachmentService(mStore, mRepo)

	opts := storage.URLOptions{ExpiresIn: time.Hour}
	mRepo.On("FindByID", ctx, "id-1").
		Return(&model.Attachment{ID: "id-1", Key: "attachments/a.txt"}, nil)
	mStore.On("URL", ctx, "attachments/a.txt", opts).
		Return("https://signed.example.com/a.txt", nil)

	u, err := svc.URL(ctx, "id-1", opts)
	assert.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/a.txt", u)
}

func TestAttachmentService_PresignUpload(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockAttachmentRepository)
	svc := NewAttachmentService(mStore, mRepo)

	// Per-request upload options must not reach the presign call; only the
	// method and expiry do.
	mStore.On("Presign", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "attachments/") && strings.HasSuffix(key, ".png")
	}), storage.PresignOptions{Method: "post", ExpiresIn: time.Minute}).
		Return(&storage.Presign{
			URL:    "https://bucket.s3.example.com/",
			Fields: map[string]string{"key": "attachments/x.png"},
			Method: "post",
		}, nil)

	p, err := svc.PresignUpload(ctx, "avatar.png", "post", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, "post", p.Method)
	assert.NotEmpty(t, p.Key)
	assert.Equal(t, "https://bucket.s3.example.com/", p.URL)
	mStore.AssertExpectations(t)
}

func TestAttachmentService_Duplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("copies object and creates row", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		src := &model.Attachment{
			ID:          "id-1",
			Filename:    "a.txt",
			Key:         "attachments/a.txt",
			Size:        42,
			ContentType: "text/plain",
		}
		mRepo.On("FindByID", ctx, "id-1").Return(src, nil)
		mStore.On("Copy", ctx, "attachments/a.txt", mock.MatchedBy(func(dst string) bool {
			return strings.HasPrefix(dst, "attachments/") && dst != src.Key
		}), storage.Options{"size": int64(42)}).Return(nil)
		mRepo.On("Create", ctx, mock.MatchedBy(func(att *model.Attachment) bool {
			return att.Size == 42 && att.ContentType == "text/plain" && att.Key != src.Key
		})).Return(&model.Attachment{ID: "id-2"}, nil)

		dup, err := svc.Duplicate(ctx, "id-1")
		assert.NoError(t, err)
		assert.Equal(t, "id-2", dup.ID)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("copy failure", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		mRepo.On("FindByID", ctx, "id-1").
			Return(&model.Attachment{ID: "id-1", Key: "attachments/a.txt"}, nil)
		mStore.On("Copy", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("copy fail"))

		_, err := svc.Duplicate(ctx, "id-1")
		assert.ErrorContains(t, err, "copy in storage")
	})
}

func TestAttachmentService_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("storage then metadata", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		mStore.On("DeletePrefixed", ctx, "attachments").Return(nil)
		mRepo.On("DeleteAll", ctx).Return(int64(3), nil)

		assert.NoError(t, svc.Purge(ctx))
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("partial storage failure aborts metadata wipe", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockAttachmentRepository)
		svc := NewAttachmentService(mStore, mRepo)

		partial := &storage.PartialDeleteError{Failed: []storage.KeyError{{Key: "attachments/a", Err: errors.New("denied")}}}
		mStore.On("DeletePrefixed", ctx, "attachments").Return(partial)

		err := svc.Purge(ctx)
		var got *storage.PartialDeleteError
		assert.ErrorAs(t, err, &got)
		mRepo.AssertNotCalled(t, "DeleteAll", ctx)
	})
}
