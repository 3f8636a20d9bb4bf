package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3Client is a mock implementation of s3PutAPI.
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

// storeFunc adapts a function to ObjectStore.
type storeFunc func(ctx context.Context, key, contentType string, body []byte) (string, error)

func (f storeFunc) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	return f(ctx, key, contentType, body)
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key         string
		expected    string
		expectError bool
	}{
		{key: "profile-photos/u1/a.jpg", expected: "profile-photos/u1/a.jpg"},
		{key: "/profile-photos/u1/a.jpg", expected: "profile-photos/u1/a.jpg"},
		{key: "../etc/passwd", expectError: true},
		{key: "a/../../b", expectError: true},
		{key: `a\..\b`, expectError: true},
		{key: "", expectError: true},
		{key: "/", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cleanKey(tt.key)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestS3Store_Put(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3Client)
	store := newS3Store(client, "glamgo-photos", "uploads/", "https://glamgo-photos.s3.us-east-1.amazonaws.com", zerolog.Nop())

	var captured *s3.PutObjectInput
	client.On("PutObject", ctx, mock.AnythingOfType("*s3.PutObjectInput")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*s3.PutObjectInput)
		}).
		Return(&s3.PutObjectOutput{}, nil)

	url, err := store.Put(ctx, "profile-photos/u1/a.jpg", "image/jpeg", []byte("jpg"))

	require.NoError(t, err)
	assert.Equal(t, "https://glamgo-photos.s3.us-east-1.amazonaws.com/uploads/profile-photos/u1/a.jpg", url)
	client.AssertExpectations(t)

	require.NotNil(t, captured)
	assert.Equal(t, "glamgo-photos", aws.ToString(captured.Bucket))
	assert.Equal(t, "uploads/profile-photos/u1/a.jpg", aws.ToString(captured.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(captured.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(captured.ContentLength))
	body, err := io.ReadAll(captured.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpg", string(body))
}

func TestS3Store_PutError(t *testing.T) {
	ctx := context.Background()
	client := new(MockS3Client)
	store := newS3Store(client, "glamgo-photos", "", "https://example", zerolog.Nop())

	client.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := store.Put(ctx, "a.jpg", "image/jpeg", []byte("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3Store_RejectsBadKey(t *testing.T) {
	client := new(MockS3Client)
	store := newS3Store(client, "b", "", "https://example", zerolog.Nop())

	_, err := store.Put(context.Background(), "../x", "image/png", nil)

	assert.Error(t, err)
	client.AssertNotCalled(t, "PutObject")
}

func TestFileStore_Put(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root, "/uploads/", zerolog.Nop())

	url, err := store.Put(context.Background(), "profile-photos/u1/a.png", "image/png", []byte("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "/uploads/profile-photos/u1/a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "profile-photos", "u1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root, "/uploads", zerolog.Nop())

	_, err := store.Put(context.Background(), "../escape.png", "image/png", []byte("x"))

	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(root), "escape.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileStore(t.TempDir(), "/uploads", zerolog.Nop()).Put(ctx, "a.png", "image/png", nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackStore_PrimarySuccess(t *testing.T) {
	primary := storeFunc(func(ctx context.Context, key, contentType string, body []byte) (string, error) {
		return "https://s3/" + key, nil
	})
	fallback := storeFunc(func(ctx context.Context, key, contentType string, body []byte) (string, error) {
		t.Error("fallback store should not be called when primary succeeds")
		return "", errors.New("should not be called")
	})

	url, err := NewFallbackStore(primary, fallback, zerolog.Nop()).Put(context.Background(), "k.jpg", "image/jpeg", []byte("x"))

	require.NoError(t, err)
	assert.Equal(t, "https://s3/k.jpg", url)
}

func TestFallbackStore_PrimaryFailsFallsBack(t *testing.T) {
	primary := storeFunc(func(ctx context.Context, key, contentType string, body []byte) (string, error) {
		return "", errors.New("S3 connection failed")
	})

	var gotBody []byte
	fallback := storeFunc(func(ctx context.Context, key, contentType string, body []byte) (string, error) {
		gotBody = body
		return "/uploads/" + key, nil
	})

	url, err := NewFallbackStore(primary, fallback, zerolog.Nop()).Put(context.Background(), "k.jpg", "image/jpeg", []byte("photo"))

	require.NoError(t, err)
	assert.Equal(t, "/uploads/k.jpg", url)
	assert.Equal(t, []byte("photo"), gotBody)
}

func TestFallbackStore_NoPrimary(t *testing.T) {
	root := t.TempDir()
	store := NewFallbackStore(nil, NewFileStore(root, "/uploads", zerolog.Nop()), zerolog.Nop())

	url, err := store.Put(context.Background(), "k.jpg", "image/jpeg", []byte("x"))

	require.NoError(t, err)
	assert.Equal(t, "/uploads/k.jpg", url)
}

func TestFallbackStore_BothFail(t *testing.T) {
	failing := storeFunc(func(ctx context.Context, key, contentType string, body []byte) (string, error) {
		return "", errors.New("unavailable")
	})

	_, err := NewFallbackStore(failing, failing, zerolog.Nop()).Put(context.Background(), "k.jpg", "image/jpeg", nil)

	assert.Error(t, err)
}
