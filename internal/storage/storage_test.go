package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportkit/go-docfill/internal/config"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "reports/out.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "reports/out.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "reports/out.pdf", []byte("%PDF"), "application/pdf"))
	require.NoError(t, store.Put(ctx, "reports/out.pdf", []byte("%PDF-2"), "application/pdf"))

	data, err := store.Get(ctx, "reports/out.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-2", string(data))

	ok, err = store.Exists(ctx, "reports/out.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "reports")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../secret", "/etc/passwd", "a/../../b"} {
		_, err := store.Get(ctx, key)
		assert.Error(t, err, key)
		assert.NotErrorIs(t, err, ErrNotFound, key)
		assert.Error(t, store.Put(ctx, key, nil, ""), key)
	}
}

func TestNewFileStoreErrors(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)

	_, err = NewFileStore(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewFileStore(file)
	assert.Error(t, err)
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	fail    error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store, err := NewS3Store(ctx, config.S3Config{Bucket: "reports", Prefix: "/tenant-a/"}, withClient(fake))
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "out.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "out.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "out.pdf", []byte("%PDF"), "application/pdf"))
	assert.Equal(t, []byte("%PDF"), fake.objects["tenant-a/out.pdf"])
	assert.Equal(t, "application/pdf", fake.types["tenant-a/out.pdf"])

	data, err := store.Get(ctx, "out.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	ok, err = store.Exists(ctx, "out.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestS3StoreErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3Store(ctx, config.S3Config{})
	assert.Error(t, err)

	fake := newFakeS3()
	fake.fail = errors.New("access denied")
	store, err := NewS3Store(ctx, config.S3Config{Bucket: "reports"}, withClient(fake))
	require.NoError(t, err)

	_, err = store.Get(ctx, "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, store.Put(ctx, "x", nil, ""))
	_, err = store.Exists(ctx, "x")
	assert.Error(t, err)
	_, err = store.Get(ctx, "")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.StorageConfig{Kind: "file", Root: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = New(ctx, config.StorageConfig{Kind: "ftp"}, nil)
	assert.Error(t, err)
}
