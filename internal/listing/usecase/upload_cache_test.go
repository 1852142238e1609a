package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCache(storage *MockObjectStorage, local *memoryStorage, id domain.IdentitySource) *UploadCache {
	c := NewUploadCache(storage, local, id, nil, logger.NewNop())
	n := 0
	c.newName = func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
	return c
}

func storedImages(t *testing.T, local *memoryStorage) []domain.Image {
	t.Helper()
	raw, ok, err := local.Get(context.Background(), PendingImagesKey)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var images []domain.Image
	require.NoError(t, json.Unmarshal([]byte(raw), &images))
	return images
}

func TestUploadCache_UnsupportedMediaTypeHasNoSideEffect(t *testing.T) {
	storage := new(MockObjectStorage)
	local := newMemoryStorage()
	c := newCache(storage, local, signedIn("u1", "Ana", "ana@example.com"))

	_, err := c.AddImage(context.Background(), "anim.gif", "image/gif", []byte("GIF89a"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedMediaType)
	_, err = c.AddImage(context.Background(), "doc.pdf", "", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedMediaType)

	assert.Empty(t, c.Images())
	assert.Zero(t, local.sets)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadCache_AddImagePrependsAndPersists(t *testing.T) {
	storage := new(MockObjectStorage)
	local := newMemoryStorage()
	c := newCache(storage, local, signedIn("u1", "Ana", "ana@example.com"))

	storage.On("Upload", mock.Anything, "images/u1/n1", "image/jpeg", []byte("a")).Return("http://cdn/n1", nil).Once()
	storage.On("Upload", mock.Anything, "images/u1/n2", "image/png", []byte("b")).Return("http://cdn/n2", nil).Once()

	first, err := c.AddImage(context.Background(), "a.jpg", "image/jpeg", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, domain.Image{Name: "n1", UID: "u1", URL: "http://cdn/n1"}, first)

	_, err = c.AddImage(context.Background(), "b.png", "image/png", []byte("b"))
	require.NoError(t, err)

	images := c.Images()
	require.Len(t, images, 2)
	assert.Equal(t, "n2", images[0].Name)
	assert.Equal(t, "n1", images[1].Name)
	assert.Equal(t, images, storedImages(t, local))
	storage.AssertExpectations(t)
}

func TestUploadCache_AddImageRequiresIdentity(t *testing.T) {
	storage := new(MockObjectStorage)
	c := newCache(storage, newMemoryStorage(), staticIdentity{})

	_, err := c.AddImage(context.Background(), "a.jpg", "image/jpeg", []byte("a"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadCache_AddImageUploadFailure(t *testing.T) {
	storage := new(MockObjectStorage)
	local := newMemoryStorage()
	c := newCache(storage, local, signedIn("u1", "Ana", "ana@example.com"))
	storage.On("Upload", mock.Anything, "images/u1/n1", "image/jpeg", mock.Anything).Return("", errors.New("bucket offline")).Once()

	_, err := c.AddImage(context.Background(), "a.jpg", "image/jpeg", []byte("a"))
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
	assert.Empty(t, c.Images())
	assert.Zero(t, local.sets)
}

func TestUploadCache_AddImagePersistFailureRollsBack(t *testing.T) {
	storage := new(MockObjectStorage)
	local := newMemoryStorage()
	local.failSet = errors.New("redis down")
	c := newCache(storage, local, signedIn("u1", "Ana", "ana@example.com"))

	storage.On("Upload", mock.Anything, "images/u1/n1", "image/jpeg", mock.Anything).Return("http://cdn/n1", nil).Once()
	storage.On("Delete", mock.Anything, "images/u1/n1").Return(nil).Once()

	_, err := c.AddImage(context.Background(), "a.jpg", "image/jpeg", []byte("a"))
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
	assert.Empty(t, c.Images())
	storage.AssertExpectations(t)
}

func TestUploadCache_RemoveImage(t *testing.T) {
	storage := new(MockObjectStorage)
	local := newMemoryStorage()
	c := newCache(storage, local, signedIn("u1", "Ana", "ana@example.com"))
	storage.On("Upload", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).Return("http://cdn/x", nil).Twice()

	_, err := c.AddImage(context.Background(), "a.jpg", "image/jpeg", []byte("a"))
	require.NoError(t, err)
	_, err = c.AddImage(context.Background(), "b.jpg", "image/jpeg", []byte("b"))
	require.NoError(t, err)
	before := c.Images()

	t.Run("remote failure changes nothing", func(t *testing.T) {
		storage.On("Delete", mock.Anything, "images/u1/n1").Return(errors.New("denied")).Once()

		err := c.RemoveImage(context.Background(), "n1")
		assert.ErrorIs(t, err, domain.ErrRemoteCall)
		assert.Equal(t, before, c.Images())
		assert.Equal(t, before, storedImages(t, local))
	})

	t.Run("unknown name", func(t *testing.T) {
		err := c.RemoveImage(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("success", func(t *testing.T) {
		storage.On("Delete", mock.Anything, "images/u1/n1").Return(nil).Once()

		require.NoError(t, c.RemoveImage(context.Background(), "n1"))
		images := c.Images()
		require.Len(t, images, 1)
		assert.Equal(t, "n2", images[0].Name)
		assert.Equal(t, images, storedImages(t, local))
	})
}

func TestUploadCache_RemoveImageOfAnotherUser(t *testing.T) {
	local := newMemoryStorage()
	saved := []domain.Image{{Name: "n1", UID: "u1", URL: "http://cdn/n1"}}
	raw, err := json.Marshal(saved)
	require.NoError(t, err)
	local.data[PendingImagesKey] = string(raw)

	storage := new(MockObjectStorage)
	c := newCache(storage, local, signedIn("u2", "Bia", "bia@example.com"))
	require.NoError(t, c.Restore(context.Background()))

	err = c.RemoveImage(context.Background(), "n1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, saved, c.Images())
	assert.Equal(t, saved, storedImages(t, local))
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	signedOut := newCache(storage, local, staticIdentity{})
	require.NoError(t, signedOut.Restore(context.Background()))
	assert.ErrorIs(t, signedOut.RemoveImage(context.Background(), "n1"), domain.ErrUnauthenticated)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUploadCache_RemoveImageRetriesLocalWrite(t *testing.T) {
	storage := new(MockObjectStorage)
	local := newMemoryStorage()
	c := newCache(storage, local, signedIn("u1", "Ana", "ana@example.com"))
	storage.On("Upload", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).Return("http://cdn/x", nil).Twice()
	storage.On("Delete", mock.Anything, mock.Anything).Return(nil)

	_, err := c.AddImage(context.Background(), "a.jpg", "image/jpeg", []byte("a"))
	require.NoError(t, err)
	_, err = c.AddImage(context.Background(), "b.jpg", "image/jpeg", []byte("b"))
	require.NoError(t, err)

	local.flakySets = 1
	require.NoError(t, c.RemoveImage(context.Background(), "n1"))
	assert.Equal(t, c.Images(), storedImages(t, local))
	require.Len(t, c.Images(), 1)

	local.flakySets = 2
	err = c.RemoveImage(context.Background(), "n2")
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
	assert.Empty(t, c.Images())
}

func TestUploadCache_RestoreAndClear(t *testing.T) {
	local := newMemoryStorage()
	saved := []domain.Image{{Name: "n9", UID: "u1", URL: "http://cdn/n9"}, {Name: "n8", UID: "u1", URL: "http://cdn/n8"}}
	raw, err := json.Marshal(saved)
	require.NoError(t, err)
	local.data[PendingImagesKey] = string(raw)

	storage := new(MockObjectStorage)
	c := newCache(storage, local, signedIn("u1", "Ana", "ana@example.com"))
	require.NoError(t, c.Restore(context.Background()))
	assert.Equal(t, saved, c.Images())

	require.NoError(t, c.Clear(context.Background()))
	assert.Empty(t, c.Images())
	assert.Nil(t, storedImages(t, local))
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUploadCache_RestoreCorruptEntry(t *testing.T) {
	local := newMemoryStorage()
	local.data[PendingImagesKey] = "{not json"
	c := newCache(new(MockObjectStorage), local, staticIdentity{})

	require.NoError(t, c.Restore(context.Background()))
	assert.Empty(t, c.Images())
}

func TestUploadCache_RestoreReadFailure(t *testing.T) {
	local := newMemoryStorage()
	local.failGet = errors.New("redis down")
	c := newCache(new(MockObjectStorage), local, staticIdentity{})

	assert.ErrorIs(t, c.Restore(context.Background()), domain.ErrRemoteCall)
}
