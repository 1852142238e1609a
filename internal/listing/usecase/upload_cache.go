package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/Abdurahmanit/webimoveis/internal/platform/metrics"
	"github.com/google/uuid"
)

// PendingImagesKey is the local storage key of the draft's uploaded images.
const PendingImagesKey = "propertyImages"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// UploadCache holds the images uploaded for a listing that has not been
// created yet. The remote store is written first; memory and local storage
// only follow a successful remote call. All mutations are serialized.
type UploadCache struct {
	storage  domain.ObjectStorage
	local    domain.LocalStorage
	identity domain.IdentitySource
	logger   *logger.Logger
	metrics  *metrics.MetricsManager
	newName  func() string

	mu     sync.Mutex
	images []domain.Image
}

func NewUploadCache(storage domain.ObjectStorage, local domain.LocalStorage, identity domain.IdentitySource, m *metrics.MetricsManager, log *logger.Logger) *UploadCache {
	return &UploadCache{
		storage:  storage,
		local:    local,
		identity: identity,
		logger:   log,
		metrics:  m,
		newName:  uuid.NewString,
		images:   []domain.Image{},
	}
}

// Restore reloads the sequence saved in local storage. Nothing is uploaded.
// A corrupt entry is logged and treated as empty.
func (c *UploadCache) Restore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.local.Get(ctx, PendingImagesKey)
	if err != nil {
		c.logger.Error("UploadCache.Restore: failed to read local storage", "error", err.Error())
		return domain.RemoteCallFailure("read pending images", err)
	}
	if !ok || raw == "" {
		c.images = []domain.Image{}
		return nil
	}

	var images []domain.Image
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		c.logger.Warn("UploadCache.Restore: ignoring corrupt pending images", "error", err.Error())
		c.images = []domain.Image{}
		return nil
	}
	if images == nil {
		images = []domain.Image{}
	}
	c.images = images
	c.logger.Info("UploadCache.Restore: restored pending images", "count", len(images))
	return nil
}

// AddImage uploads a jpeg or png and puts it first in the sequence.
func (c *UploadCache) AddImage(ctx context.Context, fileName, contentType string, data []byte) (domain.Image, error) {
	if !isAllowedImage(contentType) {
		c.logger.Warn("UploadCache.AddImage: rejected file", "file_name", fileName, "content_type", contentType)
		return domain.Image{}, domain.ErrUnsupportedMediaType
	}
	id := c.identity.Identity()
	if id == nil {
		return domain.Image{}, domain.ErrUnauthenticated
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	img := domain.Image{Name: c.newName(), UID: id.UID}
	url, err := c.storage.Upload(ctx, img.ObjectPath(), contentType, data)
	if err != nil {
		c.logger.Error("UploadCache.AddImage: upload failed", "path", img.ObjectPath(), "error", err.Error())
		return domain.Image{}, domain.RemoteCallFailure("upload image", err)
	}
	img.URL = url

	next := make([]domain.Image, 0, len(c.images)+1)
	next = append(next, img)
	next = append(next, c.images...)

	if err := c.persist(ctx, next); err != nil {
		c.logger.Error("UploadCache.AddImage: failed to save pending images, removing upload",
			"path", img.ObjectPath(), "error", err.Error())
		if derr := c.storage.Delete(ctx, img.ObjectPath()); derr != nil {
			c.logger.Warn("UploadCache.AddImage: orphaned upload", "path", img.ObjectPath(), "error", derr.Error())
		}
		return domain.Image{}, domain.RemoteCallFailure("save pending images", err)
	}

	c.images = next
	c.metrics.ImageUploaded()
	c.logger.Info("UploadCache.AddImage: image uploaded", "file_name", fileName, "name", img.Name, "uid", img.UID)
	return img, nil
}

// RemoveImage deletes the stored object first. The sequence only changes
// when that succeeds. Only the uploader may remove an image.
func (c *UploadCache) RemoveImage(ctx context.Context, name string) error {
	id := c.identity.Identity()
	if id == nil {
		return domain.ErrUnauthenticated
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, img := range c.images {
		if img.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("image %s: %w", name, domain.ErrNotFound)
	}
	img := c.images[idx]
	if img.UID != id.UID {
		c.logger.Warn("UploadCache.RemoveImage: image belongs to another user", "name", name, "image_uid", img.UID, "uid", id.UID)
		return domain.ErrForbidden
	}

	if err := c.storage.Delete(ctx, img.ObjectPath()); err != nil {
		c.logger.Error("UploadCache.RemoveImage: remote delete failed", "path", img.ObjectPath(), "error", err.Error())
		return domain.RemoteCallFailure("delete image", err)
	}

	next := make([]domain.Image, 0, len(c.images)-1)
	next = append(next, c.images[:idx]...)
	next = append(next, c.images[idx+1:]...)
	// The object is gone, so memory follows even if local storage lags.
	c.images = next
	c.metrics.ImageRemoved()

	if err := c.persist(ctx, next); err != nil {
		c.logger.Warn("UploadCache.RemoveImage: failed to save pending images, retrying", "error", err.Error())
		if err := c.persist(ctx, next); err != nil {
			c.logger.Error("UploadCache.RemoveImage: failed to save pending images", "error", err.Error())
			return domain.RemoteCallFailure("save pending images", err)
		}
	}
	c.logger.Info("UploadCache.RemoveImage: image removed", "name", name)
	return nil
}

// Clear forgets the sequence without deleting objects, which now belong to
// the created listing.
func (c *UploadCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.local.Delete(ctx, PendingImagesKey); err != nil {
		c.logger.Error("UploadCache.Clear: failed to clear local storage", "error", err.Error())
		return domain.RemoteCallFailure("clear pending images", err)
	}
	c.images = []domain.Image{}
	return nil
}

// Images returns a copy of the sequence, most recent first.
func (c *UploadCache) Images() []domain.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Image{}, c.images...)
}

func (c *UploadCache) persist(ctx context.Context, images []domain.Image) error {
	data, err := json.Marshal(images)
	if err != nil {
		return err
	}
	return c.local.Set(ctx, PendingImagesKey, string(data))
}

func isAllowedImage(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return allowedImageTypes[strings.ToLower(mt)]
}
