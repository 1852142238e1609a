package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/listing/snapshot"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/Abdurahmanit/webimoveis/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

// ResultSet is a visible list of listings that must forget deleted records.
type ResultSet interface {
	Evict(id string)
}

// PendingImages is the draft image sequence consumed by Submit.
type PendingImages interface {
	Images() []domain.Image
	Clear(ctx context.Context) error
}

type ListingUsecase struct {
	repo      domain.ListingRepository
	storage   domain.ObjectStorage
	publisher domain.EventPublisher // optional
	mailer    domain.Mailer         // optional
	logger    *logger.Logger
	metrics   *metrics.MetricsManager
	tracer    trace.Tracer

	mu         sync.RWMutex
	resultSets []ResultSet
}

func NewListingUsecase(
	repo domain.ListingRepository,
	storage domain.ObjectStorage,
	publisher domain.EventPublisher,
	mailer domain.Mailer,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		mailer:    mailer,
		logger:    log,
		metrics:   m,
		tracer:    otel.Tracer("webimoveis/listing/usecase"),
	}
}

// RegisterResultSet makes rs forget listings deleted through this usecase.
func (uc *ListingUsecase) RegisterResultSet(rs ResultSet) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.resultSets = append(uc.resultSets, rs)
}

// Create validates the draft and writes the listing in a single call. The
// store assigns ID and Created.
func (uc *ListingUsecase) Create(ctx context.Context, draft domain.Draft, images []domain.Image, owner *domain.Identity) (*domain.Listing, error) {
	ctx, span := uc.tracer.Start(ctx, "ListingUsecase.Create")
	defer span.End()

	if owner == nil {
		return nil, domain.ErrUnauthenticated
	}
	for _, img := range images {
		if img.UID != owner.UID {
			uc.logger.Warn("ListingUsecase.Create: image belongs to another user", "uid", owner.UID, "image_uid", img.UID, "name", img.Name)
			return nil, domain.ErrForbidden
		}
	}

	verr := &domain.ValidationError{}
	if err := draft.Validate(); err != nil {
		var fields *domain.ValidationError
		if errors.As(err, &fields) {
			verr = fields
		}
	}
	if len(images) == 0 {
		verr.Add("images", "add at least one image")
	}
	if !verr.Empty() {
		uc.logger.Warn("ListingUsecase.Create: rejected draft", "uid", owner.UID, "error", verr.Error())
		return nil, verr
	}

	listing := draft.ToListing()
	listing.Owner = owner.DisplayName()
	listing.UID = owner.UID
	listing.Images = append([]domain.Image{}, images...)

	uc.logger.Info("ListingUsecase.Create: creating new listing",
		"uid", owner.UID, "title", listing.Title, "city", listing.City, "images", len(images))

	if err := uc.repo.Add(ctx, listing); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.logger.Error("ListingUsecase.Create: failed to create listing", "uid", owner.UID, "error", err.Error())
		return nil, domain.RemoteCallFailure("create listing", err)
	}
	span.SetAttributes(attribute.String("listing.id", listing.ID))
	uc.metrics.ListingCreated()

	uc.publish(ctx, domain.SubjectListingCreated, domain.ListingEvent{
		ListingID:  listing.ID,
		UID:        listing.UID,
		Title:      listing.Title,
		City:       listing.City,
		Price:      listing.Price,
		Images:     len(listing.Images),
		OccurredAt: time.Now().UTC(),
	})
	if uc.mailer != nil && owner.Email != nil {
		if err := uc.mailer.SendListingCreatedEmail(*owner.Email, listing.Title); err != nil {
			uc.logger.Warn("ListingUsecase.Create: failed to send confirmation email", "listing_id", listing.ID, "error", err.Error())
		}
	}
	return listing, nil
}

// Submit creates the listing from the owner's pending images and clears the
// cache once the listing exists. Images uploaded by another user are left out.
func (uc *ListingUsecase) Submit(ctx context.Context, draft domain.Draft, pending PendingImages, owner *domain.Identity) (*domain.Listing, error) {
	var images []domain.Image
	if owner != nil {
		for _, img := range pending.Images() {
			if img.UID == owner.UID {
				images = append(images, img)
			}
		}
	}
	listing, err := uc.Create(ctx, draft, images, owner)
	if err != nil {
		return nil, err
	}
	if err := pending.Clear(ctx); err != nil {
		uc.logger.Warn("ListingUsecase.Submit: listing created but pending images were not cleared",
			"listing_id", listing.ID, "error", err.Error())
	}
	return listing, nil
}

// GetByID loads one listing for the detail page.
func (uc *ListingUsecase) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	doc, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("ListingUsecase.GetByID: listing not found", "listing_id", id)
			return nil, domain.ErrNotFound
		}
		uc.logger.Error("ListingUsecase.GetByID: failed to fetch listing", "listing_id", id, "error", err.Error())
		return nil, domain.RemoteCallFailure("get listing", err)
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return snapshot.MapDocument(*doc), nil
}

// Delete removes the record, then every image independently. Image failures
// do not stop the others and are reported as a *domain.PartialDeleteError.
func (uc *ListingUsecase) Delete(ctx context.Context, listing *domain.Listing) error {
	ctx, span := uc.tracer.Start(ctx, "ListingUsecase.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", listing.ID))

	uc.logger.Info("ListingUsecase.Delete: deleting listing", "listing_id", listing.ID, "images", len(listing.Images))

	if err := uc.repo.Delete(ctx, listing.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.logger.Error("ListingUsecase.Delete: failed to delete listing in repo", "listing_id", listing.ID, "error", err.Error())
		return domain.RemoteCallFailure("delete listing", err)
	}
	uc.evict(listing.ID)

	var (
		errs   error
		failed []string
	)
	for _, img := range listing.Images {
		path := img.ObjectPath()
		if err := uc.storage.Delete(ctx, path); err != nil {
			uc.logger.Error("ListingUsecase.Delete: failed to delete image", "listing_id", listing.ID, "path", path, "error", err.Error())
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			failed = append(failed, path)
		}
	}
	uc.metrics.ListingDeleted(len(failed))

	uc.publish(ctx, domain.SubjectListingDeleted, domain.ListingEvent{
		ListingID:    listing.ID,
		UID:          listing.UID,
		Images:       len(listing.Images),
		FailedImages: failed,
		OccurredAt:   time.Now().UTC(),
	})

	if errs != nil {
		span.SetStatus(codes.Error, "some images were not removed")
		return domain.NewPartialDeleteError(listing.ID, failed, errs)
	}
	return nil
}

// DeleteByID deletes a listing on behalf of requester, who must own it.
func (uc *ListingUsecase) DeleteByID(ctx context.Context, id string, requester *domain.Identity) error {
	if requester == nil {
		return domain.ErrUnauthenticated
	}
	listing, err := uc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.UID != requester.UID {
		uc.logger.Warn("ListingUsecase.DeleteByID: forbidden to delete listing",
			"listing_id", id, "listing_owner_id", listing.UID, "uid", requester.UID)
		return domain.ErrForbidden
	}
	return uc.Delete(ctx, listing)
}

func (uc *ListingUsecase) evict(id string) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for _, rs := range uc.resultSets {
		rs.Evict(id)
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, event domain.ListingEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("ListingUsecase.publish: failed to publish event", "subject", subject, "listing_id", event.ListingID, "error", err.Error())
	}
}
