package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validDraft() domain.Draft {
	return domain.Draft{
		Title:        "Apartamento com vista",
		Address:      "Rua das Flores, 10",
		Area:         "80,00",
		Rooms:        "2",
		Bathrooms:    "1",
		ParkingSpace: "1",
		Modality:     "sale",
		Price:        "950,00",
		IPTU:         "",
		Cond:         "30000",
		City:         "Rio de Janeiro",
		Neighborhood: "Botafogo",
		Whatsapp:     "(21) 98765-4321",
		Description:  "Bem localizado",
	}
}

type fixture struct {
	repo      *MockListingRepository
	storage   *MockObjectStorage
	publisher *MockEventPublisher
	mailer    *MockMailer
	uc        *ListingUsecase
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockListingRepository),
		storage:   new(MockObjectStorage),
		publisher: new(MockEventPublisher),
		mailer:    new(MockMailer),
	}
	f.uc = NewListingUsecase(f.repo, f.storage, f.publisher, f.mailer, nil, logger.NewNop())
	return f
}

func owner() *domain.Identity {
	return signedIn("u1", "Ana", "ana@example.com").id
}

func TestListingUsecase_CreateNormalizesAndWrites(t *testing.T) {
	f := newFixture()
	images := []domain.Image{{Name: "n1", UID: "u1", URL: "http://cdn/n1"}}

	f.repo.On("Add", mock.Anything, mock.AnythingOfType("*domain.Listing")).
		Run(func(args mock.Arguments) {
			l := args.Get(1).(*domain.Listing)
			l.ID = "generated"
			l.Created = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		}).
		Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, domain.SubjectListingCreated, mock.AnythingOfType("domain.ListingEvent")).Return(nil).Once()
	f.mailer.On("SendListingCreatedEmail", "ana@example.com", "Apartamento com vista").Return(nil).Once()

	l, err := f.uc.Create(context.Background(), validDraft(), images, owner())
	require.NoError(t, err)

	assert.Equal(t, "generated", l.ID)
	assert.Equal(t, "RIO DE JANEIRO", l.City)
	assert.Equal(t, "BOTAFOGO", l.Neighborhood)
	assert.Equal(t, "RUA DAS FLORES, 10", l.Address)
	assert.Equal(t, 950.0, l.Price)
	assert.Equal(t, "", l.IPTU)
	assert.Equal(t, "R$ 300,00", l.Cond)
	assert.Equal(t, int64(21987654321), l.Tel)
	assert.Equal(t, "Ana", l.Owner)
	assert.Equal(t, "u1", l.UID)
	assert.Equal(t, images, l.Images)
	f.repo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestListingUsecase_CreateWithoutImagesWritesNothing(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Create(context.Background(), validDraft(), nil, owner())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "images")
	f.repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestListingUsecase_CreateCollectsDraftErrors(t *testing.T) {
	f := newFixture()
	d := validDraft()
	d.Rooms = "0"
	d.Whatsapp = "(21) 9876"

	_, err := f.uc.Create(context.Background(), d, nil, owner())
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "rooms")
	assert.Contains(t, verr.Fields, "whatsapp")
	assert.Contains(t, verr.Fields, "images")
	f.repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestListingUsecase_CreateRequiresOwner(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Create(context.Background(), validDraft(), []domain.Image{{Name: "n"}}, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestListingUsecase_CreateBackendFailure(t *testing.T) {
	f := newFixture()
	f.repo.On("Add", mock.Anything, mock.Anything).Return(errors.New("write conflict")).Once()

	_, err := f.uc.Create(context.Background(), validDraft(), []domain.Image{{Name: "n1", UID: "u1"}}, owner())
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	f.mailer.AssertNotCalled(t, "SendListingCreatedEmail", mock.Anything, mock.Anything)
}

func TestListingUsecase_CreateIgnoresNotificationFailures(t *testing.T) {
	f := newFixture()
	f.repo.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down")).Once()
	f.mailer.On("SendListingCreatedEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	_, err := f.uc.Create(context.Background(), validDraft(), []domain.Image{{Name: "n1", UID: "u1"}}, owner())
	assert.NoError(t, err)
}

type fakePending struct {
	images   []domain.Image
	cleared  bool
	clearErr error
}

func (p *fakePending) Images() []domain.Image { return p.images }
func (p *fakePending) Clear(ctx context.Context) error {
	if p.clearErr != nil {
		return p.clearErr
	}
	p.cleared = true
	return nil
}

func TestListingUsecase_SubmitClearsPendingImages(t *testing.T) {
	f := newFixture()
	f.repo.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendListingCreatedEmail", mock.Anything, mock.Anything).Return(nil)

	pending := &fakePending{images: []domain.Image{{Name: "n1", UID: "u1"}}}
	_, err := f.uc.Submit(context.Background(), validDraft(), pending, owner())
	require.NoError(t, err)
	assert.True(t, pending.cleared)

	failed := &fakePending{}
	_, err = f.uc.Submit(context.Background(), validDraft(), failed, owner())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, failed.cleared)
}

func TestListingUsecase_CreateRejectsImagesOfAnotherUser(t *testing.T) {
	f := newFixture()
	images := []domain.Image{{Name: "n1", UID: "u1"}, {Name: "n2", UID: "u2"}}

	_, err := f.uc.Create(context.Background(), validDraft(), images, owner())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestListingUsecase_SubmitUsesOnlyOwnersImages(t *testing.T) {
	f := newFixture()
	f.repo.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("SendListingCreatedEmail", mock.Anything, mock.Anything).Return(nil)

	pending := &fakePending{images: []domain.Image{{Name: "b1", UID: "u2"}, {Name: "a1", UID: "u1"}}}
	l, err := f.uc.Submit(context.Background(), validDraft(), pending, owner())
	require.NoError(t, err)
	assert.Equal(t, []domain.Image{{Name: "a1", UID: "u1"}}, l.Images)

	onlyForeign := &fakePending{images: []domain.Image{{Name: "b1", UID: "u2"}}}
	_, err = f.uc.Submit(context.Background(), validDraft(), onlyForeign, owner())
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "images")
	assert.False(t, onlyForeign.cleared)
	f.repo.AssertNumberOfCalls(t, "Add", 1)
}

type recordingResultSet struct{ evicted []string }

func (r *recordingResultSet) Evict(id string) { r.evicted = append(r.evicted, id) }

func TestListingUsecase_DeleteReportsPartialFailure(t *testing.T) {
	f := newFixture()
	rs := &recordingResultSet{}
	f.uc.RegisterResultSet(rs)

	listing := &domain.Listing{ID: "l1", UID: "u1", Images: []domain.Image{
		{Name: "a", UID: "u1"},
		{Name: "b", UID: "u1"},
	}}
	f.repo.On("Delete", mock.Anything, "l1").Return(nil).Once()
	f.storage.On("Delete", mock.Anything, "images/u1/a").Return(errors.New("denied")).Once()
	f.storage.On("Delete", mock.Anything, "images/u1/b").Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, domain.SubjectListingDeleted, mock.Anything).Return(nil).Once()

	err := f.uc.Delete(context.Background(), listing)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialDelete)

	var perr *domain.PartialDeleteError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, []string{"images/u1/a"}, perr.Failed)
	assert.Len(t, perr.Unwrap(), 1)
	assert.Equal(t, []string{"l1"}, rs.evicted)
	f.repo.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestListingUsecase_DeleteRecordFailureStopsEverything(t *testing.T) {
	f := newFixture()
	rs := &recordingResultSet{}
	f.uc.RegisterResultSet(rs)
	f.repo.On("Delete", mock.Anything, "l1").Return(errors.New("timeout")).Once()

	err := f.uc.Delete(context.Background(), &domain.Listing{ID: "l1", Images: []domain.Image{{Name: "a", UID: "u1"}}})
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
	assert.Empty(t, rs.evicted)
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListingUsecase_DeleteEvictsFromQueryEngine(t *testing.T) {
	f := newFixture()
	f.repo.On("Find", mock.Anything, domain.DefaultQuery()).Return(snap(doc("l1", "A"), doc("l2", "B")), nil).Once()
	f.repo.On("Delete", mock.Anything, "l1").Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	engine := NewQueryEngine(f.repo, staticIdentity{}, nil, logger.NewNop())
	require.NoError(t, engine.LoadAll(context.Background()))
	f.uc.RegisterResultSet(engine)

	require.NoError(t, f.uc.Delete(context.Background(), &domain.Listing{ID: "l1"}))
	assert.Equal(t, []string{"l2"}, ids(engine.Results()))
}

func TestListingUsecase_DeleteByID(t *testing.T) {
	f := newFixture()
	f.repo.On("Get", mock.Anything, "l1").Return(&domain.Document{ID: "l1", Data: map[string]interface{}{"uid": "u1"}}, nil)
	f.repo.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	err := f.uc.DeleteByID(context.Background(), "l1", signedIn("u2", "Bia", "bia@example.com").id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.uc.DeleteByID(context.Background(), "gone", owner())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.uc.DeleteByID(context.Background(), "l1", nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	f.repo.On("Delete", mock.Anything, "l1").Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, domain.SubjectListingDeleted, mock.Anything).Return(nil).Once()
	assert.NoError(t, f.uc.DeleteByID(context.Background(), "l1", owner()))
	f.repo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestListingUsecase_GetByID(t *testing.T) {
	f := newFixture()
	f.repo.On("Get", mock.Anything, "l1").Return(&domain.Document{ID: "l1", Data: map[string]interface{}{"title": "Casa"}}, nil)
	f.repo.On("Get", mock.Anything, "boom").Return(nil, errors.New("network"))

	l, err := f.uc.GetByID(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "Casa", l.Title)

	_, err = f.uc.GetByID(context.Background(), "boom")
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
}
