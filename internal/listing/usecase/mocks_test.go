package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Find(ctx context.Context, q domain.Query) (domain.Snapshot, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}
func (m *MockListingRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
func (m *MockListingRepository) Add(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockObjectStorage struct{ mock.Mock }

func (m *MockObjectStorage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, path, contentType, data)
	return args.String(0), args.Error(1)
}
func (m *MockObjectStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	args := m.Called(toEmail, listingTitle)
	return args.Error(0)
}

// memoryStorage is an in-memory LocalStorage whose writes can be made to fail.
type memoryStorage struct {
	mu        sync.Mutex
	data      map[string]string
	failSet   error
	flakySets int // next writes that fail before succeeding again
	failGet   error
	failDel   error
	sets      int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: map[string]string{}}
}

func (s *memoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return "", false, s.failGet
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.failSet != nil {
		return s.failSet
	}
	if s.flakySets > 0 {
		s.flakySets--
		return errors.New("redis: connection reset")
	}
	s.data[key] = value
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel != nil {
		return s.failDel
	}
	delete(s.data, key)
	return nil
}

type staticIdentity struct{ id *domain.Identity }

func (s staticIdentity) Identity() *domain.Identity { return s.id }

func signedIn(uid, name, email string) staticIdentity {
	return staticIdentity{id: &domain.Identity{UID: uid, Name: &name, Email: &email}}
}

func doc(id, title string) domain.Document {
	return domain.Document{ID: id, Data: map[string]interface{}{"title": title, "uid": "u1"}}
}

func snap(docs ...domain.Document) domain.Snapshot {
	return domain.Snapshot{Docs: docs}
}
