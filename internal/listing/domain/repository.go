package domain

import "context"

// ListingRepository is the document store holding listing records.
type ListingRepository interface {
	// Find runs one query and returns the documents in store order.
	Find(ctx context.Context, q Query) (Snapshot, error)
	// Get returns ErrNotFound when no document has the id.
	Get(ctx context.Context, id string) (*Document, error)
	// Add writes the record and fills in ID and Created.
	Add(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage is the blob store addressed by caller supplied paths.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

// LocalStorage is the durable key/value mirror of client state.
type LocalStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AuthStateListener receives the current session, or nil when signed out.
type AuthStateListener func(s *Session)

// AuthProvider is the hosted identity provider.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, name, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChanged delivers the current state at least once and then
	// every change until the returned unsubscribe func is called.
	OnAuthStateChanged(fn AuthStateListener) (func(), error)
}

// IdentitySource is the read side of the session store used by the core.
type IdentitySource interface {
	Identity() *Identity
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Mailer interface {
	SendListingCreatedEmail(toEmail, listingTitle string) error
}
