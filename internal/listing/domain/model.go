package domain

import "time"

type Modality string

const (
	ModalitySale Modality = "sale"
	ModalityRent Modality = "rent"
)

func (m Modality) Valid() bool {
	return m == ModalitySale || m == ModalityRent
}

// Listing is a property record as persisted in the "imoveis" collection.
type Listing struct {
	ID           string    `json:"id"`
	Owner        string    `json:"owner"` // display name of the owner at creation time
	UID          string    `json:"uid"`
	Title        string    `json:"title"`
	Address      string    `json:"address"`
	Area         string    `json:"area"`
	Rooms        int       `json:"rooms"`
	Bathrooms    int       `json:"bathrooms"`
	ParkingSpace *int      `json:"parkingSpace,omitempty"`
	Modality     Modality  `json:"modality"`
	Price        float64   `json:"price"`
	IPTU         string    `json:"iptu,omitempty"`
	Cond         string    `json:"cond,omitempty"`
	City         string    `json:"city"`
	Neighborhood string    `json:"neighborhood"`
	Tel          int64     `json:"tel"`
	Desc         string    `json:"desc"`
	Created      time.Time `json:"created"`
	Images       []Image   `json:"images"`
}

// Image is a stored file reference. Name is the client generated uuid.
type Image struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
	URL  string `json:"url"`
}

// ObjectPath is the object store key of the image: images/{uid}/{name}.
func (i Image) ObjectPath() string {
	return "images/" + i.UID + "/" + i.Name
}

// Identity is the signed-in user as seen by the rest of the application.
type Identity struct {
	UID   string  `json:"uid"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// DisplayName returns the name or an empty string when the provider has none.
func (i *Identity) DisplayName() string {
	if i == nil || i.Name == nil {
		return ""
	}
	return *i.Name
}

// Session is the auth provider payload delivered on sign-in and on every
// state change notification.
type Session struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Token       string `json:"token,omitempty"`
}

// Identity extracts the application identity from the provider payload.
func (s *Session) Identity() *Identity {
	if s == nil {
		return nil
	}
	id := &Identity{UID: s.UID}
	if s.DisplayName != "" {
		name := s.DisplayName
		id.Name = &name
	}
	if s.Email != "" {
		email := s.Email
		id.Email = &email
	}
	return id
}

// Document is one entry of a generic document store result.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Snapshot is an ordered document store result set.
type Snapshot struct {
	Docs []Document
}

func (s Snapshot) Len() int {
	return len(s.Docs)
}

// Account is a user of the built-in email/password auth provider.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
