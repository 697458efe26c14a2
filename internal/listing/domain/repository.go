package domain

import (
	"context"
	"time"
)

// ListingRepository is the Listing Store. Implementations must make IncrementViews,
// ToggleFavorite, Update and Delete atomic per listing.
type ListingRepository interface {
	Insert(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// Update applies patch only if the listing is owned by ownerID.
	// Returns ErrNotFound or ErrForbidden otherwise.
	Update(ctx context.Context, id, ownerID string, patch *Patch) (*Listing, error)
	// Delete removes the listing only if it is owned by ownerID.
	Delete(ctx context.Context, id, ownerID string) (*Listing, error)
	// Search returns one page ordered newest first, or by relevance when
	// criteria.Text is set, together with the total match count.
	Search(ctx context.Context, criteria Criteria) ([]*Listing, int64, error)
	IncrementViews(ctx context.Context, id string) (*Listing, error)
	// ToggleFavorite adds userID to the favorites set if absent, removes it if
	// present, and reports membership after the call.
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Listing, error)
	FindFavoritedBy(ctx context.Context, userID string) ([]*Listing, error)
}

// UserLookup resolves owner profiles for the read-side join.
type UserLookup interface {
	GetPublicProfile(ctx context.Context, userID string) (*OwnerProfile, error)
}

// ImageStore persists uploaded images and returns opaque references.
type ImageStore interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, ref string) error
}

// EventPublisher is a fire-and-forget notification sink.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Mailer delivers owner notifications.
type Mailer interface {
	SendContactRequest(ctx context.Context, req *ContactRequest) error
	SendListingCreated(ctx context.Context, toEmail, petName string) error
}

// ContactRequest is what an inquirer sends to a listing's owner.
type ContactRequest struct {
	PetName    string    `json:"petName"`
	PetID      string    `json:"petId"`
	OwnerName  string    `json:"ownerName"`
	OwnerEmail string    `json:"ownerEmail"`
	OwnerPhone string    `json:"ownerPhone"`
	FromUser   string    `json:"fromUser"`
	FromEmail  string    `json:"fromEmail"`
	Message    string    `json:"message"`
	Subject    string    `json:"subject"`
	Timestamp  time.Time `json:"timestamp"`
}
