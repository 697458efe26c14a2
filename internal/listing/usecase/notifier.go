package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	SubjectListingCreated   = "listing.created"
	SubjectListingUpdated   = "listing.updated"
	SubjectListingDeleted   = "listing.deleted"
	SubjectListingFavorited = "listing.favorited"
	SubjectContactRequested = "contact.requested"
)

// ListingEvent is published on listing lifecycle changes. Images is set on delete so
// the image store's owner can reclaim files.
type ListingEvent struct {
	ListingID string         `json:"listingId"`
	OwnerID   string         `json:"ownerId"`
	Name      string         `json:"name"`
	Species   domain.Species `json:"species"`
	Price     float64        `json:"price"`
	Images    []string       `json:"images,omitempty"`
	At        time.Time      `json:"at"`
}

type FavoriteEvent struct {
	ListingID   string    `json:"listingId"`
	UserID      string    `json:"userId"`
	IsFavorited bool      `json:"isFavorited"`
	At          time.Time `json:"at"`
}

func listingEvent(l *domain.Listing, withImages bool, at time.Time) ListingEvent {
	ev := ListingEvent{
		ListingID: l.ID,
		OwnerID:   l.OwnerID,
		Name:      l.Name,
		Species:   l.Species,
		Price:     l.Price,
		At:        at.UTC(),
	}
	if withImages {
		ev.Images = append([]string(nil), l.Images...)
	}
	return ev
}

// Notifier is the fire-and-forget side of the usecases. Publish and mail failures are
// logged and never fail the calling operation.
type Notifier struct {
	publisher   domain.EventPublisher
	mailer      domain.Mailer
	logger      *logger.Logger
	mailTimeout time.Duration
	wg          sync.WaitGroup
}

func NewNotifier(publisher domain.EventPublisher, mailer domain.Mailer, log *logger.Logger) *Notifier {
	return &Notifier{
		publisher:   publisher,
		mailer:      mailer,
		logger:      log.Named("Notifier"),
		mailTimeout: 30 * time.Second,
	}
}

func (n *Notifier) publish(ctx context.Context, subject string, payload interface{}) {
	if n == nil || n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, subject, payload); err != nil {
		n.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// mail runs send in the background, detached from the request's cancellation.
func (n *Notifier) mail(ctx context.Context, what string, send func(context.Context, domain.Mailer) error) {
	if n == nil || n.mailer == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, n.mailTimeout)
		defer cancel()
		if err := send(ctx, n.mailer); err != nil {
			n.logger.Warn("Failed to send mail", zap.String("mail", what), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight mail has been handed off. Called on shutdown.
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}
