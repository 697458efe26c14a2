package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/operman-code/petme/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	MinContactMessage = 10
	MaxContactMessage = 500
	MaxContactSubject = 100
)

type ContactInput struct {
	Subject string
	Message string
}

// Validate trims both fields and checks their lengths.
func (in *ContactInput) Validate() error {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	v := &domain.ValidationError{}
	if n := utf8.RuneCountInString(in.Message); n < MinContactMessage || n > MaxContactMessage {
		v.Add("message", "Message must be between 10 and 500 characters")
	}
	if utf8.RuneCountInString(in.Subject) > MaxContactSubject {
		v.Add("subject", "Subject must be at most 100 characters")
	}
	return v.OrNil()
}

// ContactUsecase relays an inquiry about a listing to its owner.
type ContactUsecase struct {
	repo     domain.ListingRepository
	users    domain.UserLookup
	notifier *Notifier
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
	now      func() time.Time
}

func NewContactUsecase(repo domain.ListingRepository, users domain.UserLookup, notifier *Notifier, m *metrics.MetricsManager, log *logger.Logger) *ContactUsecase {
	return &ContactUsecase{
		repo:     repo,
		users:    users,
		notifier: notifier,
		metrics:  m,
		logger:   log.Named("ContactUsecase"),
		now:      time.Now,
	}
}

// Contact relays an inquiry and returns the request as delivered, which carries the
// owner's contact details back to the inquirer.
func (uc *ContactUsecase) Contact(ctx context.Context, callerID, listingID string, in ContactInput) (req *domain.ContactRequest, err error) {
	ctx, span := startSpan(ctx, "ContactUsecase.Contact", attribute.String("caller.id", callerID), attribute.String("listing.id", listingID))
	defer func() { endSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID == callerID {
		return nil, domain.ErrSelfContact
	}
	owner, err := uc.users.GetPublicProfile(ctx, listing.OwnerID)
	if err != nil {
		return nil, err
	}
	sender, err := uc.users.GetPublicProfile(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}

	subject := in.Subject
	if subject == "" {
		subject = "Inquiry about " + listing.Name
	}
	req = &domain.ContactRequest{
		PetName:    listing.Name,
		PetID:      listing.ID,
		OwnerName:  owner.Name,
		OwnerEmail: owner.Email,
		OwnerPhone: owner.Phone,
		FromUser:   sender.Name,
		FromEmail:  sender.Email,
		Message:    in.Message,
		Subject:    subject,
		Timestamp:  uc.now().UTC(),
	}

	uc.logger.Info("Contact request", zap.String("listing_id", listing.ID), zap.String("from", callerID))
	uc.metrics.ContactRequested()
	uc.notifier.publish(ctx, SubjectContactRequested, req)
	uc.notifier.mail(ctx, "contact_request", func(ctx context.Context, m domain.Mailer) error {
		return m.SendContactRequest(ctx, req)
	})

	return req, nil
}
