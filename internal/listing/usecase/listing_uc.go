package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/operman-code/petme/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("petme/listing-usecase")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrForbidden) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ListingUsecase owns the listing lifecycle: create, owner-only update and delete,
// favorite toggling.
type ListingUsecase struct {
	repo     domain.ListingRepository
	users    domain.UserLookup
	photos   *PhotoUsecase
	notifier *Notifier
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
	now      func() time.Time
}

func NewListingUsecase(
	repo domain.ListingRepository,
	users domain.UserLookup,
	photos *PhotoUsecase,
	notifier *Notifier,
	m *metrics.MetricsManager,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:     repo,
		users:    users,
		photos:   photos,
		notifier: notifier,
		metrics:  m,
		logger:   log.Named("ListingUsecase"),
		now:      time.Now,
	}
}

// CreateInput is a new listing plus its images: uploaded files, already-stored
// references, or both. Uploaded files come after the references.
type CreateInput struct {
	Draft     domain.Draft
	ImageRefs []string
	Uploads   []Upload
}

// Create validates everything before touching the image store so a rejected draft
// never leaves orphaned files.
func (uc *ListingUsecase) Create(ctx context.Context, callerID string, in CreateInput) (listing *domain.Listing, err error) {
	ctx, span := startSpan(ctx, "ListingUsecase.Create", attribute.String("caller.id", callerID))
	defer func() { endSpan(span, err) }()

	draft := in.Draft
	draft.Normalize()
	v := &domain.ValidationError{}
	var draftErr *domain.ValidationError
	if err := draft.Validate(); errors.As(err, &draftErr) {
		v.Fields = append(v.Fields, draftErr.Fields...)
	}
	var uploadErr *domain.ValidationError
	if err := uc.photos.Validate(in.Uploads); errors.As(err, &uploadErr) {
		v.Fields = append(v.Fields, uploadErr.Fields...)
	}
	refs := domain.NormalizeImages(in.ImageRefs)
	if len(refs) == 0 && len(in.Uploads) == 0 && !v.Has("images") {
		v.Add("images", "At least one image is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	uploaded, err := uc.photos.Store(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}
	listing, err = domain.NewListing(callerID, draft, append(refs, uploaded...), uc.now())
	if err != nil {
		uc.photos.Discard(ctx, uploaded)
		return nil, err
	}
	if err := uc.repo.Insert(ctx, listing); err != nil {
		uc.logger.Error("Failed to insert listing", zap.String("owner_id", callerID), zap.Error(err))
		uc.photos.Discard(ctx, uploaded)
		return nil, err
	}

	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", callerID))
	uc.metrics.ListingCreated()
	uc.notifier.publish(ctx, SubjectListingCreated, listingEvent(listing, false, listing.CreatedAt))
	name := listing.Name
	uc.notifier.mail(ctx, "listing_created", func(ctx context.Context, m domain.Mailer) error {
		owner, err := uc.users.GetPublicProfile(ctx, callerID)
		if err != nil {
			return err
		}
		if owner.Email == "" {
			return nil
		}
		return m.SendListingCreated(ctx, owner.Email, name)
	})
	return listing, nil
}

// UpdateInput is an owner's patch. Uploads, when present, replace the whole image
// sequence, taking precedence over Patch.Images.
type UpdateInput struct {
	Patch   domain.Patch
	Uploads []Upload
}

func (uc *ListingUsecase) Update(ctx context.Context, callerID, id string, in UpdateInput) (listing *domain.Listing, err error) {
	ctx, span := startSpan(ctx, "ListingUsecase.Update", attribute.String("caller.id", callerID), attribute.String("listing.id", id))
	defer func() { endSpan(span, err) }()

	patch := in.Patch
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var uploaded []string
	if len(in.Uploads) > 0 {
		if uploaded, err = uc.photos.Store(ctx, in.Uploads); err != nil {
			return nil, err
		}
		patch.Images = uploaded
	}

	listing, err = uc.repo.Update(ctx, id, callerID, &patch)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			uc.logger.Warn("Forbidden listing update", zap.String("listing_id", id), zap.String("caller_id", callerID))
		}
		uc.photos.Discard(ctx, uploaded)
		return nil, err
	}

	uc.metrics.ListingUpdated()
	uc.notifier.publish(ctx, SubjectListingUpdated, listingEvent(listing, false, listing.UpdatedAt))
	return listing, nil
}

func (uc *ListingUsecase) Delete(ctx context.Context, callerID, id string) (err error) {
	ctx, span := startSpan(ctx, "ListingUsecase.Delete", attribute.String("caller.id", callerID), attribute.String("listing.id", id))
	defer func() { endSpan(span, err) }()

	removed, err := uc.repo.Delete(ctx, id, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			uc.logger.Warn("Forbidden listing delete", zap.String("listing_id", id), zap.String("caller_id", callerID))
		}
		return err
	}

	uc.logger.Info("Listing deleted", zap.String("listing_id", id))
	uc.metrics.ListingDeleted()
	uc.notifier.publish(ctx, SubjectListingDeleted, listingEvent(removed, true, uc.now()))
	return nil
}

// ToggleFavorite flips the caller's membership and reports the new state. Owners may
// favorite their own listings.
func (uc *ListingUsecase) ToggleFavorite(ctx context.Context, callerID, id string) (favorited bool, err error) {
	ctx, span := startSpan(ctx, "ListingUsecase.ToggleFavorite", attribute.String("caller.id", callerID), attribute.String("listing.id", id))
	defer func() { endSpan(span, err) }()

	favorited, err = uc.repo.ToggleFavorite(ctx, id, callerID)
	if err != nil {
		return false, err
	}
	uc.metrics.FavoriteToggled(favorited)
	uc.notifier.publish(ctx, SubjectListingFavorited, FavoriteEvent{
		ListingID:   id,
		UserID:      callerID,
		IsFavorited: favorited,
		At:          uc.now().UTC(),
	})
	return favorited, nil
}

// ListMine returns every listing the caller owns, available or not, newest first.
func (uc *ListingUsecase) ListMine(ctx context.Context, callerID string) (listings []*domain.Listing, err error) {
	ctx, span := startSpan(ctx, "ListingUsecase.ListMine", attribute.String("caller.id", callerID))
	defer func() { endSpan(span, err) }()

	return uc.repo.FindByOwner(ctx, callerID)
}
