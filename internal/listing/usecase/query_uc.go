package usecase

import (
	"context"
	"errors"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/operman-code/petme/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ShowcaseLimit caps the listings shown on a public user page.
const ShowcaseLimit = 6

// QueryUsecase serves the read side: filtered pages, single listings and favorites,
// each joined with owner profiles.
type QueryUsecase struct {
	repo    domain.ListingRepository
	users   domain.UserLookup
	metrics *metrics.MetricsManager
	logger  *logger.Logger
}

func NewQueryUsecase(repo domain.ListingRepository, users domain.UserLookup, m *metrics.MetricsManager, log *logger.Logger) *QueryUsecase {
	return &QueryUsecase{
		repo:    repo,
		users:   users,
		metrics: m,
		logger:  log.Named("QueryUsecase"),
	}
}

// enrich attaches owner summaries. A listing whose owner cannot be found is a data
// integrity fault: it is logged and left out rather than failing the whole result.
func (uc *QueryUsecase) enrich(ctx context.Context, listings []*domain.Listing) ([]*domain.ListingView, error) {
	profiles := make(map[string]*domain.OwnerProfile)
	views := make([]*domain.ListingView, 0, len(listings))
	for _, l := range listings {
		p, seen := profiles[l.OwnerID]
		if !seen {
			full, err := uc.users.GetPublicProfile(ctx, l.OwnerID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				p = nil
			case err != nil:
				return nil, err
			default:
				p = full.Summary()
			}
			profiles[l.OwnerID] = p
		}
		if p == nil {
			uc.logger.Warn("Skipping listing with missing owner", zap.String("listing_id", l.ID), zap.String("owner_id", l.OwnerID))
			continue
		}
		views = append(views, &domain.ListingView{Listing: l, Owner: p})
	}
	return views, nil
}

// Attach joins the owner's summary onto a listing just written. The write has already
// happened, so a failed lookup is logged and leaves Owner nil instead of failing.
func (uc *QueryUsecase) Attach(ctx context.Context, listing *domain.Listing) *domain.ListingView {
	view := &domain.ListingView{Listing: listing}
	owner, err := uc.users.GetPublicProfile(ctx, listing.OwnerID)
	if err != nil {
		uc.logger.Warn("Owner lookup failed after write",
			zap.String("listing_id", listing.ID), zap.String("owner_id", listing.OwnerID), zap.Error(err))
		return view
	}
	view.Owner = owner.Summary()
	return view
}

// List runs a compiled query. The page count comes from the store's total, so a page
// may hold fewer items than Limit when owners are missing.
func (uc *QueryUsecase) List(ctx context.Context, c domain.Criteria) (page *domain.Page, err error) {
	ctx, span := startSpan(ctx, "QueryUsecase.List",
		attribute.Int("page", c.Page), attribute.Int64("limit", c.Limit), attribute.Bool("text", c.Text != ""))
	defer func() { endSpan(span, err) }()

	listings, total, err := uc.repo.Search(ctx, c)
	if err != nil {
		uc.logger.Error("Listing search failed", zap.Error(err))
		return nil, err
	}
	items, err := uc.enrich(ctx, listings)
	if err != nil {
		return nil, err
	}
	return &domain.Page{
		Items:      items,
		Page:       c.Page,
		TotalPages: domain.TotalPages(total, c.Limit),
		Total:      total,
	}, nil
}

// GetOne counts a view and returns the listing with the owner's full profile. The
// increment is persisted before returning. A missing owner yields a nil Owner.
func (uc *QueryUsecase) GetOne(ctx context.Context, id string) (view *domain.ListingView, err error) {
	ctx, span := startSpan(ctx, "QueryUsecase.GetOne", attribute.String("listing.id", id))
	defer func() { endSpan(span, err) }()

	listing, err := uc.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.metrics.ListingViewed()

	owner, err := uc.users.GetPublicProfile(ctx, listing.OwnerID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		uc.logger.Warn("Listing owner not found", zap.String("listing_id", id), zap.String("owner_id", listing.OwnerID))
		owner = nil
	case err != nil:
		return nil, err
	}
	return &domain.ListingView{Listing: listing, Owner: owner}, nil
}

func (uc *QueryUsecase) ListFavorites(ctx context.Context, callerID string) (views []*domain.ListingView, err error) {
	ctx, span := startSpan(ctx, "QueryUsecase.ListFavorites", attribute.String("caller.id", callerID))
	defer func() { endSpan(span, err) }()

	listings, err := uc.repo.FindFavoritedBy(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return uc.enrich(ctx, listings)
}

// Showcase is a user's public page.
type Showcase struct {
	Profile  *domain.OwnerProfile
	Listings []*domain.Listing
}

// OwnerShowcase returns a user's profile and their newest available listings.
func (uc *QueryUsecase) OwnerShowcase(ctx context.Context, userID string) (sc *Showcase, err error) {
	ctx, span := startSpan(ctx, "QueryUsecase.OwnerShowcase", attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	profile, err := uc.users.GetPublicProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	listings, _, err := uc.repo.Search(ctx, domain.Criteria{
		OwnerID:       userID,
		AvailableOnly: true,
		Page:          1,
		Limit:         ShowcaseLimit,
	})
	if err != nil {
		return nil, err
	}
	return &Showcase{Profile: profile, Listings: listings}, nil
}
