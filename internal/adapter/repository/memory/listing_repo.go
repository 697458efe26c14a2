// Package memory is an in-process Listing Store: an arena of listings indexed by id,
// each guarded by its own mutex so mutations serialize per listing only.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/listing/search"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type entry struct {
	mu      sync.Mutex
	listing *domain.Listing
	deleted bool
}

// ListingRepository implements domain.ListingRepository in memory.
type ListingRepository struct {
	mu      sync.RWMutex
	entries map[string]*entry
	scorer  search.Scorer
	now     func() time.Time
}

// Option configures a ListingRepository.
type Option func(*ListingRepository)

// WithScorer swaps the relevance scorer.
func WithScorer(s search.Scorer) Option {
	return func(r *ListingRepository) { r.scorer = s }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *ListingRepository) { r.now = now }
}

func NewListingRepository(opts ...Option) *ListingRepository {
	r := &ListingRepository{
		entries: make(map[string]*entry),
		scorer:  search.TokenScorer{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *ListingRepository) Insert(ctx context.Context, listing *domain.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := r.now().UTC()
	listing.ID = primitive.NewObjectIDFromTimestamp(now).Hex()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now
	if listing.Favorites == nil {
		listing.Favorites = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[listing.ID] = &entry{listing: listing.Clone()}
	return nil
}

// lookup returns the live entry for id, locked. The caller must unlock it.
func (r *ListingRepository) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	return e.listing.Clone(), nil
}

func (r *ListingRepository) Update(ctx context.Context, id, ownerID string, patch *domain.Patch) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	if e.listing.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	patch.Apply(e.listing, r.now())
	return e.listing.Clone(), nil
}

func (r *ListingRepository) Delete(ctx context.Context, id, ownerID string) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listing.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	e.deleted = true
	delete(r.entries, id)
	return e.listing.Clone(), nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id string) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	e.listing.Views++
	e.listing.UpdatedAt = r.now().UTC()
	return e.listing.Clone(), nil
}

func (r *ListingRepository) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e, err := r.lookup(id)
	if err != nil {
		return false, err
	}
	defer e.mu.Unlock()

	favs := e.listing.Favorites
	for i, u := range favs {
		if u == userID {
			e.listing.Favorites = append(favs[:i:i], favs[i+1:]...)
			e.listing.UpdatedAt = r.now().UTC()
			return false, nil
		}
	}
	e.listing.Favorites = append(favs, userID)
	e.listing.UpdatedAt = r.now().UTC()
	return true, nil
}

// snapshot clones every live listing accepted by keep.
func (r *ListingRepository) snapshot(keep func(*domain.Listing) bool) []*domain.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Listing, 0, len(r.entries))
	for _, e := range r.entries {
		e.mu.Lock()
		if !e.deleted && keep(e.listing) {
			out = append(out, e.listing.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

func (r *ListingRepository) Search(ctx context.Context, c domain.Criteria) ([]*domain.Listing, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	location := strings.ToLower(c.Location)
	matched := r.snapshot(func(l *domain.Listing) bool {
		if c.AvailableOnly && !l.IsAvailable {
			return false
		}
		if c.Species != "" && l.Species != c.Species {
			return false
		}
		if c.OwnerID != "" && l.OwnerID != c.OwnerID {
			return false
		}
		if c.MinPrice != nil && l.Price < *c.MinPrice {
			return false
		}
		if c.MaxPrice != nil && l.Price > *c.MaxPrice {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(l.Location), location) {
			return false
		}
		return true
	})

	if c.Text != "" {
		matched = r.rank(c.Text, matched)
	} else {
		sortNewestFirst(matched)
	}

	total := int64(len(matched))
	return paginate(matched, c.Skip, c.Limit), total, nil
}

func (r *ListingRepository) rank(term string, listings []*domain.Listing) []*domain.Listing {
	byID := make(map[string]*domain.Listing, len(listings))
	docs := make([]search.Document, 0, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
		docs = append(docs, search.Document{
			ID:        l.ID,
			CreatedAt: l.CreatedAt,
			Fields:    []string{l.Name, l.Description, l.Breed},
		})
	}
	hits := search.Rank(r.scorer, term, docs)
	out := make([]*domain.Listing, 0, len(hits))
	for _, h := range hits {
		out = append(out, byID[h.ID])
	}
	return out
}

func (r *ListingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := r.snapshot(func(l *domain.Listing) bool { return l.OwnerID == ownerID })
	sortNewestFirst(out)
	return out, nil
}

func (r *ListingRepository) FindFavoritedBy(ctx context.Context, userID string) ([]*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := r.snapshot(func(l *domain.Listing) bool { return l.IsFavoritedBy(userID) })
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(ls []*domain.Listing) {
	sort.Slice(ls, func(i, j int) bool {
		if !ls[i].CreatedAt.Equal(ls[j].CreatedAt) {
			return ls[i].CreatedAt.After(ls[j].CreatedAt)
		}
		return ls[i].ID > ls[j].ID
	})
}

func paginate(ls []*domain.Listing, skip, limit int64) []*domain.Listing {
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(ls)) {
		return []*domain.Listing{}
	}
	end := int64(len(ls))
	if limit > 0 && limit < end-skip {
		end = skip + limit
	}
	return ls[skip:end]
}
