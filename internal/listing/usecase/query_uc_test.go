package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/listing/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_RexExample(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rex := f.create(t, "owner-1", rexDraft())

	c, err := filter.Compile(map[string][]string{"species": {"dog"}, "minPrice": {"50"}, "maxPrice": {"150"}})
	require.NoError(t, err)
	page, err := f.queries.List(ctx, c)
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, rex.ID, page.Items[0].ID)
	assert.Equal(t, "Jane Doe", page.Items[0].Owner.Name)
	assert.Empty(t, page.Items[0].Owner.Email)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.EqualValues(t, 1, page.Total)
}

func TestList_PriceBoundsInclusive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := rexDraft()
	d.Price = f64(50)
	f.create(t, "owner-1", d)

	in, err := filter.Compile(map[string][]string{"minPrice": {"40"}, "maxPrice": {"60"}})
	require.NoError(t, err)
	page, err := f.queries.List(ctx, in)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	out, err := filter.Compile(map[string][]string{"maxPrice": {"45"}})
	require.NoError(t, err)
	page, err = f.queries.List(ctx, out)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
}

func TestList_PagesConcatenateToFullOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 11; i++ {
		f.create(t, "owner-1", randomDraft())
	}

	all, err := f.queries.List(ctx, domain.Criteria{AvailableOnly: true, Page: 1, Limit: 100})
	require.NoError(t, err)

	var ids []string
	for p := 1; p <= 3; p++ {
		page, err := f.queries.List(ctx, domain.Criteria{AvailableOnly: true, Page: p, Skip: int64((p - 1) * 4), Limit: 4})
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalPages)
		for _, it := range page.Items {
			ids = append(ids, it.ID)
		}
	}
	require.Len(t, ids, 11)
	for i, it := range all.Items {
		assert.Equal(t, it.ID, ids[i])
	}
}

func TestList_SkipsListingsWithMissingOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "owner-1", rexDraft())
	f.create(t, "ghost", randomDraft())

	page, err := f.queries.List(ctx, domain.Criteria{AvailableOnly: true, Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "owner-1", page.Items[0].OwnerID)
}

type failingLookup struct{}

func (failingLookup) GetPublicProfile(context.Context, string) (*domain.OwnerProfile, error) {
	return nil, errors.New("users down")
}

func TestList_LookupOutagePropagates(t *testing.T) {
	f := newFixture(t)
	f.create(t, "owner-1", rexDraft())
	q := NewQueryUsecase(f.repo, failingLookup{}, nil, f.queries.logger)

	_, err := q.List(context.Background(), domain.Criteria{AvailableOnly: true, Page: 1, Limit: 12})
	assert.Error(t, err)
}

func TestGetOne_IncrementsViewsAndJoinsFullProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.create(t, "owner-1", rexDraft())

	v, err := f.queries.GetOne(ctx, l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v.Views)
	assert.Equal(t, "jane@example.com", v.Owner.Email)
	assert.Equal(t, "Dog lover", v.Owner.Bio)

	_, err = f.queries.GetOne(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetOne_ConcurrentViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.create(t, "owner-1", rexDraft())

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.queries.GetOne(ctx, l.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.Views)
}

func TestGetOne_MissingOwnerStillServed(t *testing.T) {
	f := newFixture(t)
	l := f.create(t, "ghost", rexDraft())

	v, err := f.queries.GetOne(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Nil(t, v.Owner)
}

func TestAttach_JoinsOwnerSummary(t *testing.T) {
	f := newFixture(t)
	l := f.create(t, "owner-1", rexDraft())

	v := f.queries.Attach(context.Background(), l)
	require.NotNil(t, v.Owner)
	assert.Same(t, l, v.Listing)
	assert.Equal(t, "Jane Doe", v.Owner.Name)
	assert.Equal(t, "555-0100", v.Owner.Phone)
	assert.Empty(t, v.Owner.Email)
}

func TestAttach_LookupFailureLeavesOwnerNil(t *testing.T) {
	f := newFixture(t)
	ghost := f.create(t, "ghost", rexDraft())
	assert.Nil(t, f.queries.Attach(context.Background(), ghost).Owner)

	l := f.create(t, "owner-1", rexDraft())
	q := NewQueryUsecase(f.repo, failingLookup{}, nil, f.queries.logger)
	v := q.Attach(context.Background(), l)
	assert.Nil(t, v.Owner)
	assert.Equal(t, l.ID, v.ID)
}

func TestListFavorites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, "owner-1", rexDraft())
	f.create(t, "owner-1", randomDraft())

	_, err := f.listings.ToggleFavorite(ctx, "owner-2", a.ID)
	require.NoError(t, err)

	favs, err := f.queries.ListFavorites(ctx, "owner-2")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, a.ID, favs[0].ID)
	assert.Equal(t, "Jane Doe", favs[0].Owner.Name)
}

func TestOwnerShowcase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 8; i++ {
		f.create(t, "owner-1", randomDraft())
	}
	hidden := randomDraft()
	hidden.IsAvailable = new(bool)
	h := f.create(t, "owner-1", hidden)

	sc, err := f.queries.OwnerShowcase(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", sc.Profile.Name)
	assert.Len(t, sc.Listings, ShowcaseLimit)
	for _, l := range sc.Listings {
		assert.NotEqual(t, h.ID, l.ID)
	}

	_, err = f.queries.OwnerShowcase(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
