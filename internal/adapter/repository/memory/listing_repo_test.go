package memory

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newRepo() *ListingRepository {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewListingRepository(WithClock(clock.Now))
}

func seed(t *testing.T, r *ListingRepository, mutate func(*domain.Listing)) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		Name:         gofakeit.PetName(),
		Species:      domain.SpeciesDog,
		Breed:        gofakeit.Word(),
		Age:          2,
		AgeUnit:      domain.AgeUnitYears,
		Gender:       domain.GenderMale,
		Price:        100,
		Description:  gofakeit.Sentence(8),
		Location:     "Austin, TX",
		Images:       []string{"a.jpg"},
		OwnerID:      "owner-1",
		IsAvailable:  true,
		HealthStatus: domain.HealthGood,
		Temperament:  domain.TemperamentFriendly,
	}
	if mutate != nil {
		mutate(l)
	}
	require.NoError(t, r.Insert(context.Background(), l))
	return l
}

func TestInsertAssignsIDAndTimestamps(t *testing.T) {
	r := newRepo()
	l := seed(t, r, nil)

	assert.Len(t, l.ID, 24)
	assert.False(t, l.CreatedAt.IsZero())

	got, err := r.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.Name, got.Name)
	assert.Empty(t, got.Favorites)
	assert.Zero(t, got.Views)
}

func TestFindByIDUnknown(t *testing.T) {
	r := newRepo()
	_, err := r.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReturnedListingsAreCopies(t *testing.T) {
	r := newRepo()
	l := seed(t, r, nil)

	got, err := r.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	got.Images[0] = "mutated.jpg"
	got.Name = "mutated"

	again, err := r.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", again.Images[0])
	assert.Equal(t, l.Name, again.Name)
}

func TestUpdateOwnership(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	l := seed(t, r, nil)
	price := 80.0

	_, err := r.Update(ctx, l.ID, "intruder", &domain.Patch{Price: &price})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = r.Update(ctx, "missing", "owner-1", &domain.Patch{Price: &price})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := r.Update(ctx, l.ID, "owner-1", &domain.Patch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 80.0, updated.Price)
	assert.Equal(t, "owner-1", updated.OwnerID)
	assert.True(t, updated.UpdatedAt.After(l.UpdatedAt))
}

func TestDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	l := seed(t, r, nil)

	_, err := r.Delete(ctx, l.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	removed, err := r.Delete(ctx, l.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, removed.Images)

	_, err = r.FindByID(ctx, l.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.Delete(ctx, l.ID, "owner-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrentViewsAreNotLost(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	l := seed(t, r, nil)

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.IncrementViews(ctx, l.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.Views)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	l := seed(t, r, nil)

	on, err := r.ToggleFavorite(ctx, l.ID, "u1")
	require.NoError(t, err)
	assert.True(t, on)

	on, err = r.ToggleFavorite(ctx, l.ID, "u1")
	require.NoError(t, err)
	assert.False(t, on)

	_, err = r.ToggleFavorite(ctx, "missing", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrentTogglesFromDistinctUsers(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	l := seed(t, r, nil)

	users := make([]string, 50)
	for i := range users {
		users[i] = gofakeit.UUID()
	}
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := r.ToggleFavorite(ctx, l.ID, u)
			assert.NoError(t, err)
		}(u)
	}
	wg.Wait()

	got, err := r.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, users, got.Favorites)
}

func TestConcurrentTogglesBySameUserEvenCount(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	l := seed(t, r, nil)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.ToggleFavorite(ctx, l.ID, "u1")
		}()
	}
	wg.Wait()

	got, err := r.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Favorites)
}

func TestSearchFiltersAndPagination(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	for i := 0; i < 25; i++ {
		price := float64(i * 10)
		seed(t, r, func(l *domain.Listing) { l.Price = price })
	}
	seed(t, r, func(l *domain.Listing) { l.Species = domain.SpeciesCat; l.Location = "Boston" })
	seed(t, r, func(l *domain.Listing) { l.IsAvailable = false })

	page, total, err := r.Search(ctx, domain.Criteria{AvailableOnly: true, Skip: 12, Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 26, total)
	assert.Len(t, page, 12)

	last, total, err := r.Search(ctx, domain.Criteria{AvailableOnly: true, Skip: 24, Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 26, total)
	assert.Len(t, last, 2)

	beyond, _, err := r.Search(ctx, domain.Criteria{AvailableOnly: true, Skip: 120, Limit: 12})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	minP, maxP := 50.0, 100.0
	ranged, total, err := r.Search(ctx, domain.Criteria{AvailableOnly: true, Species: domain.SpeciesDog, MinPrice: &minP, MaxPrice: &maxP, Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	for _, l := range ranged {
		assert.GreaterOrEqual(t, l.Price, 50.0)
		assert.LessOrEqual(t, l.Price, 100.0)
	}

	cats, total, err := r.Search(ctx, domain.Criteria{AvailableOnly: true, Location: "bost", Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, domain.SpeciesCat, cats[0].Species)
}

func TestSearchOutOfRangeWindow(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	for i := 0; i < 3; i++ {
		seed(t, r, nil)
	}

	for _, c := range []domain.Criteria{
		{AvailableOnly: true, Skip: math.MaxInt64, Limit: 12},
		{AvailableOnly: true, Skip: 1, Limit: math.MaxInt64},
		{AvailableOnly: true, Skip: -24, Limit: 12},
	} {
		var got []*domain.Listing
		require.NotPanics(t, func() {
			var err error
			got, _, err = r.Search(ctx, c)
			require.NoError(t, err)
		})
		switch {
		case c.Skip < 0:
			assert.Len(t, got, 3)
		case c.Skip == 1:
			assert.Len(t, got, 2)
		default:
			assert.Empty(t, got)
		}
	}
}

func TestSearchNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	first := seed(t, r, nil)
	second := seed(t, r, nil)

	got, _, err := r.Search(ctx, domain.Criteria{AvailableOnly: true, Limit: 12})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestSearchTextRanksByRelevance(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	seed(t, r, func(l *domain.Listing) {
		l.Name = "Rex"
		l.Breed = "Beagle"
		l.Description = "Calm dog who loves walks"
	})
	best := seed(t, r, func(l *domain.Listing) {
		l.Name = "Golden Sunny"
		l.Breed = "Golden Retriever"
		l.Description = "A golden retriever puppy"
	})
	seed(t, r, func(l *domain.Listing) {
		l.Name = "Max"
		l.Breed = "Poodle"
		l.Description = "Friendly, golden colored poodle"
	})

	got, total, err := r.Search(ctx, domain.Criteria{AvailableOnly: true, Text: "golden retriever", Limit: 12})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, best.ID, got[0].ID)
}

func TestFindByOwnerAndFavorites(t *testing.T) {
	ctx := context.Background()
	r := newRepo()
	a := seed(t, r, nil)
	b := seed(t, r, func(l *domain.Listing) { l.IsAvailable = false })
	seed(t, r, func(l *domain.Listing) { l.OwnerID = "owner-2" })

	mine, err := r.FindByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, b.ID, mine[0].ID)

	_, err = r.ToggleFavorite(ctx, a.ID, "fan")
	require.NoError(t, err)
	favs, err := r.FindFavoritedBy(ctx, "fan")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, a.ID, favs[0].ID)
}

func TestCanceledContext(t *testing.T) {
	r := newRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.FindByID(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserRepository(t *testing.T) {
	users := NewUserRepository()
	users.Put(domain.OwnerProfile{ID: "u1", Name: "Jane Doe"})

	p, err := users.GetPublicProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.Name)

	_, err = users.GetPublicProfile(context.Background(), "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
