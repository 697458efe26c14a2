// Package seed fills the in-process stores with demo owners and listings. It is meant
// for local development with STORAGE_BACKEND=memory.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
)

// ProfileSink accepts owner profiles; the memory user repository satisfies it.
type ProfileSink interface {
	Put(p domain.OwnerProfile)
}

type Options struct {
	Users    int
	Listings int
	// Seed makes the generated data reproducible; zero picks a time-based seed.
	Seed int64
}

var species = []domain.Species{
	domain.SpeciesDog, domain.SpeciesCat, domain.SpeciesBird, domain.SpeciesFish,
	domain.SpeciesRabbit, domain.SpeciesHamster, domain.SpeciesGuineaPig, domain.SpeciesOther,
}

var temperaments = []domain.Temperament{
	domain.TemperamentFriendly, domain.TemperamentShy, domain.TemperamentEnergetic,
	domain.TemperamentCalm, domain.TemperamentPlayful, domain.TemperamentIndependent,
}

// Run creates opts.Users owners and spreads opts.Listings listings across them,
// returning the generated owners.
func Run(ctx context.Context, users ProfileSink, listings domain.ListingRepository, opts Options, log *logger.Logger) ([]domain.OwnerProfile, error) {
	if opts.Users <= 0 {
		return nil, nil
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := gofakeit.New(seed)

	owners := make([]domain.OwnerProfile, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		p := domain.OwnerProfile{
			ID:       fmt.Sprintf("demo-user-%d", i+1),
			Name:     f.Name(),
			Location: f.City() + ", " + f.StateAbr(),
			Phone:    f.Phone(),
			Email:    f.Email(),
			Bio:      f.Sentence(12),
		}
		users.Put(p)
		owners = append(owners, p)
	}

	now := time.Now()
	for i := 0; i < opts.Listings; i++ {
		owner := owners[i%len(owners)]
		l, err := domain.NewListing(owner.ID, draft(f, owner), []string{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.UUID()),
		}, now.Add(-time.Duration(f.Number(0, 90*24))*time.Hour))
		if err != nil {
			return nil, fmt.Errorf("build demo listing: %w", err)
		}
		if err := listings.Insert(ctx, l); err != nil {
			return nil, fmt.Errorf("insert demo listing: %w", err)
		}
	}

	log.Info("Seeded demo data", zap.Int("users", len(owners)), zap.Int("listings", opts.Listings), zap.Int64("seed", seed))
	return owners, nil
}

func draft(f *gofakeit.Faker, owner domain.OwnerProfile) domain.Draft {
	sp := species[f.Number(0, len(species)-1)]
	breed := ""
	switch sp {
	case domain.SpeciesDog:
		breed = f.Dog()
	case domain.SpeciesCat:
		breed = f.Cat()
	case domain.SpeciesBird:
		breed = f.Bird()
	}
	age := float64(f.Number(1, 15))
	price := float64(f.Number(0, 60) * 10)
	available := f.Number(1, 10) > 2
	return domain.Draft{
		Name:         f.PetName(),
		Species:      sp,
		Breed:        breed,
		Age:          &age,
		AgeUnit:      domain.AgeUnitYears,
		Gender:       []domain.Gender{domain.GenderMale, domain.GenderFemale}[f.Number(0, 1)],
		Price:        &price,
		Description:  f.Sentence(15),
		Location:     owner.Location,
		IsAvailable:  &available,
		IsVaccinated: f.Bool(),
		IsNeutered:   f.Bool(),
		Temperament:  temperaments[f.Number(0, len(temperaments)-1)],
		Tags:         []string{f.Adjective(), f.Adjective()},
	}
}
