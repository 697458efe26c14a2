package domain

import "time"

type Species string

const (
	SpeciesDog       Species = "dog"
	SpeciesCat       Species = "cat"
	SpeciesBird      Species = "bird"
	SpeciesFish      Species = "fish"
	SpeciesRabbit    Species = "rabbit"
	SpeciesHamster   Species = "hamster"
	SpeciesGuineaPig Species = "guinea-pig"
	SpeciesOther     Species = "other"
)

func (s Species) IsValid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesFish, SpeciesRabbit, SpeciesHamster, SpeciesGuineaPig, SpeciesOther:
		return true
	}
	return false
}

type AgeUnit string

const (
	AgeUnitDays   AgeUnit = "days"
	AgeUnitWeeks  AgeUnit = "weeks"
	AgeUnitMonths AgeUnit = "months"
	AgeUnitYears  AgeUnit = "years"
)

func (u AgeUnit) IsValid() bool {
	switch u {
	case AgeUnitDays, AgeUnitWeeks, AgeUnitMonths, AgeUnitYears:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthNeedsCare HealthStatus = "needs-care"
)

func (h HealthStatus) IsValid() bool {
	switch h {
	case HealthExcellent, HealthGood, HealthFair, HealthNeedsCare:
		return true
	}
	return false
}

type Temperament string

const (
	TemperamentFriendly    Temperament = "friendly"
	TemperamentShy         Temperament = "shy"
	TemperamentEnergetic   Temperament = "energetic"
	TemperamentCalm        Temperament = "calm"
	TemperamentPlayful     Temperament = "playful"
	TemperamentIndependent Temperament = "independent"
)

func (t Temperament) IsValid() bool {
	switch t {
	case TemperamentFriendly, TemperamentShy, TemperamentEnergetic, TemperamentCalm, TemperamentPlayful, TemperamentIndependent:
		return true
	}
	return false
}

const (
	MaxDescriptionLength = 1000
	// MinCreateDescriptionLength is enforced on creation only, as the public form does.
	MinCreateDescriptionLength = 10
)

// Listing is a single pet-for-adoption/sale record.
type Listing struct {
	ID           string
	Name         string
	Species      Species
	Breed        string
	Age          float64
	AgeUnit      AgeUnit
	Gender       Gender
	Price        float64
	Description  string
	Location     string
	Images       []string
	OwnerID      string
	IsAvailable  bool
	IsVaccinated bool
	IsNeutered   bool
	HealthStatus HealthStatus
	Temperament  Temperament
	Tags         []string
	Views        int64
	Favorites    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFavoritedBy reports whether userID is in the favorites set.
func (l *Listing) IsFavoritedBy(userID string) bool {
	for _, id := range l.Favorites {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores never hand out shared slices.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.Images = append([]string(nil), l.Images...)
	c.Tags = append([]string(nil), l.Tags...)
	c.Favorites = append([]string(nil), l.Favorites...)
	return &c
}

// ListingView is a listing enriched with its owner's profile on the read side.
type ListingView struct {
	*Listing
	Owner *OwnerProfile
}

// Page is one page of a filtered listing query.
type Page struct {
	Items      []*ListingView
	Page       int
	TotalPages int
	Total      int64
}
