package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Draft carries the caller-supplied fields of a new listing. Pointer fields
// distinguish "absent" from the zero value.
type Draft struct {
	Name         string
	Species      Species
	Breed        string
	Age          *float64
	AgeUnit      AgeUnit
	Gender       Gender
	Price        *float64
	Description  string
	Location     string
	IsAvailable  *bool
	IsVaccinated bool
	IsNeutered   bool
	HealthStatus HealthStatus
	Temperament  Temperament
	Tags         []string
}

// Normalize trims free text and fills defaults for omitted optional fields.
func (d *Draft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Breed = strings.TrimSpace(d.Breed)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	if d.AgeUnit == "" {
		d.AgeUnit = AgeUnitMonths
	}
	if d.HealthStatus == "" {
		d.HealthStatus = HealthGood
	}
	if d.Temperament == "" {
		d.Temperament = TemperamentFriendly
	}
	d.Tags = NormalizeTags(d.Tags)
}

// Validate checks every creation rule except images and returns a
// *ValidationError naming all offending fields. Call Normalize first.
func (d *Draft) Validate() error {
	v := &ValidationError{}
	if d.Name == "" {
		v.Add("name", "Name is required")
	}
	if !d.Species.IsValid() {
		v.Add("species", "Invalid species")
	}
	if d.Age == nil {
		v.Add("age", "Age must be a number")
	} else if *d.Age < 0 {
		v.Add("age", "Age cannot be negative")
	}
	if !d.AgeUnit.IsValid() {
		v.Add("ageUnit", "Invalid age unit")
	}
	if !d.Gender.IsValid() {
		v.Add("gender", "Invalid gender")
	}
	if d.Price == nil {
		v.Add("price", "Price must be a number")
	} else if *d.Price < 0 {
		v.Add("price", "Price cannot be negative")
	}
	switch n := utf8.RuneCountInString(d.Description); {
	case n < MinCreateDescriptionLength:
		v.Add("description", "Description must be at least 10 characters")
	case n > MaxDescriptionLength:
		v.Add("description", "Description must be at most 1000 characters")
	}
	if d.Location == "" {
		v.Add("location", "Location is required")
	}
	if !d.HealthStatus.IsValid() {
		v.Add("healthStatus", "Invalid health status")
	}
	if !d.Temperament.IsValid() {
		v.Add("temperament", "Invalid temperament")
	}
	return v.OrNil()
}

// NewListing builds a validated listing owned by ownerID. Counters start at zero and
// the listing is available unless the draft says otherwise.
func NewListing(ownerID string, d Draft, images []string, now time.Time) (*Listing, error) {
	d.Normalize()
	var v *ValidationError
	if err := d.Validate(); err != nil {
		v = err.(*ValidationError)
	} else {
		v = &ValidationError{}
	}
	images = NormalizeImages(images)
	if len(images) == 0 {
		v.Add("images", "At least one image is required")
	}
	if ownerID == "" {
		v.Add("owner", "Owner is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	available := true
	if d.IsAvailable != nil {
		available = *d.IsAvailable
	}
	now = now.UTC()
	return &Listing{
		Name:         d.Name,
		Species:      d.Species,
		Breed:        d.Breed,
		Age:          *d.Age,
		AgeUnit:      d.AgeUnit,
		Gender:       d.Gender,
		Price:        *d.Price,
		Description:  d.Description,
		Location:     d.Location,
		Images:       images,
		OwnerID:      ownerID,
		IsAvailable:  available,
		IsVaccinated: d.IsVaccinated,
		IsNeutered:   d.IsNeutered,
		HealthStatus: d.HealthStatus,
		Temperament:  d.Temperament,
		Tags:         d.Tags,
		Views:        0,
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Patch is a partial update applied by the owner. There is deliberately no owner
// field: ownership cannot be reassigned. A nil Images leaves the sequence untouched;
// a non-nil Images replaces it wholesale.
type Patch struct {
	Name         *string
	Species      *Species
	Breed        *string
	Age          *float64
	AgeUnit      *AgeUnit
	Gender       *Gender
	Price        *float64
	Description  *string
	Location     *string
	IsAvailable  *bool
	IsVaccinated *bool
	IsNeutered   *bool
	HealthStatus *HealthStatus
	Temperament  *Temperament
	Tags         []string
	TagsSet      bool
	Images       []string
}

// Normalize trims every supplied text field.
func (p *Patch) Normalize() {
	trim := func(s *string) {
		if s != nil {
			t := strings.TrimSpace(*s)
			*s = t
		}
	}
	trim(p.Name)
	trim(p.Breed)
	trim(p.Description)
	trim(p.Location)
	if p.TagsSet {
		p.Tags = NormalizeTags(p.Tags)
	}
	if p.Images != nil {
		p.Images = NormalizeImages(p.Images)
	}
}

// Validate checks each supplied field against the listing invariants. Because fields
// are independent, a valid patch applied to a valid listing yields a valid listing.
func (p *Patch) Validate() error {
	v := &ValidationError{}
	if p.Name != nil && *p.Name == "" {
		v.Add("name", "Name is required")
	}
	if p.Species != nil && !p.Species.IsValid() {
		v.Add("species", "Invalid species")
	}
	if p.Age != nil && *p.Age < 0 {
		v.Add("age", "Age cannot be negative")
	}
	if p.AgeUnit != nil && !p.AgeUnit.IsValid() {
		v.Add("ageUnit", "Invalid age unit")
	}
	if p.Gender != nil && !p.Gender.IsValid() {
		v.Add("gender", "Invalid gender")
	}
	if p.Price != nil && *p.Price < 0 {
		v.Add("price", "Price cannot be negative")
	}
	if p.Description != nil {
		n := utf8.RuneCountInString(*p.Description)
		if n < 1 || n > MaxDescriptionLength {
			v.Add("description", "Description must be between 1 and 1000 characters")
		}
	}
	if p.Location != nil && *p.Location == "" {
		v.Add("location", "Location is required")
	}
	if p.HealthStatus != nil && !p.HealthStatus.IsValid() {
		v.Add("healthStatus", "Invalid health status")
	}
	if p.Temperament != nil && !p.Temperament.IsValid() {
		v.Add("temperament", "Invalid temperament")
	}
	if p.Images != nil && len(p.Images) == 0 {
		v.Add("images", "At least one image is required")
	}
	return v.OrNil()
}

// Apply writes the supplied fields onto l and stamps UpdatedAt.
func (p *Patch) Apply(l *Listing, now time.Time) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Species != nil {
		l.Species = *p.Species
	}
	if p.Breed != nil {
		l.Breed = *p.Breed
	}
	if p.Age != nil {
		l.Age = *p.Age
	}
	if p.AgeUnit != nil {
		l.AgeUnit = *p.AgeUnit
	}
	if p.Gender != nil {
		l.Gender = *p.Gender
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.IsAvailable != nil {
		l.IsAvailable = *p.IsAvailable
	}
	if p.IsVaccinated != nil {
		l.IsVaccinated = *p.IsVaccinated
	}
	if p.IsNeutered != nil {
		l.IsNeutered = *p.IsNeutered
	}
	if p.HealthStatus != nil {
		l.HealthStatus = *p.HealthStatus
	}
	if p.Temperament != nil {
		l.Temperament = *p.Temperament
	}
	if p.TagsSet {
		l.Tags = append([]string(nil), p.Tags...)
	}
	if p.Images != nil {
		l.Images = append([]string(nil), p.Images...)
	}
	l.UpdatedAt = now.UTC()
}

// NormalizeTags trims tags, drops blanks and removes duplicates keeping first order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// NormalizeImages drops blank references, keeping order.
func NormalizeImages(images []string) []string {
	if images == nil {
		return nil
	}
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
