package mongodb

import (
	"time"

	"github.com/operman-code/petme/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listingDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Species      string             `bson:"species"`
	Breed        string             `bson:"breed,omitempty"`
	Age          float64            `bson:"age"`
	AgeUnit      string             `bson:"age_unit"`
	Gender       string             `bson:"gender"`
	Price        float64            `bson:"price"`
	Description  string             `bson:"description"`
	Location     string             `bson:"location"`
	Images       []string           `bson:"images"`
	Owner        string             `bson:"owner"`
	IsAvailable  bool               `bson:"is_available"`
	IsVaccinated bool               `bson:"is_vaccinated"`
	IsNeutered   bool               `bson:"is_neutered"`
	HealthStatus string             `bson:"health_status"`
	Temperament  string             `bson:"temperament"`
	Tags         []string           `bson:"tags"`
	Views        int64              `bson:"views"`
	Favorites    []string           `bson:"favorites"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func fromDomainListing(l *domain.Listing) *listingDocument {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	favorites := l.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return &listingDocument{
		Name:         l.Name,
		Species:      string(l.Species),
		Breed:        l.Breed,
		Age:          l.Age,
		AgeUnit:      string(l.AgeUnit),
		Gender:       string(l.Gender),
		Price:        l.Price,
		Description:  l.Description,
		Location:     l.Location,
		Images:       images,
		Owner:        l.OwnerID,
		IsAvailable:  l.IsAvailable,
		IsVaccinated: l.IsVaccinated,
		IsNeutered:   l.IsNeutered,
		HealthStatus: string(l.HealthStatus),
		Temperament:  string(l.Temperament),
		Tags:         tags,
		Views:        l.Views,
		Favorites:    favorites,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (d *listingDocument) toDomain() *domain.Listing {
	favorites := d.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return &domain.Listing{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Species:      domain.Species(d.Species),
		Breed:        d.Breed,
		Age:          d.Age,
		AgeUnit:      domain.AgeUnit(d.AgeUnit),
		Gender:       domain.Gender(d.Gender),
		Price:        d.Price,
		Description:  d.Description,
		Location:     d.Location,
		Images:       d.Images,
		OwnerID:      d.Owner,
		IsAvailable:  d.IsAvailable,
		IsVaccinated: d.IsVaccinated,
		IsNeutered:   d.IsNeutered,
		HealthStatus: domain.HealthStatus(d.HealthStatus),
		Temperament:  domain.Temperament(d.Temperament),
		Tags:         d.Tags,
		Views:        d.Views,
		Favorites:    favorites,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out
}

// patchToSet translates the supplied patch fields into a $set document.
func patchToSet(p *domain.Patch, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Species != nil {
		set["species"] = string(*p.Species)
	}
	if p.Breed != nil {
		set["breed"] = *p.Breed
	}
	if p.Age != nil {
		set["age"] = *p.Age
	}
	if p.AgeUnit != nil {
		set["age_unit"] = string(*p.AgeUnit)
	}
	if p.Gender != nil {
		set["gender"] = string(*p.Gender)
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.IsAvailable != nil {
		set["is_available"] = *p.IsAvailable
	}
	if p.IsVaccinated != nil {
		set["is_vaccinated"] = *p.IsVaccinated
	}
	if p.IsNeutered != nil {
		set["is_neutered"] = *p.IsNeutered
	}
	if p.HealthStatus != nil {
		set["health_status"] = string(*p.HealthStatus)
	}
	if p.Temperament != nil {
		set["temperament"] = string(*p.Temperament)
	}
	if p.TagsSet {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if p.Images != nil {
		set["images"] = p.Images
	}
	return set
}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Phone    string             `bson:"phone,omitempty"`
	Location string             `bson:"location,omitempty"`
	Bio      string             `bson:"bio,omitempty"`
}

func (d *userDocument) toDomain() *domain.OwnerProfile {
	return &domain.OwnerProfile{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Email:    d.Email,
		Phone:    d.Phone,
		Location: d.Location,
		Bio:      d.Bio,
	}
}
