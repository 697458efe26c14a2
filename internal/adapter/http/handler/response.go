package handler

import (
	"time"

	"github.com/operman-code/petme/internal/listing/domain"
)

// petResponse is the public JSON shape of a listing. Owner is the owner's profile
// when it was joined, otherwise the bare owner id.
type petResponse struct {
	ID           string      `json:"_id"`
	Name         string      `json:"name"`
	Species      string      `json:"species"`
	Breed        string      `json:"breed"`
	Age          float64     `json:"age"`
	AgeUnit      string      `json:"ageUnit"`
	Gender       string      `json:"gender"`
	Price        float64     `json:"price"`
	Description  string      `json:"description"`
	Location     string      `json:"location"`
	Images       []string    `json:"images"`
	Owner        interface{} `json:"owner"`
	IsAvailable  bool        `json:"isAvailable"`
	IsVaccinated bool        `json:"isVaccinated"`
	IsNeutered   bool        `json:"isNeutered"`
	HealthStatus string      `json:"healthStatus"`
	Temperament  string      `json:"temperament"`
	Tags         []string    `json:"tags"`
	Views        int64       `json:"views"`
	Favorites    []string    `json:"favorites"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type listResponse struct {
	Pets        []petResponse `json:"pets"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	Total       int64         `json:"total"`
}

type favoriteResponse struct {
	IsFavorited bool `json:"isFavorited"`
}

type showcaseResponse struct {
	User *domain.OwnerProfile `json:"user"`
	Pets []petResponse        `json:"pets"`
}

type contactResponse struct {
	Message     string                 `json:"message"`
	ContactInfo *domain.ContactRequest `json:"contactInfo"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toPet(l *domain.Listing, owner *domain.OwnerProfile) petResponse {
	p := petResponse{
		ID:           l.ID,
		Name:         l.Name,
		Species:      string(l.Species),
		Breed:        l.Breed,
		Age:          l.Age,
		AgeUnit:      string(l.AgeUnit),
		Gender:       string(l.Gender),
		Price:        l.Price,
		Description:  l.Description,
		Location:     l.Location,
		Images:       nonNil(l.Images),
		Owner:        l.OwnerID,
		IsAvailable:  l.IsAvailable,
		IsVaccinated: l.IsVaccinated,
		IsNeutered:   l.IsNeutered,
		HealthStatus: string(l.HealthStatus),
		Temperament:  string(l.Temperament),
		Tags:         nonNil(l.Tags),
		Views:        l.Views,
		Favorites:    nonNil(l.Favorites),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if owner != nil {
		p.Owner = owner
	}
	return p
}

func toPets(listings []*domain.Listing) []petResponse {
	out := make([]petResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toPet(l, nil))
	}
	return out
}

func toPetViews(views []*domain.ListingView) []petResponse {
	out := make([]petResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toPet(v.Listing, v.Owner))
	}
	return out
}
