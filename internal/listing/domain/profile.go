package domain

// OwnerProfile is the slice of a User the listing core is allowed to see.
type OwnerProfile struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Summary drops the fields only shown on a single-listing page.
func (p *OwnerProfile) Summary() *OwnerProfile {
	if p == nil {
		return nil
	}
	return &OwnerProfile{ID: p.ID, Name: p.Name, Location: p.Location, Phone: p.Phone}
}
