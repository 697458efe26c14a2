package domain

// Criteria is the compiled, validated predicate for a listing search plus its
// pagination window. Zero-valued optional fields mean "no constraint".
type Criteria struct {
	Species       Species
	MinPrice      *float64
	MaxPrice      *float64
	Location      string // literal, matched case-insensitively as a substring
	Text          string // free-text relevance query over name, description, breed
	OwnerID       string
	AvailableOnly bool
	Page          int
	Skip          int64
	Limit         int64
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int64) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + limit - 1) / limit)
}
