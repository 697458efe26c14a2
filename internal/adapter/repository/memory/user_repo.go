package memory

import (
	"context"
	"sync"

	"github.com/operman-code/petme/internal/listing/domain"
)

// UserRepository is an in-memory domain.UserLookup.
type UserRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.OwnerProfile
}

func NewUserRepository() *UserRepository {
	return &UserRepository{profiles: make(map[string]domain.OwnerProfile)}
}

// Put stores or replaces a profile.
func (r *UserRepository) Put(p domain.OwnerProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
}

func (r *UserRepository) GetPublicProfile(ctx context.Context, userID string) (*domain.OwnerProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}
