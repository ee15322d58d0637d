package memory

import (
	"context"

	"peer-challenge-service/internal/domain"
)

// StaticUserDirectory resolves users from a fixed map; unknown ids
// resolve to nil without error.
type StaticUserDirectory struct {
	users map[string]domain.UserProfile
}

func NewStaticUserDirectory(users map[string]domain.UserProfile) *StaticUserDirectory {
	return &StaticUserDirectory{users: users}
}

func (d *StaticUserDirectory) ResolveUser(_ context.Context, userID string) (*domain.UserProfile, error) {
	profile, ok := d.users[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}
