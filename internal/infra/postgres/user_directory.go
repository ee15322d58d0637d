package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"peer-challenge-service/internal/domain"
)

// UserDirectory resolves display profiles from the users table. An
// unknown user id resolves to (nil, nil) per the directory contract.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) ResolveUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := d.pool.QueryRow(ctx,
		`SELECT name, COALESCE(avatar_url, '') FROM users WHERE id = $1`, userID).
		Scan(&profile.Name, &profile.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return &profile, nil
}
