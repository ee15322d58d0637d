package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"peer-challenge-service/internal/domain"
)

// PointsLedger keeps one signed counter per user:
// INCRBY points:{userID} {delta}
type PointsLedger struct {
	client *redis.Client
}

func NewPointsLedger(client *redis.Client) *PointsLedger {
	return &PointsLedger{client: client}
}

func (l *PointsLedger) ApplyPointsDelta(ctx context.Context, userID string, delta int) error {
	if err := l.client.IncrBy(ctx, pointsKey(userID), int64(delta)).Err(); err != nil {
		return domain.NewStoreError("incrby", pointsKey(userID), err)
	}
	return nil
}

// Total reads the accumulated balance; a missing key is zero.
func (l *PointsLedger) Total(ctx context.Context, userID string) (int64, error) {
	total, err := l.client.Get(ctx, pointsKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, domain.NewStoreError("get", pointsKey(userID), err)
	}
	return total, nil
}

func pointsKey(userID string) string {
	return "points:" + userID
}
