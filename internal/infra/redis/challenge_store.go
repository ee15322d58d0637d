package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"peer-challenge-service/internal/domain"
)

// ChallengeStore keeps one JSON document per challenge code:
// SET challenge:{code} {challenge JSON}
// Records are never deleted; expiry is a status, not a TTL.
type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) Get(ctx context.Context, code string) (domain.Challenge, bool, error) {
	raw, err := s.client.Get(ctx, challengeKey(code)).Bytes()
	if err == redis.Nil {
		return domain.Challenge{}, false, nil
	}
	if err != nil {
		return domain.Challenge{}, false, domain.NewStoreError("get", challengeKey(code), err)
	}
	var challenge domain.Challenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return domain.Challenge{}, false, domain.NewStoreError("decode", challengeKey(code), err)
	}
	return challenge, true, nil
}

func (s *ChallengeStore) Put(ctx context.Context, challenge domain.Challenge) error {
	raw, err := json.Marshal(challenge)
	if err != nil {
		return domain.NewStoreError("encode", challengeKey(challenge.Code), err)
	}
	if err := s.client.Set(ctx, challengeKey(challenge.Code), raw, 0).Err(); err != nil {
		return domain.NewStoreError("put", challengeKey(challenge.Code), err)
	}
	return nil
}

func (s *ChallengeStore) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	iter := s.client.Scan(ctx, 0, "challenge:*", 0).Iterator()
	for iter.Next(ctx) {
		codes = append(codes, iter.Val()[len("challenge:"):])
	}
	if err := iter.Err(); err != nil {
		return nil, domain.NewStoreError("scan", "challenge:*", err)
	}
	return codes, nil
}

func challengeKey(code string) string {
	return "challenge:" + code
}
