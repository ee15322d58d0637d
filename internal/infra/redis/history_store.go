package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"peer-challenge-service/internal/domain"
)

// HistoryStore keeps one JSON document per user:
// SET history:{userID} { userId, completedChallenges: [...] }
type HistoryStore struct {
	client *redis.Client
}

func NewHistoryStore(client *redis.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func (s *HistoryStore) Get(ctx context.Context, userID string) (domain.UserHistory, error) {
	raw, err := s.client.Get(ctx, historyKey(userID)).Bytes()
	if err == redis.Nil {
		return domain.UserHistory{UserID: userID}, nil
	}
	if err != nil {
		return domain.UserHistory{}, domain.NewStoreError("get", historyKey(userID), err)
	}
	var doc domain.UserHistory
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.UserHistory{}, domain.NewStoreError("decode", historyKey(userID), err)
	}
	doc.UserID = userID
	return doc, nil
}

// Record overwrites any existing entry for the item's challenge code, so
// re-recording after a retried submission cannot duplicate history.
func (s *HistoryStore) Record(ctx context.Context, userID string, item domain.HistoryItem) error {
	doc, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc.CompletedChallenges {
		if doc.CompletedChallenges[i].ChallengeCode == item.ChallengeCode {
			doc.CompletedChallenges[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		doc.CompletedChallenges = append([]domain.HistoryItem{item}, doc.CompletedChallenges...)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return domain.NewStoreError("encode", historyKey(userID), err)
	}
	if err := s.client.Set(ctx, historyKey(userID), raw, 0).Err(); err != nil {
		return domain.NewStoreError("put", historyKey(userID), err)
	}
	return nil
}

func historyKey(userID string) string {
	return "history:" + userID
}
