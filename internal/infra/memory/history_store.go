package memory

import (
	"context"
	"sync"

	"peer-challenge-service/internal/domain"
)

// HistoryStore is an in-memory implementation of app.HistoryStore.
type HistoryStore struct {
	mu   sync.RWMutex
	docs map[string]domain.UserHistory
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{docs: make(map[string]domain.UserHistory)}
}

func (s *HistoryStore) Get(_ context.Context, userID string) (domain.UserHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[userID]
	if !ok {
		return domain.UserHistory{UserID: userID}, nil
	}
	out := domain.UserHistory{UserID: userID}
	out.CompletedChallenges = append([]domain.HistoryItem(nil), doc.CompletedChallenges...)
	return out, nil
}

// Record overwrites any existing entry for the item's challenge code.
func (s *HistoryStore) Record(_ context.Context, userID string, item domain.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[userID]
	doc.UserID = userID
	for i := range doc.CompletedChallenges {
		if doc.CompletedChallenges[i].ChallengeCode == item.ChallengeCode {
			doc.CompletedChallenges[i] = item
			s.docs[userID] = doc
			return nil
		}
	}
	doc.CompletedChallenges = append([]domain.HistoryItem{item}, doc.CompletedChallenges...)
	s.docs[userID] = doc
	return nil
}
