package memory

import (
	"context"
	"sync"

	"peer-challenge-service/internal/domain"
)

// InviteStore is an in-memory implementation of app.InviteStore. Each
// user's document is modified under the store lock, which serializes the
// rarer cross-challenge races on a single user's invite list.
type InviteStore struct {
	mu   sync.RWMutex
	docs map[string]domain.UserInvites
}

func NewInviteStore() *InviteStore {
	return &InviteStore{docs: make(map[string]domain.UserInvites)}
}

func (s *InviteStore) Get(_ context.Context, userID string) (domain.UserInvites, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[userID]
	if !ok {
		return domain.UserInvites{UserID: userID}, nil
	}
	out := domain.UserInvites{UserID: userID}
	out.Invites = append([]domain.Invite(nil), doc.Invites...)
	return out, nil
}

func (s *InviteStore) Upsert(_ context.Context, userID string, invite domain.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[userID]
	doc.UserID = userID
	for i := range doc.Invites {
		if doc.Invites[i].ChallengeCode == invite.ChallengeCode {
			doc.Invites[i] = invite
			s.docs[userID] = doc
			return nil
		}
	}
	doc.Invites = append([]domain.Invite{invite}, doc.Invites...)
	s.docs[userID] = doc
	return nil
}

func (s *InviteStore) SetStatus(_ context.Context, userID, challengeCode string, status domain.ParticipantStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[userID]
	for i := range doc.Invites {
		if doc.Invites[i].ChallengeCode == challengeCode {
			doc.Invites[i].Status = status
			s.docs[userID] = doc
			return nil
		}
	}
	return nil
}
