package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"peer-challenge-service/internal/domain"
)

// InviteStore keeps one JSON document per invited user:
// SET invites:{userID} { userId, invites: [...] }
type InviteStore struct {
	client *redis.Client
}

func NewInviteStore(client *redis.Client) *InviteStore {
	return &InviteStore{client: client}
}

func (s *InviteStore) Get(ctx context.Context, userID string) (domain.UserInvites, error) {
	raw, err := s.client.Get(ctx, inviteKey(userID)).Bytes()
	if err == redis.Nil {
		return domain.UserInvites{UserID: userID}, nil
	}
	if err != nil {
		return domain.UserInvites{}, domain.NewStoreError("get", inviteKey(userID), err)
	}
	var doc domain.UserInvites
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.UserInvites{}, domain.NewStoreError("decode", inviteKey(userID), err)
	}
	doc.UserID = userID
	return doc, nil
}

func (s *InviteStore) Upsert(ctx context.Context, userID string, invite domain.Invite) error {
	doc, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc.Invites {
		if doc.Invites[i].ChallengeCode == invite.ChallengeCode {
			doc.Invites[i] = invite
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Invites = append([]domain.Invite{invite}, doc.Invites...)
	}
	return s.put(ctx, doc)
}

func (s *InviteStore) SetStatus(ctx context.Context, userID, challengeCode string, status domain.ParticipantStatus) error {
	doc, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	for i := range doc.Invites {
		if doc.Invites[i].ChallengeCode == challengeCode {
			doc.Invites[i].Status = status
			return s.put(ctx, doc)
		}
	}
	return nil
}

func (s *InviteStore) put(ctx context.Context, doc domain.UserInvites) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return domain.NewStoreError("encode", inviteKey(doc.UserID), err)
	}
	if err := s.client.Set(ctx, inviteKey(doc.UserID), raw, 0).Err(); err != nil {
		return domain.NewStoreError("put", inviteKey(doc.UserID), err)
	}
	return nil
}

func inviteKey(userID string) string {
	return "invites:" + userID
}
