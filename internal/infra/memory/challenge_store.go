package memory

import (
	"context"
	"sync"

	"peer-challenge-service/internal/domain"
)

// ChallengeStore is an in-memory implementation of app.ChallengeStore.
// Records are deep-copied on both reads and writes so callers can mutate
// their working copy without aliasing stored state.
type ChallengeStore struct {
	mu         sync.RWMutex
	challenges map[string]domain.Challenge
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{challenges: make(map[string]domain.Challenge)}
}

func (s *ChallengeStore) Get(_ context.Context, code string) (domain.Challenge, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[code]
	if !ok {
		return domain.Challenge{}, false, nil
	}
	return cloneChallenge(challenge), true, nil
}

func (s *ChallengeStore) Put(_ context.Context, challenge domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.Code] = cloneChallenge(challenge)
	return nil
}

func (s *ChallengeStore) Codes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.challenges))
	for code := range s.challenges {
		codes = append(codes, code)
	}
	return codes, nil
}

func cloneChallenge(c domain.Challenge) domain.Challenge {
	out := c
	out.Participants = make(map[string]domain.Participant, len(c.Participants))
	for id, p := range c.Participants {
		cp := p
		if p.Score != nil {
			score := *p.Score
			cp.Score = &score
		}
		if p.TimeTaken != nil {
			taken := *p.TimeTaken
			cp.TimeTaken = &taken
		}
		cp.Answers = append([]domain.Answer(nil), p.Answers...)
		out.Participants[id] = cp
	}
	out.Questions = make([]domain.TestQuestion, len(c.Questions))
	for i, q := range c.Questions {
		cq := q
		cq.Options = append([]string(nil), q.Options...)
		out.Questions[i] = cq
	}
	return out
}
