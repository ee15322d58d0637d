package app

import (
	"context"
	"fmt"

	"peer-challenge-service/internal/domain"
)

// Respond records a participant's accept or reject. Repeating the same
// response is a no-op; responding after reaching a terminal status is
// rejected. The new status is mirrored into the user's invite document.
func (s *ChallengeService) Respond(ctx context.Context, code, userID string, accept bool) (domain.Challenge, error) {
	unlock := s.locks.lock(code)
	defer unlock()

	challenge, err := s.load(ctx, code)
	if err != nil {
		return domain.Challenge{}, err
	}
	if challenge.ExpiredAt(s.nowMillis()) {
		if err := s.expireLocked(ctx, challenge); err != nil {
			return domain.Challenge{}, err
		}
		return domain.Challenge{}, domain.ErrExpired
	}

	participant, ok := challenge.Participants[userID]
	if !ok {
		return domain.Challenge{}, domain.ErrNotParticipant
	}

	target := domain.ParticipantRejected
	if accept {
		target = domain.ParticipantAccepted
	}
	if err := domain.TransitionParticipant(participant.Status, target); err != nil {
		return domain.Challenge{}, err
	}
	if participant.Status == target {
		return challenge, nil
	}

	participant.Status = target
	if accept {
		if profile, ok := s.lookupProfile(ctx, userID); ok {
			participant.Name = profile.Name
			participant.AvatarURL = profile.AvatarURL
		}
	}
	challenge.Participants[userID] = participant

	if err := s.challenges.Put(ctx, challenge); err != nil {
		return domain.Challenge{}, err
	}
	if err := s.invites.SetStatus(ctx, userID, code, target); err != nil {
		return domain.Challenge{}, err
	}

	s.notify(ctx, Event{Type: EventResponded, ChallengeCode: code, UserID: userID, Challenge: challenge})
	return challenge, nil
}

// Start moves a waiting challenge to started. Creator-gated; every
// invited participant must have responded, though a challenge whose
// invitees all rejected (or that never had any) starts solo.
func (s *ChallengeService) Start(ctx context.Context, code, userID string) (domain.Challenge, error) {
	unlock := s.locks.lock(code)
	defer unlock()

	challenge, err := s.load(ctx, code)
	if err != nil {
		return domain.Challenge{}, err
	}
	if challenge.ExpiredAt(s.nowMillis()) {
		if err := s.expireLocked(ctx, challenge); err != nil {
			return domain.Challenge{}, err
		}
		return domain.Challenge{}, domain.ErrExpired
	}

	if userID != challenge.CreatorID {
		return domain.Challenge{}, domain.ErrUnauthorized
	}
	if challenge.Status != domain.ChallengeWaiting {
		return domain.Challenge{}, fmt.Errorf("%w: challenge is %s", domain.ErrInvalidState, challenge.Status)
	}
	for _, p := range challenge.Participants {
		if p.Status == domain.ParticipantPending {
			return domain.Challenge{}, fmt.Errorf("%w: not all participants have responded", domain.ErrInvalidState)
		}
	}

	challenge.Status = domain.ChallengeStarted
	challenge.StartedAt = s.nowMillis()
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return domain.Challenge{}, err
	}

	s.log.Infow("challenge started", "challengeCode", code)
	s.notify(ctx, Event{Type: EventStarted, ChallengeCode: code, UserID: userID, Challenge: challenge})
	return challenge, nil
}
