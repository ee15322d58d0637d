package app

import (
	"context"

	"peer-challenge-service/internal/domain"
)

// Results computes the ranked outcome of a challenge. Ranks are derived
// on every read rather than persisted, so late submissions before
// finalization are reflected and repeated reads over unchanged data are
// identical. The board is meaningful once the challenge is completed or
// expired but may be read earlier for live standings.
func (s *ChallengeService) Results(ctx context.Context, code string) (domain.Results, error) {
	challenge, err := s.load(ctx, code)
	if err != nil {
		return domain.Results{}, err
	}

	return domain.Results{
		ChallengeCode: code,
		TestName:      challenge.TestName(),
		Status:        challenge.EffectiveStatus(s.nowMillis()),
		TotalMarks:    challenge.TotalMarks(),
		Ranked:        rankParticipants(challenge.Participants),
	}, nil
}

// SweepExpired persists the expired downgrade for overdue challenges that
// nothing has touched, and returns how many records it downgraded. Reads
// stay pure; this sweep and the mutating operations are the only writers
// of the lazy transition.
func (s *ChallengeService) SweepExpired(ctx context.Context) (int, error) {
	codes, err := s.challenges.Codes(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return swept, err
		}
		n, err := s.sweepOne(ctx, code)
		if err != nil {
			s.log.Warnw("expiry sweep failed for challenge", "challengeCode", code, "error", err)
			continue
		}
		swept += n
	}
	if swept > 0 {
		s.log.Infow("expiry sweep finished", "expired", swept, "scanned", len(codes))
	}
	return swept, nil
}

func (s *ChallengeService) sweepOne(ctx context.Context, code string) (int, error) {
	unlock := s.locks.lock(code)
	defer unlock()

	challenge, found, err := s.challenges.Get(ctx, code)
	if err != nil || !found {
		return 0, err
	}
	if !challenge.ExpiredAt(s.nowMillis()) {
		return 0, nil
	}
	if err := s.expireLocked(ctx, challenge); err != nil {
		return 0, err
	}
	return 1, nil
}
