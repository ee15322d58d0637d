package app

import (
	"context"
	"fmt"

	"peer-challenge-service/internal/domain"
)

// Submit scores one participant's answers and records the result. The
// participant moves to completed and their score, time and raw answers
// are stored; completed results are immutable even if the challenge
// later expires. A history entry is recorded before the challenge write
// so a failed write can be retried without duplicating history.
func (s *ChallengeService) Submit(ctx context.Context, code, userID string, answers []domain.Answer, timeTakenSec int) (domain.Submission, error) {
	unlock := s.locks.lock(code)
	defer unlock()

	challenge, err := s.load(ctx, code)
	if err != nil {
		return domain.Submission{}, err
	}
	if challenge.ExpiredAt(s.nowMillis()) {
		if err := s.expireLocked(ctx, challenge); err != nil {
			return domain.Submission{}, err
		}
		return domain.Submission{}, domain.ErrExpired
	}

	if challenge.Status != domain.ChallengeStarted {
		return domain.Submission{}, fmt.Errorf("%w: challenge is %s", domain.ErrInvalidState, challenge.Status)
	}
	participant, ok := challenge.Participants[userID]
	if !ok {
		return domain.Submission{}, domain.ErrNotParticipant
	}
	if err := domain.TransitionParticipant(participant.Status, domain.ParticipantCompleted); err != nil {
		return domain.Submission{}, err
	}

	score := scoreAnswers(challenge.Questions, answers)
	stored := make([]domain.Answer, len(answers))
	copy(stored, answers)

	participant.Status = domain.ParticipantCompleted
	participant.Score = &score
	participant.TimeTaken = &timeTakenSec
	participant.Answers = stored
	challenge.Participants[userID] = participant

	if allSettled(challenge) {
		challenge.Status = domain.ChallengeCompleted
	}
	// The deadline may pass while scoring; an overdue challenge that is
	// not yet completed downgrades, but the submission still persists.
	now := s.nowMillis()
	if challenge.ExpiredAt(now) {
		challenge.Status = domain.ChallengeExpired
	}

	item := s.historyItem(challenge, userID, now)
	if err := s.history.Record(ctx, userID, item); err != nil {
		return domain.Submission{}, err
	}
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return domain.Submission{}, err
	}

	if s.ledger != nil && score != 0 {
		if err := s.ledger.ApplyPointsDelta(ctx, userID, score); err != nil {
			s.log.Warnw("points ledger update failed", "userId", userID, "delta", score, "error", err)
		}
	}

	s.log.Infow("submission recorded", "challengeCode", code, "userId", userID,
		"score", score, "challengeStatus", challenge.Status)
	s.notify(ctx, Event{Type: EventSubmitted, ChallengeCode: code, UserID: userID, Challenge: challenge})
	if challenge.Status == domain.ChallengeCompleted {
		s.notify(ctx, Event{Type: EventCompleted, ChallengeCode: code, Challenge: challenge})
	}

	return domain.Submission{
		ChallengeCode: code,
		UserID:        userID,
		Score:         score,
		TotalMarks:    challenge.TotalMarks(),
		TimeTaken:     timeTakenSec,
		Status:        challenge.Status,
	}, nil
}

// historyItem builds the completed-challenge record for one participant.
// Opponent names are the other participants already completed at this
// moment; the rank reflects the current standings and is recomputed by
// Results for final reads.
func (s *ChallengeService) historyItem(challenge domain.Challenge, userID string, completedAt int64) domain.HistoryItem {
	opponents := make([]string, 0, len(challenge.Participants))
	for id, p := range challenge.Participants {
		if id != userID && p.Status == domain.ParticipantCompleted {
			opponents = append(opponents, p.Name)
		}
	}

	rank := 0
	for _, rp := range rankParticipants(challenge.Participants) {
		if rp.UserID == userID {
			rank = rp.Rank
			break
		}
	}

	var score int
	if p := challenge.Participants[userID]; p.Score != nil {
		score = *p.Score
	}
	return domain.HistoryItem{
		ChallengeCode:    challenge.Code,
		TestName:         challenge.TestName(),
		OpponentNames:    opponents,
		Score:            score,
		TotalMarks:       challenge.TotalMarks(),
		Rank:             rank,
		ParticipantCount: len(challenge.Participants),
		CompletedAt:      completedAt,
	}
}
