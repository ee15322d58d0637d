package app

import (
	"context"
	"fmt"
	"strings"

	"peer-challenge-service/internal/domain"
)

// CreateParams is the input to Create.
type CreateParams struct {
	CreatorID     string
	CreatorName   string
	Config        domain.TestConfig
	ChallengedIDs []string
}

func (p CreateParams) validate() error {
	if p.CreatorID == "" {
		return fmt.Errorf("%w: creator id is required", domain.ErrInvalidState)
	}
	if p.Config.Subject == "" {
		return fmt.Errorf("%w: subject is required", domain.ErrInvalidState)
	}
	if p.Config.NumQuestions <= 0 {
		return fmt.Errorf("%w: question count must be positive", domain.ErrInvalidState)
	}
	return nil
}

// Create builds a challenge: selects and freezes the question snapshot,
// builds the participant map with the creator pre-accepted, persists the
// record and fans one invite out to each challenged user. A pool smaller
// than the requested count aborts before anything is written.
func (s *ChallengeService) Create(ctx context.Context, params CreateParams) (domain.Challenge, error) {
	if err := params.validate(); err != nil {
		return domain.Challenge{}, err
	}

	pool, err := s.questions.SelectQuestions(ctx, domain.QuestionFilter{
		Subject:    params.Config.Subject,
		Lesson:     params.Config.Lesson,
		ExamFilter: params.Config.ExamFilter,
		Difficulty: params.Config.Difficulty,
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	if len(pool) < params.Config.NumQuestions {
		return domain.Challenge{}, fmt.Errorf("%w: need %d, pool has %d",
			domain.ErrInsufficientQuestions, params.Config.NumQuestions, len(pool))
	}

	frozen := make([]domain.TestQuestion, 0, params.Config.NumQuestions)
	for _, idx := range s.codes.perm(len(pool))[:params.Config.NumQuestions] {
		frozen = append(frozen, freezeQuestion(pool[idx]))
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return domain.Challenge{}, err
	}

	now := s.nowMillis()
	creatorName := params.CreatorName
	if creatorName == "" {
		creatorName = s.resolveProfile(ctx, params.CreatorID).Name
	}

	participants := map[string]domain.Participant{
		params.CreatorID: {
			UserID:    params.CreatorID,
			Name:      creatorName,
			AvatarURL: s.resolveProfile(ctx, params.CreatorID).AvatarURL,
			Status:    domain.ParticipantAccepted,
		},
	}
	challenged := dedupe(params.ChallengedIDs, params.CreatorID)
	for _, userID := range challenged {
		profile := s.resolveProfile(ctx, userID)
		participants[userID] = domain.Participant{
			UserID:    userID,
			Name:      profile.Name,
			AvatarURL: profile.AvatarURL,
			Status:    domain.ParticipantPending,
		}
	}

	challenge := domain.Challenge{
		Code:         code,
		CreatorID:    params.CreatorID,
		CreatorName:  creatorName,
		Participants: participants,
		Config:       params.Config,
		Questions:    frozen,
		Status:       domain.ChallengeWaiting,
		CreatedAt:    now,
		ExpiresAt:    now + s.expiry.Milliseconds(),
	}

	if err := s.challenges.Put(ctx, challenge); err != nil {
		return domain.Challenge{}, err
	}

	invite := domain.Invite{
		ChallengeCode: code,
		CreatorID:     params.CreatorID,
		CreatorName:   creatorName,
		TestName:      challenge.TestName(),
		NumQuestions:  params.Config.NumQuestions,
		Status:        domain.ParticipantPending,
		CreatedAt:     now,
		ExpiresAt:     challenge.ExpiresAt,
	}
	for _, userID := range challenged {
		if err := s.invites.Upsert(ctx, userID, invite); err != nil {
			return domain.Challenge{}, err
		}
		s.notify(ctx, Event{Type: EventInvited, ChallengeCode: code, UserID: userID, Challenge: challenge})
	}

	s.log.Infow("challenge created", "challengeCode", code, "creatorId", params.CreatorID,
		"invited", len(challenged), "questions", len(frozen))
	return challenge, nil
}

// freezeQuestion converts a bank question into the frozen snapshot shape:
// options copied, image paths resolved to URLs, missing marks defaulted to 1.
func freezeQuestion(q domain.BankQuestion) domain.TestQuestion {
	marks := q.Marks
	if marks <= 0 {
		marks = 1
	}
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return domain.TestQuestion{
		ID:          q.ID,
		Text:        q.Text,
		ImageURL:    resolveImageURL(q.ImagePath),
		Options:     options,
		CorrectKey:  q.CorrectKey,
		Marks:       marks,
		Explanation: q.Explanation,
	}
}

func resolveImageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return "/media/questions/" + strings.TrimPrefix(path, "/")
}

// dedupe preserves order, dropping duplicates, empties and the creator.
func dedupe(ids []string, creatorID string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == creatorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
