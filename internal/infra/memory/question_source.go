package memory

import (
	"context"

	"peer-challenge-service/internal/domain"
)

// StaticQuestionSource serves fixed candidate pools keyed by filter
// (useful for tests/demos). Unknown filters return an empty pool, which
// the service ultimately surfaces as an insufficient-questions error.
type StaticQuestionSource struct {
	pools map[domain.QuestionFilter][]domain.BankQuestion
}

func NewStaticQuestionSource(pools map[domain.QuestionFilter][]domain.BankQuestion) *StaticQuestionSource {
	return &StaticQuestionSource{pools: pools}
}

func (s *StaticQuestionSource) SelectQuestions(_ context.Context, filter domain.QuestionFilter) ([]domain.BankQuestion, error) {
	pool := s.pools[filter]
	out := make([]domain.BankQuestion, len(pool))
	copy(out, pool)
	return out, nil
}
