package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"peer-challenge-service/internal/domain"
)

// QuestionSource selects candidate pools from the questions table, where
// each row carries its filter columns plus the bank question as JSONB.
type QuestionSource struct {
	pool *pgxpool.Pool
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{pool: pool}
}

func (s *QuestionSource) SelectQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.BankQuestion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM questions
		WHERE subject = $1
		  AND ($2 = '' OR lesson = $2)
		  AND ($3 = '' OR exam = $3)
		  AND ($4 = '' OR difficulty = $4)`,
		filter.Subject, filter.Lesson, filter.ExamFilter, filter.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.BankQuestion
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var question domain.BankQuestion
		if err := json.Unmarshal(raw, &question); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	return questions, nil
}
