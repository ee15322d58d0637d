package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"peer-challenge-service/internal/domain"
)

func intPtr(v int) *int { return &v }

func completedParticipant(userID, name string, score, timeTaken int) domain.Participant {
	return domain.Participant{
		UserID:    userID,
		Name:      name,
		Status:    domain.ParticipantCompleted,
		Score:     intPtr(score),
		TimeTaken: intPtr(timeTaken),
	}
}

func TestResultsRanksByScoreThenTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	challenge := domain.Challenge{
		Code:      "CHG-1111-2222-AAAA",
		CreatorID: "alice",
		Config:    domain.TestConfig{Subject: "math", Lesson: "arithmetic", NumQuestions: 3},
		Questions: []domain.TestQuestion{
			{ID: "q1", CorrectKey: "a", Marks: 5},
			{ID: "q2", CorrectKey: "b", Marks: 5},
			{ID: "q3", CorrectKey: "c", Marks: 5},
		},
		Participants: map[string]domain.Participant{
			"alice": completedParticipant("alice", "Alice", 10, 30),
			"bob":   completedParticipant("bob", "Bob", 10, 20),
			"cara":  completedParticipant("cara", "Cara", 5, 40),
		},
		Status:    domain.ChallengeCompleted,
		CreatedAt: env.clock.Now().UnixMilli(),
		ExpiresAt: env.clock.Now().Add(4 * time.Hour).UnixMilli(),
	}
	if err := env.challenges.Put(ctx, challenge); err != nil {
		t.Fatalf("put: %v", err)
	}

	results, err := env.svc.Results(ctx, challenge.Code)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.TotalMarks != 15 {
		t.Fatalf("expected total marks 15, got %d", results.TotalMarks)
	}

	var order []string
	var ranks []int
	for _, rp := range results.Ranked {
		order = append(order, rp.UserID)
		ranks = append(ranks, rp.Rank)
	}
	// Equal scores break ties on the faster time.
	if !reflect.DeepEqual(order, []string{"bob", "alice", "cara"}) {
		t.Fatalf("unexpected order %v", order)
	}
	if !reflect.DeepEqual(ranks, []int{1, 2, 3}) {
		t.Fatalf("unexpected ranks %v", ranks)
	}
}

func TestResultsSharedRankForExactTies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	challenge := domain.Challenge{
		Code:      "CHG-3333-4444-BBBB",
		CreatorID: "alice",
		Config:    domain.TestConfig{Subject: "math", NumQuestions: 1},
		Questions: []domain.TestQuestion{{ID: "q1", CorrectKey: "a", Marks: 10}},
		Participants: map[string]domain.Participant{
			"alice": completedParticipant("alice", "Alice", 10, 30),
			"bob":   completedParticipant("bob", "Bob", 10, 30),
			"cara":  completedParticipant("cara", "Cara", 5, 10),
		},
		Status:    domain.ChallengeCompleted,
		CreatedAt: env.clock.Now().UnixMilli(),
		ExpiresAt: env.clock.Now().Add(4 * time.Hour).UnixMilli(),
	}
	env.challenges.Put(ctx, challenge)

	results, err := env.svc.Results(ctx, challenge.Code)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Ranked[0].Rank != 1 || results.Ranked[1].Rank != 1 {
		t.Fatalf("exact ties must share rank 1, got %d and %d", results.Ranked[0].Rank, results.Ranked[1].Rank)
	}
	if results.Ranked[2].Rank != 2 {
		t.Fatalf("dense ranking expected rank 2 after a shared rank 1, got %d", results.Ranked[2].Rank)
	}
}

func TestResultsExcludesUnfinishedParticipants(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	challenge, _ := env.svc.Create(ctx, createParams("bob", "cara"))
	env.svc.Respond(ctx, challenge.Code, "bob", true)
	env.svc.Respond(ctx, challenge.Code, "cara", false)
	env.svc.Start(ctx, challenge.Code, "alice")
	env.svc.Submit(ctx, challenge.Code, "alice", correctAnswers(challenge), 20)

	results, err := env.svc.Results(ctx, challenge.Code)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results.Ranked) != 1 || results.Ranked[0].UserID != "alice" {
		t.Fatalf("only completed participants belong on the board, got %+v", results.Ranked)
	}
}

func TestResultsStableAcrossReads(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	challenge, _ := env.svc.Create(ctx, createParams("bob"))
	env.svc.Respond(ctx, challenge.Code, "bob", true)
	env.svc.Start(ctx, challenge.Code, "alice")
	env.svc.Submit(ctx, challenge.Code, "alice", correctAnswers(challenge), 20)
	env.svc.Submit(ctx, challenge.Code, "bob", correctAnswers(challenge), 35)

	first, err := env.svc.Results(ctx, challenge.Code)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	second, _ := env.svc.Results(ctx, challenge.Code)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated reads over unchanged data must be identical")
	}
}

func TestResultsUnknownChallenge(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Results(context.Background(), "CHG-0000-0000-ZZZZ"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}
