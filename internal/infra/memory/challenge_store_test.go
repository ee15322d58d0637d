package memory

import (
	"context"
	"sort"
	"testing"

	"peer-challenge-service/internal/domain"
)

func TestChallengeStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewChallengeStore()

	score := 5
	challenge := domain.Challenge{
		Code:      "CHG-1111-1111-AAAA",
		CreatorID: "alice",
		Participants: map[string]domain.Participant{
			"alice": {UserID: "alice", Name: "Alice", Status: domain.ParticipantCompleted, Score: &score},
		},
		Questions: []domain.TestQuestion{
			{ID: "q1", Options: []string{"a", "b"}, CorrectKey: "a", Marks: 1},
		},
		Status: domain.ChallengeStarted,
	}
	if err := store.Put(ctx, challenge); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's copy after Put must not leak into the store.
	challenge.Participants["alice"] = domain.Participant{UserID: "alice", Status: domain.ParticipantRejected}
	challenge.Questions[0].Options[0] = "tampered"
	score = 0

	got, found, err := store.Get(ctx, "CHG-1111-1111-AAAA")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.Participants["alice"].Status != domain.ParticipantCompleted {
		t.Fatalf("stored participant was aliased to the caller's copy")
	}
	if got.Participants["alice"].Score == nil || *got.Participants["alice"].Score != 5 {
		t.Fatalf("stored score was aliased to the caller's pointer")
	}
	if got.Questions[0].Options[0] != "a" {
		t.Fatalf("stored options were aliased to the caller's copy")
	}

	// Same for the copy handed out by Get.
	got.Participants["alice"] = domain.Participant{UserID: "alice", Status: domain.ParticipantPending}
	again, _, _ := store.Get(ctx, "CHG-1111-1111-AAAA")
	if again.Participants["alice"].Status != domain.ParticipantCompleted {
		t.Fatalf("Get must hand out an independent copy")
	}
}

func TestChallengeStoreCodes(t *testing.T) {
	ctx := context.Background()
	store := NewChallengeStore()

	if codes, err := store.Codes(ctx); err != nil || len(codes) != 0 {
		t.Fatalf("expected no codes, got %v err=%v", codes, err)
	}

	store.Put(ctx, domain.Challenge{Code: "CHG-1111-1111-AAAA"})
	store.Put(ctx, domain.Challenge{Code: "CHG-2222-2222-BBBB"})

	codes, err := store.Codes(ctx)
	if err != nil {
		t.Fatalf("codes: %v", err)
	}
	sort.Strings(codes)
	if len(codes) != 2 || codes[0] != "CHG-1111-1111-AAAA" || codes[1] != "CHG-2222-2222-BBBB" {
		t.Fatalf("unexpected codes %v", codes)
	}
}
