package domain

import (
	"errors"
	"testing"
)

func TestParticipantTransitionsForwardOnly(t *testing.T) {
	cases := []struct {
		from, to ParticipantStatus
		wantErr  error
	}{
		{ParticipantPending, ParticipantAccepted, nil},
		{ParticipantPending, ParticipantRejected, nil},
		{ParticipantAccepted, ParticipantCompleted, nil},
		{ParticipantAccepted, ParticipantAccepted, nil}, // idempotent repeat
		{ParticipantPending, ParticipantCompleted, ErrInvalidState},
		{ParticipantAccepted, ParticipantRejected, ErrInvalidState},
		{ParticipantRejected, ParticipantAccepted, ErrAlreadyFinalized},
		{ParticipantCompleted, ParticipantAccepted, ErrAlreadyFinalized},
		{ParticipantCompleted, ParticipantRejected, ErrAlreadyFinalized},
	}
	for _, tc := range cases {
		err := TransitionParticipant(tc.from, tc.to)
		if tc.wantErr == nil && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, err, tc.wantErr)
		}
	}
}

func TestAlreadyFinalizedIsInvalidState(t *testing.T) {
	if !errors.Is(ErrAlreadyFinalized, ErrInvalidState) {
		t.Fatalf("expected ErrAlreadyFinalized to match ErrInvalidState")
	}
}

func TestChallengeTransitions(t *testing.T) {
	if err := TransitionChallenge(ChallengeWaiting, ChallengeStarted); err != nil {
		t.Fatalf("waiting -> started: %v", err)
	}
	if err := TransitionChallenge(ChallengeStarted, ChallengeCompleted); err != nil {
		t.Fatalf("started -> completed: %v", err)
	}
	if err := TransitionChallenge(ChallengeWaiting, ChallengeCompleted); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("waiting -> completed should be rejected, got %v", err)
	}
	if err := TransitionChallenge(ChallengeExpired, ChallengeStarted); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expired is terminal, got %v", err)
	}
}

func TestEffectiveStatusIsPure(t *testing.T) {
	ch := Challenge{Status: ChallengeStarted, ExpiresAt: 1000}
	if got := ch.EffectiveStatus(2000); got != ChallengeExpired {
		t.Fatalf("expected expired view, got %s", got)
	}
	if ch.Status != ChallengeStarted {
		t.Fatalf("stored status must not change on read")
	}

	done := Challenge{Status: ChallengeCompleted, ExpiresAt: 1000}
	if got := done.EffectiveStatus(2000); got != ChallengeCompleted {
		t.Fatalf("completed challenge never downgrades, got %s", got)
	}
}

func TestTotalMarks(t *testing.T) {
	ch := Challenge{Questions: []TestQuestion{{Marks: 2}, {Marks: 1}, {Marks: 4}}}
	if got := ch.TotalMarks(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}
