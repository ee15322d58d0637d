package domain

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeWaiting   ChallengeStatus = "waiting"
	ChallengeStarted   ChallengeStatus = "started"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeExpired   ChallengeStatus = "expired"
)

// Terminal reports whether no further challenge transition is permitted.
func (s ChallengeStatus) Terminal() bool {
	return s == ChallengeCompleted || s == ChallengeExpired
}

// ParticipantStatus is one user's response state within a challenge.
type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantAccepted  ParticipantStatus = "accepted"
	ParticipantRejected  ParticipantStatus = "rejected"
	ParticipantCompleted ParticipantStatus = "completed"
)

// Terminal reports whether the participant can take no further action.
func (s ParticipantStatus) Terminal() bool {
	return s == ParticipantRejected || s == ParticipantCompleted
}

// TransitionParticipant validates the forward-only participant graph:
// pending -> {accepted, rejected}, accepted -> completed. Repeating the
// current status is a harmless no-op; leaving a terminal state is not.
func TransitionParticipant(from, to ParticipantStatus) error {
	if from == to {
		return nil
	}
	if from.Terminal() {
		return ErrAlreadyFinalized
	}
	switch from {
	case ParticipantPending:
		if to == ParticipantAccepted || to == ParticipantRejected {
			return nil
		}
	case ParticipantAccepted:
		if to == ParticipantCompleted {
			return nil
		}
	}
	return ErrInvalidState
}

// TransitionChallenge validates waiting -> started -> {completed, expired}.
// waiting may also expire directly if nobody ever starts the match.
func TransitionChallenge(from, to ChallengeStatus) error {
	if from == to {
		return nil
	}
	if from.Terminal() {
		return ErrInvalidState
	}
	switch from {
	case ChallengeWaiting:
		if to == ChallengeStarted || to == ChallengeExpired {
			return nil
		}
	case ChallengeStarted:
		if to == ChallengeCompleted || to == ChallengeExpired {
			return nil
		}
	}
	return ErrInvalidState
}
