package app

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"peer-challenge-service/internal/domain"
)

// ChallengeStore persists one Challenge record per challenge code with
// whole-record read/write semantics (memory, Redis, etc).
type ChallengeStore interface {
	Get(ctx context.Context, code string) (domain.Challenge, bool, error)
	Put(ctx context.Context, challenge domain.Challenge) error
	Codes(ctx context.Context) ([]string, error)
}

// InviteStore persists one invite document per invited user.
type InviteStore interface {
	Get(ctx context.Context, userID string) (domain.UserInvites, error)
	Upsert(ctx context.Context, userID string, invite domain.Invite) error
	SetStatus(ctx context.Context, userID, challengeCode string, status domain.ParticipantStatus) error
}

// HistoryStore persists one completed-challenge document per user.
// Record is idempotent per (userID, challengeCode): it overwrites, never duplicates.
type HistoryStore interface {
	Get(ctx context.Context, userID string) (domain.UserHistory, error)
	Record(ctx context.Context, userID string, item domain.HistoryItem) error
}

// QuestionSource returns a candidate pool for a filter. No ordering
// guarantee; the service does its own shuffle.
type QuestionSource interface {
	SelectQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.BankQuestion, error)
}

// UserDirectory resolves a user id to a display profile. Unknown users
// resolve to (nil, nil).
type UserDirectory interface {
	ResolveUser(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// PointsLedger accepts signed point deltas per user. Failures are logged
// by the service and never abort an operation.
type PointsLedger interface {
	ApplyPointsDelta(ctx context.Context, userID string, delta int) error
}

// Notifier publishes lifecycle events to interested systems (e.g. NATS).
// Best-effort from the service's perspective.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// Options wires the service's stores and collaborators. Logger, Directory,
// Ledger and Notifier may be nil; Expiry and Clock fall back to defaults.
type Options struct {
	Challenges ChallengeStore
	Invites    InviteStore
	History    HistoryStore
	Questions  QuestionSource
	Directory  UserDirectory
	Ledger     PointsLedger
	Notifier   Notifier
	Logger     *zap.SugaredLogger
	Expiry     time.Duration
	Clock      func() time.Time
}

const defaultExpiry = 3 * time.Hour

// ChallengeService implements the peer challenge lifecycle: creation with
// invite fan-out, accept/reject, creator-gated start, independent
// submissions with scoring, ranking, history recording and expiry policy.
//
// Every mutating operation serializes on a per-challenge-code mutex before
// its read-modify-write cycle, so concurrent submissions cannot clobber
// each other's status transitions.
type ChallengeService struct {
	challenges ChallengeStore
	invites    InviteStore
	history    HistoryStore
	questions  QuestionSource
	directory  UserDirectory
	ledger     PointsLedger
	notifier   Notifier
	log        *zap.SugaredLogger
	expiry     time.Duration
	now        func() time.Time
	locks      keyedMutex
	hub        eventHub
	codes      codeGenerator
}

func NewChallengeService(opts Options) *ChallengeService {
	if opts.Expiry <= 0 {
		opts.Expiry = defaultExpiry
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &ChallengeService{
		challenges: opts.Challenges,
		invites:    opts.Invites,
		history:    opts.History,
		questions:  opts.Questions,
		directory:  opts.Directory,
		ledger:     opts.Ledger,
		notifier:   opts.Notifier,
		log:        opts.Logger,
		expiry:     opts.Expiry,
		now:        opts.Clock,
		codes:      codeGenerator{rnd: rand.New(rand.NewSource(opts.Clock().UnixNano()))},
	}
}

func (s *ChallengeService) nowMillis() int64 {
	return s.now().UnixMilli()
}

// lookupProfile is a best-effort directory lookup; failures are logged
// and reported as a miss.
func (s *ChallengeService) lookupProfile(ctx context.Context, userID string) (domain.UserProfile, bool) {
	if s.directory == nil {
		return domain.UserProfile{}, false
	}
	profile, err := s.directory.ResolveUser(ctx, userID)
	if err != nil {
		s.log.Warnw("user directory lookup failed", "userId", userID, "error", err)
		return domain.UserProfile{}, false
	}
	if profile == nil || profile.Name == "" {
		return domain.UserProfile{}, false
	}
	return *profile, true
}

// resolveProfile falls back to the user id as display name on a miss.
func (s *ChallengeService) resolveProfile(ctx context.Context, userID string) domain.UserProfile {
	if profile, ok := s.lookupProfile(ctx, userID); ok {
		return profile
	}
	return domain.UserProfile{Name: userID}
}

func (s *ChallengeService) notify(ctx context.Context, event Event) {
	s.hub.broadcast(event)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warnw("notifier publish failed", "event", event.Type, "challengeCode", event.ChallengeCode, "error", err)
	}
}

// load fetches a challenge, mapping a missing record to ErrChallengeNotFound.
func (s *ChallengeService) load(ctx context.Context, code string) (domain.Challenge, error) {
	challenge, found, err := s.challenges.Get(ctx, code)
	if err != nil {
		return domain.Challenge{}, err
	}
	if !found {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return challenge, nil
}

// expireLocked persists the lazy expired downgrade. Callers must hold the
// challenge's lock and have verified the deadline has passed.
func (s *ChallengeService) expireLocked(ctx context.Context, challenge domain.Challenge) error {
	if challenge.Status.Terminal() {
		return nil
	}
	challenge.Status = domain.ChallengeExpired
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return err
	}
	s.notify(ctx, Event{Type: EventExpired, ChallengeCode: challenge.Code, Challenge: challenge})
	return nil
}

// GetChallenge returns the challenge with its effective status at read
// time. Reads are pure: an overdue record is reported as expired but the
// downgrade is only persisted by the next mutating operation or the sweep.
func (s *ChallengeService) GetChallenge(ctx context.Context, code string) (domain.Challenge, error) {
	challenge, err := s.load(ctx, code)
	if err != nil {
		return domain.Challenge{}, err
	}
	challenge.Status = challenge.EffectiveStatus(s.nowMillis())
	return challenge, nil
}

// ListInvites returns the user's invite entries, newest first.
func (s *ChallengeService) ListInvites(ctx context.Context, userID string) ([]domain.Invite, error) {
	doc, err := s.invites.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return doc.Invites, nil
}

// History returns the user's completed-challenge entries.
func (s *ChallengeService) History(ctx context.Context, userID string) ([]domain.HistoryItem, error) {
	doc, err := s.history.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return doc.CompletedChallenges, nil
}

// Subscribe returns a channel receiving lifecycle events for a challenge.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ChallengeService) Subscribe(ctx context.Context, code string) (<-chan Event, func(), error) {
	if _, err := s.load(ctx, code); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.subscribe(code)
	return ch, cancel, nil
}
