package domain

// TestConfig is the question-bank filter a challenge is built from.
// Fixed at creation; never changes afterwards.
type TestConfig struct {
	Subject      string `json:"subject"`
	Lesson       string `json:"lesson"`
	ExamFilter   string `json:"examFilter,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	NumQuestions int    `json:"numQuestions"`
}

// TestQuestion is a frozen snapshot of a bank question. Later edits to
// the question bank must not affect an in-flight challenge, so the full
// content is copied here at creation time.
type TestQuestion struct {
	ID          string   `json:"id"`
	Text        string   `json:"text,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Options     []string `json:"options"`
	CorrectKey  string   `json:"correctKey"`
	Marks       int      `json:"marks"` // defaults to 1 if the bank left it unset
	Explanation string   `json:"explanation,omitempty"`
}

// Answer is one user answer, matched to a frozen question by ID.
type Answer struct {
	QuestionID string `json:"questionId"`
	Selected   string `json:"selected"`
}

// Participant is one user's membership and per-match state within a challenge.
type Participant struct {
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	AvatarURL string            `json:"avatarUrl,omitempty"`
	Status    ParticipantStatus `json:"status"`
	Score     *int              `json:"score,omitempty"`
	TimeTaken *int              `json:"timeTaken,omitempty"` // seconds
	Answers   []Answer          `json:"answers,omitempty"`
}

// Challenge is a single multi-user quiz match with a frozen question set
// and a wall-clock deadline. Timestamps are epoch milliseconds.
type Challenge struct {
	Code         string                 `json:"challengeCode"`
	CreatorID    string                 `json:"creatorId"`
	CreatorName  string                 `json:"creatorName"`
	Participants map[string]Participant `json:"participants"`
	Config       TestConfig             `json:"testConfig"`
	Questions    []TestQuestion         `json:"questions"`
	Status       ChallengeStatus        `json:"testStatus"`
	CreatedAt    int64                  `json:"createdAt"`
	ExpiresAt    int64                  `json:"expiresAt"`
	StartedAt    int64                  `json:"startedAt,omitempty"`
}

// TestName is the display name shown on invites and history entries.
func (c Challenge) TestName() string {
	if c.Config.Lesson != "" {
		return c.Config.Subject + " - " + c.Config.Lesson
	}
	return c.Config.Subject
}

// TotalMarks is the maximum attainable score for the frozen question set.
func (c Challenge) TotalMarks() int {
	total := 0
	for _, q := range c.Questions {
		total += q.Marks
	}
	return total
}

// ExpiredAt reports whether the deadline has passed at the given
// epoch-millisecond instant. A completed challenge never expires.
func (c Challenge) ExpiredAt(nowMillis int64) bool {
	return c.Status != ChallengeCompleted && nowMillis > c.ExpiresAt
}

// EffectiveStatus is the status a reader should see at the given
// instant, without mutating the stored record.
func (c Challenge) EffectiveStatus(nowMillis int64) ChallengeStatus {
	if c.ExpiredAt(nowMillis) {
		return ChallengeExpired
	}
	return c.Status
}

// Invite mirrors a challenge's existence and the recipient's response
// status inside that recipient's invite document.
type Invite struct {
	ChallengeCode string            `json:"challengeCode"`
	CreatorID     string            `json:"creatorId"`
	CreatorName   string            `json:"creatorName"`
	TestName      string            `json:"testName"`
	NumQuestions  int               `json:"numQuestions"`
	Status        ParticipantStatus `json:"status"`
	CreatedAt     int64             `json:"createdAt"`
	ExpiresAt     int64             `json:"expiresAt"`
}

// UserInvites is the whole invite document stored per user.
type UserInvites struct {
	UserID  string   `json:"userId"`
	Invites []Invite `json:"invites"`
}

// HistoryItem records one completed challenge for one participant.
type HistoryItem struct {
	ChallengeCode    string   `json:"challengeCode"`
	TestName         string   `json:"testName"`
	OpponentNames    []string `json:"opponentNames"`
	Score            int      `json:"score"`
	TotalMarks       int      `json:"totalMarks"`
	Rank             int      `json:"rank"`
	ParticipantCount int      `json:"participantCount"`
	CompletedAt      int64    `json:"completedAt"`
}

// UserHistory is the whole history document stored per user.
type UserHistory struct {
	UserID              string        `json:"userId"`
	CompletedChallenges []HistoryItem `json:"completedChallenges"`
}

// BankQuestion is the question-bank shape returned by a QuestionSource
// before it is frozen into a TestQuestion.
type BankQuestion struct {
	ID          string   `json:"id"`
	Text        string   `json:"text,omitempty"`
	ImagePath   string   `json:"imagePath,omitempty"`
	Options     []string `json:"options"`
	CorrectKey  string   `json:"correctKey"`
	Marks       int      `json:"marks"`
	Explanation string   `json:"explanation,omitempty"`
}

// QuestionFilter selects a candidate pool from the question bank.
type QuestionFilter struct {
	Subject    string
	Lesson     string
	ExamFilter string
	Difficulty string
}

// UserProfile is the directory record for a user.
type UserProfile struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// RankedParticipant is one row of a challenge's result board.
// Rank is assigned densely starting at 1, score descending,
// ties broken by ascending time taken.
type RankedParticipant struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Score     int    `json:"score"`
	TimeTaken *int   `json:"timeTaken,omitempty"`
	Rank      int    `json:"rank"`
}

// Results is the computed outcome of a challenge. Ranks are recomputed
// on every read so late submissions before finalization are tolerated.
type Results struct {
	ChallengeCode string              `json:"challengeCode"`
	TestName      string              `json:"testName"`
	Status        ChallengeStatus     `json:"status"`
	TotalMarks    int                 `json:"totalMarks"`
	Ranked        []RankedParticipant `json:"ranked"`
}

// Submission summarizes the outcome of one participant's submission.
type Submission struct {
	ChallengeCode string          `json:"challengeCode"`
	UserID        string          `json:"userId"`
	Score         int             `json:"score"`
	TotalMarks    int             `json:"totalMarks"`
	TimeTaken     int             `json:"timeTaken"`
	Status        ChallengeStatus `json:"challengeStatus"`
}
