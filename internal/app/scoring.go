package app

import (
	"sort"

	"peer-challenge-service/internal/domain"
)

// scoreAnswers walks the frozen questions in order, locating the matching
// answer by question id. An exact match on the correct option key adds
// that question's marks. No partial credit, no negative marking.
func scoreAnswers(questions []domain.TestQuestion, answers []domain.Answer) int {
	byQuestion := make(map[string]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Selected
	}

	score := 0
	for _, q := range questions {
		if selected, ok := byQuestion[q.ID]; ok && selected == q.CorrectKey {
			score += q.Marks
		}
	}
	return score
}

// rankParticipants takes the completed participants and assigns dense
// ranks starting at 1: score descending, ties broken by ascending time
// taken, unset time taken sorting last. Participants tied on both score
// and time share a rank.
func rankParticipants(participants map[string]domain.Participant) []domain.RankedParticipant {
	ranked := make([]domain.RankedParticipant, 0, len(participants))
	for _, p := range participants {
		if p.Status != domain.ParticipantCompleted {
			continue
		}
		score := 0
		if p.Score != nil {
			score = *p.Score
		}
		ranked = append(ranked, domain.RankedParticipant{
			UserID:    p.UserID,
			Name:      p.Name,
			AvatarURL: p.AvatarURL,
			Score:     score,
			TimeTaken: p.TimeTaken,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ti, tj := ranked[i].TimeTaken, ranked[j].TimeTaken
		switch {
		case ti == nil && tj == nil:
			return ranked[i].UserID < ranked[j].UserID
		case ti == nil:
			return false
		case tj == nil:
			return true
		case *ti != *tj:
			return *ti < *tj
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	rank := 0
	for i := range ranked {
		if i == 0 || !sameStanding(ranked[i-1], ranked[i]) {
			rank++
		}
		ranked[i].Rank = rank
	}
	return ranked
}

func sameStanding(a, b domain.RankedParticipant) bool {
	if a.Score != b.Score {
		return false
	}
	if (a.TimeTaken == nil) != (b.TimeTaken == nil) {
		return false
	}
	return a.TimeTaken == nil || *a.TimeTaken == *b.TimeTaken
}

// allSettled reports whether every participant has reached a terminal
// status. The creator's pre-accepted state counts as settled, so a match
// completes once every invitee finished or rejected even if the creator
// never took the test.
func allSettled(c domain.Challenge) bool {
	for id, p := range c.Participants {
		if p.Status.Terminal() {
			continue
		}
		if id == c.CreatorID && p.Status == domain.ParticipantAccepted {
			continue
		}
		return false
	}
	return true
}
