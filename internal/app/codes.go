package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// Challenge codes look like CHG-4821-0937-K4QX: a fixed prefix, two
// random 4-digit groups and a short alphanumeric suffix.
const (
	codePrefix      = "CHG"
	codeSuffixLen   = 4
	codeSuffixChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeMaxAttempts = 5
)

type codeGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (g *codeGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	suffix := make([]byte, codeSuffixLen)
	for i := range suffix {
		suffix[i] = codeSuffixChars[g.rnd.Intn(len(codeSuffixChars))]
	}
	return fmt.Sprintf("%s-%04d-%04d-%s", codePrefix, g.rnd.Intn(10000), g.rnd.Intn(10000), suffix)
}

// uniqueCode probes the store before settling on a code, retrying on
// the rare collision.
func (s *ChallengeService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code := s.codes.next()
		_, found, err := s.challenges.Get(ctx, code)
		if err != nil {
			return "", err
		}
		if !found {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique challenge code after %d attempts", codeMaxAttempts)
}

// perm returns a uniform random permutation of [0, n), used to shuffle
// the candidate pool before freezing the first N questions.
func (g *codeGenerator) perm(n int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Perm(n)
}
