package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"challenge_server/internal/domain"
)

const maxChainDepth = 10

type ChallengeService struct {
	challenges domain.ChallengeSource
}

func NewChallengeService(challenges domain.ChallengeSource) (*ChallengeService, error) {
	if challenges == nil {
		return nil, errors.New("challenge source required")
	}
	return &ChallengeService{challenges: challenges}, nil
}

// Chain returns every phase of the evaluation documentID belongs to, ordered
// by phase. The chain is found by walking parentId up to the root record and
// then listing descendants level by level.
func (s *ChallengeService) Chain(ctx context.Context, documentID string) ([]domain.Challenge, error) {
	if documentID == "" {
		return nil, errors.New("challenge id required")
	}

	current, err := s.challenges.GetChallenge(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch challenge: %w", err)
	}

	seen := map[string]bool{current.DocumentID: true}
	for depth := 0; current.ParentID != "" && depth < maxChainDepth; depth++ {
		if seen[current.ParentID] {
			break
		}
		parent, err := s.challenges.GetChallenge(ctx, current.ParentID)
		if errors.Is(err, domain.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch parent challenge: %w", err)
		}
		seen[parent.DocumentID] = true
		current = parent
	}
	root := current

	chain := []domain.Challenge{root}
	included := map[string]bool{root.DocumentID: true}
	level := []string{root.DocumentID}
	for depth := 0; len(level) > 0 && depth < maxChainDepth; depth++ {
		var next []string
		for _, parentID := range level {
			children, err := s.challenges.ListChallenges(ctx, domain.ChallengeQuery{ParentID: parentID})
			if err != nil {
				return nil, fmt.Errorf("list child challenges: %w", err)
			}
			for _, c := range children {
				if included[c.DocumentID] {
					continue
				}
				included[c.DocumentID] = true
				chain = append(chain, c)
				next = append(next, c.DocumentID)
			}
		}
		level = next
	}
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].Phase < chain[j].Phase
	})
	return chain, nil
}
