package service

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/logger"
)

// Service applies the business rules; handlers never talk to the store directly.
type Service struct {
	repo                   Repository
	strictAssignment       bool
	clearCompletedOnReopen bool
	now                    func() time.Time
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		logger.Error("Service: health check failed", err)
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

// uniqueIDs keeps the first occurrence of every id.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	res := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}

// missingIDs returns the wanted ids absent from found.
func missingIDs(wanted []int64, found map[int64]struct{}) []int64 {
	res := []int64{}
	for _, id := range wanted {
		if _, ok := found[id]; !ok {
			res = append(res, id)
		}
	}
	return res
}
