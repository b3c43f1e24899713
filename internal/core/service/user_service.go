package service

import (
	"context"
	"fmt"

	"github.com/clearcut/entitlement-system/internal/core/domain"
	"github.com/clearcut/entitlement-system/internal/core/ports"
)

// UserService implements administrative identity reads.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context, requesterID string) ([]domain.User, error) {
	requester, err := s.repo.FindByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if !requester.IsAdmin {
		return nil, domain.ErrAccessDenied
	}
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, requesterID, targetID string) (*domain.User, error) {
	if requesterID != targetID {
		requester, err := s.repo.FindByID(ctx, requesterID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		if !requester.IsAdmin {
			return nil, domain.ErrAccessDenied
		}
	}
	return s.repo.FindByID(ctx, targetID)
}
