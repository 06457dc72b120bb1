package profile

import (
	"context"

	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/models"
)

type Service interface {
	GetOrCreate(ctx context.Context, user *auth.User) (*models.Profile, error)
	Update(ctx context.Context, user *auth.User, upd models.ProfileUpdate) (*models.Profile, error)
}

type ProfileService struct {
	repo Repository
}

func NewProfileService(repo Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) GetOrCreate(ctx context.Context, user *auth.User) (*models.Profile, error) {
	return s.repo.GetOrCreate(ctx, user.ID, user.Email, user.FullName)
}

func (s *ProfileService) Update(ctx context.Context, user *auth.User, upd models.ProfileUpdate) (*models.Profile, error) {
	p, err := s.GetOrCreate(ctx, user)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return p, nil
	}
	return s.repo.UpdateDetails(ctx, user.ID, upd)
}
