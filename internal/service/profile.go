package service

import (
	"context"
	"errors"
	"strings"

	"warungledger/backend/internal/domain"
)

var ErrNoActor = errors.New("no authenticated account")

func (s *Service) Profile(ctx context.Context) (domain.Profile, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Profile{}, ErrNoActor
	}
	account, err := s.repo.GetAccount(ctx, actor.AccountID)
	if err != nil {
		return domain.Profile{}, err
	}
	return account.Profile(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.ProfileUpdateRequest) (domain.Profile, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Profile{}, ErrNoActor
	}
	for _, field := range []*string{req.Name, req.CompanyName, req.ProfileImage} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	if err := Validate(req); err != nil {
		return domain.Profile{}, err
	}

	account, err := s.repo.GetAccount(ctx, actor.AccountID)
	if err != nil {
		return domain.Profile{}, err
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.CompanyName != nil {
		account.CompanyName = *req.CompanyName
	}
	if req.ProfileImage != nil {
		account.ProfileImage = *req.ProfileImage
	}

	updated, err := s.repo.UpdateAccount(ctx, *account)
	if err != nil {
		return domain.Profile{}, err
	}
	return updated.Profile(), nil
}
