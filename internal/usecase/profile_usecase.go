package usecase

import (
	"context"
	"errors"

	repo "storefront/internal/repository"
)

// 配送先プロフィールの参照
type ProfileUsecase struct {
	profiles repo.ProfileReader
}

func NewProfileUsecase(profiles repo.ProfileReader) *ProfileUsecase {
	return &ProfileUsecase{profiles: profiles}
}

type ProfileOutput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

func (u *ProfileUsecase) GetProfile(ctx context.Context, userID int64) (ProfileOutput, error) {
	if userID <= 0 {
		return ProfileOutput{}, errUnauthenticated
	}
	p, err := u.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProfileOutput{}, NewError(KindNotFound, "profile not found")
	}
	if err != nil {
		return ProfileOutput{}, WrapError(KindInternal, "db error", err)
	}
	return ProfileOutput{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Email:     p.Email,
		Address:   p.Address,
		City:      p.City,
		State:     p.State,
		Zip:       p.Zip,
	}, nil
}
