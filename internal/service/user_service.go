package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/repository"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserService exposes user lookup and profile updates.
type UserService interface {
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor Actor) (dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds a new user service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

// Update changes a user's profile. Users may edit themselves; only admins
// may edit others or grant admin rights.
func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}
	if actor.ID != id && !actor.IsAdmin {
		return dto.UserResponse{}, ErrPermissionDenied
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = *payload.Name
	}
	if payload.Email != nil {
		user.Email = *payload.Email
	}
	if payload.AvatarURL != nil {
		user.AvatarURL = *payload.AvatarURL
	}
	if payload.IsAdmin != nil {
		if !actor.IsAdmin {
			return dto.UserResponse{}, ErrPermissionDenied
		}
		user.IsAdmin = *payload.IsAdmin
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user updated")
	return dto.NewUserResponse(user), nil
}
