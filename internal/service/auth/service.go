package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mindwell/booking-api/internal/model"
	"github.com/mindwell/booking-api/internal/repository"
	"github.com/mindwell/booking-api/internal/schedule"
	"github.com/mindwell/booking-api/pkg/auth"
	apperrors "github.com/mindwell/booking-api/pkg/errors"
	"github.com/mindwell/booking-api/pkg/security"
)

const bcryptCost = 12

type Service struct {
	userRepo      repository.UserRepository
	therapistRepo repository.TherapistRepository
	jwtSvc        auth.JWTService
	hasher        security.PasswordHasher
	tokenExpiry   time.Duration
	defaultWeek   func() schedule.Week
}

// NewService wires the auth service. defaultWeek supplies the weekly
// availability assigned to newly registered therapists; it is a factory
// so every therapist gets an independent copy.
func NewService(userRepo repository.UserRepository, therapistRepo repository.TherapistRepository,
	jwtSvc auth.JWTService, tokenExpiry time.Duration, defaultWeek func() schedule.Week) *Service {
	return &Service{
		userRepo:      userRepo,
		therapistRepo: therapistRepo,
		jwtSvc:        jwtSvc,
		hasher:        security.NewBcryptHasher(bcryptCost),
		tokenExpiry:   tokenExpiry,
		defaultWeek:   defaultWeek,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.UserStatusActive,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered", err)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if user.IsTherapist() {
		therapist := &model.Therapist{
			Base:               model.Base{ID: user.ID},
			Name:               user.Name,
			Email:              user.Email,
			Specialization:     req.Specialization,
			Bio:                req.Bio,
			WeeklyAvailability: model.WeeklySchedule{Week: s.defaultWeek()},
		}
		if err := s.therapistRepo.Create(ctx, therapist); err != nil {
			return nil, fmt.Errorf("failed to create therapist profile: %w", err)
		}
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(errors.New("invalid credentials"))
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(errors.New("invalid credentials"))
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	token, err := s.jwtSvc.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenExpiry.Seconds()),
		User:        user,
	}, nil
}

func (s *Service) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}
