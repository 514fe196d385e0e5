package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
	"github.com/mentorlink/mentorlink/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type MentorProfileCreator interface {
	Create(ctx context.Context, profile *models.MentorProfile) error
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles account creation and token issuance.
type AuthService struct {
	users   UserStore
	mentors MentorProfileCreator
	tokens  *TokenIssuer
}

func NewAuthService(users UserStore, mentors MentorProfileCreator, tokens *TokenIssuer) *AuthService {
	return &AuthService{users: users, mentors: mentors, tokens: tokens}
}

// Register creates a user account; mentors get an empty profile to fill in.
func (s *AuthService) Register(ctx context.Context, email, password, fullName, userType string) (*models.User, *TokenPair, error) {
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		UserType:     userType,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	if userType == models.RoleMentor {
		profile := &models.MentorProfile{
			UserID:      user.ID,
			Expertise:   []string{},
			IsAvailable: true,
		}
		if err := s.mentors.Create(ctx, profile); err != nil {
			return nil, nil, err
		}
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}
