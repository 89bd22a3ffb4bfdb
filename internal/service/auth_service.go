package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo repository.UserRepository
	secret   string
	ttl      time.Duration
	cost     int
}

type SignupInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewAuthService returns an AuthService signing tokens with secret.
// A cost of zero uses bcrypt.DefaultCost.
func NewAuthService(userRepo repository.UserRepository, secret string, ttl time.Duration, cost int) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{userRepo: userRepo, secret: secret, ttl: ttl, cost: cost}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login never says which half of the credentials was wrong.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	invalid := models.NewUnauthorizedError("Invalid credentials")

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if models.HasCode(err, models.CodeNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, invalid
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := middleware.IssueToken(s.secret, user.ID, user.Username, s.ttl)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
