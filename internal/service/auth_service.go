package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/assets"
	"quickchat/internal/domain"
	"quickchat/internal/security"
)

// AuthService handles signup, login, and profile updates.
type AuthService struct {
	users    domain.UserRepository
	tokens   *security.TokenService
	hash     *security.PasswordHasher
	uploader assets.Uploader
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher, uploader assets.Uploader) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hash:     hash,
		uploader: uploader,
	}
}

type SignupInput struct {
	FullName string
	Email    string
	Password string
	Bio      string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateProfileInput struct {
	FullName   string
	Bio        string
	ProfilePic string // base64 or data URL; uploaded before persisting
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w: account already exists", domain.ErrConflict)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:             uuid.NewString(),
		Email:          in.Email,
		FullName:       in.FullName,
		Bio:            in.Bio,
		HashedPassword: hashed,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("create token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("create token: %w", err)
	}
	return user, token, nil
}

// UpdateProfile mutates the caller's display fields. A supplied profile
// picture is uploaded to the asset host first; when that fails, nothing is
// persisted.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, in UpdateProfileInput) (*domain.User, error) {
	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.ProfilePic != "" {
		url, err := s.uploader.Upload(ctx, in.ProfilePic)
		if err != nil {
			return nil, err
		}
		user.ProfilePic = url
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID resolves a user for the auth middleware.
func (s *AuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
