package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/reelcart/storefront/internal/adapter/email"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost         = 12
	resetTokenBytes    = 32
	resetTokenLifetime = time.Hour
)

type SignupParams struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            entity.Role
}

type AuthService interface {
	// Signup returns field-level validation errors when the input is
	// rejected; the error return is reserved for infrastructure failures.
	Signup(ctx context.Context, params SignupParams) (string, map[string]string, error)
	Login(ctx context.Context, email, password string) (*entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)

	// RequestPasswordReset generates a single-use token, stores it with an
	// expiry and emails a reset link. Unknown emails return ErrNotFound.
	RequestPasswordReset(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, token, password, confirmPassword string) (map[string]string, error)
}

type authService struct {
	userRepo repository.UserRepository
	sender   email.Sender
	baseURL  string
	log      logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, sender email.Sender, baseURL string, log logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		sender:   sender,
		baseURL:  baseURL,
		log:      log,
	}
}

func (s *authService) Signup(ctx context.Context, params SignupParams) (string, map[string]string, error) {
	fields := entity.ValidateSignupInput(params.Email, params.Password, params.ConfirmPassword, params.Role)
	if len(fields) > 0 {
		return "", fields, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.userRepo.Create(ctx, repository.CreateUserParams{
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         params.Role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", map[string]string{"email": "email address is already in use"}, nil
		}
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Infof("User signed up: %s", userID)
	return userID, nil, nil
}

func (s *authService) Login(ctx context.Context, emailAddr, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)
	expiresAt := time.Now().UTC().Add(resetTokenLifetime)

	if err := s.userRepo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/resetPassword/%s", s.baseURL, token)
	body := fmt.Sprintf("A password reset was requested for your account.\n\n"+
		"Open the link below to choose a new password. The link expires in one hour.\n\n%s\n\n"+
		"If you did not request this, you can ignore this email.", link)

	if err := s.sender.SendEmail([]string{user.Email}, "Reset your password", body); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.log.Infof("Password reset requested for user %s", user.ID)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password, confirmPassword string) (map[string]string, error) {
	fields := make(map[string]string)
	if len(password) < entity.PasswordMinLen {
		fields["password"] = "password length should be at least 5"
	}
	if confirmPassword != password {
		fields["confirmPassword"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return fields, nil
	}

	now := time.Now().UTC()
	user, err := s.userRepo.GetByResetToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}
	// The query already filters on expiry; this re-check keeps the
	// fail-closed guarantee independent of the storage backend.
	if !user.HasValidResetToken(now) {
		return nil, ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Infof("Password reset completed for user %s", user.ID)
	return nil, nil
}
