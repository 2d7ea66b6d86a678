package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"phonebook/internal/auth"
	apperrors "phonebook/internal/errors"
	"phonebook/internal/model"
	"phonebook/internal/repository"
)

// RegisterResult is what signup hands back to the client: the fresh
// account, an immediately usable session token and the verification token.
type RegisterResult struct {
	User              *model.User
	SessionToken      string
	VerificationToken string
}

// AuthService handles the account/session lifecycle.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, user *model.User, rawToken string) error
}

type authService struct {
	users         repository.UserRepository
	hasher        *auth.PasswordHasher
	jwtService    *auth.JWTService
	tokenStore    auth.TokenStoreInterface
	verifications VerificationService
	accountLocks  *keyedMutex
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	verifications VerificationService,
) AuthService {
	return &authService{
		users:         users,
		hasher:        hasher,
		jwtService:    jwtService,
		tokenStore:    tokenStore,
		verifications: verifications,
		accountLocks:  newKeyedMutex(),
	}
}

// Register creates an unverified account with a hashed password, a
// placeholder avatar and a fresh verification token, then issues a session
// token. The verification mail is dispatched asynchronously; its failure
// never fails the signup.
func (s *authService) Register(ctx context.Context, email, password string) (*RegisterResult, error) {
	email = model.NormalizeEmail(email)

	// Check if the email already has an account
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailInUse
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check account existence: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verificationToken, err := s.verifications.NewToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	user := &model.User{
		Email:             email,
		PasswordHash:      passwordHash,
		Plan:              model.PlanStarter,
		Verified:          false,
		VerificationToken: &verificationToken,
		AvatarRef:         model.PlaceholderAvatar(email),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A signup racing past the existence check above lands on the
		// unique email index instead; same outcome for the caller.
		if err == gorm.ErrDuplicatedKey {
			return nil, apperrors.ErrEmailInUse
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	sessionToken, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	if err := s.users.UpdateSessionToken(ctx, user.ID, &sessionToken); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	user.SessionToken = &sessionToken

	s.verifications.Dispatch(user.Email, verificationToken)

	slog.Info("register_success", "user_id", user.ID, "email", email)

	return &RegisterResult{
		User:              user,
		SessionToken:      sessionToken,
		VerificationToken: verificationToken,
	}, nil
}

// Login authenticates an account and replaces its session token. Wrong
// email and wrong password are indistinguishable to the caller; an
// unverified account is rejected before a token is issued.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = model.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Burn a hash comparison so unknown emails cost the same
			s.hasher.VerifyDummy(password)
			slog.Warn("login_failed", "email", email, "reason", "account_not_found")
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find account: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if !user.Verified {
		slog.Warn("login_failed", "email", email, "reason", "not_verified")
		return "", nil, apperrors.ErrNotVerified
	}

	unlock := s.accountLocks.Lock(user.ID.String())
	defer unlock()

	token, err := s.jwtService.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}

	// Replaces any previous token: only the most recent login stays live.
	if err := s.users.UpdateSessionToken(ctx, user.ID, &token); err != nil {
		return "", nil, fmt.Errorf("store session token: %w", err)
	}
	user.SessionToken = &token

	slog.Info("login_success", "user_id", user.ID, "email", email)
	return token, user, nil
}

// Logout clears the stored session token, revoking the presented token
// immediately even though its signature stays valid until expiry. The
// token id is additionally blacklisted for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, user *model.User, rawToken string) error {
	unlock := s.accountLocks.Lock(user.ID.String())
	defer unlock()

	if err := s.users.UpdateSessionToken(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}

	if claims, err := s.jwtService.Validate(rawToken); err == nil && claims.ExpiresAt != nil {
		remaining := time.Until(claims.ExpiresAt.Time)
		if err := s.tokenStore.BlacklistSessionToken(ctx, claims.ID, remaining); err != nil {
			slog.Warn("blacklist_failed", "user_id", user.ID, "error", err)
		}
	}

	slog.Info("logout_success", "user_id", user.ID)
	return nil
}
