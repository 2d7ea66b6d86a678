package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	apperrors "phonebook/internal/errors"
	"phonebook/internal/mailer"
	"phonebook/internal/model"
	"phonebook/internal/repository"
)

// verificationTokenBytes is the number of random bytes per token; the
// stored form is the hex encoding.
const verificationTokenBytes = 32

// dispatchTimeout bounds an async mail send.
const dispatchTimeout = 30 * time.Second

// VerificationService manages one-time email verification tokens.
type VerificationService interface {
	// NewToken generates a cryptographically random opaque token.
	NewToken() (string, error)
	// Dispatch hands a token to the mail collaborator without blocking the
	// caller. Delivery failure is logged, never propagated.
	Dispatch(email, token string)
	// Resend issues a fresh token for an unverified account and mails it.
	Resend(ctx context.Context, email string) error
	// Consume redeems a token exactly once, marking the account verified.
	Consume(ctx context.Context, token string) (*model.User, error)
}

type verificationService struct {
	users        repository.UserRepository
	sender       mailer.Sender
	accountLocks *keyedMutex
}

// NewVerificationService creates a new verification token manager.
func NewVerificationService(users repository.UserRepository, sender mailer.Sender) VerificationService {
	return &verificationService{
		users:        users,
		sender:       sender,
		accountLocks: newKeyedMutex(),
	}
}

// NewToken returns a fresh random token. It is unrelated to session tokens
// and not derivable from any account data.
func (s *verificationService) NewToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Dispatch sends the verification mail on a detached context so the
// triggering request is not held up, and so a slow or failing SMTP server
// only shows up in the logs.
func (s *verificationService) Dispatch(email, token string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := s.sender.SendVerification(ctx, email, token); err != nil {
			slog.Error("verification_mail_failed", "email", email, "error", err)
		}
	}()
}

// Resend replaces the outstanding token for an unverified account and
// dispatches a new mail. Verified accounts are refused.
func (s *verificationService) Resend(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrAccountNotFound
		}
		return fmt.Errorf("find account: %w", err)
	}

	if user.Verified {
		return apperrors.ErrAlreadyVerified
	}

	unlock := s.accountLocks.Lock(user.ID.String())
	defer unlock()

	token, err := s.NewToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, token); err != nil {
		// Zero rows means the account got verified between the read above
		// and this write; refuse the resend like the pre-check would have.
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrAlreadyVerified
		}
		return fmt.Errorf("store verification token: %w", err)
	}

	s.Dispatch(user.Email, token)

	slog.Info("verification_reissued", "user_id", user.ID, "email", user.Email)
	return nil
}

// Consume looks the account up by token and flips it to verified while
// clearing the token, in one persisted update. A token that resolves to
// nothing, or to an already-verified account, fails without mutating
// state. The update re-checks the token, so of two concurrent consumes
// exactly one succeeds regardless of what the lookups observed.
func (s *verificationService) Consume(ctx context.Context, token string) (*model.User, error) {
	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrVerificationNotFound
		}
		return nil, fmt.Errorf("find by verification token: %w", err)
	}

	if user.Verified {
		return nil, apperrors.ErrAlreadyVerified
	}

	unlock := s.accountLocks.Lock(user.ID.String())
	defer unlock()

	if err := s.users.MarkVerified(ctx, user.ID, token); err != nil {
		// Zero rows: another consume won the race after our lookup.
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrVerificationNotFound
		}
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	user.Verified = true
	user.VerificationToken = nil

	slog.Info("verify_consumed", "user_id", user.ID, "email", user.Email)
	return user, nil
}
