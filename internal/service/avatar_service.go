package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"phonebook/internal/avatar"
	apperrors "phonebook/internal/errors"
	"phonebook/internal/repository"
	"phonebook/internal/storage"
)

// maxAvatarBytes caps how much of an upload the pipeline will buffer.
const maxAvatarBytes = 5 << 20

// AvatarService runs the upload -> decode -> resize -> store -> reference
// update pipeline.
type AvatarService interface {
	Ingest(ctx context.Context, accountID uuid.UUID, upload io.Reader) (string, error)
}

type avatarService struct {
	users        repository.UserRepository
	store        storage.Storage
	accountLocks *keyedMutex
}

// NewAvatarService creates a new avatar pipeline.
func NewAvatarService(users repository.UserRepository, store storage.Storage) AvatarService {
	return &avatarService{
		users:        users,
		store:        store,
		accountLocks: newKeyedMutex(),
	}
}

// Ingest buffers the upload into a scoped temp file, renders the canonical
// avatar, writes it to storage under a collision-free name and only then
// moves the account's avatar reference. Any failure along the way leaves
// the previous reference untouched; the temp file is removed on every exit
// path. Prior avatar files are left orphaned rather than deleted.
func (s *avatarService) Ingest(ctx context.Context, accountID uuid.UUID, upload io.Reader) (string, error) {
	user, err := s.users.FindByID(ctx, accountID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", apperrors.ErrAccountNotFound
		}
		return "", fmt.Errorf("find account: %w", err)
	}

	tmp, err := os.CreateTemp("", "avatar-upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", apperrors.ErrStorage, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	// One byte past the cap is enough to tell truncation from an upload
	// that is exactly at the limit.
	n, err := io.Copy(tmp, io.LimitReader(upload, maxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: buffer upload: %v", apperrors.ErrStorage, err)
	}
	if n > maxAvatarBytes {
		return "", apperrors.ErrFileTooLarge
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: rewind temp file: %v", apperrors.ErrStorage, err)
	}

	rendered, err := avatar.Process(tmp)
	if err != nil {
		return "", err
	}

	// Account id plus nonce: never collides with a prior avatar.
	name := fmt.Sprintf("%s-%s.png", user.ID, uuid.NewString())

	ref, err := s.store.Put(ctx, name, bytes.NewReader(rendered))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	unlock := s.accountLocks.Lock(user.ID.String())
	defer unlock()

	if err := s.users.UpdateAvatarRef(ctx, user.ID, ref); err != nil {
		return "", fmt.Errorf("update avatar ref: %w", err)
	}

	slog.Info("avatar_updated", "user_id", user.ID, "ref", ref)
	return ref, nil
}
