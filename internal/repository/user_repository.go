package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"phonebook/internal/model"
)

// UserRepository defines account persistence operations. Email lookups are
// case-normalized. Not-found is signalled with gorm.ErrRecordNotFound so
// callers can tell it apart from real persistence failures.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*model.User, error)
	UpdateSessionToken(ctx context.Context, id uuid.UUID, token *string) error
	// SetVerificationToken stores a fresh token; it fails with
	// gorm.ErrRecordNotFound when the account is already verified.
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error
	// MarkVerified flips the verified flag and clears the verification
	// token in a single conditional write; it fails with
	// gorm.ErrRecordNotFound when the token was already consumed.
	MarkVerified(ctx context.Context, id uuid.UUID, token string) error
	UpdateAvatarRef(ctx context.Context, id uuid.UUID, ref string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user. The email is stored in canonical form.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = model.NormalizeEmail(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

// Save persists the full user record.
func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindByID finds a user by ID.
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by normalized email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", model.NormalizeEmail(email)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByVerificationToken finds a user holding the given one-time token.
func (r *userRepository) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("verification_token = ?", token).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateSessionToken replaces the stored session token. A nil token clears it.
func (r *userRepository) UpdateSessionToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("session_token", token).Error
}

// SetVerificationToken stores a fresh verification token on the account.
// The verified guard in the WHERE clause keeps a racing consume from being
// undone by a late resend.
func (r *userRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND verified = ?", id, false).
		Update("verification_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkVerified performs the verified flip and token clear as one UPDATE,
// so an interrupted consume can never leave a half-applied state. The
// WHERE clause re-checks the token under the database's row lock: of two
// concurrent consumes only one can match, the loser sees zero rows.
func (r *userRepository) MarkVerified(ctx context.Context, id uuid.UUID, token string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND verified = ? AND verification_token = ?", id, false, token).
		Updates(map[string]interface{}{
			"verified":           true,
			"verification_token": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateAvatarRef points the account at a new avatar asset.
func (r *userRepository) UpdateAvatarRef(ctx context.Context, id uuid.UUID, ref string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("avatar_ref", ref).Error
}
