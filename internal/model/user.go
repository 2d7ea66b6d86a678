package model

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription plans, lowest tier first.
const (
	PlanStarter  = "starter"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

// User represents a registered account with credentials, verification
// state and profile data.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Plan         string    `json:"plan" gorm:"size:20;default:'starter'"`

	// SessionToken holds the single live bearer token for this account.
	// Set on login, cleared on logout, replaced on re-login.
	SessionToken *string `json:"-" gorm:"size:512"`

	Verified bool `json:"verified" gorm:"default:false"`
	// VerificationToken is present only while Verified is false and a
	// verification mail has been issued. Cleared the moment it is consumed.
	VerificationToken *string `json:"-" gorm:"size:64;index"`

	AvatarRef string `json:"avatar_ref" gorm:"size:512"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email so that lookups and the
// uniqueness constraint agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PlaceholderAvatar returns a deterministic gravatar-style identicon URL
// for an email, so avatar_ref is populated from the moment of signup.
func PlaceholderAvatar(email string) string {
	sum := md5.Sum([]byte(NormalizeEmail(email)))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}
