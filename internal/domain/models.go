package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level attached to an account
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Provider identifies which credential origin created or last linked an account
type Provider string

const (
	ProviderNative Provider = "native"
	ProviderGoogle Provider = "google"
)

// Account represents the accounts table
type Account struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DisplayName        string     `gorm:"type:varchar(100);not null"`
	Email              string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash       *string    `gorm:"type:varchar(255)"`
	Role               Role       `gorm:"type:varchar(20);default:'customer';not null"`
	Provider           Provider   `gorm:"type:varchar(20);default:'native';not null"`
	ProviderSubject    *string    `gorm:"type:varchar(255);uniqueIndex"`
	AvatarURL          *string    `gorm:"type:varchar(512)"`
	EmailVerified      bool       `gorm:"default:false;not null"`
	VerificationCode   *string    `gorm:"type:varchar(10)"`
	VerificationExpiry *time.Time `gorm:"type:timestamp with time zone"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate assigns the primary key before insert
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// SanitizedAccount is the client-facing projection of an account.
// Credential hashes and pending verification codes never leave the subsystem.
type SanitizedAccount struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	Provider      Provider  `json:"provider"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Sanitize strips the secret fields from an account
func (a *Account) Sanitize() SanitizedAccount {
	return SanitizedAccount{
		ID:            a.ID,
		DisplayName:   a.DisplayName,
		Email:         a.Email,
		Role:          a.Role,
		Provider:      a.Provider,
		AvatarURL:     a.AvatarURL,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
	}
}

// AutoMigrate creates or updates the accounts schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Account{})
}
