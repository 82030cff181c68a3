package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:32"         json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"       json:"email"`
	Phone        *string   `gorm:"uniqueIndex"                json:"phone"`
	Username     string    `gorm:"not null"                   json:"username"`
	CompanyName  string    `gorm:"not null"                   json:"company_name"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	Role         Role      `gorm:"not null;default:user"      json:"role"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"    json:"created_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Session is keyed by the SHA-256 hex digest of the bearer token.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"  json:"id"`
	UserID    string    `gorm:"index;not null"      json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

type PasswordResetToken struct {
	ID        string     `gorm:"primaryKey;size:32"       json:"id"`
	UserID    string     `gorm:"index;not null"           json:"user_id"`
	TokenHash string     `gorm:"uniqueIndex;not null"     json:"-"`
	ExpiresAt time.Time  `gorm:"not null"                 json:"expires_at"`
	UsedAt    *time.Time `                                json:"used_at"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime"  json:"created_at"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *PasswordResetToken) Valid(now time.Time) bool {
	return t != nil && t.UsedAt == nil && now.Before(t.ExpiresAt)
}

type APIKey struct {
	ID         string     `gorm:"primaryKey;size:32"       json:"id"`
	Name       string     `gorm:"not null"                 json:"name"`
	KeyHash    string     `gorm:"uniqueIndex;not null"     json:"-"`
	KeyPrefix  string     `gorm:"not null"                 json:"key_prefix"`
	CreatedBy  string     `gorm:"index;not null"           json:"created_by"`
	IsActive   bool       `gorm:"not null;default:true"    json:"is_active"`
	LastUsedAt *time.Time `                                json:"last_used_at"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime"  json:"created_at"`

	Creator User `gorm:"foreignKey:CreatedBy;references:ID" json:"-"`
}

func (APIKey) TableName() string { return "api_keys" }

// All lists every model the schema migration must create.
func All() []any {
	return []any{&User{}, &Session{}, &PasswordResetToken{}, &APIKey{}}
}
