package models

import (
	"time"

	"github.com/google/uuid"
)

// Role decides what an authenticated user may do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleChef     Role = "chef"
	RoleAdmin    Role = "admin"
)

// MaxLoginHistory bounds the login records kept per user.
const MaxLoginHistory = 50

// User represents a phone-authenticated customer or staff member.
type User struct {
	BaseModel
	Phone        string        `gorm:"uniqueIndex;not null" json:"phone"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         Role          `gorm:"type:varchar(16);default:customer" json:"role"`
	IsVerified   bool          `json:"is_verified"`
	IsOnline     bool          `json:"is_online"`
	LastLogin    *time.Time    `json:"last_login"`
	OTPHash      string        `json:"-"`
	OTPExpiresAt *time.Time    `json:"-"`
	LoginHistory []LoginRecord `gorm:"constraint:OnDelete:CASCADE" json:"login_history,omitempty"`
}

// LoginRecord keeps track of successful OTP verifications.
type LoginRecord struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	LoginTime time.Time `json:"login_time"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}

// UserSummary is the customer view embedded in assembled orders.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Email string    `json:"email,omitempty"`
}

// Summary returns the public subset of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Phone: u.Phone, Email: u.Email}
}
