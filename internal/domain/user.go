package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Mobile       string     `db:"mobile" json:"mobile"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsVerified   bool       `db:"is_verified" json:"isVerified"`
	OTP          *string    `db:"otp" json:"-"`
	OTPExpiresAt *time.Time `db:"otp_expires_at" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
