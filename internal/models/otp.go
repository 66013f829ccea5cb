package models

import "time"

type OTPPurpose string

const (
	OTPPurposeSignup        OTPPurpose = "signup"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// PendingSignup is the account payload held with a signup OTP until the
// code is verified. The password is already hashed.
type PendingSignup struct {
	Name         string `json:"name" dynamodbav:"name"`
	Phone        string `json:"phone" dynamodbav:"phone"`
	PasswordHash string `json:"password_hash" dynamodbav:"password_hash"`
}

type OTPData struct {
	Email     string         `json:"email" dynamodbav:"email"`
	OTPHash   string         `json:"otp_hash" dynamodbav:"otp_hash"`
	Purpose   OTPPurpose     `json:"purpose" dynamodbav:"purpose"`
	Pending   *PendingSignup `json:"pending,omitempty" dynamodbav:"pending,omitempty"`
	CreatedAt time.Time      `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt time.Time      `json:"expires_at" dynamodbav:"expires_at"`
}

// IsExpired reports whether the record is no longer usable at now.
// A record is expired exactly at its ExpiresAt instant.
func (o *OTPData) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
