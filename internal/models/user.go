package models

import (
	"time"
)

type Subscription struct {
	StartDate *time.Time `json:"startDate,omitempty" dynamodbav:"start_date,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty" dynamodbav:"end_date,omitempty"`
	IsActive  bool       `json:"isActive" dynamodbav:"is_active"`
}

// NewSubscription computes IsActive at write time; it is not re-evaluated on read.
func NewSubscription(start, end time.Time, now time.Time) Subscription {
	return Subscription{
		StartDate: &start,
		EndDate:   &end,
		IsActive:  now.Before(end),
	}
}

type User struct {
	ID           string       `json:"_id" dynamodbav:"id"`
	Name         string       `json:"name" dynamodbav:"name"`
	Phone        string       `json:"phone" dynamodbav:"phone"`
	Email        string       `json:"email" dynamodbav:"email"`
	PasswordHash string       `json:"-" dynamodbav:"password_hash"`
	Subscription Subscription `json:"subscription" dynamodbav:"subscription"`
	CreatedAt    time.Time    `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" dynamodbav:"updated_at"`
}

func (u *User) GetPK() string {
	return UserPK(u.ID)
}

func (u *User) GetSK() string {
	return MetadataSK
}

// PublicProfile is what login and verification hand back to the caller.
type PublicProfile struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Subscription Subscription `json:"subscription"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Subscription: u.Subscription,
	}
}
