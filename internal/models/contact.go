package models

import "time"

type ContactMessage struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Phone     string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Message   string    `json:"message" dynamodbav:"message"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}
