package domain

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Account is the durable tenant boundary a user belongs to. One account is
// created per first-sighted upstream subject.
type Account struct {
	ID        uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the durable record of an upstream subject, created the first time
// the subject completes a login and never updated afterwards.
type User struct {
	ID        uuid.UUID `json:"user_id"`
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	GoogleSub string    `json:"google_sub"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccount creates a new account
func NewAccount() *Account {
	return &Account{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
	}
}

// NewUser creates a new user under an account with validation
func NewUser(accountID uuid.UUID, email, fullName, googleSub string) (*User, error) {
	// Validate upstream subject
	if googleSub == "" {
		return nil, fmt.Errorf("google subject is required")
	}

	// Validate email
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}

	// Validate account ID
	if accountID == (uuid.UUID{}) {
		return nil, fmt.Errorf("account ID is required")
	}

	user := &User{
		ID:        uuid.New(),
		AccountID: accountID,
		Email:     email,
		FullName:  fullName,
		GoogleSub: googleSub,
		CreatedAt: time.Now(),
	}

	return user, nil
}
