package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MinAge         = 5
	MaxAge         = 120
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleStudent}

// CodeTTL is how long a login code stays valid after issue.
const CodeTTL = 10 * time.Minute

// Domain errors
var (
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrInvalidEmail = errors.New("email must contain '@'")
	ErrInvalidRole  = errors.New("role must be admin or student")
	ErrInvalidAge   = errors.New("age must be between 5 and 120")
	ErrEmptyCode    = errors.New("login code cannot be empty")
	ErrCodeExpired  = errors.New("login code has expired — request a new one")
	ErrCodeUsed     = errors.New("login code has already been used")
	ErrWrongCode    = errors.New("incorrect login code")
)

// Account holds state for one authenticated identity. Accounts carry no
// password: sign-in is by emailed one-time code.
type Account struct {
	ID        string
	Email     string
	Age       int // collected at signup; 0 means not provided
	Role      string
	CreatedAt time.Time
}

// LoginCode is a short-lived one-time code emailed for sign-in.
// The plaintext code is never stored, only its bcrypt hash.
type LoginCode struct {
	ID        string
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if a.Age != 0 && (a.Age < MinAge || a.Age > MaxAge) {
		return ErrInvalidAge
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// IsAdmin returns true if the account has admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SetCode hashes and stores a plaintext login code using bcrypt.
// PRE: plaintext is non-empty
// POST: CodeHash is set to bcrypt hash
func (c *LoginCode) SetCode(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyCode
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.CodeHash = string(hash)
	return nil
}

// Check verifies a submitted code against this LoginCode at the given time.
// INVARIANT: LoginCode fields are not mutated
func (c *LoginCode) Check(plaintext string, now time.Time) error {
	if c.Used {
		return ErrCodeUsed
	}
	if now.After(c.ExpiresAt) {
		return ErrCodeExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(plaintext)) != nil {
		return ErrWrongCode
	}
	return nil
}

// IsExpired returns true if the code is past its expiry.
// INVARIANT: LoginCode fields are not mutated
func (c *LoginCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Invalidate marks the code as used.
// PRE: LoginCode exists
// POST: Used is set to true
func (c *LoginCode) Invalidate() {
	c.Used = true
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
