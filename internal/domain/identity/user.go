package identity

import (
	"regexp"
	"strings"
	"sync"

	"github.com/crm/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
)

// User is an operator allowed to call the API.
// Users are provisioned by the seed command; there is no signup route.
type User struct {
	shared.BaseEntity
	Email        string
	PasswordHash string
	Name         string
}

// NewUser creates a user with a hashed password
func NewUser(email, password, name string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, shared.NewValidationError("Invalid user", shared.FieldError{Field: "email", Message: "This field is required"})
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapOperation(err, "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
	}, nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.WrapOperation(err, "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword verifies the provided password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password-0"), bcryptCost)
	return hash
})

// VerifyDummyPassword spends the same bcrypt work as VerifyPassword against a
// hash nobody owns. Login calls it for unknown emails so response timing does
// not reveal which accounts exist. It always returns false.
func VerifyDummyPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
	return false
}

func validatePassword(password string) error {
	invalid := func(msg string) error {
		return shared.NewValidationError("Invalid password", shared.FieldError{Field: "password", Message: msg})
	}
	switch {
	case len(password) < 8:
		return invalid("Password must be at least 8 characters")
	case len(password) > 72:
		// bcrypt ignores everything past 72 bytes
		return invalid("Password cannot exceed 72 characters")
	case !hasLetter.MatchString(password) || !hasNumber.MatchString(password):
		return invalid("Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
