package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Account models a registered user of the service. PasswordHash is never
// serialized in API responses.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrAccountNotFound = errors.New("account not found")
var ErrAuthRequired = errors.New("authentication required")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")

// Uniqueness and format violation messages, kept identical across the
// pre-check and the store's duplicate-key mapping so clients see one wording
// regardless of which layer caught the conflict.
const (
	MsgUsernameTaken = "A user with that username already exists."
	MsgEmailTaken    = "user with this email address already exists."
	MsgFieldBlank    = "This field may not be blank."
	MsgFieldRequired = "This field is required."
	MsgEmailInvalid  = "Enter a valid email address."
	MsgPhoneInvalid  = "Must be a valid phone number of bangladesh"
)

// phonePattern accepts an optional +88/88 country prefix followed by a
// national number: 0, then 1 or 9, then a digit 3-9, then 7 to 10 digits.
var phonePattern = regexp.MustCompile(`^(?:\+88|88)?(0(1|9)[3-9]\d{7,10})$`)

// ValidPhone reports whether s matches the accepted phone format.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// FieldErrors collects per-field validation failures. It satisfies error so
// it can flow through the pipeline like any other domain error.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.detail())
	}
	return strings.Join(msgs, "; ")
}

// Detail renders the first violation in the client-facing format:
// 'field' message for field errors, the bare message otherwise.
func (e FieldErrors) Detail() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].detail()
}

func (fe FieldError) detail() string {
	if fe.Field == "" {
		return fe.Message
	}
	return fmt.Sprintf("'%s' %s", fe.Field, fe.Message)
}
