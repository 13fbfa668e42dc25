package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/projectx/accounts/internal/core/domain"
	"github.com/projectx/accounts/internal/core/ports"
)

// validateCreate checks field-level constraints on a full registration
// payload. Uniqueness is checked separately (checkUnique) so format failures
// never cost a store round-trip.
func validateCreate(input ports.CreateAccountInput) domain.FieldErrors {
	var errs domain.FieldErrors

	if input.Username == "" {
		errs = append(errs, domain.FieldError{Field: "username", Message: domain.MsgFieldRequired})
	}
	switch {
	case input.Email == "":
		errs = append(errs, domain.FieldError{Field: "email", Message: domain.MsgFieldRequired})
	case !validEmail(input.Email):
		errs = append(errs, domain.FieldError{Field: "email", Message: domain.MsgEmailInvalid})
	}
	if input.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: domain.MsgFieldRequired})
	}
	if input.Phone != "" && !domain.ValidPhone(input.Phone) {
		errs = append(errs, domain.FieldError{Field: "phone", Message: domain.MsgPhoneInvalid})
	}

	return errs
}

// validateUpdate checks a partial payload: nil fields are untouched and
// therefore unchecked. A present username must not be blanked out; a present
// phone may be blanked out (optional field).
func validateUpdate(input ports.UpdateAccountInput) domain.FieldErrors {
	var errs domain.FieldErrors

	if input.Username != nil && *input.Username == "" {
		errs = append(errs, domain.FieldError{Field: "username", Message: domain.MsgFieldBlank})
	}
	if input.Email != nil {
		switch {
		case *input.Email == "":
			errs = append(errs, domain.FieldError{Field: "email", Message: domain.MsgFieldBlank})
		case !validEmail(*input.Email):
			errs = append(errs, domain.FieldError{Field: "email", Message: domain.MsgEmailInvalid})
		}
	}
	if input.Password != nil && *input.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: domain.MsgFieldBlank})
	}
	if input.Phone != nil && *input.Phone != "" && !domain.ValidPhone(*input.Phone) {
		errs = append(errs, domain.FieldError{Field: "phone", Message: domain.MsgPhoneInvalid})
	}

	return errs
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// checkUnique reports conflicts on username/email against live records,
// ignoring the record identified by excludeID (the record being updated).
// This is a fast pre-check; the store's unique indexes remain the authority
// under concurrent writes and surface the same field errors.
func checkUnique(ctx context.Context, repo ports.AccountRepository, username, email, excludeID string) (domain.FieldErrors, error) {
	var errs domain.FieldErrors

	if username != "" {
		existing, err := repo.FindByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != excludeID:
			errs = append(errs, domain.FieldError{Field: "username", Message: domain.MsgUsernameTaken})
		case err != nil && !errors.Is(err, domain.ErrAccountNotFound):
			return nil, err
		}
	}

	if email != "" {
		existing, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != excludeID:
			errs = append(errs, domain.FieldError{Field: "email", Message: domain.MsgEmailTaken})
		case err != nil && !errors.Is(err, domain.ErrAccountNotFound):
			return nil, err
		}
	}

	return errs, nil
}
