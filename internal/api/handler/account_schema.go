package handler

import (
	"github.com/projectx/accounts/internal/core/domain"
	"github.com/projectx/accounts/internal/core/ports"
)

// --- Request types ---
//
// Unknown fields in request bodies are ignored silently (JSON bind default).

type createAccountRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" validate:"omitempty,bd_phone"`
}

func (r createAccountRequest) toInput() ports.CreateAccountInput {
	return ports.CreateAccountInput{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

// updateAccountRequest carries a partial mutation: absent fields stay nil and
// are left untouched.
type updateAccountRequest struct {
	Username  *string `json:"username" validate:"omitnil,min=1"`
	Email     *string `json:"email" validate:"omitnil,email"`
	Password  *string `json:"password" validate:"omitnil,min=1"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone" validate:"omitnil,omitempty,bd_phone"`
}

func (r updateAccountRequest) toInput() ports.UpdateAccountInput {
	return ports.UpdateAccountInput{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

// --- Response types ---

// accountPageResponse is the paginated list envelope.
type accountPageResponse struct {
	Count   int              `json:"count"`
	Results []domain.Account `json:"results"`
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenRefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
