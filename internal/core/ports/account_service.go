package ports

import (
	"context"

	"github.com/projectx/accounts/internal/core/domain"
)

// CreateAccountInput is the full payload required to register an account.
type CreateAccountInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// UpdateAccountInput is a partial payload: nil fields are left untouched.
type UpdateAccountInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Phone     *string
}

// AccountPage is the paginated list envelope.
type AccountPage struct {
	Count   int
	Results []domain.Account
}

type AccountService interface {
	Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	Retrieve(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error)
	List(ctx context.Context, actor domain.Actor, search string) (*AccountPage, error)
	Update(ctx context.Context, actor domain.Actor, id string, input UpdateAccountInput) (*domain.Account, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Me(ctx context.Context, actor domain.Actor) (*domain.Account, error)
}
