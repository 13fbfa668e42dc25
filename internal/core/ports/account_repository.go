package ports

import (
	"context"

	"github.com/projectx/accounts/internal/core/domain"
)

// AccountRepository defines the persistence contract for account records.
// Create and Update must enforce the username/email uniqueness invariant
// atomically and surface violations as domain.FieldErrors.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// List returns all live accounts ordered by username then email. When
	// search is non-empty, it restricts results to accounts matching the
	// term exactly on username/email/phone or as a case-insensitive
	// substring of first_name/last_name.
	List(ctx context.Context, search string) ([]domain.Account, error)

	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}
