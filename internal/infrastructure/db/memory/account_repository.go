// Package memory provides an in-memory AccountRepository with the same
// uniqueness and ordering semantics as the MongoDB implementation. It backs
// the handler and service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/projectx/accounts/internal/core/domain"
)

type AccountRepository struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]domain.Account)}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conflict(account.Username, account.Email, ""); err != nil {
		return nil, err
	}

	created := *account
	created.ID = uuid.NewString()
	r.accounts[created.ID] = created
	return &created, nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.accounts[id]; ok {
		clone := a
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.findBy(func(a domain.Account) bool { return a.Username == username })
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.findBy(func(a domain.Account) bool { return a.Email == email })
}

func (r *AccountRepository) List(_ context.Context, search string) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var results []domain.Account
	for _, a := range r.accounts {
		if search == "" || matches(a, search) {
			results = append(results, a)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Username != results[j].Username {
			return results[i].Username < results[j].Username
		}
		return results[i].Email < results[j].Email
	})
	return results, nil
}

func (r *AccountRepository) Update(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	if err := r.conflict(account.Username, account.Email, account.ID); err != nil {
		return nil, err
	}

	r.accounts[account.ID] = *account
	clone := *account
	return &clone, nil
}

func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *AccountRepository) findBy(match func(domain.Account) bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if match(a) {
			clone := a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) conflict(username, email, excludeID string) error {
	for id, a := range r.accounts {
		if id == excludeID {
			continue
		}
		if a.Username == username {
			return domain.FieldErrors{{Field: "username", Message: domain.MsgUsernameTaken}}
		}
		if a.Email == email {
			return domain.FieldErrors{{Field: "email", Message: domain.MsgEmailTaken}}
		}
	}
	return nil
}

// matches mirrors the MongoDB search filter: exact on username/email/phone,
// case-insensitive substring on first and last name.
func matches(a domain.Account, search string) bool {
	if a.Username == search || a.Email == search || a.Phone == search {
		return true
	}
	term := strings.ToLower(search)
	return strings.Contains(strings.ToLower(a.FirstName), term) ||
		strings.Contains(strings.ToLower(a.LastName), term)
}
