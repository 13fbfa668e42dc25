package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectx/accounts/internal/core/authz"
	"github.com/projectx/accounts/internal/core/domain"
	"github.com/projectx/accounts/internal/core/ports"
)

// AccountService orchestrates the request pipeline for account operations:
// validation, authorization, store mutation, and response shaping.
type AccountService struct {
	repo       ports.AccountRepository
	bcryptCost int
	logger     zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, bcryptCost int, logger zerolog.Logger) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// Create registers a new account. Public: no actor required.
func (s *AccountService) Create(ctx context.Context, input ports.CreateAccountInput) (*domain.Account, error) {
	if errs := validateCreate(input); len(errs) > 0 {
		return nil, errs
	}
	errs, err := checkUnique(ctx, s.repo, input.Username, input.Email, "")
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", created.ID).Str("username", created.Username).Msg("account created")
	return created, nil
}

// Retrieve returns one account by id; allowed for the owner or an admin.
func (s *AccountService) Retrieve(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	if err := s.authorize(actor, authz.ActionRetrieve, id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// List returns all live accounts, optionally filtered by search. Admin only.
func (s *AccountService) List(ctx context.Context, actor domain.Actor, search string) (*ports.AccountPage, error) {
	if err := s.authorize(actor, authz.ActionList, ""); err != nil {
		return nil, err
	}

	accounts, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	return &ports.AccountPage{Count: len(accounts), Results: accounts}, nil
}

// Update applies a partial mutation to the account; owner or admin.
// A changed username or email is re-checked for uniqueness; a new password
// goes through the credential hasher and the plaintext is discarded.
func (s *AccountService) Update(ctx context.Context, actor domain.Actor, id string, input ports.UpdateAccountInput) (*domain.Account, error) {
	if errs := validateUpdate(input); len(errs) > 0 {
		return nil, errs
	}

	if err := s.authorize(actor, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newUsername, newEmail string
	if input.Username != nil && *input.Username != account.Username {
		newUsername = *input.Username
	}
	if input.Email != nil && *input.Email != account.Email {
		newEmail = *input.Email
	}
	if newUsername != "" || newEmail != "" {
		errs, err := checkUnique(ctx, s.repo, newUsername, newEmail, id)
		if err != nil {
			return nil, err
		}
		if len(errs) > 0 {
			return nil, errs
		}
	}

	if input.Username != nil {
		account.Username = *input.Username
	}
	if input.Email != nil {
		account.Email = *input.Email
	}
	if input.FirstName != nil {
		account.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		account.LastName = *input.LastName
	}
	if input.Phone != nil {
		account.Phone = *input.Phone
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = string(hash)
	}

	updated, err := s.repo.Update(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", id).Str("actor_id", actor.ID).Msg("account updated")
	return updated, nil
}

// Delete removes the account; owner or admin.
func (s *AccountService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.authorize(actor, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", id).Str("actor_id", actor.ID).Msg("account deleted")
	return nil
}

// Me returns the authenticated actor's own record, resolved from the token
// identity rather than a path id.
func (s *AccountService) Me(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	if err := s.authorize(actor, authz.ActionMe, ""); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, actor.ID)
}

// authorize runs the decision engine and translates a denial into the error
// taxonomy: 401 when no credential was presented, 403 otherwise. Anonymous
// actors are rejected before any store access so denied requests cannot probe
// record existence.
func (s *AccountService) authorize(actor domain.Actor, action authz.Action, targetID string) error {
	if authz.Decide(actor, action, targetID) == authz.Allow {
		return nil
	}

	s.logger.Debug().
		Str("action", string(action)).
		Str("actor_id", actor.ID).
		Str("target_id", targetID).
		Msg("authorization denied")

	return authz.DenialError(actor)
}
