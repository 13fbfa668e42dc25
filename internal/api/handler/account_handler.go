package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectx/accounts/internal/api/metrics"
	"github.com/projectx/accounts/internal/api/middleware"
	"github.com/projectx/accounts/internal/core/domain"
	"github.com/projectx/accounts/internal/core/ports"
)

// AccountHandler handles HTTP requests for account operations.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Create registers a new account.
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "Account registration details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	account, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	metrics.AccountsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, account)
}

// List returns all accounts, optionally filtered by ?search=. Admin only.
//
// @Summary      List and search accounts
// @Tags         accounts
// @Produce      json
// @Param        search  query     string  false  "Search term"
// @Success      200     {object}  accountPageResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	page, err := h.service.List(c.Request().Context(), actor, c.QueryParam("search"))
	if err != nil {
		return err
	}

	results := page.Results
	if results == nil {
		results = []domain.Account{}
	}
	return c.JSON(http.StatusOK, accountPageResponse{Count: page.Count, Results: results})
}

// Retrieve returns one account by id. Owner or admin.
//
// @Summary      Retrieve an account
// @Tags         accounts
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /accounts/{id} [get]
func (h *AccountHandler) Retrieve(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	account, err := h.service.Retrieve(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Update applies a partial mutation. Owner or admin.
//
// @Summary      Update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /accounts/{id} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	actor := middleware.ActorFrom(c)
	account, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Delete removes an account. Owner or admin.
//
// @Summary      Delete an account
// @Tags         accounts
// @Param        id  path  string  true  "Account id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /accounts/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	metrics.AccountsDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated actor's own record.
//
// @Summary      Current account
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Router       /accounts/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	account, err := h.service.Me(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}
