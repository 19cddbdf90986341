// AngelaMos | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/bakery-orders/internal/core"
	"github.com/carterperez-dev/bakery-orders/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes expects r to already require a privileged principal.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/accounts", h.ListAccounts)
	r.Post("/admin/accounts", h.CreateAccount)
	r.Get("/admin/accounts/{accountID}", h.GetAccount)
	r.Delete("/admin/accounts/{accountID}", h.DeleteAccount)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	params := ListAccountsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 50),
		Search:   r.URL.Query().Get("search"),
	}
	params.Normalize()

	accounts, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToAccountResponseList(accounts),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	account, err := h.service.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameExists):
			core.JSONError(w, core.DuplicateError("username"))
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "username and a password of at least 6 characters are required")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToAccountResponse(account))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := core.URLParamID(r, "accountID")
	if err != nil {
		core.BadRequest(w, "invalid account id")
		return
	}

	account, err := h.service.Get(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetAccountID(r.Context())

	targetID, err := core.URLParamID(r, "accountID")
	if err != nil {
		core.BadRequest(w, "invalid account id")
		return
	}

	if err := h.service.Delete(r.Context(), requesterID, targetID); err != nil {
		switch {
		case errors.Is(err, ErrSelfDelete):
			core.Forbidden(w, "you cannot delete your own account")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "account")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.NoContent(w)
}
