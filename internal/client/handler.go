// AngelaMos | 2026
// handler.go

package client

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

// RegisterRoutes expects r to already run the authenticator. Routes are
// flat so the order handler can hang /clients/{clientID}/orders off the
// same router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/clients", h.ListClients)
	r.Post("/clients", h.CreateClient)
	r.Get("/clients/{clientID}", h.GetClient)
	r.Put("/clients/{clientID}", h.UpdateClient)
	r.Delete("/clients/{clientID}", h.DeleteClient)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	clients, err := h.service.List(r.Context(), accountID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToClientResponseList(clients))
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	client, err := h.service.Create(r.Context(), accountID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToClientResponse(client))
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	clientID, err := core.URLParamID(r, "clientID")
	if err != nil {
		core.BadRequest(w, "invalid client id")
		return
	}

	client, err := h.service.Get(r.Context(), accountID, clientID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToClientResponse(client))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	clientID, err := core.URLParamID(r, "clientID")
	if err != nil {
		core.BadRequest(w, "invalid client id")
		return
	}

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	client, err := h.service.Update(r.Context(), accountID, clientID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToClientResponse(client))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	clientID, err := core.URLParamID(r, "clientID")
	if err != nil {
		core.BadRequest(w, "invalid client id")
		return
	}

	if err := h.service.Delete(r.Context(), accountID, clientID); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "client")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "client name is required")
	default:
		core.InternalServerError(w, err)
	}
}
