// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

// RegisterRoutes expects r to already run the authenticator.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)

	r.Get("/orders", h.ListOrders)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/counts", h.CountOrders)
	r.Get("/orders/{orderID}", h.GetOrder)
	r.Delete("/orders/{orderID}", h.DeleteOrder)
	r.Patch("/orders/{orderID}/status", h.UpdateStatus)

	r.Get("/clients/{clientID}/orders", h.ListClientOrders)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	dashboard, err := h.service.Dashboard(r.Context(), accountID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, dashboard)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var filter ListFilter

	if raw := r.URL.Query().Get("client_id"); raw != "" {
		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || clientID <= 0 {
			core.BadRequest(w, "invalid client_id")
			return
		}
		filter.ClientID = &clientID
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			core.BadRequest(w, "invalid status")
			return
		}
		filter.Status = &status
	}

	orders, err := h.service.List(r.Context(), accountID, filter)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	order, err := h.service.Create(r.Context(), accountID, req)
	if err != nil {
		writeError(w, err, "client")
		return
	}

	core.Created(w, ToOrderResponse(order))
}

func (h *Handler) CountOrders(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	counts, err := h.service.Counts(r.Context(), accountID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCountsResponse(counts))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	orderID, err := core.URLParamID(r, "orderID")
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	order, err := h.service.Get(r.Context(), accountID, orderID)
	if err != nil {
		writeError(w, err, "order")
		return
	}

	core.OK(w, ToOrderResponse(order))
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	orderID, err := core.URLParamID(r, "orderID")
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	if err := h.service.Delete(r.Context(), accountID, orderID); err != nil {
		writeError(w, err, "order")
		return
	}

	core.NoContent(w)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	orderID, err := core.URLParamID(r, "orderID")
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	status, err := ParseStatus(req.Status)
	if err != nil {
		core.BadRequest(w, "invalid status")
		return
	}

	order, err := h.service.Transition(r.Context(), accountID, orderID, status)
	if err != nil {
		writeError(w, err, "order")
		return
	}

	core.OK(w, ToOrderResponse(order))
}

func (h *Handler) ListClientOrders(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	clientID, err := core.URLParamID(r, "clientID")
	if err != nil {
		core.BadRequest(w, "invalid client id")
		return
	}

	orders, err := h.service.ListByClient(r.Context(), accountID, clientID)
	if err != nil {
		writeError(w, err, "client")
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func writeError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, ErrInvalidTransition):
		core.JSONError(w, core.ConflictError("INVALID_TRANSITION", err.Error()))
	case errors.Is(err, ErrInvalidStatus):
		core.BadRequest(w, "invalid status")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "flavor, due date and a non-negative price are required")
	default:
		core.InternalServerError(w, err)
	}
}
