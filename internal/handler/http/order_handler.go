package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/order"
)

type OptionRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"min=0"`
}

type OrderItemRequest struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name" validate:"required"`
	Price       int64           `json:"price" validate:"min=0"`
	Quantity    int             `json:"quantity" validate:"min=1"`
	Options     []OptionRequest `json:"options" validate:"dive"`
	Instruction string          `json:"instruction"`
}

// CreateOrderRequest identifies the table by TableID or by
// (RestaurantID, TableNumber). TableNumber 0 is Pick & Go.
type CreateOrderRequest struct {
	TableID       string             `json:"tableId"`
	RestaurantID  string             `json:"restaurantId"`
	TableNumber   *int               `json:"tableNumber" validate:"omitempty,min=0"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount   int64              `json:"totalAmount" validate:"min=0"`
	PaymentMethod string             `json:"paymentMethod" validate:"omitempty,oneof=cash card instapay online"`
}

type SetStatusRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=payment_verification pending preparing ready served paid"`
}

type DeleteOrdersResponse struct {
	Deleted []string `json:"deleted"`
}

type ServiceRequestRequest struct {
	TableNumber int    `json:"tableNumber" validate:"min=1"`
	Message     string `json:"message"`
	Type        string `json:"type" validate:"omitempty,oneof=general waiter_call"`
}

type ResolveServiceRequestRequest struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required,eq=resolved"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// OrderHandler serves customers and the kitchen: orders, waiter calls and
// the order counter.
type OrderHandler struct {
	orders   order.Service
	requests order.RequestService
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service, requests order.RequestService) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		requests: requests,
		validate: newValidator(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Delete("/orders", h.handleDeleteOrders)
	router.Get("/orders/{id}", h.handleGetOrder)

	router.Get("/kitchen/orders", h.handleKitchenOrders)
	router.Put("/kitchen/orders", h.handleSetStatus)
	router.Post("/kitchen/orders/{id}/advance", h.handleAdvance)

	router.Post("/service-requests", h.handleCreateServiceRequest)
	router.Get("/service-requests", h.handleListServiceRequests)
	router.Put("/service-requests", h.handleResolveServiceRequest)

	router.Post("/admin/reset-counter", h.handleResetCounter)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	items := make([]model.OrderItem, 0, len(requestPayload.Items))
	for _, it := range requestPayload.Items {
		item := model.OrderItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Instruction: it.Instruction,
		}
		for _, o := range it.Options {
			item.Options = append(item.Options, model.Option{Name: o.Name, Price: o.Price})
		}
		items = append(items, item)
	}

	res, err := h.orders.CreateOrder(r.Context(), order.CreateInput{
		TableID:       requestPayload.TableID,
		RestaurantID:  requestPayload.RestaurantID,
		TableNumber:   requestPayload.TableNumber,
		Items:         items,
		TotalAmount:   requestPayload.TotalAmount,
		PaymentMethod: model.PaymentMethod(requestPayload.PaymentMethod),
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to create order")
		return
	}

	respondWithResult(w, http.StatusCreated, res)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	var statuses []model.OrderStatus
	for _, raw := range r.URL.Query()["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, model.OrderStatus(s))
			}
		}
	}

	res, err := h.orders.ListOrders(r.Context(), statuses)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}

	respondWithResult(w, http.StatusOK, res)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}

	respondWithResult(w, http.StatusOK, res)
}

func (h *OrderHandler) handleDeleteOrders(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["id"]
	if len(ids) == 0 {
		log.Warn().Msg("Delete orders called without id")
		respondWithError(w, http.StatusBadRequest, "Missing ID")
		return
	}

	res, err := h.orders.DeleteOrders(r.Context(), ids)
	if err != nil {
		respondWithServiceError(w, err, "Failed to delete orders")
		return
	}

	w.Header().Set(DataSourceHeader, string(res.Source))
	respondWithJSON(w, http.StatusOK, DeleteOrdersResponse{Deleted: res.Value})
}

func (h *OrderHandler) handleKitchenOrders(w http.ResponseWriter, r *http.Request) {
	res, err := h.orders.ListActive(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list kitchen orders")
		return
	}

	respondWithResult(w, http.StatusOK, res)
}

func (h *OrderHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var requestPayload SetStatusRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	res, err := h.orders.SetStatus(r.Context(), requestPayload.OrderID, model.OrderStatus(requestPayload.Status))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}

	respondWithResult(w, http.StatusOK, res)
}

func (h *OrderHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.orders.Advance(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to advance order")
		return
	}

	respondWithResult(w, http.StatusOK, res)
}

func (h *OrderHandler) handleCreateServiceRequest(w http.ResponseWriter, r *http.Request) {
	var requestPayload ServiceRequestRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	res, err := h.requests.Call(r.Context(), requestPayload.TableNumber, requestPayload.Message, model.RequestType(requestPayload.Type))
	if err != nil {
		respondWithServiceError(w, err, "Failed to create service request")
		return
	}

	respondWithResult(w, http.StatusCreated, res)
}

func (h *OrderHandler) handleListServiceRequests(w http.ResponseWriter, r *http.Request) {
	status := model.RequestStatus(r.URL.Query().Get("status"))

	res, err := h.requests.List(r.Context(), status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list service requests")
		return
	}

	respondWithResult(w, http.StatusOK, res)
}

func (h *OrderHandler) handleResolveServiceRequest(w http.ResponseWriter, r *http.Request) {
	var requestPayload ResolveServiceRequestRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	res, err := h.requests.Resolve(r.Context(), requestPayload.ID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to resolve service request")
		return
	}

	respondWithResult(w, http.StatusOK, res)
}

func (h *OrderHandler) handleResetCounter(w http.ResponseWriter, r *http.Request) {
	h.orders.ResetCounter()
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Order counter reset"})
}
