package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"welwexpress/internal/auth"
	"welwexpress/internal/domain"
	apperrors "welwexpress/internal/errors"
	"welwexpress/internal/order/service"
)

type OrderService interface {
	CreateOrder(ctx context.Context, buyerID string, input service.CreateOrderInput) (*service.CreateOrderResult, error)
	GetOrder(ctx context.Context, buyerID, orderID string) (*domain.Order, error)
	ListOrdersForBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListOrdersForSeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, buyerID, orderID string, input service.UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, buyerID, orderID string) error
}

type Controller struct {
	service OrderService
	logger  *zap.Logger
}

func NewController(service OrderService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

type itemRequest struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type createOrderRequest struct {
	SellerID        string        `json:"sellerId"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	CustomerAddress string        `json:"customerAddress"`
	Items           []itemRequest `json:"items"`
	IdempotencyKey  string        `json:"idempotencyKey"`
}

type createOrderResponse struct {
	Msg          string `json:"msg"`
	OrderID      string `json:"orderId"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

type updateOrderRequest struct {
	CustomerName    *string       `json:"customerName"`
	CustomerPhone   *string       `json:"customerPhone"`
	CustomerAddress *string       `json:"customerAddress"`
	Items           []itemRequest `json:"items"`
	Status          *string       `json:"status"`
	// TotalAmount is accepted but never applied; totals are always
	// recomputed server-side from the item list.
	TotalAmount *decimal.Decimal `json:"totalAmount"`
}

type orderResponse struct {
	ID              string          `json:"id"`
	BuyerID         string          `json:"buyerId"`
	SellerID        string          `json:"sellerId"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Items           []itemRequest   `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          string          `json:"status"`
	PaymentIntentID string          `json:"paymentIntentId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (c *Controller) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCreateOrderRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	result, err := c.service.CreateOrder(r.Context(), principal.UserID, service.CreateOrderInput{
		SellerID:        req.SellerID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Items:           toItemInputs(req.Items),
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	if result.Replayed {
		c.writeJSON(w, http.StatusOK, createOrderResponse{
			Msg:     "order already created for this idempotency key",
			OrderID: result.OrderID,
		})
		return
	}

	c.writeJSON(w, http.StatusCreated, createOrderResponse{
		Msg:          "order created successfully",
		OrderID:      result.OrderID,
		ClientSecret: result.ClientSecret,
	})
}

func (c *Controller) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	order, err := c.service.GetOrder(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"order": toOrderResponse(*order)})
}

func (c *Controller) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	orders, err := c.service.ListOrdersForBuyer(r.Context(), principal.UserID)
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeOrderList(w, orders)
}

func (c *Controller) HandleListOrdersBySeller(w http.ResponseWriter, r *http.Request) {
	sellerID := r.URL.Query().Get("sellerId")
	if sellerID == "" {
		c.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "add the sellerId parameter to your query string")
		return
	}

	orders, err := c.service.ListOrdersForSeller(r.Context(), sellerID)
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeOrderList(w, orders)
}

func (c *Controller) HandleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Items != nil {
		if err := validateItems(req.Items); err != nil {
			ve, _ := apperrors.IsValidationError(err)
			c.writeValidationError(w, ve.Message, ve.Details...)
			return
		}
	}

	input := service.UpdateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
	}
	if req.Items != nil {
		input.Items = toItemInputs(req.Items)
	}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		input.Status = &status
	}

	order, err := c.service.UpdateOrder(r.Context(), principal.UserID, chi.URLParam(r, "id"), input)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"order": toOrderResponse(*order)})
}

func (c *Controller) HandleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	if err := c.service.DeleteOrder(r.Context(), principal.UserID, chi.URLParam(r, "id")); err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"msg": "order deleted successfully"})
}

func validateCreateOrderRequest(req createOrderRequest) error {
	var details []apperrors.ValidationDetail

	if req.SellerID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "sellerId",
			Message: "sellerId is required",
		})
	}

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	details = append(details, itemDetails(req.Items)...)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func validateItems(items []itemRequest) error {
	var details []apperrors.ValidationDetail

	if len(items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	details = append(details, itemDetails(items)...)

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func itemDetails(items []itemRequest) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	for idx, item := range items {
		if item.ProductID == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "productId is required",
			})
		}

		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be a positive integer",
			})
		}

		if item.UnitPrice.IsNegative() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].unitPrice",
				Message: "unitPrice must be non-negative",
			})
		}
	}

	return details
}

func (c *Controller) handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsBadRequestError(err); ok {
		c.writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	if _, ok := apperrors.IsUnauthenticatedError(err); ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *Controller) writeOrderList(w http.ResponseWriter, orders []domain.Order) {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": out,
		"count":  len(out),
	})
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]itemRequest, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemRequest{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return orderResponse{
		ID:              order.ID,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
		PaymentIntentID: order.PaymentIntentID,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toItemInputs(items []itemRequest) []service.ItemInput {
	out := make([]service.ItemInput, len(items))
	for i, item := range items {
		out[i] = service.ItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return out
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeError(w http.ResponseWriter, status int, code, message string) {
	c.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
