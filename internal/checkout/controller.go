package checkout

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"welwexpress/internal/auth"
	apperrors "welwexpress/internal/errors"
)

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

type checkoutRequest struct {
	OrderID string `json:"orderId"`
}

func (c *Controller) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	if req.OrderID == "" {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "orderId is required")
		return
	}

	redirectURL, err := c.useCase.OpenCheckout(r.Context(), principal.UserID, req.OrderID)
	if err != nil {
		c.handleUseCaseError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"url": redirectURL})
}

// HandlePaymentSuccess is invoked by the provider's redirect; there is no
// bearer credential on this path.
func (c *Controller) HandlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		c.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "add the session_id parameter to your query string")
		return
	}

	confirmation, err := c.useCase.HandlePaymentSuccess(r.Context(), sessionID)
	if err != nil {
		c.handleUseCaseError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"msg": confirmation})
}

func (c *Controller) HandlePaymentCancel(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]string{"msg": c.useCase.HandlePaymentCancel()})
}

func (c *Controller) handleUseCaseError(w http.ResponseWriter, err error) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsBadRequestError(err); ok {
		c.writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	c.logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
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
