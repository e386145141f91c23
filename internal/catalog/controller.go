package catalog

import (
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
)

const maxImageUploadBytes = 10 << 20

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Colors      []string         `json:"colors"`
	Sizes       []string         `json:"sizes"`
	Quantity    *int             `json:"quantity"`
}

type productResponse struct {
	ID          string          `json:"id"`
	StoreID     string          `json:"storeId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	Quantity    int             `json:"quantity"`
	ImagePath   string          `json:"imagePath,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// HandleCreateProduct accepts a multipart form: name, price, description,
// category, quantity, repeated colors/sizes fields and an optional "image"
// file part.
func (c *Controller) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		logger.Warn("invalid multipart form", zap.Error(err))
		c.writeValidationError(w, "invalid multipart form", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be multipart form data",
		})
		return
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be a decimal number",
		})
		return
	}

	quantity := 0
	if raw := r.FormValue("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
				Field:   "quantity",
				Message: "quantity must be an integer",
			})
			return
		}
	}

	input := CreateProductInput{
		Name:        r.FormValue("name"),
		Price:       price,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Colors:      r.MultipartForm.Value["colors"],
		Sizes:       r.MultipartForm.Value["sizes"],
		Quantity:    quantity,
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		input.Image = file
		input.ImageName = header.Filename
	}

	product, err := c.service.CreateProduct(r.Context(), principal.UserID, input)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"msg":     "product created successfully",
		"product": toProductResponse(product),
	})
}

func (c *Controller) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	product, err := c.service.GetProduct(r.Context(), principal.UserID, chi.URLParam(r, "id"))
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"product": toProductResponse(product)})
}

func (c *Controller) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	products, err := c.service.ListProducts(r.Context(), principal.UserID)
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": out,
		"count":    len(out),
	})
}

func (c *Controller) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	product, err := c.service.UpdateProduct(r.Context(), principal.UserID, chi.URLParam(r, "id"), UpdateProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		Quantity:    req.Quantity,
	})
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"product": toProductResponse(product)})
}

func (c *Controller) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	if err := c.service.DeleteProduct(r.Context(), principal.UserID, chi.URLParam(r, "id")); err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"msg": "product deleted successfully"})
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Colors:      p.Colors,
		Sizes:       p.Sizes,
		Quantity:    p.Quantity,
		ImagePath:   p.ImagePath,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (c *Controller) handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

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
