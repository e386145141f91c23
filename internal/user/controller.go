package user

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"welwexpress/internal/auth"
	"welwexpress/internal/domain"
	apperrors "welwexpress/internal/errors"
)

const (
	maxLicenseUploadBytes = 10 << 20
	minPasswordLength     = 8
)

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

func (c *Controller) HandleRegisterBuyer(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateRegisterRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	result, err := c.service.RegisterBuyer(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, toAuthResponse("account created successfully", result))
}

// HandleRegisterSeller accepts a multipart form: name, email, password and a
// "license" file part holding the commerce license.
func (c *Controller) HandleRegisterSeller(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if err := r.ParseMultipartForm(maxLicenseUploadBytes); err != nil {
		logger.Warn("invalid multipart form", zap.Error(err))
		c.writeValidationError(w, "invalid multipart form", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be multipart form data",
		})
		return
	}

	req := registerRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := validateRegisterRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	file, header, err := r.FormFile("license")
	if err != nil {
		c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
			Field:   "license",
			Message: "a license file is required",
		})
		return
	}
	defer file.Close()

	result, err := c.service.RegisterSeller(r.Context(), RegisterSellerInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		License:     file,
		LicenseName: header.Filename,
	})
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, toAuthResponse("seller account created successfully", result))
}

func (c *Controller) HandleRegisterEmployee(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return
	}

	var req registerEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateRegisterEmployeeRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	employee, err := c.service.RegisterEmployee(r.Context(), principal.UserID, RegisterEmployeeInput{
		StoreID:  req.StoreID,
		Name:     req.Name,
		IDNumber: req.IDNumber,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"msg":      "employee account created, credentials sent by email",
		"employee": toEmployeeResponse(employee),
	})
}

func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Email == "" || req.Password == "" {
		c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
			Field:   "email",
			Message: "email and password are required",
		})
		return
	}

	result, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toAuthResponse("signed in successfully", result))
}

func (c *Controller) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := c.authorizeProfileAccess(w, r)
	if !ok {
		return
	}

	u, err := c.service.GetUser(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"user": toUserResponse(u)})
}

func (c *Controller) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.authorizeProfileAccess(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
				Field:   "email",
				Message: "email must be a valid address",
			})
			return
		}
	}
	if req.Password != nil && len(*req.Password) < minPasswordLength {
		c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
		return
	}

	u, err := c.service.UpdateUser(r.Context(), id, UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"user": toUserResponse(u)})
}

func (c *Controller) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := c.authorizeProfileAccess(w, r)
	if !ok {
		return
	}

	if err := c.service.DeleteUser(r.Context(), id); err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"msg": "account deleted successfully"})
}

// authorizeProfileAccess restricts profile routes to the account owner; admins
// may act on any account.
func (c *Controller) authorizeProfileAccess(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		return "", false
	}

	id := chi.URLParam(r, "id")
	if id != principal.UserID && principal.Role != domain.RoleAdmin {
		c.writeError(w, http.StatusForbidden, "FORBIDDEN", "you can only manage your own account")
		return "", false
	}

	return id, true
}

func validateRegisterRequest(req registerRequest) error {
	var details []apperrors.ValidationDetail

	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "email",
			Message: "email must be a valid address",
		})
	}

	if len(req.Password) < minPasswordLength {
		details = append(details, apperrors.ValidationDetail{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func validateRegisterEmployeeRequest(req registerEmployeeRequest) error {
	var details []apperrors.ValidationDetail

	if req.StoreID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "storeId",
			Message: "storeId is required",
		})
	}

	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}

	if req.IDNumber == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "idNumber",
			Message: "idNumber is required",
		})
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "email",
			Message: "email must be a valid address",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
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
