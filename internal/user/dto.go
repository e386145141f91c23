package user

import (
	"time"

	"welwexpress/internal/domain"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerEmployeeRequest struct {
	StoreID  string `json:"storeId"`
	Name     string `json:"name"`
	IDNumber string `json:"idNumber"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Msg    string `json:"msg"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

// userResponse never carries the password hash.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type employeeResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IDNumber string `json:"idNumber"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	StoreID  string `json:"storeId"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func toAuthResponse(msg string, result *AuthResult) authResponse {
	return authResponse{
		Msg:    msg,
		UserID: result.UserID,
		Name:   result.Name,
		Email:  result.Email,
		Role:   string(result.Role),
		Token:  result.Token,
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func toEmployeeResponse(e *domain.Employee) employeeResponse {
	return employeeResponse{
		ID:       e.ID,
		Name:     e.Name,
		IDNumber: e.IDNumber,
		Email:    e.Email,
		Phone:    e.Phone,
		Address:  e.Address,
		StoreID:  e.StoreID,
	}
}
