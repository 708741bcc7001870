package handler

import (
	"errors"
	"net/http"

	"mongo-user-service/internal/usecase/user"
	apperrors "mongo-user-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Age      *int64 `json:"age" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Absent fields stay untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Age      *int64  `json:"age"`
	IsActive *bool   `json:"is_active"`
}

// listUsersQuery represents the accepted query parameters for listing users
type listUsersQuery struct {
	Q        string `form:"q"`
	MinAge   *int64 `form:"min_age" binding:"omitnil,gte=0"`
	MaxAge   *int64 `form:"max_age" binding:"omitnil,gte=0"`
	IsActive *bool  `form:"is_active"`
	Page     int64  `form:"page,default=1" binding:"gte=1"`
	Limit    int64  `form:"limit,default=10" binding:"gte=1,lte=100"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int64  `json:"age"`
	IsActive bool   `json:"is_active"`
}

// ListUsersResponse represents the HTTP response for a user listing
type ListUsersResponse struct {
	Users      []UserResponse     `json:"users"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse represents pagination metadata for list responses
type PaginationResponse struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("create user request", zap.String("name", req.Name), zap.String("email", req.Email))

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Age:      *req.Age,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(resp.User))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user request", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id}); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.log.Warn("invalid list users query", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query:    q.Q,
		MinAge:   q.MinAge,
		MaxAge:   q.MaxAge,
		IsActive: q.IsActive,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toResponse(u)
	}

	out := ListUsersResponse{Users: users}
	if resp.Pagination != nil {
		out.Pagination = PaginationResponse{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, out)
}

// handleError converts usecase errors to HTTP responses using the status
// each error type carries.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var statusErr apperrors.HTTPStatuser
	if errors.As(err, &statusErr) {
		status := statusErr.HTTPStatus()
		c.JSON(status, ErrorResponse{
			Error:   errorTag(err, status),
			Message: err.Error(),
		})
		return
	}

	h.log.Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

func errorTag(err error, status int) string {
	switch status {
	case http.StatusBadRequest:
		var invalidID *apperrors.InvalidIDError
		if errors.As(err, &invalidID) {
			return "invalid_id"
		}
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_error"
	default:
		return "internal_error"
	}
}

func toResponse(u user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Age:      u.Age,
		IsActive: u.IsActive,
	}
}
