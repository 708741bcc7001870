package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "mongo-user-service/internal/domain/user"
	apperrors "mongo-user-service/pkg/errors"
	"mongo-user-service/pkg/security"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer; the production implementation lives in
// internal/adapter/db/mongo. The unique index on email is enforced by the
// storage layer itself: Create reports the index's verdict through
// domain.ErrDuplicateEmail.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (string, error)                          // Insert a new user, returns the assigned id
	GetByID(ctx context.Context, id string) (*domain.User, error)                        // Retrieve user by id; domain.ErrNotFound when absent
	FindByEmail(ctx context.Context, email, excludeID string) (*domain.User, error)      // First user holding email, ignoring excludeID; nil when none
	Update(ctx context.Context, id string, p domain.Patch) (int64, error)                // Apply a partial update, returns matched count
	Delete(ctx context.Context, id string) (int64, error)                                // Delete user by id, returns deleted count
	List(ctx context.Context, f domain.Filter, page, limit int64) ([]domain.User, error) // List users with filtering and pagination
	Count(ctx context.Context, f domain.Filter) (int64, error)                           // Count users matching the filter
}

// Service implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new instance of Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a field-level
// application error with a human-readable message.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("", err.Error())
	}

	var messages []string
	field := ""
	for _, e := range validationErrors {
		if field == "" {
			field = e.Field()
		}
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}

// CreateUser creates a new user after validating the request.
// Email uniqueness is decided by the storage layer's unique index when the
// insert happens; a pre-check would race with concurrent creates, so the
// duplicate signal from the insert itself is treated as authoritative.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	s.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	id, err := s.repo.Create(ctx, &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Age:      in.Age,
		IsActive: active,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			s.log.Warn("email already exists", zap.String("email", in.Email))
			return nil, apperrors.NewConflictError("user", fmt.Sprintf("the email %q is already in use", in.Email))
		}
		s.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("failed to load created user", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &CreateUserResponse{User: toDTO(created)}, nil
}

// UpdateUser applies a partial update after validating the provided fields.
// When the email changes, a best-effort pre-check rejects emails already held
// by another user; the check is not atomic with the write, so the unique
// index's verdict on the write itself is also treated as a conflict.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	s.log.Info("updating user", zap.String("id", in.ID))

	if _, err := domain.ParseID(in.ID); err != nil {
		s.log.Warn("update user validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, apperrors.NewInvalidIDError(in.ID)
	}

	patch := domain.Patch{
		Name:     in.Name,
		Email:    in.Email,
		Age:      in.Age,
		IsActive: in.IsActive,
	}
	if patch.IsEmpty() {
		s.log.Warn("update user validation failed", zap.String("id", in.ID), zap.String("reason", "empty payload"))
		return nil, apperrors.NewEmptyUpdateError()
	}

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if in.Email != nil {
		other, err := s.repo.FindByEmail(ctx, *in.Email, in.ID)
		if err != nil {
			s.log.Error("failed to check existing email", zap.String("email", *in.Email), zap.Error(err))
			return nil, err
		}
		if other != nil {
			s.log.Warn("email already exists", zap.String("email", *in.Email), zap.String("existing_id", other.ID))
			return nil, apperrors.NewConflictError("user", fmt.Sprintf("the email %q is already in use", *in.Email))
		}
	}

	matched, err := s.repo.Update(ctx, in.ID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			email := ""
			if in.Email != nil {
				email = *in.Email
			}
			s.log.Warn("email already exists", zap.String("id", in.ID), zap.String("email", email))
			return nil, apperrors.NewConflictError("user", fmt.Sprintf("the email %q is already in use", email))
		}
		s.log.Error("failed to update user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}
	if matched == 0 {
		s.log.Warn("user not found for update", zap.String("id", in.ID))
		return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user with id %q not found", in.ID))
	}

	updated, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		s.log.Error("failed to load updated user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &UpdateUserResponse{User: toDTO(updated)}, nil
}

// DeleteUser removes a user after validating the user id.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	s.log.Info("deleting user", zap.String("id", in.ID))

	if _, err := domain.ParseID(in.ID); err != nil {
		s.log.Warn("delete user validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, apperrors.NewInvalidIDError(in.ID)
	}

	deleted, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		s.log.Error("failed to delete user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}
	if deleted == 0 {
		s.log.Warn("user not found for delete", zap.String("id", in.ID))
		return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user with id %q not found", in.ID))
	}

	return &DeleteUserResponse{ID: in.ID}, nil
}

// GetUser retrieves a user by id after validating the request.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	if _, err := domain.ParseID(in.ID); err != nil {
		s.log.Warn("get user validation failed", zap.String("id", in.ID), zap.String("reason", "invalid id"))
		return nil, apperrors.NewInvalidIDError(in.ID)
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("user not found", zap.String("id", in.ID))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user with id %q not found", in.ID))
		}
		s.log.Error("failed to get user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &GetUserResponse{User: toDTO(u)}, nil
}

// ListUsers retrieves a paginated list of users with optional filtering.
// An empty result is not an error.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}
	if in.Limit > 100 {
		in.Limit = 100
	}

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		s.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, apperrors.NewValidationError("q", err.Error())
	}

	if in.MinAge != nil && *in.MinAge < 0 {
		return nil, apperrors.NewValidationError("min_age", "must be at least 0")
	}
	if in.MaxAge != nil && *in.MaxAge < 0 {
		return nil, apperrors.NewValidationError("max_age", "must be at least 0")
	}

	s.log.Info("listing users", zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	filter := domain.Filter{
		Query:    query,
		MinAge:   in.MinAge,
		MaxAge:   in.MaxAge,
		IsActive: in.IsActive,
	}

	domainUsers, err := s.repo.List(ctx, filter, in.Page, in.Limit)
	if err != nil {
		s.log.Error("failed to list users", zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit), zap.Error(err))
		return nil, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.log.Error("failed to count users", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toDTO(&du)
	}

	p := domain.NewPagination(total, in.Page, in.Limit)

	return &ListUsersResponse{
		Users: users,
		Pagination: &Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}

func toDTO(u *domain.User) User {
	return User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Age:      u.Age,
		IsActive: u.IsActive,
	}
}
