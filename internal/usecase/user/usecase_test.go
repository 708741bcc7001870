package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "mongo-user-service/internal/domain/user"
	apperrors "mongo-user-service/pkg/errors"
)

const (
	validID   = "64f1b2a3c4d5e6f7a8b9c0d1"
	otherID   = "64f1b2a3c4d5e6f7a8b9c0d2"
	invalidID = "not-an-object-id"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email, excludeID string) (*domain.User, error) {
	args := m.Called(ctx, email, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, p domain.Patch) (int64, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f domain.Filter, page, limit int64) ([]domain.User, error) {
	args := m.Called(ctx, f, page, limit)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, f domain.Filter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func setupTestService(t *testing.T) (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	s := New(mockRepo, zaptest.NewLogger(t))
	return s, mockRepo
}

func ptr[T any](v T) *T { return &v }

// ==================== CREATE USER TESTS ====================

func TestCreateUser_Success(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	req := CreateUserRequest{
		Name:  "Ana Silva",
		Email: "ana@x.com",
		Age:   30,
	}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == req.Name && u.Email == req.Email && u.Age == 30 && u.IsActive
	})).Return(validID, nil)
	mockRepo.On("GetByID", ctx, validID).Return(&domain.User{
		ID:       validID,
		Name:     req.Name,
		Email:    req.Email,
		Age:      30,
		IsActive: true,
	}, nil)

	resp, err := s.CreateUser(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, validID, resp.User.ID)
	assert.Equal(t, "Ana Silva", resp.User.Name)
	assert.True(t, resp.User.IsActive)

	mockRepo.AssertExpectations(t)
}

func TestCreateUser_ExplicitlyInactive(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	req := CreateUserRequest{
		Name:     "Ana Silva",
		Email:    "ana@x.com",
		Age:      30,
		IsActive: ptr(false),
	}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return !u.IsActive
	})).Return(validID, nil)
	mockRepo.On("GetByID", ctx, validID).Return(&domain.User{ID: validID, Name: req.Name, Email: req.Email, Age: 30}, nil)

	_, err := s.CreateUser(ctx, req)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_ValidationError_NameTooShort(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.CreateUser(context.Background(), CreateUserRequest{
		Name:  "A",
		Email: "ana@x.com",
		Age:   30,
	})

	assert.Nil(t, resp)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Name must be at least 2 characters")
}

func TestCreateUser_ValidationError_NameTooLong(t *testing.T) {
	s, _ := setupTestService(t)

	name := make([]byte, 81)
	for i := range name {
		name[i] = 'a'
	}

	resp, err := s.CreateUser(context.Background(), CreateUserRequest{
		Name:  string(name),
		Email: "ana@x.com",
		Age:   30,
	})

	assert.Nil(t, resp)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Name must be at most 80 characters")
}

func TestCreateUser_ValidationError_EmailInvalid(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.CreateUser(context.Background(), CreateUserRequest{
		Name:  "Ana Silva",
		Email: "not-an-email",
		Age:   30,
	})

	assert.Nil(t, resp)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Email must be a valid email")
}

func TestCreateUser_ValidationError_NegativeAge(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.CreateUser(context.Background(), CreateUserRequest{
		Name:  "Ana Silva",
		Email: "ana@x.com",
		Age:   -1,
	})

	assert.Nil(t, resp)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Age must be at least 0")
}

func TestCreateUser_DuplicateEmail_Conflict(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return("", domain.ErrDuplicateEmail)

	resp, err := s.CreateUser(ctx, CreateUserRequest{
		Name:  "Bea Costa",
		Email: "ana@x.com",
		Age:   25,
	})

	assert.Nil(t, resp)
	var cerr *apperrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "ana@x.com")

	mockRepo.AssertExpectations(t)
}

// ==================== GET USER TESTS ====================

func TestGetUser_InvalidID(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.GetUser(context.Background(), GetUserRequest{ID: invalidID})

	assert.Nil(t, resp)
	var ierr *apperrors.InvalidIDError
	require.ErrorAs(t, err, &ierr)
}

func TestGetUser_NotFound(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, validID).Return(nil, domain.ErrNotFound)

	resp, err := s.GetUser(ctx, GetUserRequest{ID: validID})

	assert.Nil(t, resp)
	var nerr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestGetUser_Success(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, validID).Return(&domain.User{
		ID:       validID,
		Name:     "Ana Silva",
		Email:    "ana@x.com",
		Age:      30,
		IsActive: true,
	}, nil)

	resp, err := s.GetUser(ctx, GetUserRequest{ID: validID})

	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", resp.User.Name)
	assert.Equal(t, int64(30), resp.User.Age)
}

// ==================== UPDATE USER TESTS ====================

func TestUpdateUser_InvalidID(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.UpdateUser(context.Background(), UpdateUserRequest{ID: invalidID, Age: ptr(int64(31))})

	assert.Nil(t, resp)
	var ierr *apperrors.InvalidIDError
	require.ErrorAs(t, err, &ierr)
}

func TestUpdateUser_EmptyPayload(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.UpdateUser(context.Background(), UpdateUserRequest{ID: validID})

	assert.Nil(t, resp)
	var eerr *apperrors.EmptyUpdateError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, 400, apperrors.StatusOf(err))
	assert.Contains(t, err.Error(), "no fields to update")
}

func TestUpdateUser_ValidationError_ShortName(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.UpdateUser(context.Background(), UpdateUserRequest{ID: validID, Name: ptr("A")})

	assert.Nil(t, resp)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "bea@x.com", validID).Return(&domain.User{ID: otherID, Email: "bea@x.com"}, nil)

	resp, err := s.UpdateUser(ctx, UpdateUserRequest{ID: validID, Email: ptr("bea@x.com")})

	assert.Nil(t, resp)
	var cerr *apperrors.ConflictError
	require.ErrorAs(t, err, &cerr)

	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_DuplicateEmailFromIndex(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	// The pre-check sees the email as free, but a concurrent writer takes it
	// before the update lands; the unique index has the final word.
	mockRepo.On("FindByEmail", ctx, "bea@x.com", validID).Return(nil, nil)
	mockRepo.On("Update", ctx, validID, mock.Anything).
		Return(int64(0), fmt.Errorf("failed to update user: %w", domain.ErrDuplicateEmail))

	resp, err := s.UpdateUser(ctx, UpdateUserRequest{ID: validID, Email: ptr("bea@x.com")})

	assert.Nil(t, resp)
	var cerr *apperrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 409, apperrors.StatusOf(err))

	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_NotFound(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, validID, mock.Anything).Return(int64(0), nil)

	resp, err := s.UpdateUser(ctx, UpdateUserRequest{ID: validID, Age: ptr(int64(31))})

	assert.Nil(t, resp)
	var nerr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nerr)

	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_OnlyAgeChanges(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Update", ctx, validID, mock.MatchedBy(func(p domain.Patch) bool {
		return p.Name == nil && p.Email == nil && p.IsActive == nil &&
			p.Age != nil && *p.Age == 31
	})).Return(int64(1), nil)
	mockRepo.On("GetByID", ctx, validID).Return(&domain.User{
		ID:       validID,
		Name:     "Ana Silva",
		Email:    "ana@x.com",
		Age:      31,
		IsActive: true,
	}, nil)

	resp, err := s.UpdateUser(ctx, UpdateUserRequest{ID: validID, Age: ptr(int64(31))})

	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", resp.User.Name)
	assert.Equal(t, "ana@x.com", resp.User.Email)
	assert.Equal(t, int64(31), resp.User.Age)
	assert.True(t, resp.User.IsActive)

	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_EmailFree_Succeeds(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "new@x.com", validID).Return(nil, nil)
	mockRepo.On("Update", ctx, validID, mock.Anything).Return(int64(1), nil)
	mockRepo.On("GetByID", ctx, validID).Return(&domain.User{ID: validID, Name: "Ana Silva", Email: "new@x.com", Age: 30, IsActive: true}, nil)

	resp, err := s.UpdateUser(ctx, UpdateUserRequest{ID: validID, Email: ptr("new@x.com")})

	require.NoError(t, err)
	assert.Equal(t, "new@x.com", resp.User.Email)

	mockRepo.AssertExpectations(t)
}

// ==================== DELETE USER TESTS ====================

func TestDeleteUser_InvalidID(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.DeleteUser(context.Background(), DeleteUserRequest{ID: invalidID})

	assert.Nil(t, resp)
	var ierr *apperrors.InvalidIDError
	require.ErrorAs(t, err, &ierr)
}

func TestDeleteUser_NotFound(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, validID).Return(int64(0), nil)

	resp, err := s.DeleteUser(ctx, DeleteUserRequest{ID: validID})

	assert.Nil(t, resp)
	var nerr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestDeleteUser_Success(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, validID).Return(int64(1), nil)

	resp, err := s.DeleteUser(ctx, DeleteUserRequest{ID: validID})

	require.NoError(t, err)
	assert.Equal(t, validID, resp.ID)
}

// ==================== LIST USERS TESTS ====================

func TestListUsers_ClampsPageAndLimit(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, mock.Anything, int64(1), int64(100)).Return([]domain.User{}, nil)
	mockRepo.On("Count", ctx, mock.Anything).Return(int64(0), nil)

	resp, err := s.ListUsers(ctx, ListUsersRequest{Page: 0, Limit: 150})

	require.NoError(t, err)
	assert.Empty(t, resp.Users)
	assert.Equal(t, int64(1), resp.Pagination.Page)
	assert.Equal(t, int64(100), resp.Pagination.Limit)

	mockRepo.AssertExpectations(t)
}

func TestListUsers_PassesFilterThrough(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	minAge, maxAge := int64(18), int64(30)
	active := true

	mockRepo.On("List", ctx, mock.MatchedBy(func(f domain.Filter) bool {
		return f.Query == "ana" &&
			f.MinAge != nil && *f.MinAge == 18 &&
			f.MaxAge != nil && *f.MaxAge == 30 &&
			f.IsActive != nil && *f.IsActive
	}), int64(1), int64(10)).Return([]domain.User{
		{ID: validID, Name: "Ana Silva", Email: "ana@x.com", Age: 30, IsActive: true},
	}, nil)
	mockRepo.On("Count", ctx, mock.Anything).Return(int64(1), nil)

	resp, err := s.ListUsers(ctx, ListUsersRequest{
		Query:    "ana",
		MinAge:   &minAge,
		MaxAge:   &maxAge,
		IsActive: &active,
	})

	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Ana Silva", resp.Users[0].Name)

	mockRepo.AssertExpectations(t)
}

func TestListUsers_PaginationTotals(t *testing.T) {
	s, mockRepo := setupTestService(t)
	ctx := context.Background()

	mockRepo.On("List", ctx, mock.Anything, int64(3), int64(10)).Return(make([]domain.User, 5), nil)
	mockRepo.On("Count", ctx, mock.Anything).Return(int64(25), nil)

	resp, err := s.ListUsers(ctx, ListUsersRequest{Page: 3, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, resp.Users, 5)
	assert.Equal(t, int64(25), resp.Pagination.Total)
	assert.Equal(t, int64(3), resp.Pagination.TotalPages)
}

func TestListUsers_InvalidQuery(t *testing.T) {
	s, _ := setupTestService(t)

	resp, err := s.ListUsers(context.Background(), ListUsersRequest{Query: "ana\x00"})

	assert.Nil(t, resp)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestListUsers_NegativeAgeBound(t *testing.T) {
	s, _ := setupTestService(t)

	minAge := int64(-1)
	resp, err := s.ListUsers(context.Background(), ListUsersRequest{MinAge: &minAge})

	assert.Nil(t, resp)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
}
