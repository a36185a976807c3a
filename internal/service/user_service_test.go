package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/auth"
	"redflix-api/internal/domain"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) user(args mock.Arguments) (*domain.User, error) {
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return m.user(m.Called(ctx, id))
}
func (m *mockUsers) FindByUsername(ctx context.Context, s string) (*domain.User, error) {
	return m.user(m.Called(ctx, s))
}
func (m *mockUsers) FindByEmail(ctx context.Context, s string) (*domain.User, error) {
	return m.user(m.Called(ctx, s))
}
func (m *mockUsers) FindByResetToken(ctx context.Context, s string) (*domain.User, error) {
	return m.user(m.Called(ctx, s))
}
func (m *mockUsers) FindByVerifyToken(ctx context.Context, s string) (*domain.User, error) {
	return m.user(m.Called(ctx, s))
}
func (m *mockUsers) IsUsernameUnique(ctx context.Context, s string) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}
func (m *mockUsers) IsEmailUnique(ctx context.Context, s string) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}
func (m *mockUsers) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUsers) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	return m.user(m.Called(ctx, u))
}
func (m *mockUsers) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockUsers) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	args := m.Called(ctx, q)
	us, _ := args.Get(0).([]domain.User)
	return us, args.Get(1).(int64), args.Error(2)
}

var (
	ctx     = context.Background()
	admin   = auth.Principal{ID: "a1", Role: domain.RoleAdmin, IsEnabled: true}
	manager = auth.Principal{ID: "m1", Role: domain.RoleManager, IsEnabled: true}
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestUserService_ListClampsPage(t *testing.T) {
	m := new(mockUsers)
	m.On("List", ctx, domain.ListQuery{Offset: 0, Limit: 20}).Return([]domain.User{{ID: "u1"}}, int64(1), nil)

	page, err := NewUserService(m, nil).List(ctx, domain.ListQuery{Offset: -5, Limit: 1000})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	m.AssertExpectations(t)
}

func TestUserService_FindByID(t *testing.T) {
	m := new(mockUsers)
	m.On("FindByID", ctx, "ghost").Return(nil, domain.ErrUserNotFound)
	m.On("FindByID", ctx, "broken").Return(nil, errors.New("timeout"))

	s := NewUserService(m, nil)
	_, err := s.FindByID(ctx, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = s.FindByID(ctx, "broken")
	assert.True(t, apperr.Is(err, apperr.KindRepository))
}

func TestUserService_UpdateMe_UsernameTaken(t *testing.T) {
	m := new(mockUsers)
	m.On("FindByID", ctx, "u1").Return(&domain.User{ID: "u1", Username: "alice"}, nil)
	m.On("IsUsernameUnique", ctx, "bob").Return(false, nil)

	_, err := NewUserService(m, nil).UpdateMe(ctx, auth.Principal{ID: "u1"}, UpdateMeInput{Username: strp("bob")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_UpdateMe(t *testing.T) {
	m := new(mockUsers)
	m.On("FindByID", ctx, "u1").Return(&domain.User{ID: "u1", Username: "alice", Email: "alice@example.com", FirstName: "A"}, nil)
	m.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.FirstName == "Alicia" && u.Username == "alice" && u.Email == "alice@example.com"
	})).Return(&domain.User{ID: "u1", FirstName: "Alicia"}, nil)

	// 同名不触发唯一性检查
	got, err := NewUserService(m, nil).UpdateMe(ctx, auth.Principal{ID: "u1"}, UpdateMeInput{
		FirstName: strp("Alicia"), Username: strp("alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.FirstName)
	m.AssertExpectations(t)
}

func TestUserService_UpdateByID_ManagerRestrictions(t *testing.T) {
	m := new(mockUsers)
	m.On("FindByID", ctx, "boss").Return(&domain.User{ID: "boss", Role: domain.RoleAdmin}, nil)
	m.On("FindByID", ctx, "emp").Return(&domain.User{ID: "emp", Role: domain.RoleEmployee}, nil)
	s := NewUserService(m, nil)

	_, err := s.UpdateByID(ctx, manager, "boss", UpdateUserInput{Role: strp("EMPLOYEE")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = s.UpdateByID(ctx, manager, "emp", UpdateUserInput{Role: strp("ADMIN")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_UpdateByID(t *testing.T) {
	m := new(mockUsers)
	m.On("FindByID", ctx, "emp").Return(&domain.User{ID: "emp", Role: domain.RoleEmployee, IsEnabled: true}, nil)
	m.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleManager && u.IsEnabled
	})).Return(&domain.User{ID: "emp", Role: domain.RoleManager, IsEnabled: true}, nil)

	got, err := NewUserService(m, nil).UpdateByID(ctx, admin, "emp", UpdateUserInput{Role: strp("MANAGER"), IsEnabled: boolp(true)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, got.Role)
	assert.True(t, got.IsEnabled)
	m.AssertExpectations(t)
}

func TestUserService_UpdateByID_CannotSoftDelete(t *testing.T) {
	m := new(mockUsers)
	s := NewUserService(m, nil)

	for _, actor := range []auth.Principal{admin, manager} {
		_, err := s.UpdateByID(ctx, actor, "cust", UpdateUserInput{IsEnabled: boolp(false)})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.Equal(t, MsgDisableViaDelete, apperr.Message(err))

		_, err = s.UpdateByID(ctx, actor, "cust", UpdateUserInput{Role: strp("DELETED_USER")})
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.Equal(t, MsgDeletedRole, apperr.Message(err))
	}
	m.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_UpdateByID_RestoreDeleted(t *testing.T) {
	deleted := func() *domain.User { return &domain.User{ID: "gone", Role: domain.RoleDeletedUser, IsEnabled: false} }
	m := new(mockUsers)
	m.On("FindByID", ctx, "gone").Return(deleted(), nil)
	m.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleCustomer && u.IsEnabled
	})).Return(&domain.User{ID: "gone", Role: domain.RoleCustomer, IsEnabled: true}, nil)
	s := NewUserService(m, nil)

	_, err := s.UpdateByID(ctx, manager, "gone", UpdateUserInput{Role: strp("CUSTOMER"), IsEnabled: boolp(true)})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = s.UpdateByID(ctx, admin, "gone", UpdateUserInput{IsEnabled: boolp(true)})
	assert.Equal(t, MsgRestoreNeedsRole, apperr.Message(err))
	_, err = s.UpdateByID(ctx, admin, "gone", UpdateUserInput{Role: strp("CUSTOMER")})
	assert.Equal(t, MsgRestoreNeedsRole, apperr.Message(err))

	got, err := s.UpdateByID(ctx, admin, "gone", UpdateUserInput{Role: strp("CUSTOMER"), IsEnabled: boolp(true)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, got.Role)
	assert.True(t, got.IsEnabled)
	m.AssertNumberOfCalls(t, "Update", 1)
}

func TestUserService_UpdateByID_InvalidRole(t *testing.T) {
	m := new(mockUsers)
	_, err := NewUserService(m, nil).UpdateByID(ctx, admin, "emp", UpdateUserInput{Role: strp("ROOT")})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	m.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestUserService_SoftDelete(t *testing.T) {
	m := new(mockUsers)
	m.On("SoftDelete", ctx, "u1").Return(nil)
	m.On("SoftDelete", ctx, "ghost").Return(domain.ErrUserNotFound)
	s := NewUserService(m, nil)

	assert.NoError(t, s.SoftDelete(ctx, admin, "u1"))
	assert.True(t, apperr.Is(s.SoftDelete(ctx, admin, "ghost"), apperr.KindNotFound))
}
