package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"redflix-api/internal/domain"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewUserRepo(db), mock
}

var userColumns = []string{"id", "username", "email", "first_name", "last_name", "password_hash", "role", "is_enabled", "reset_password_token", "verify_token", "created_at", "updated_at"}

func TestUserRepo_FindByID(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "alice", "alice@example.com", "Alice", "Liddell", "$2a$10$x", "CUSTOMER", true, nil, "u10000042", now, now))

	u, err := r.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.True(t, u.IsEnabled)
	assert.Nil(t, u.ResetPasswordToken)
	require.NotNil(t, u.VerifyToken)
	assert.Equal(t, "u10000042", *u.VerifyToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FindByUsername_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := r.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FindByResetToken_Empty(t *testing.T) {
	r, mock := newMockRepo(t)
	_, err := r.FindByResetToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = r.FindByVerifyToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_IsUsernameUnique(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE email = $1`)).
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := r.IsUsernameUnique(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.IsEmailUnique(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username"`))

	u := &domain.User{Username: "alice", Email: "alice@example.com", Role: domain.RoleGuest, IsEnabled: true}
	err := r.Create(context.Background(), u)
	assert.ErrorIs(t, err, domain.ErrUserExists)
	assert.NotEmpty(t, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: domain.RoleGuest, IsEnabled: true}
	require.NoError(t, r.Create(context.Background(), u))
	assert.False(t, u.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Update(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "alice", "alice@example.com", "Alice", "Liddell", "$2a$10$y", "GUEST", true, nil, nil, now, now))

	got, err := r.Update(context.Background(), &domain.User{ID: "u1", Username: "alice", Role: domain.RoleGuest, IsEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$y", got.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Update_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := r.Update(context.Background(), &domain.User{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SoftDelete(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, r.SoftDelete(context.Background(), "u1"))
	assert.ErrorIs(t, r.SoftDelete(context.Background(), "ghost"), domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_List(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username LIKE $1 OR email LIKE $2`)).
		WithArgs("%ali%", "%ali%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username LIKE $1 OR email LIKE $2 ORDER BY created_at desc`)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "alice", "alice@example.com", "Alice", "Liddell", "h", "ADMIN", true, nil, nil, now, now))

	users, total, err := r.List(context.Background(), domain.ListQuery{Offset: 0, Limit: 20, Q: "ali"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
