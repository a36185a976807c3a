package ez

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/auth"
	"redflix-api/internal/core/cache"
	"redflix-api/internal/domain"
	mdw "redflix-api/internal/transport/http/middleware"
	resp "redflix-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type roleToken struct{}

func (roleToken) Resolve(ctx context.Context, token string) (context.Context, error) {
	if token == "" {
		return ctx, apperr.Unauthorized("missing token")
	}
	return auth.WithPrincipal(ctx, auth.Principal{ID: "u1", Role: domain.Role(token), IsEnabled: true}), nil
}

func call(r http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, resp.Resp) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out resp.Resp
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func noop(*gin.Context, *struct{}) (string, error) { return "ok", nil }

func TestRegisterAction_RequiresAccessDeclaration(t *testing.T) {
	r := gin.New()
	e := New(r.Group("/api"), mdw.Authenticate(roleToken{}, ""))
	assert.PanicsWithValue(t, "ez: GET /api/a registered without an access declaration", func() {
		RegisterAction(e, Action[struct{}, string]{Method: http.MethodGet, Path: "/a", Handler: noop})
	})
	assert.Panics(t, func() {
		RegisterAction(e, Action[struct{}, string]{Method: http.MethodGet, Path: "/b", Access: Roles(auth.RoleSet{}), Handler: noop})
	})
	assert.Panics(t, func() {
		RegisterAction(e, Action[struct{}, string]{Method: "TRACE", Path: "/c", Access: Public(), Handler: noop})
	})
	assert.Panics(t, func() {
		RegisterAction(e, Action[struct{}, string]{Method: http.MethodGet, Path: "/d", Access: Public()})
	})
}

func TestRegisterAction_GatedWithoutResolver(t *testing.T) {
	r := gin.New()
	e := New(r.Group("/api"), nil)
	assert.Panics(t, func() {
		RegisterAction(e, Action[struct{}, string]{Method: http.MethodGet, Path: "/a", Access: Roles(auth.AdminOnly), Handler: noop})
	})
	assert.NotPanics(t, func() {
		RegisterAction(e, Action[struct{}, string]{Method: http.MethodGet, Path: "/b", Access: Public(), Handler: noop})
	})
}

type loginIn struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func TestRegisterAction_BindAndGate(t *testing.T) {
	r := gin.New()
	e := New(r.Group("/api"), mdw.Authenticate(roleToken{}, ""))
	RegisterAction(e, Action[loginIn, string]{
		Method: http.MethodPost, Path: "/echo", Binder: BindJSON, Access: Public(),
		Handler: func(_ *gin.Context, in *loginIn) (string, error) { return in.Username, nil },
	})
	RegisterAction(e, Action[struct{}, string]{
		Method: http.MethodGet, Path: "/admin", Access: Roles(auth.AdminOnly),
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			p, err := Principal(c)
			return string(p.Role), err
		},
	})

	w, body := call(r, http.MethodPost, "/api/echo", "", `{"username":"alice"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", body.Data)

	w, body = call(r, http.MethodPost, "/api/echo", "", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username cannot be empty. Invalid email.", body.Msg)

	w, body = call(r, http.MethodPost, "/api/echo", "", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body.Msg)

	w, _ = call(r, http.MethodGet, "/api/admin", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = call(r, http.MethodGet, "/api/admin", "CUSTOMER", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Requested resource /api/admin is not available for CUSTOMER users.", body.Msg)

	w, body = call(r, http.MethodGet, "/api/admin", "ADMIN", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ADMIN", body.Data)
}

func TestPrincipal_OnPublicRoute(t *testing.T) {
	r := gin.New()
	RegisterAction(New(r.Group(""), nil), Action[struct{}, string]{
		Method: http.MethodGet, Path: "/me", Access: Public(),
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			_, err := Principal(c)
			return "", err
		},
	})
	w, body := call(r, http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, resp.MsgUnexpected, body.Msg)
}

type item struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" binding:"required"`
}

func (item) TableName() string { return "items" }

func newCrud(t *testing.T, withCache bool) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var c *cache.Cache
	if withCache {
		mr := miniredis.RunT(t)
		c = cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	}

	r := gin.New()
	Crud(CrudConfig[item]{
		DB:   db,
		EZ:   New(r.Group("/api"), mdw.Authenticate(roleToken{}, "")),
		Path: "/items",
		Ops: map[Op]Access{
			OpCreate: Roles(auth.StaffRoles),
			OpGet:    Roles(auth.MemberRoles),
			OpDelete: Roles(auth.AdminOnly),
		},
		IDGen: func() string { return "i1" },
		Cache: c,
	})
	return r, mock
}

func TestCrud_Create(t *testing.T) {
	r, mock := newCrud(t, false)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "items"`)).WillReturnResult(sqlmock.NewResult(0, 1))

	w, body := call(r, http.MethodPost, "/api/items", "EMPLOYEE", `{"id":"client-chosen","name":"Heat"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "i1", body.Data.(map[string]any)["id"])

	w, _ = call(r, http.MethodPost, "/api/items", "EMPLOYEE", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(r, http.MethodPost, "/api/items", "CUSTOMER", `{"name":"Heat"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCrud_GetCachedAndInvalidatedOnDelete(t *testing.T) {
	r, mock := newCrud(t, true)
	rows := func() *sqlmock.Rows { return sqlmock.NewRows([]string{"id", "name"}).AddRow("i1", "Heat") }
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "items" WHERE "id" = $1`)).WillReturnRows(rows())
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "items" WHERE "id" = $1`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "items" WHERE "id" = $1`)).WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	for i := 0; i < 2; i++ {
		w, body := call(r, http.MethodGet, "/api/items/i1", "CUSTOMER", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Heat", body.Data.(map[string]any)["name"])
	}

	w, _ := call(r, http.MethodDelete, "/api/items/i1", "ADMIN", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(r, http.MethodGet, "/api/items/i1", "CUSTOMER", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCrud_UndeclaredOpsAreNotMounted(t *testing.T) {
	r, _ := newCrud(t, false)
	w, _ := call(r, http.MethodPut, "/api/items/i1", "ADMIN", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "id", toSnake("ID"))
	assert.Equal(t, "trailer_link", toSnake("TrailerLink"))
	assert.Equal(t, "created_at", toSnake("CreatedAt"))
}

func TestFieldName(t *testing.T) {
	typ := reflect.TypeOf(struct {
		A string `json:"alpha,omitempty"`
		B string `form:"beta"`
		C string `json:"-"`
		D string
	}{})
	want := []string{"alpha", "beta", "C", "D"}
	for i, w := range want {
		assert.Equal(t, w, fieldName(typ.Field(i)))
	}
}

type trailerIn struct {
	TrailerLink string `json:"trailerLink" binding:"required"`
}

func TestNew_UsesJSONFieldNames(t *testing.T) {
	r := gin.New()
	RegisterAction(New(r.Group(""), nil), Action[trailerIn, string]{
		Method: http.MethodPost, Path: "/m", Binder: BindJSON, Access: Public(),
		Handler: func(*gin.Context, *trailerIn) (string, error) { return "ok", nil },
	})
	w, body := call(r, http.MethodPost, "/m", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "trailerLink cannot be empty.", body.Msg)
}
