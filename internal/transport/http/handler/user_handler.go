package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redflix-api/internal/core/auth"
	"redflix-api/internal/domain"
	"redflix-api/internal/service"
	"redflix-api/internal/transport/http/ez"
)

// UserAccess 每个用户管理接口允许的角色
type UserAccess struct {
	List   auth.RoleSet
	Self   auth.RoleSet
	Read   auth.RoleSet
	Update auth.RoleSet
	Delete auth.RoleSet
}

// APIUserAccess /api/v1/users
var APIUserAccess = UserAccess{
	List:   auth.AdminsManager,
	Self:   auth.MemberRoles,
	Read:   auth.AdminsManager,
	Update: auth.AdminsManager,
	Delete: auth.AdminOnly,
}

// AdminUserAccess /admin/v1/users，删除仍只给 ADMIN
var AdminUserAccess = UserAccess{
	List:   auth.AdminsManager,
	Self:   auth.AdminsManager,
	Read:   auth.AdminsManager,
	Update: auth.AdminsManager,
	Delete: auth.AdminOnly,
}

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type listUsersReq struct {
	Offset int    `form:"offset,default=0" binding:"min=0"`
	Limit  int    `form:"limit,default=20" binding:"min=0"`
	Q      string `form:"q"                binding:"max=64"`
}

type updateMeReq struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=64"`
	LastName  *string `json:"lastName"  binding:"omitempty,max=64"`
	Username  *string `json:"username"  binding:"omitempty,max=64"`
	Email     *string `json:"email"     binding:"omitempty,email,max=255"`
}

type updateUserReq struct {
	Role      *string `json:"role"`
	IsEnabled *bool   `json:"isEnabled"`
}

type deletedOut struct {
	ID string `json:"id"`
}

func (h *UserHandler) Mount(e ez.EZ, a UserAccess) {
	g := e.Group("/users")

	ez.RegisterAction(g, ez.Action[listUsersReq, *service.UserPage]{
		Method: http.MethodGet, Path: "", Binder: ez.BindQuery, Access: ez.Roles(a.List),
		Handler: func(c *gin.Context, in *listUsersReq) (*service.UserPage, error) {
			return h.svc.List(c.Request.Context(), domain.ListQuery{Offset: in.Offset, Limit: in.Limit, Q: in.Q})
		},
	})

	// /me 必须在 /:id 之前注册
	ez.RegisterAction(g, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet, Path: "/me", Binder: ez.BindNone, Access: ez.Roles(a.Self),
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			p, err := ez.Principal(c)
			if err != nil {
				return nil, err
			}
			return h.svc.Me(c.Request.Context(), p)
		},
	})

	ez.RegisterAction(g, ez.Action[updateMeReq, *domain.User]{
		Method: http.MethodPut, Path: "/me", Binder: ez.BindJSON, Access: ez.Roles(a.Self),
		Handler: func(c *gin.Context, in *updateMeReq) (*domain.User, error) {
			p, err := ez.Principal(c)
			if err != nil {
				return nil, err
			}
			return h.svc.UpdateMe(c.Request.Context(), p, service.UpdateMeInput{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Username:  in.Username,
				Email:     in.Email,
			})
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet, Path: "/:id", Binder: ez.BindNone, Access: ez.Roles(a.Read),
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.FindByID(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(g, ez.Action[updateUserReq, *domain.User]{
		Method: http.MethodPut, Path: "/:id", Binder: ez.BindJSON, Access: ez.Roles(a.Update),
		Handler: func(c *gin.Context, in *updateUserReq) (*domain.User, error) {
			p, err := ez.Principal(c)
			if err != nil {
				return nil, err
			}
			return h.svc.UpdateByID(c.Request.Context(), p, c.Param("id"), service.UpdateUserInput{
				Role:      in.Role,
				IsEnabled: in.IsEnabled,
			})
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, deletedOut]{
		Method: http.MethodDelete, Path: "/:id", Binder: ez.BindNone, Access: ez.Roles(a.Delete),
		Handler: func(c *gin.Context, _ *struct{}) (deletedOut, error) {
			p, err := ez.Principal(c)
			if err != nil {
				return deletedOut{}, err
			}
			id := c.Param("id")
			return deletedOut{ID: id}, h.svc.SoftDelete(c.Request.Context(), p, id)
		},
	})
}
