package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redflix-api/internal/domain"
	"redflix-api/internal/service"
	"redflix-api/internal/transport/http/ez"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerReq struct {
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName"  binding:"required,max=64"`
	Username  string `json:"username"  binding:"required,max=64"`
	Email     string `json:"email"     binding:"required,email,max=255"`
	Password  string `json:"password"  binding:"required"`
}

type emailReq struct {
	Email string `json:"email" binding:"required,email"`
}

type resetReq struct {
	ResetPasswordToken string `json:"resetPasswordToken" binding:"required"`
	Password           string `json:"password"           binding:"required"`
}

type verifyReq struct {
	VerifyToken string `json:"verifyToken" binding:"required"`
}

type userOut struct {
	User *domain.User `json:"user"`
}

type tokenOut struct {
	Token string `json:"token"`
}

// Mount 全部公开，挂在 /auth 下
func (h *AuthHandler) Mount(e ez.EZ) {
	g := e.Group("/auth")

	ez.RegisterAction(g, ez.Action[loginReq, *service.LoginResult]{
		Method: http.MethodPost, Path: "/login", Binder: ez.BindJSON, Access: ez.Public(),
		Handler: func(c *gin.Context, in *loginReq) (*service.LoginResult, error) {
			return h.svc.Login(c.Request.Context(), in.Username, in.Password)
		},
	})

	ez.RegisterAction(g, ez.Action[registerReq, userOut]{
		Method: http.MethodPost, Path: "/register", Binder: ez.BindJSON, Access: ez.Public(),
		Handler: func(c *gin.Context, in *registerReq) (userOut, error) {
			u, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Username:  in.Username,
				Email:     in.Email,
				Password:  in.Password,
			})
			return userOut{User: u}, err
		},
	})

	ez.RegisterAction(g, ez.Action[emailReq, tokenOut]{
		Method: http.MethodPost, Path: "/forgot-password", Binder: ez.BindJSON, Access: ez.Public(),
		Handler: func(c *gin.Context, in *emailReq) (tokenOut, error) {
			tok, err := h.svc.ForgotPassword(c.Request.Context(), in.Email)
			return tokenOut{Token: tok}, err
		},
	})

	ez.RegisterAction(g, ez.Action[resetReq, userOut]{
		Method: http.MethodPost, Path: "/reset-password", Binder: ez.BindJSON, Access: ez.Public(),
		Handler: func(c *gin.Context, in *resetReq) (userOut, error) {
			u, err := h.svc.ResetPassword(c.Request.Context(), in.ResetPasswordToken, in.Password)
			return userOut{User: u}, err
		},
	})

	ez.RegisterAction(g, ez.Action[emailReq, tokenOut]{
		Method: http.MethodPost, Path: "/request-verify-token", Binder: ez.BindJSON, Access: ez.Public(),
		Handler: func(c *gin.Context, in *emailReq) (tokenOut, error) {
			tok, err := h.svc.RequestVerifyToken(c.Request.Context(), in.Email)
			return tokenOut{Token: tok}, err
		},
	})

	ez.RegisterAction(g, ez.Action[verifyReq, userOut]{
		Method: http.MethodPost, Path: "/verify-token", Binder: ez.BindJSON, Access: ez.Public(),
		Handler: func(c *gin.Context, in *verifyReq) (userOut, error) {
			u, err := h.svc.VerifyToken(c.Request.Context(), in.VerifyToken)
			return userOut{User: u}, err
		},
	})
}
