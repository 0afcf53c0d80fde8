package handler

import (
	"bank-core/internal/handler/request"
	"bank-core/internal/handler/response"
	"bank-core/internal/service/auth"
	"bank-core/pkg/errno"
	"bank-core/pkg/monitor"
	"bank-core/pkg/validator"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 用户注册接口
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "注册参数"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	monitor.Business.UserRegisteredTotal.Inc()

	response.Success(c, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"message":  "Registration successful. Please verify your account.",
	})
}

// Login 用户登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "登录参数"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Verify 验证用户 (演示用开放接口，生产应走管理端)
// @Summary 验证用户
// @Tags Auth
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/verify/{username} [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	msg, err := h.svc.Verify(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": msg})
}
