package handler

import (
	"bank-core/internal/handler/request"
	"bank-core/internal/handler/response"
	"bank-core/internal/model"
	"bank-core/internal/service/account"
	"bank-core/pkg/errno"
	"bank-core/pkg/monitor"
	"bank-core/pkg/validator"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	svc *account.Service
}

func NewAccountHandler(svc *account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// username 从鉴权中间件里取当前用户
func username(c *gin.Context) string {
	return c.GetString("username")
}

// Create 开户
// @Summary 创建账户
// @Tags Account
// @Accept json
// @Produce json
// @Param request body request.CreateAccountRequest true "开户参数"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req request.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	acct, err := h.svc.CreateAccount(c.Request.Context(), username(c), account.CreateAccountInput{
		AccountNumber:  req.AccountNumber,
		AccountType:    model.AccountType(req.AccountType),
		PIN:            req.Pin,
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	monitor.Business.AccountCreatedTotal.WithLabelValues(string(acct.AccountType)).Inc()

	response.Success(c, acct)
}

// List 查询当前用户的活跃账户
// @Summary 账户列表
// @Tags Account
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.svc.GetUserAccounts(c.Request.Context(), username(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, accounts)
}

// Get 按账号查询单个账户
// @Summary 账户详情
// @Tags Account
// @Produce json
// @Param accountNumber path string true "账号"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{accountNumber} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	acct, err := h.svc.GetAccountByNumber(c.Request.Context(), c.Param("accountNumber"), username(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, acct)
}

// Delete 注销账户（软删除，余额必须为零）
// @Summary 注销账户
// @Tags Account
// @Produce json
// @Param accountNumber path string true "账号"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{accountNumber} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	msg, err := h.svc.DeleteAccount(c.Request.Context(), c.Param("accountNumber"), username(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": msg})
}
