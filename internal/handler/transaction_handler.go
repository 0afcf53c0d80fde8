package handler

import (
	"bank-core/internal/handler/request"
	"bank-core/internal/handler/response"
	"bank-core/internal/model"
	"bank-core/internal/service/transaction"
	"bank-core/pkg/errno"
	"bank-core/pkg/monitor"
	"bank-core/pkg/validator"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	svc *transaction.Service
}

func NewTransactionHandler(svc *transaction.Service) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// Deposit 存款
// @Summary 存款
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.TransactionRequest true "存款参数"
// @Success 200 {object} response.Response
// @Router /api/v1/transactions/deposit [post]
func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req request.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	txn, err := h.svc.Deposit(c.Request.Context(), username(c), transaction.DepositInput{
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	recordTransaction(txn.Type, txn.Amount.InexactFloat64())

	response.Success(c, txn)
}

// Withdraw 取款
// @Summary 取款
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.TransactionRequest true "取款参数"
// @Success 200 {object} response.Response
// @Router /api/v1/transactions/withdraw [post]
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req request.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	txn, err := h.svc.Withdraw(c.Request.Context(), username(c), transaction.WithdrawInput{
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		PIN:           req.Pin,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	recordTransaction(txn.Type, txn.Amount.InexactFloat64())

	response.Success(c, txn)
}

// Transfer 转账，返回借记方与贷记方两条镜像流水
// @Summary 转账
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.TransferRequest true "转账参数"
// @Success 200 {object} response.Response
// @Router /api/v1/transactions/transfer [post]
func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req request.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	debit, credit, err := h.svc.Transfer(c.Request.Context(), username(c), transaction.TransferInput{
		FromAccountNumber: req.FromAccountNumber,
		ToAccountNumber:   req.ToAccountNumber,
		Amount:            req.Amount,
		PIN:               req.Pin,
		Description:       req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	recordTransaction(debit.Type, debit.Amount.InexactFloat64())

	response.Success(c, gin.H{
		"debit":  debit,
		"credit": credit,
	})
}

// History 账户流水，时间倒序
// @Summary 交易历史
// @Tags Transaction
// @Produce json
// @Param accountNumber path string true "账号"
// @Success 200 {object} response.Response
// @Router /api/v1/transactions/account/{accountNumber} [get]
func (h *TransactionHandler) History(c *gin.Context) {
	txns, err := h.svc.GetAccountTransactions(c.Request.Context(), c.Param("accountNumber"), username(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, txns)
}

func recordTransaction(typ model.TransactionType, amount float64) {
	monitor.Business.TransactionsTotal.WithLabelValues(string(typ)).Inc()
	monitor.Business.TransactionAmountTotal.WithLabelValues(string(typ)).Add(amount)
}
