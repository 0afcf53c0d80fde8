package request

import "github.com/shopspring/decimal"

// TransactionRequest 存款/取款共用；取款需要 Pin
type TransactionRequest struct {
	AccountNumber string          `json:"account_number" binding:"required,min=10,max=16"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Pin           string          `json:"pin"`
	Description   string          `json:"description" binding:"max=500"`
}

type TransferRequest struct {
	FromAccountNumber string          `json:"from_account_number" binding:"required,min=10,max=16"`
	ToAccountNumber   string          `json:"to_account_number" binding:"required,min=10,max=16"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	Pin               string          `json:"pin" binding:"required,min=4,max=6"`
	Description       string          `json:"description" binding:"max=500"`
}
