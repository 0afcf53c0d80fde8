package request

import "github.com/shopspring/decimal"

type CreateAccountRequest struct {
	AccountNumber  string          `json:"account_number" binding:"required,min=10,max=16"`
	AccountType    string          `json:"account_type" binding:"required,oneof=SAVINGS CHECKING FIXED_DEPOSIT"`
	Pin            string          `json:"pin" binding:"required,min=4,max=6"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"` // 可省略，默认 0
}
