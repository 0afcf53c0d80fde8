package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// AccountType 账户类型 (闭集枚举)
type AccountType string

const (
	AccountTypeSavings      AccountType = "SAVINGS"
	AccountTypeChecking     AccountType = "CHECKING"
	AccountTypeFixedDeposit AccountType = "FIXED_DEPOSIT"
)

// Valid 判断账户类型是否在枚举内
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeFixedDeposit:
		return true
	}
	return false
}

// TransactionType 交易类型
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
)

// TransactionStatus 交易状态
// PENDING / FAILED 为预留状态，引擎目前只会落库 SUCCESS
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// User 用户表
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(255);not null;unique" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // 不返回密码
	Email        string    `gorm:"type:varchar(255);not null;unique" json:"email"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	PhoneNumber  string    `gorm:"type:varchar(32);not null" json:"phone_number"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	Enabled      bool      `gorm:"not null;default:true" json:"enabled"`
	Role         Role      `gorm:"type:varchar(16);not null;default:'USER'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`

	// 关联 (不序列化，避免循环引用)
	Accounts []Account `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Account 资金账户表
// AccountNumber 全局唯一，软删除后的账号也不可复用
type Account struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountNumber string          `gorm:"type:varchar(16);not null;unique" json:"account_number"`
	AccountType   AccountType     `gorm:"type:varchar(32);not null" json:"account_type"`
	Balance       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	PIN           string          `gorm:"type:varchar(255);not null;column:pin" json:"-"` // argon2id 哈希，不返回
	Active        bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UserID        uint64          `gorm:"not null;index" json:"user_id"`
}

// Transaction 交易流水表 (append-only，落库后不可变)
type Transaction struct {
	ID                   uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID        string            `gorm:"type:varchar(32);not null;unique" json:"transaction_id"`
	Type                 TransactionType   `gorm:"type:varchar(16);not null" json:"type"`
	Amount               decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"amount"`
	BalanceAfter         decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	Timestamp            time.Time         `gorm:"not null;index" json:"timestamp"`
	Description          string            `gorm:"type:varchar(500)" json:"description"`
	AccountID            uint64            `gorm:"not null;index" json:"account_id"`
	RelatedAccountNumber string            `gorm:"type:varchar(16)" json:"related_account_number,omitempty"`
	Status               TransactionStatus `gorm:"type:varchar(16);not null;default:'SUCCESS'" json:"status"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

func (Account) TableName() string {
	return "accounts"
}

func (Transaction) TableName() string {
	return "transactions"
}
