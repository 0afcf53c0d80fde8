package repository

import (
	"context"

	"bank-core/internal/model"
)

// Users 用户仓储端口
type Users interface {
	// FindByUsername 按用户名查找，不存在返回 errno.ErrUserNotFound
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *model.User) error
}

// Accounts 账户仓储端口
type Accounts interface {
	// FindByAccountNumber 按账号查找 (不加锁)，不存在返回 errno.ErrAccountNotFound
	FindByAccountNumber(ctx context.Context, number string) (*model.Account, error)
	// FindByAccountNumberForUpdate 按账号查找并加行锁 (SELECT ... FOR UPDATE)
	// 只能在事务作用域内调用
	FindByAccountNumberForUpdate(ctx context.Context, number string) (*model.Account, error)
	ExistsByAccountNumber(ctx context.Context, number string) (bool, error)
	// FindActiveByUserID 返回用户所有 active 账户，按 id 升序
	FindActiveByUserID(ctx context.Context, userID uint64) ([]model.Account, error)
	Save(ctx context.Context, account *model.Account) error
}

// Transactions 交易流水仓储端口 (append-only)
type Transactions interface {
	// Append 落库一条流水；首次持久化时分配 TransactionID
	Append(ctx context.Context, txn *model.Transaction) error
	// FindByAccountOrderByTimestampDesc 按时间倒序返回账户全部流水，时间相同按 id 倒序
	FindByAccountOrderByTimestampDesc(ctx context.Context, accountID uint64) ([]model.Transaction, error)
}

// Outbox 本地消息表端口
type Outbox interface {
	Append(ctx context.Context, msg *model.OutboxMessage) error
	FindPending(ctx context.Context, limit int) ([]model.OutboxMessage, error)
	MarkSent(ctx context.Context, id uint64) error
}

// Repos 与同一个数据源 (或同一个事务) 绑定的仓储集合
type Repos struct {
	Users        Users
	Accounts     Accounts
	Transactions Transactions
	Outbox       Outbox
}

// TxScope 原子作用域: fn 正常返回则提交，返回 error 则整体回滚。
// 每个会改动资金状态的服务方法恰好对应一次 Run。
type TxScope interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Store 聚合了事务作用域和非事务的仓储访问
type Store interface {
	TxScope
	// Repos 返回不绑定事务的仓储集合，用于 Relay 等后台读写
	Repos() Repos
}
