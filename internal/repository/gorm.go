package repository

import (
	"context"
	"errors"
	"strings"

	"bank-core/internal/model"
	"bank-core/pkg/errno"
	"bank-core/pkg/txid"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 GORM/Postgres 的仓储实现。
// 事务内对将被更新的账户行使用悲观锁 (SELECT ... FOR UPDATE)，
// 序列化失败 / 死锁回滚统一转成 errno.ErrConflict 交给调用方决定是否重试。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Run 在一个数据库事务内执行 fn；fn 返回 error 则整体回滚
func (s *GormStore) Run(ctx context.Context, fn func(r Repos) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormRepos(tx))
	})
	return translateError(err)
}

// Repos 返回不绑定事务的仓储集合
func (s *GormStore) Repos() Repos {
	return newGormRepos(s.db)
}

func newGormRepos(db *gorm.DB) Repos {
	return Repos{
		Users:        &gormUsers{db: db},
		Accounts:     &gormAccounts{db: db},
		Transactions: &gormTransactions{db: db},
		Outbox:       &gormOutbox{db: db},
	}
}

// translateError 将数据库层错误翻译为领域错误。
// errno 值原样透传，40001/40P01 (serialization failure / deadlock) 翻译为 ErrConflict。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var e errno.Errno
	if errors.As(err, &e) {
		return e
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return errno.ErrConflict
		case "23505":
			// 唯一约束冲突: 根据约束名还原业务语义
			switch {
			case strings.Contains(pgErr.ConstraintName, "account_number"):
				return errno.ErrAccountNumberTaken
			case strings.Contains(pgErr.ConstraintName, "username"),
				strings.Contains(pgErr.ConstraintName, "email"):
				return errno.ErrUserAlreadyExist
			}
		}
	}
	return errno.ErrDatabase.WithMessage(err.Error())
}

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *gormUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *gormUsers) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

type gormAccounts struct {
	db *gorm.DB
}

func (r *gormAccounts) FindByAccountNumber(ctx context.Context, number string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("account_number = ?", number).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormAccounts) FindByAccountNumberForUpdate(ctx context.Context, number string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", number).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormAccounts) ExistsByAccountNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).Where("account_number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *gormAccounts) FindActiveByUserID(ctx context.Context, userID uint64) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *gormAccounts) Save(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

type gormTransactions struct {
	db *gorm.DB
}

func (r *gormTransactions) Append(ctx context.Context, txn *model.Transaction) error {
	if txn.TransactionID == "" {
		txn.TransactionID = txid.New()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *gormTransactions) FindByAccountOrderByTimestampDesc(ctx context.Context, accountID uint64) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("timestamp DESC, id DESC").
		Find(&txns).Error
	return txns, err
}

type gormOutbox struct {
	db *gorm.DB
}

func (r *gormOutbox) Append(ctx context.Context, msg *model.OutboxMessage) error {
	if msg.Status == "" {
		msg.Status = "PENDING"
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *gormOutbox) FindPending(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	var messages []model.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", "PENDING").
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *gormOutbox) MarkSent(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Update("status", "SENT").Error
}
