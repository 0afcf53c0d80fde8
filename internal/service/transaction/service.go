package transaction

import (
	"context"
	"encoding/json"
	"time"

	"bank-core/internal/event"
	"bank-core/internal/model"
	"bank-core/internal/repository"
	"bank-core/pkg/crypto_util"
	"bank-core/pkg/errno"

	"github.com/shopspring/decimal"
)

// DepositInput 存款参数
type DepositInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	Description   string // 可选，默认 "Deposit"
}

// WithdrawInput 取款参数
type WithdrawInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	PIN           string
	Description   string // 可选，默认 "Withdrawal"
}

// TransferInput 转账参数
type TransferInput struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
	PIN               string
	Description       string // 可选，默认 "Transfer to/from <账号>"
}

// Service 账本引擎: 所有资金变动都在一个 TxScope.Run 内完成，
// 余额更新与流水追加要么全部提交、要么全部回滚。
type Service struct {
	scope repository.TxScope
}

func NewService(scope repository.TxScope) *Service {
	return &Service{scope: scope}
}

// Deposit 存款: balance += amount，追加一条 DEPOSIT 流水。
// 前置条件: 账户存在、属于调用者、active。
func (s *Service) Deposit(ctx context.Context, username string, in DepositInput) (*model.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	var txn *model.Transaction
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		account, err := lockOwnedAccount(ctx, r, in.AccountNumber, username)
		if err != nil {
			return err
		}
		if !account.Active {
			return errno.ErrAccountInactive
		}

		account.Balance = account.Balance.Add(in.Amount)
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}

		txn = newTransaction(model.TransactionTypeDeposit, in.Amount, account, defaultDesc(in.Description, "Deposit"), "")
		if err := r.Transactions.Append(ctx, txn); err != nil {
			return err
		}
		return appendOutbox(ctx, r, txn, account.AccountNumber)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Withdraw 取款: 校验 PIN 与余额后 balance -= amount，追加一条 WITHDRAWAL 流水。
// 余额恰好等于取款额时允许取空。
func (s *Service) Withdraw(ctx context.Context, username string, in WithdrawInput) (*model.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	var txn *model.Transaction
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		account, err := lockOwnedAccount(ctx, r, in.AccountNumber, username)
		if err != nil {
			return err
		}
		if !account.Active {
			return errno.ErrAccountInactive
		}
		if !crypto_util.VerifyPIN(account.PIN, in.PIN) {
			return errno.ErrInvalidPin
		}
		if account.Balance.LessThan(in.Amount) {
			return errno.ErrInsufficientFunds
		}

		account.Balance = account.Balance.Sub(in.Amount)
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}

		txn = newTransaction(model.TransactionTypeWithdrawal, in.Amount, account, defaultDesc(in.Description, "Withdrawal"), "")
		if err := r.Transactions.Append(ctx, txn); err != nil {
			return err
		}
		return appendOutbox(ctx, r, txn, account.AccountNumber)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Transfer 转账: 原子地产生一对镜像流水 (TRANSFER_OUT, TRANSFER_IN)。
// 前置条件按顺序校验，第一个失败即返回:
// 源账户存在且属于调用者 -> PIN -> 目标账户存在 -> 双方 active -> 非同一账户 -> 余额充足。
// 返回 (debit, credit)。
func (s *Service) Transfer(ctx context.Context, username string, in TransferInput) (*model.Transaction, *model.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, nil, err
	}

	var debit, credit *model.Transaction
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		user, err := r.Users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}

		// 先做不加锁的读取，确定双方 id 以便按固定顺序加锁
		source, err := r.Accounts.FindByAccountNumber(ctx, in.FromAccountNumber)
		if err != nil {
			if err == errno.ErrAccountNotFound {
				return errno.ErrSourceAccountNotFound
			}
			return err
		}
		if source.UserID != user.ID {
			return errno.ErrUnauthorized
		}
		if !crypto_util.VerifyPIN(source.PIN, in.PIN) {
			return errno.ErrInvalidPin
		}

		dest, err := r.Accounts.FindByAccountNumber(ctx, in.ToAccountNumber)
		if err != nil {
			if err == errno.ErrAccountNotFound {
				return errno.ErrDestinationAccountNotFound
			}
			return err
		}

		// 防死锁: 无论转账方向如何，都按 id 升序加行锁
		source, dest, err = lockPair(ctx, r, source, dest)
		if err != nil {
			return err
		}

		if !source.Active || !dest.Active {
			return errno.ErrAccountInactive
		}
		if source.AccountNumber == dest.AccountNumber {
			return errno.ErrSameAccount
		}
		if source.Balance.LessThan(in.Amount) {
			return errno.ErrInsufficientFunds
		}

		source.Balance = source.Balance.Sub(in.Amount)
		dest.Balance = dest.Balance.Add(in.Amount)
		if err := r.Accounts.Save(ctx, source); err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, dest); err != nil {
			return err
		}

		debit = newTransaction(model.TransactionTypeTransferOut, in.Amount, source,
			defaultDesc(in.Description, "Transfer to "+dest.AccountNumber), dest.AccountNumber)
		credit = newTransaction(model.TransactionTypeTransferIn, in.Amount, dest,
			defaultDesc(in.Description, "Transfer from "+source.AccountNumber), source.AccountNumber)

		if err := r.Transactions.Append(ctx, debit); err != nil {
			return err
		}
		if err := r.Transactions.Append(ctx, credit); err != nil {
			return err
		}
		if err := appendOutbox(ctx, r, debit, source.AccountNumber); err != nil {
			return err
		}
		return appendOutbox(ctx, r, credit, dest.AccountNumber)
	})
	if err != nil {
		return nil, nil, err
	}
	return debit, credit, nil
}

// GetAccountTransactions 返回账户全部流水，时间倒序、同刻按 id 倒序。
// 要求调用者是账户属主；已注销账户的流水仍可查询。
func (s *Service) GetAccountTransactions(ctx context.Context, accountNumber, username string) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		account, err := r.Accounts.FindByAccountNumber(ctx, accountNumber)
		if err != nil {
			return err
		}
		user, err := r.Users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if account.UserID != user.ID {
			return errno.ErrUnauthorized
		}
		txns, err = r.Transactions.FindByAccountOrderByTimestampDesc(ctx, account.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// lockOwnedAccount 加行锁读取账户并校验属主
func lockOwnedAccount(ctx context.Context, r repository.Repos, accountNumber, username string) (*model.Account, error) {
	account, err := r.Accounts.FindByAccountNumberForUpdate(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	user, err := r.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account.UserID != user.ID {
		return nil, errno.ErrUnauthorized
	}
	return account, nil
}

// lockPair 按 id 升序对两个账户加行锁并返回加锁后的最新行。
// 同一账户只加一次锁。
func lockPair(ctx context.Context, r repository.Repos, source, dest *model.Account) (*model.Account, *model.Account, error) {
	if source.ID == dest.ID {
		locked, err := r.Accounts.FindByAccountNumberForUpdate(ctx, source.AccountNumber)
		if err != nil {
			return nil, nil, err
		}
		return locked, locked, nil
	}

	first, second := source, dest
	if first.ID > second.ID {
		first, second = second, first
	}
	lockedFirst, err := r.Accounts.FindByAccountNumberForUpdate(ctx, first.AccountNumber)
	if err != nil {
		return nil, nil, err
	}
	lockedSecond, err := r.Accounts.FindByAccountNumberForUpdate(ctx, second.AccountNumber)
	if err != nil {
		return nil, nil, err
	}
	if lockedFirst.ID == source.ID {
		return lockedFirst, lockedSecond, nil
	}
	return lockedSecond, lockedFirst, nil
}

func newTransaction(typ model.TransactionType, amount decimal.Decimal, account *model.Account, desc, related string) *model.Transaction {
	return &model.Transaction{
		Type:                 typ,
		Amount:               amount,
		BalanceAfter:         account.Balance,
		Timestamp:            time.Now(),
		Description:          desc,
		AccountID:            account.ID,
		RelatedAccountNumber: related,
		Status:               model.TransactionStatusSuccess,
	}
}

// appendOutbox 在同一事务内写入待投递事件 (Transactional Outbox)
func appendOutbox(ctx context.Context, r repository.Repos, txn *model.Transaction, accountNumber string) error {
	payload, err := json.Marshal(event.TransactionRecordedEvent{
		TransactionID:        txn.TransactionID,
		Type:                 string(txn.Type),
		AccountNumber:        accountNumber,
		RelatedAccountNumber: txn.RelatedAccountNumber,
		Amount:               txn.Amount.String(),
		BalanceAfter:         txn.BalanceAfter.String(),
		Timestamp:            txn.Timestamp.UnixMilli(),
	})
	if err != nil {
		return err
	}
	return r.Outbox.Append(ctx, &model.OutboxMessage{
		Topic:   event.TopicTransactions,
		Key:     accountNumber,
		Payload: payload,
	})
}

func defaultDesc(desc, fallback string) string {
	if desc != "" {
		return desc
	}
	return fallback
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errno.ErrValidation.WithMessage("Amount must be greater than zero")
	}
	return nil
}

func validateDescription(desc string) error {
	if len(desc) > 500 {
		return errno.ErrValidation.WithMessage("Description must be at most 500 characters")
	}
	return nil
}
